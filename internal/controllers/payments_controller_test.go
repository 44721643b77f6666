package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NdoloMwende/Homehub-Backend/internal/models"
	"github.com/NdoloMwende/Homehub-Backend/internal/repositories"
	"github.com/NdoloMwende/Homehub-Backend/internal/services"
	"github.com/NdoloMwende/Homehub-Backend/internal/utils"
)

func init() {
	utils.InitLogger("homehub-test")
}

// brokenStore fails every repository call. The callback handler must still
// acknowledge the gateway with 200 when the failure is on our side.
type brokenStore struct{}

func (s *brokenStore) Repos() repositories.Repos {
	return repositories.Repos{Payments: &brokenPaymentRepo{}}
}

func (s *brokenStore) WithTx(ctx context.Context, fn func(repositories.Repos) error) error {
	return fn(s.Repos())
}

type brokenPaymentRepo struct{}

var errStorage = errors.New("storage unavailable")

func (r *brokenPaymentRepo) Create(ctx context.Context, p *models.Payment) error { return errStorage }
func (r *brokenPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return nil, errStorage
}
func (r *brokenPaymentRepo) GetByExternalReference(ctx context.Context, ref string) (*models.Payment, error) {
	return nil, errStorage
}
func (r *brokenPaymentRepo) ListAll(ctx context.Context) ([]*models.Payment, error) {
	return nil, errStorage
}
func (r *brokenPaymentRepo) ListUnreconciled(ctx context.Context) ([]*models.Payment, error) {
	return nil, errStorage
}

func postCallback(t *testing.T, c *PaymentsController, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", strings.NewReader(body))
	rec := httptest.NewRecorder()
	c.StkCallbackHandler(rec, req)
	return rec
}

func callbackBody(resultCode int, items string) string {
	return fmt.Sprintf(`{"Body":{"stkCallback":{
		"MerchantRequestID":"29115-34620561-1",
		"CheckoutRequestID":"ws_CO_191220191020363925",
		"ResultCode":%d,
		"ResultDesc":"desc",
		"CallbackMetadata":{"Item":[%s]}}}}`, resultCode, items)
}

func TestStkCallbackInvalidJSON(t *testing.T) {
	c := NewPaymentsController(services.NewReconciliationService(&brokenStore{}))

	rec := postCallback(t, c, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStkCallbackCancelledPushIsAcknowledged(t *testing.T) {
	c := NewPaymentsController(services.NewReconciliationService(&brokenStore{}))

	rec := postCallback(t, c, callbackBody(1032, ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ignored", body["status"])
}

func TestStkCallbackIncompleteMetadata(t *testing.T) {
	c := NewPaymentsController(services.NewReconciliationService(&brokenStore{}))

	rec := postCallback(t, c, callbackBody(0, `{"Name":"Amount","Value":45000}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStkCallbackInternalFailureStillAcknowledged(t *testing.T) {
	c := NewPaymentsController(services.NewReconciliationService(&brokenStore{}))

	items := `{"Name":"Amount","Value":45000},{"Name":"MpesaReceiptNumber","Value":"QHG123XYZ"}`
	rec := postCallback(t, c, callbackBody(0, items))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "accepted", body["status"])
}
