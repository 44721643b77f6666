package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/NdoloMwende/Homehub-Backend/internal/dtos"
	"github.com/NdoloMwende/Homehub-Backend/internal/services"
	"github.com/NdoloMwende/Homehub-Backend/internal/utils"
)

type PaymentsController struct {
	reconciliationService *services.ReconciliationService
}

func NewPaymentsController(rs *services.ReconciliationService) *PaymentsController {
	return &PaymentsController{reconciliationService: rs}
}

// POST /api/v1/payments/callback
//
// The STK callback endpoint for the mobile-money gateway. Once the payload
// is structurally valid we always answer 200: the gateway retries on non-200
// and a retry storm cannot fix a business-level failure on our side.
func (c *PaymentsController) StkCallbackHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var envelope dtos.StkCallbackEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}

	callback := envelope.Body.StkCallback
	logger := utils.Logger.WithField("externalRef", callback.CheckoutRequestID)

	details, err := callback.ExtractPaymentDetails()
	if err != nil {
		if errors.Is(err, dtos.ErrCallbackNotSuccessful) {
			// Cancelled or failed push. Acknowledge, record nothing.
			logger.WithField("resultCode", callback.ResultCode).Info("STK push not successful, ignoring")
			utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
			return
		}
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Callback metadata incomplete", nil, err)
		return
	}

	result, svcErr := c.reconciliationService.Reconcile(ctx, services.ReconcileInput{
		Amount:            details.Amount,
		ExternalReference: details.MpesaReceiptNumber,
		PayerPhone:        details.PhoneNumber,
		PaidAt:            details.TransactionDate,
	})
	if svcErr != nil {
		// The payload was good; the failure is ours. Acknowledge so the
		// gateway stops retrying, and rely on logs to follow up.
		logger.WithError(svcErr).Error("Payment reconciliation failed")
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
		return
	}

	status := "unreconciled"
	if result.Duplicate {
		status = "duplicate"
	} else if result.Invoice != nil {
		status = "matched"
	}
	logger.WithField("status", status).Info("Payment processed")
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": status})
}

// GET /api/v1/payments
func (c *PaymentsController) ListHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, err := requireUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	payments, svcErr := c.reconciliationService.ListPayments(ctx, actorID)
	if svcErr != nil {
		utils.Logger.WithError(svcErr).Error("Failed to list payments")
		utils.HandleAppError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewPaymentListResponse(payments))
}
