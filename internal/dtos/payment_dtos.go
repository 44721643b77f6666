package dtos

import (
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/NdoloMwende/Homehub-Backend/internal/models"
)

// StkCallbackEnvelope is the Daraja STK push result delivered to our
// callback URL. The gateway wraps everything under Body.stkCallback.
type StkCallbackEnvelope struct {
	Body struct {
		StkCallback StkCallback `json:"stkCallback"`
	} `json:"Body"`
}

type StkCallback struct {
	MerchantRequestID string               `json:"MerchantRequestID"`
	CheckoutRequestID string               `json:"CheckoutRequestID"`
	ResultCode        int                  `json:"ResultCode"`
	ResultDesc        string               `json:"ResultDesc"`
	CallbackMetadata  *StkCallbackMetadata `json:"CallbackMetadata,omitempty"`
}

type StkCallbackMetadata struct {
	Item []StkCallbackItem `json:"Item"`
}

// StkCallbackItem is a loosely typed Name/Value pair. Amount comes back as a
// JSON number and the receipt as a string, so Value stays interface{} until
// ExtractPaymentDetails sorts it out.
type StkCallbackItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value,omitempty"`
}

// PaymentDetails is what the reconciler needs out of a successful callback.
type PaymentDetails struct {
	Amount             float64
	MpesaReceiptNumber string
	PhoneNumber        string
	TransactionDate    time.Time
}

var (
	ErrCallbackNotSuccessful = errors.New("stk callback reported failure")
	ErrCallbackMissingFields = errors.New("stk callback metadata incomplete")
)

// ExtractPaymentDetails pulls the amount, receipt and phone number out of a
// callback's metadata items. It fails if the result code signals a failed or
// cancelled push, or if any required item is missing.
func (c *StkCallback) ExtractPaymentDetails() (*PaymentDetails, error) {
	if c.ResultCode != 0 {
		return nil, ErrCallbackNotSuccessful
	}
	if c.CallbackMetadata == nil {
		return nil, ErrCallbackMissingFields
	}

	details := &PaymentDetails{TransactionDate: time.Now().UTC()}
	var haveAmount, haveReceipt bool

	for _, item := range c.CallbackMetadata.Item {
		switch item.Name {
		case "Amount":
			if v, ok := item.Value.(float64); ok {
				details.Amount = v
				haveAmount = true
			}
		case "MpesaReceiptNumber":
			if v, ok := item.Value.(string); ok && v != "" {
				details.MpesaReceiptNumber = v
				haveReceipt = true
			}
		case "PhoneNumber":
			// Daraja sends the MSISDN as a number.
			switch v := item.Value.(type) {
			case float64:
				details.PhoneNumber = formatMsisdn(v)
			case string:
				details.PhoneNumber = v
			}
		case "TransactionDate":
			// Numeric yyyyMMddHHmmss in Nairobi time.
			if v, ok := item.Value.(float64); ok {
				if ts, err := parseDarajaTimestamp(int64(v)); err == nil {
					details.TransactionDate = ts
				}
			}
		}
	}

	if !haveAmount || !haveReceipt {
		return nil, ErrCallbackMissingFields
	}
	return details, nil
}

func formatMsisdn(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseDarajaTimestamp(v int64) (time.Time, error) {
	nairobi, err := time.LoadLocation("Africa/Nairobi")
	if err != nil {
		nairobi = time.FixedZone("EAT", 3*60*60)
	}
	return time.ParseInLocation("20060102150405", strconv.FormatInt(v, 10), nairobi)
}

type PaymentResponse struct {
	ID                uuid.UUID  `json:"id"`
	InvoiceID         *uuid.UUID `json:"invoice_id,omitempty"`
	Amount            float64    `json:"amount"`
	ExternalReference string     `json:"external_reference"`
	PayerPhone        string     `json:"payer_phone"`
	PaidAt            time.Time  `json:"paid_at"`
	Reconciled        bool       `json:"reconciled"`
}

func NewPaymentResponse(p *models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                p.ID,
		InvoiceID:         p.InvoiceID,
		Amount:            p.Amount,
		ExternalReference: p.ExternalReference,
		PayerPhone:        p.PayerPhone,
		PaidAt:            p.PaidAt,
		Reconciled:        p.Reconciled(),
	}
}

func NewPaymentListResponse(payments []*models.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, NewPaymentResponse(p))
	}
	return out
}
