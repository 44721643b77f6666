package dtos

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const successCallbackJSON = `{
  "Body": {
    "stkCallback": {
      "MerchantRequestID": "29115-34620561-1",
      "CheckoutRequestID": "ws_CO_191220191020363925",
      "ResultCode": 0,
      "ResultDesc": "The service request is processed successfully.",
      "CallbackMetadata": {
        "Item": [
          {"Name": "Amount", "Value": 45000.00},
          {"Name": "MpesaReceiptNumber", "Value": "QHG123XYZ"},
          {"Name": "TransactionDate", "Value": 20260305173021},
          {"Name": "PhoneNumber", "Value": 254712345678}
        ]
      }
    }
  }
}`

func TestExtractPaymentDetails(t *testing.T) {
	var env StkCallbackEnvelope
	require.NoError(t, json.Unmarshal([]byte(successCallbackJSON), &env))

	details, err := env.Body.StkCallback.ExtractPaymentDetails()
	require.NoError(t, err)

	assert.Equal(t, float64(45000), details.Amount)
	assert.Equal(t, "QHG123XYZ", details.MpesaReceiptNumber)
	assert.Equal(t, "254712345678", details.PhoneNumber)

	// 2026-03-05 17:30:21 Nairobi is 14:30:21 UTC.
	assert.Equal(t, time.Date(2026, 3, 5, 14, 30, 21, 0, time.UTC), details.TransactionDate.UTC())
}

func TestExtractPaymentDetailsFailedPush(t *testing.T) {
	cb := StkCallback{ResultCode: 1032, ResultDesc: "Request cancelled by user"}

	_, err := cb.ExtractPaymentDetails()
	require.ErrorIs(t, err, ErrCallbackNotSuccessful)
}

func TestExtractPaymentDetailsMissingMetadata(t *testing.T) {
	cb := StkCallback{ResultCode: 0}

	_, err := cb.ExtractPaymentDetails()
	require.ErrorIs(t, err, ErrCallbackMissingFields)
}

func TestExtractPaymentDetailsMissingReceipt(t *testing.T) {
	cb := StkCallback{
		ResultCode: 0,
		CallbackMetadata: &StkCallbackMetadata{
			Item: []StkCallbackItem{
				{Name: "Amount", Value: float64(45000)},
			},
		},
	}

	_, err := cb.ExtractPaymentDetails()
	require.ErrorIs(t, err, ErrCallbackMissingFields)
}

func TestExtractPaymentDetailsStringPhone(t *testing.T) {
	cb := StkCallback{
		ResultCode: 0,
		CallbackMetadata: &StkCallbackMetadata{
			Item: []StkCallbackItem{
				{Name: "Amount", Value: float64(1)},
				{Name: "MpesaReceiptNumber", Value: "AB12CD34"},
				{Name: "PhoneNumber", Value: "254700000000"},
			},
		},
	}

	details, err := cb.ExtractPaymentDetails()
	require.NoError(t, err)
	assert.Equal(t, "254700000000", details.PhoneNumber)
}
