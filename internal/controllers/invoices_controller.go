package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/NdoloMwende/Homehub-Backend/internal/dtos"
	"github.com/NdoloMwende/Homehub-Backend/internal/services"
	"github.com/NdoloMwende/Homehub-Backend/internal/utils"
)

type InvoicesController struct {
	invoiceService *services.InvoiceService
	validate       *validator.Validate
}

func NewInvoicesController(is *services.InvoiceService) *InvoicesController {
	return &InvoicesController{
		invoiceService: is,
		validate:       validator.New(),
	}
}

// POST /api/v1/invoices
func (c *InvoicesController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, err := requireUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	invoice, svcErr := c.invoiceService.Create(ctx, req.LeaseID, req.Amount, req.DueDate, actorID)
	if svcErr != nil {
		utils.Logger.WithError(svcErr).Error("Invoice creation failed")
		utils.HandleAppError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.NewInvoiceResponse(invoice))
}

// GET /api/v1/invoices
func (c *InvoicesController) ListHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, err := requireUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	invoices, svcErr := c.invoiceService.ListForActor(ctx, actorID)
	if svcErr != nil {
		utils.Logger.WithError(svcErr).Error("Failed to list invoices")
		utils.HandleAppError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewInvoiceListResponse(invoices))
}
