package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/NdoloMwende/Homehub-Backend/internal/dtos"
	"github.com/NdoloMwende/Homehub-Backend/internal/middleware"
	"github.com/NdoloMwende/Homehub-Backend/internal/services"
	"github.com/NdoloMwende/Homehub-Backend/internal/utils"
)

type LeasesController struct {
	leaseService *services.LeaseService
	validate     *validator.Validate
}

func NewLeasesController(ls *services.LeaseService) *LeasesController {
	return &LeasesController{
		leaseService: ls,
		validate:     validator.New(),
	}
}

// POST /api/v1/leases/apply
func (c *LeasesController) ApplyHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, err := requireUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.ApplyForLeaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	lease, svcErr := c.leaseService.Apply(ctx, tenantID, req.PropertyID)
	if svcErr != nil {
		utils.Logger.WithError(svcErr).Error("Lease application failed")
		utils.HandleAppError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.NewLeaseResponse(lease))
}

// POST /api/v1/leases/{leaseID}/decision
func (c *LeasesController) DecideHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	landlordID, err := requireUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	leaseID, err := pathUUID(r, "leaseID")
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid lease id", nil, err)
		return
	}

	var req dtos.DecideLeaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	decision, err := services.ParseLeaseDecision(req.Decision)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	lease, svcErr := c.leaseService.Decide(ctx, leaseID, landlordID, decision)
	if svcErr != nil {
		utils.Logger.WithError(svcErr).Error("Lease decision failed")
		utils.HandleAppError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewLeaseResponse(lease))
}

// POST /api/v1/leases/{leaseID}/terminate
func (c *LeasesController) TerminateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, err := requireUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	leaseID, err := pathUUID(r, "leaseID")
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid lease id", nil, err)
		return
	}

	lease, svcErr := c.leaseService.Terminate(ctx, leaseID, actorID)
	if svcErr != nil {
		utils.Logger.WithError(svcErr).Error("Lease termination failed")
		utils.HandleAppError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewLeaseResponse(lease))
}

// GET /api/v1/leases
func (c *LeasesController) ListHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, err := requireUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	leases, svcErr := c.leaseService.List(ctx, actorID)
	if svcErr != nil {
		utils.Logger.WithError(svcErr).Error("Failed to list leases")
		utils.HandleAppError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewLeaseListResponse(leases))
}

/* ---------- shared controller helpers ---------- */

func requireUserID(r *http.Request) (uuid.UUID, error) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, &utils.AppError{
			StatusCode: http.StatusUnauthorized,
			Code:       utils.ErrCodeUnauthorized,
			Message:    "No userID in context",
		}
	}
	return id, nil
}

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)[key])
}

// respondValidationError converts validator errors into field-level details.
func respondValidationError(w http.ResponseWriter, err error) {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		utils.RespondWithJSON(w, http.StatusBadRequest, formatValidationErrors(validationErrs))
		return
	}
	utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", nil, err)
}

type validationErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func formatValidationErrors(errs validator.ValidationErrors) []validationErrorDetail {
	var details []validationErrorDetail
	for _, err := range errs {
		var message string
		switch err.Tag() {
		case "required":
			message = "Field '" + err.Field() + "' is required"
		case "email":
			message = "Field '" + err.Field() + "' must be a valid email address"
		case "min":
			message = "Field '" + err.Field() + "' must be at least " + err.Param() + " in length"
		case "gt":
			message = "Field '" + err.Field() + "' must be greater than " + err.Param()
		case "oneof":
			message = "Field '" + err.Field() + "' must be one of [" + err.Param() + "]"
		default:
			message = "Field validation for '" + err.Field() + "' failed on the '" + err.Tag() + "' tag"
		}
		details = append(details, validationErrorDetail{
			Field:   err.Field(),
			Message: message,
			Code:    "validation_" + err.Tag(),
		})
	}
	return details
}
