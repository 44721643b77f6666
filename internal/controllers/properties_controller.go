package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/NdoloMwende/Homehub-Backend/internal/dtos"
	"github.com/NdoloMwende/Homehub-Backend/internal/services"
	"github.com/NdoloMwende/Homehub-Backend/internal/utils"
)

type PropertiesController struct {
	propertyService *services.PropertyService
	validate        *validator.Validate
}

func NewPropertiesController(ps *services.PropertyService) *PropertiesController {
	return &PropertiesController{
		propertyService: ps,
		validate:        validator.New(),
	}
}

// POST /api/v1/properties
func (c *PropertiesController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	landlordID, err := requireUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.CreatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	property, svcErr := c.propertyService.Create(ctx, landlordID, req.Name, req.Address, req.City, req.Price)
	if svcErr != nil {
		utils.Logger.WithError(svcErr).Error("Property creation failed")
		utils.HandleAppError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.NewPropertyResponse(property))
}

// POST /api/v1/properties/{propertyID}/review
func (c *PropertiesController) ReviewHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, err := requireUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	propertyID, err := pathUUID(r, "propertyID")
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid property id", nil, err)
		return
	}

	var req dtos.ReviewPropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if svcErr := c.propertyService.Review(ctx, propertyID, req.Decision == "APPROVE", actorID); svcErr != nil {
		utils.Logger.WithError(svcErr).Error("Property review failed")
		utils.HandleAppError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Property reviewed"})
}

// GET /api/v1/properties
func (c *PropertiesController) ListHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, err := requireUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	properties, svcErr := c.propertyService.ListForActor(ctx, actorID)
	if svcErr != nil {
		utils.Logger.WithError(svcErr).Error("Failed to list properties")
		utils.HandleAppError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewPropertyListResponse(properties))
}

// POST /api/v1/properties/{propertyID}/units
func (c *PropertiesController) AddUnitHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, err := requireUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	propertyID, err := pathUUID(r, "propertyID")
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid property id", nil, err)
		return
	}

	var req dtos.AddUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	unit, svcErr := c.propertyService.AddUnit(ctx, propertyID, req.UnitNumber, req.RentAmount, actorID)
	if svcErr != nil {
		utils.Logger.WithError(svcErr).Error("Unit creation failed")
		utils.HandleAppError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.NewUnitResponse(unit))
}

// GET /api/v1/properties/{propertyID}/units
func (c *PropertiesController) ListUnitsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := requireUserID(r); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	propertyID, err := pathUUID(r, "propertyID")
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid property id", nil, err)
		return
	}

	units, svcErr := c.propertyService.ListUnits(ctx, propertyID)
	if svcErr != nil {
		utils.Logger.WithError(svcErr).Error("Failed to list units")
		utils.HandleAppError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewUnitListResponse(units))
}

// PATCH /api/v1/units/{unitID}
func (c *PropertiesController) UpdateUnitHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, err := requireUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	unitID, err := pathUUID(r, "unitID")
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid unit id", nil, err)
		return
	}

	var req dtos.UpdateUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	var unitNumber string
	if req.UnitNumber != nil {
		unitNumber = *req.UnitNumber
	}
	var rentAmount float64
	if req.RentAmount != nil {
		rentAmount = *req.RentAmount
	}

	if svcErr := c.propertyService.UpdateUnit(ctx, unitID, unitNumber, rentAmount, actorID); svcErr != nil {
		utils.Logger.WithError(svcErr).Error("Unit update failed")
		utils.HandleAppError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Unit updated"})
}

// POST /api/v1/units/{unitID}/maintenance
func (c *PropertiesController) SetUnitMaintenanceHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, err := requireUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	unitID, err := pathUUID(r, "unitID")
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid unit id", nil, err)
		return
	}

	var req dtos.SetUnitMaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}

	if svcErr := c.propertyService.SetUnitMaintenance(ctx, unitID, req.UnderMaintenance, actorID); svcErr != nil {
		utils.Logger.WithError(svcErr).Error("Unit maintenance toggle failed")
		utils.HandleAppError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Unit maintenance updated"})
}
