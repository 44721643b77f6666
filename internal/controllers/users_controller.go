package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/NdoloMwende/Homehub-Backend/internal/dtos"
	"github.com/NdoloMwende/Homehub-Backend/internal/services"
	"github.com/NdoloMwende/Homehub-Backend/internal/utils"
)

type UsersController struct {
	userService *services.UserService
	validate    *validator.Validate
}

func NewUsersController(us *services.UserService) *UsersController {
	return &UsersController{
		userService: us,
		validate:    validator.New(),
	}
}

// POST /api/v1/users/register
func (c *UsersController) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dtos.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user, svcErr := c.userService.Register(ctx, req.FullName, req.Email, req.Phone, req.Role)
	if svcErr != nil {
		utils.Logger.WithError(svcErr).Error("User registration failed")
		utils.HandleAppError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.NewUserResponse(user))
}

// POST /api/v1/users/{userID}/verify
func (c *UsersController) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, err := requireUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	userID, err := pathUUID(r, "userID")
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid user id", nil, err)
		return
	}

	var req dtos.VerifyUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if svcErr := c.userService.Verify(ctx, userID, req.Status, actorID); svcErr != nil {
		utils.Logger.WithError(svcErr).Error("User verification failed")
		utils.HandleAppError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "User status updated"})
}

// GET /api/v1/users
func (c *UsersController) ListHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, err := requireUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	users, svcErr := c.userService.List(ctx, actorID)
	if svcErr != nil {
		utils.Logger.WithError(svcErr).Error("Failed to list users")
		utils.HandleAppError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewUserListResponse(users))
}
