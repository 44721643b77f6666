package controllers

import (
	"net/http"

	"github.com/NdoloMwende/Homehub-Backend/internal/dtos"
	"github.com/NdoloMwende/Homehub-Backend/internal/services"
	"github.com/NdoloMwende/Homehub-Backend/internal/utils"
)

type NotificationsController struct {
	notificationService *services.NotificationService
}

func NewNotificationsController(ns *services.NotificationService) *NotificationsController {
	return &NotificationsController{notificationService: ns}
}

// GET /api/v1/notifications
func (c *NotificationsController) ListHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, err := requireUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	notifications, svcErr := c.notificationService.ListForRecipient(ctx, actorID)
	if svcErr != nil {
		utils.Logger.WithError(svcErr).Error("Failed to list notifications")
		utils.HandleAppError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewNotificationListResponse(notifications))
}

// POST /api/v1/notifications/{notificationID}/read
func (c *NotificationsController) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, err := requireUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	notificationID, err := pathUUID(r, "notificationID")
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid notification id", nil, err)
		return
	}

	if svcErr := c.notificationService.MarkRead(ctx, notificationID, actorID); svcErr != nil {
		utils.Logger.WithError(svcErr).Error("Failed to mark notification read")
		utils.HandleAppError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Notification marked read"})
}
