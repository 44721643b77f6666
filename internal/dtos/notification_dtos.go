package dtos

import (
	"time"

	"github.com/google/uuid"

	"github.com/NdoloMwende/Homehub-Backend/internal/models"
)

type NotificationResponse struct {
	ID           uuid.UUID                       `json:"id"`
	Category     models.NotificationCategoryType `json:"category"`
	Message      string                          `json:"message"`
	IsRead       bool                            `json:"is_read"`
	DispatchedAt *time.Time                      `json:"dispatched_at,omitempty"`
	CreatedAt    time.Time                       `json:"created_at"`
}

func NewNotificationListResponse(notifications []*models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, NotificationResponse{
			ID:           n.ID,
			Category:     n.Category,
			Message:      n.Message,
			IsRead:       n.IsRead,
			DispatchedAt: n.DispatchedAt,
			CreatedAt:    n.CreatedAt,
		})
	}
	return out
}
