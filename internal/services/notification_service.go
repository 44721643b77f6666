package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/NdoloMwende/Homehub-Backend/internal/constants"
	"github.com/NdoloMwende/Homehub-Backend/internal/models"
	"github.com/NdoloMwende/Homehub-Backend/internal/repositories"
	"github.com/NdoloMwende/Homehub-Backend/internal/utils"
)

// NotificationService is the read side of the notification outbox: users
// list and acknowledge their own intents. Writing intents happens inside the
// workflow transactions, never here.
type NotificationService struct {
	store repositories.Store
}

func NewNotificationService(store repositories.Store) *NotificationService {
	return &NotificationService{store: store}
}

func (s *NotificationService) ListForRecipient(ctx context.Context, recipientID uuid.UUID) ([]*models.Notification, error) {
	return s.store.Repos().Notifications.ListByRecipient(ctx, recipientID, constants.NotificationListLimit)
}

func (s *NotificationService) MarkRead(ctx context.Context, notificationID, actorID uuid.UUID) error {
	err := s.store.Repos().Notifications.MarkRead(ctx, notificationID, actorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("notification %s: %w", notificationID, utils.ErrNotFound)
	}
	return err
}
