package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/NdoloMwende/Homehub-Backend/internal/models"
	"github.com/NdoloMwende/Homehub-Backend/internal/repositories"
)

// emitIntent writes a notification intent inside the caller's transaction.
// The outbox relay hands it to the external emitter after commit, so a crash
// between the state change and the hand-off never loses or fabricates a
// message.
func emitIntent(
	ctx context.Context,
	r repositories.Repos,
	recipient uuid.UUID,
	category models.NotificationCategoryType,
	message string,
) error {
	return r.Notifications.Create(ctx, &models.Notification{
		ID:              uuid.New(),
		RecipientUserID: recipient,
		Message:         message,
		Category:        category,
		CreatedAt:       time.Now(),
	})
}
