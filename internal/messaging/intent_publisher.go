package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/NdoloMwende/Homehub-Backend/internal/models"
)

// IntentPublisher is the hand-off boundary for notification intents. The
// outbox relay is the only caller.
type IntentPublisher interface {
	PublishIntent(ctx context.Context, n *models.Notification) error
}

// NotificationIntentEvent is the wire shape consumed by the delivery worker.
type NotificationIntentEvent struct {
	ID              uuid.UUID `json:"id"`
	RecipientUserID uuid.UUID `json:"recipient_user_id"`
	Category        string    `json:"category"`
	Message         string    `json:"message"`
	CreatedAt       time.Time `json:"created_at"`
}

func (rmq *RabbitMQBroker) PublishIntent(ctx context.Context, n *models.Notification) error {
	body, err := json.Marshal(NotificationIntentEvent{
		ID:              n.ID,
		RecipientUserID: n.RecipientUserID,
		Category:        string(n.Category),
		Message:         n.Message,
		CreatedAt:       n.CreatedAt,
	})
	if err != nil {
		return err
	}

	if deadline, ok := ctx.Deadline(); ok {
		if time.Until(deadline) <= 0 {
			return ctx.Err()
		}
	}

	_, err = rmq.cb.Execute(func() (interface{}, error) {
		err := rmq.ch.PublishWithContext(
			ctx,
			"",            // exchange (default)
			rmq.queueName, // routing key == queue name
			false,         // mandatory
			false,         // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
			},
		)
		return nil, err
	})
	return err
}
