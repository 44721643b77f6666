package outbox

import (
	"context"
	"time"

	"github.com/NdoloMwende/Homehub-Backend/internal/constants"
	"github.com/NdoloMwende/Homehub-Backend/internal/messaging"
	"github.com/NdoloMwende/Homehub-Backend/internal/repositories"
	"github.com/NdoloMwende/Homehub-Backend/internal/utils"
)

// Relay drains the notification outbox: it locks undispatched intents with
// SKIP LOCKED, publishes them, and stamps dispatched_at in the same
// transaction. Delivery is at-least-once; a crash after publish but before
// commit re-sends the intent on the next pass.
type Relay struct {
	store     repositories.Store
	publisher messaging.IntentPublisher
}

func NewRelay(store repositories.Store, publisher messaging.IntentPublisher) *Relay {
	return &Relay{store: store, publisher: publisher}
}

// Start runs the polling loop until the context is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	utils.Logger.Infof("Outbox relay started, polling every %v", constants.RelayPollInterval)

	ticker := time.NewTicker(constants.RelayPollInterval)
	defer ticker.Stop()

	// Drain the backlog first so a restart does not wait a full interval.
	if _, err := r.DrainOnce(ctx); err != nil {
		utils.Logger.WithError(err).Error("Outbox relay startup drain failed")
	}

	for {
		select {
		case <-ctx.Done():
			utils.Logger.Info("Outbox relay shutting down")
			return ctx.Err()
		case <-ticker.C:
			if n, err := r.DrainOnce(ctx); err != nil {
				utils.Logger.WithError(err).Error("Outbox relay pass failed")
			} else if n > 0 {
				utils.Logger.Infof("Outbox relay dispatched %d intents", n)
			}
		}
	}
}

// DrainOnce processes a single batch and reports how many intents went out.
func (r *Relay) DrainOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RelayPublishTimeout)
	defer cancel()

	dispatched := 0
	err := r.store.WithTx(ctx, func(repos repositories.Repos) error {
		pending, err := repos.Notifications.ListUndispatchedForUpdate(ctx, constants.RelayBatchSize)
		if err != nil {
			return err
		}

		for _, intent := range pending {
			if err := r.publisher.PublishIntent(ctx, intent); err != nil {
				// Leave the row untouched; the next pass retries it.
				utils.Logger.WithError(err).Warnf("Failed to publish intent %s", intent.ID)
				continue
			}
			if err := repos.Notifications.MarkDispatched(ctx, intent.ID); err != nil {
				return err
			}
			dispatched++
		}
		return nil
	})
	return dispatched, err
}
