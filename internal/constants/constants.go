package constants

import "time"

const (
	// Fixed-term policy: approving an application starts a 365-day lease.
	LeaseTermDays = 365

	// Unit number given to an auto-provisioned unit on a property that has
	// none yet.
	DefaultUnitNumber = "1"

	// Notification feed page size.
	NotificationListLimit = 20

	// Outbox relay tuning.
	RelayBatchSize      = 100
	RelayPollInterval   = 15 * time.Second
	RelayPublishTimeout = 10 * time.Second

	// Durable queue the delivery worker consumes from.
	NotificationQueueName = "notification_intents"
)
