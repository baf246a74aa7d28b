package outbox

import "time"

// Defaults applied by NewDispatcher when Options fields are zero
const (
	DefaultInterval   = 5 * time.Second
	DefaultBatchSize  = 25
	DefaultMaxRetries = 5
	DefaultWorkers    = 2
	DefaultQueueSize  = 64
)

// Dispatch outcomes used as metric label values
const (
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
	OutcomeAbandoned = "abandoned"
)

// Log messages
const (
	LogMsgDispatcherStarted   = "Role outbox dispatcher started"
	LogMsgDispatcherStopped   = "Role outbox dispatcher stopped"
	LogMsgFetchFailed         = "Failed to fetch pending role changes"
	LogMsgDeliveryFailed      = "Role change delivery failed"
	LogMsgDeliveryAbandoned   = "Role change abandoned after max attempts"
	LogMsgHolderMissing       = "Role change abandoned, user no longer exists"
	LogMsgQueueFull           = "Delivery queue full, deferring role change to next tick"
	LogMsgMarkFailed          = "Failed to update role change status"
)
