package audit

// Log messages
const (
	LogMsgPurchaseAuditFailed = "failed to record purchase audit entry"
	LogMsgRollAuditFailed     = "failed to record roll audit entry"
)
