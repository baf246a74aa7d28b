package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Business metric names
const (
	MetricNamePurchasesTotal       = "shop_purchases_total"
	MetricNamePurchaseFailures     = "shop_purchase_failures_total"
	MetricNameCreditsSpent         = "shop_credits_spent_total"
	MetricNameCreditsRefunded      = "shop_credits_refunded_total"
	MetricNameCasesOpened          = "shop_cases_opened_total"
	MetricNameCaseDuplicates       = "shop_case_duplicate_prizes_total"
	MetricNameItemsEquipped        = "shop_items_equipped_total"
	MetricNameRoleSideEffects      = "shop_role_side_effects_total"
	MetricNameOutboxPendingEntries = "shop_outbox_pending_entries"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Business metric help text
const (
	HelpTextPurchasesTotal       = "Total number of successful purchases"
	HelpTextPurchaseFailures     = "Total number of rejected purchases by reason"
	HelpTextCreditsSpent         = "Total credits debited by purchases"
	HelpTextCreditsRefunded      = "Total credits refunded by cascade deletions"
	HelpTextCasesOpened          = "Total number of cases opened"
	HelpTextCaseDuplicates       = "Total case opens that resolved to an already-owned prize"
	HelpTextItemsEquipped        = "Total equip operations by category"
	HelpTextRoleSideEffects      = "Total external role grant/revoke deliveries by outcome"
	HelpTextOutboxPendingEntries = "Role side-effect outbox entries awaiting delivery"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod   = "method"
	LabelPath     = "path"
	LabelStatus   = "status"
	LabelItem     = "item"
	LabelReason   = "reason"
	LabelCategory = "category"
	LabelKind     = "kind"
	LabelOutcome  = "outcome"
)

// HTTPLatencyBuckets are tuned for an interactive shop API
var HTTPLatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}
