package shop

// Log messages
const (
	LogMsgPurchaseStarted   = "Purchase started"
	LogMsgPurchaseCompleted = "Purchase completed"
	LogMsgPurchaseRejected  = "Purchase rejected"
	LogMsgEventPublishFail  = "Failed to publish purchase event"
)

// Purchase failure reason labels. Kept short and enumerable so the
// failure counter stays low-cardinality.
const (
	ReasonInvalidQuantity     = "invalid_quantity"
	ReasonUserNotFound        = "user_not_found"
	ReasonItemNotFound        = "item_not_found"
	ReasonNotPurchasable      = "not_purchasable"
	ReasonInsufficientCredits = "insufficient_credits"
	ReasonRoleRequirement     = "role_requirement"
	ReasonInsufficientStock   = "insufficient_stock"
	ReasonAlreadyOwned        = "already_owned"
	ReasonInternal            = "internal"
)
