package admin

// Log messages
const (
	LogMsgItemDeleted        = "Catalog item deleted"
	LogMsgDeleteRejected     = "Item deletion rejected"
	LogMsgDropWeightsInvalid = "Prize removed from drop tables; remaining weights may no longer sum to 100"
	LogMsgEventPublishFail   = "Failed to publish item deleted event"
)
