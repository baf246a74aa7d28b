package equipment

// Log messages
const (
	LogMsgItemEquipped     = "Item equipped"
	LogMsgItemUnequipped   = "Item unequipped"
	LogMsgEquipRejected    = "Equip rejected"
	LogMsgBatchItemFailed  = "Batch equip item failed"
	LogMsgEventPublishFail = "Failed to publish equipment event"
)
