package handler

// Success messages returned to clients
const (
	MsgItemEquipped    = "Item equipped"
	MsgSlotCleared     = "Slot cleared"
	MsgBadgeUnequipped = "Badge unequipped"
	MsgBatchEquipped   = "Items equipped"
	MsgItemDeleted     = "Item deleted"
)
