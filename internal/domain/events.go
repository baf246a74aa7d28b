package domain

// Event type string constants shared between publishers and subscribers
const (
	EventTypeItemPurchased = "shop.item.purchased"
	EventTypeCaseOpened    = "shop.case.opened"
	EventTypeItemEquipped  = "shop.item.equipped"
	EventTypeItemUnequipped = "shop.item.unequipped"
	EventTypeItemDeleted   = "shop.item.deleted"
)

// Typed event payloads for type safety

// ItemPurchasedPayloadV1 is the typed payload for purchase events
type ItemPurchasedPayloadV1 struct {
	UserID     string `json:"user_id"`
	ItemID     int    `json:"item_id"`
	ItemName   string `json:"item_name"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int    `json:"unit_price"`
	TotalPrice int    `json:"total_price"`
	Timestamp  int64  `json:"timestamp"`
}

// CaseOpenedPayloadV1 is the typed payload for case open events
type CaseOpenedPayloadV1 struct {
	UserID       string `json:"user_id"`
	CaseItemID   int    `json:"case_item_id"`
	RollValue    int    `json:"roll_value"`
	PrizeItemID  int    `json:"prize_item_id"`
	AlreadyOwned bool   `json:"already_owned"`
	Timestamp    int64  `json:"timestamp"`
}

// ItemEquippedPayloadV1 is the typed payload for equip/unequip events
type ItemEquippedPayloadV1 struct {
	UserID    string `json:"user_id"`
	ItemID    int    `json:"item_id"`
	Category  string `json:"category"`
	Timestamp int64  `json:"timestamp"`
}

// ItemDeletedPayloadV1 is the typed payload for admin cascade deletions
type ItemDeletedPayloadV1 struct {
	ItemID           int   `json:"item_id"`
	InstancesRemoved int   `json:"instances_removed"`
	CreditsRefunded  int   `json:"credits_refunded"`
	UsersAffected    int   `json:"users_affected"`
	Timestamp        int64 `json:"timestamp"`
}
