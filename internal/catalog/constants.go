package catalog

import "time"

// Daily selection cache sizing
const (
	DailyCacheSize = 4096
	DailyCacheTTL  = 30 * time.Minute
)

// Log messages
const (
	LogMsgItemNotInLayout = "Item not in user's current shop layout"
)
