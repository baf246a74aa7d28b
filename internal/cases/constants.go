package cases

import "github.com/emberhold/GuildShop_Go/internal/domain"

// Compensation awarded instead of a second unit when a case resolves to a
// non-stackable prize the user already owns. Monotone in rarity.
type Compensation struct {
	Credits    int `json:"credits"`
	Experience int `json:"experience"`
}

var compensationByRarity = map[domain.Rarity]Compensation{
	domain.RarityCommon:    {Credits: 50, Experience: 10},
	domain.RarityUncommon:  {Credits: 100, Experience: 20},
	domain.RarityRare:      {Credits: 200, Experience: 40},
	domain.RarityEpic:      {Credits: 350, Experience: 70},
	domain.RarityLegendary: {Credits: 500, Experience: 100},
}

// CompensationFor returns the duplicate compensation for a rarity tier.
// Unknown tiers compensate at the Common rate rather than zero so a new
// rarity added to the catalog can never silently pay nothing.
func CompensationFor(rarity domain.Rarity) Compensation {
	if comp, ok := compensationByRarity[rarity]; ok {
		return comp
	}
	return compensationByRarity[domain.RarityCommon]
}

// Log messages
const (
	LogMsgCaseOpenStarted    = "Case open started"
	LogMsgCaseOpenCompleted  = "Case open completed"
	LogMsgCaseOpenRejected   = "Case open rejected"
	LogMsgPrizeSoldOut       = "Prize sold out, awarding compensation instead"
	LogMsgEventPublishFail   = "Failed to publish case opened event"
)
