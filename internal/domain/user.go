package domain

import "github.com/google/uuid"

// User is a registered shop user. Credits is the spendable balance and is
// never allowed to go negative. Equipped slots hold catalog item ids; the
// badge slot is a distinguished single slot (exactly one active badge).
type User struct {
	ID         uuid.UUID `json:"user_id"`
	DiscordID  string    `json:"discord_id"`
	Username   string    `json:"username"`
	Credits    int       `json:"credits"`
	Experience int       `json:"experience"`
	Roles      []string  `json:"roles"`

	EquippedColorID *int `json:"equipped_color_id,omitempty"`
	EquippedRodID   *int `json:"equipped_rod_id,omitempty"`
	EquippedBadgeID *int `json:"equipped_badge_id,omitempty"`
}

// HasRole reports whether the user carries the named role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
