package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/emberhold/GuildShop_Go/internal/domain"
)

// StatisticalHash derives the tamper-evidencing hash for a roll record.
// The hash binds the roll inputs and outcome together so that a mutated
// audit row no longer matches its own hash. The timestamp is included at
// nanosecond precision to keep identical rolls distinguishable.
func StatisticalHash(record *domain.RollAuditRecord) string {
	canonical := fmt.Sprintf("%s|%d|%d|%d|%d|%t|%d",
		record.UserID,
		record.CaseItemID,
		record.RollValue,
		record.PrizeItemID,
		record.DropRate,
		record.AlreadyOwned,
		record.RolledAt.UnixNano(),
	)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
