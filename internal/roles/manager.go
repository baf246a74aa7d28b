// Package roles is the external role collaborator. Grants and revokes are
// best-effort by contract: callers must never let a role call decide the
// outcome of a business transaction.
package roles

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/emberhold/GuildShop_Go/internal/logger"
)

// Manager grants and revokes external roles
type Manager interface {
	GrantRole(ctx context.Context, discordID, roleID string) error
	RevokeRole(ctx context.Context, discordID, roleID string) error
}

// Log messages
const (
	LogMsgRoleGranted = "External role granted"
	LogMsgRoleRevoked = "External role revoked"
)

type discordManager struct {
	session *discordgo.Session
	guildID string
}

// NewDiscordManager creates a role manager backed by a Discord guild
func NewDiscordManager(session *discordgo.Session, guildID string) Manager {
	return &discordManager{session: session, guildID: guildID}
}

func (m *discordManager) GrantRole(ctx context.Context, discordID, roleID string) error {
	if err := m.session.GuildMemberRoleAdd(m.guildID, discordID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to grant role %s to %s: %w", roleID, discordID, err)
	}
	logger.FromContext(ctx).Debug(LogMsgRoleGranted, "discord_id", discordID, "role_id", roleID)
	return nil
}

func (m *discordManager) RevokeRole(ctx context.Context, discordID, roleID string) error {
	if err := m.session.GuildMemberRoleRemove(m.guildID, discordID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to revoke role %s from %s: %w", roleID, discordID, err)
	}
	logger.FromContext(ctx).Debug(LogMsgRoleRevoked, "discord_id", discordID, "role_id", roleID)
	return nil
}
