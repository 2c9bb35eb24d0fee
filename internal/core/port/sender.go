package port

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

type CommandPublisher interface {
	// BulkReplaceGuildCommands replaces every command of the application in a guild with the given set.
	BulkReplaceGuildCommands(ctx context.Context, guildID string, cmds []*discordgo.ApplicationCommand) error
	// UpsertGlobalCommand creates a global command or overwrites the existing one with the same name.
	UpsertGlobalCommand(ctx context.Context, cmd *discordgo.ApplicationCommand) error
}

type Moderator interface {
	// Ban bans a user from a guild, deleting deleteDays days of their messages.
	Ban(ctx context.Context, guildID, userID, reason string, deleteDays int) error
	// Unban lifts a ban.
	Unban(ctx context.Context, guildID, userID string) error
}
