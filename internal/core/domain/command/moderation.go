package command

import (
	"context"
	"fmt"
	"slashbot/internal/core/domain"
	"slashbot/internal/core/port"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

const maxChoices = 25

var banReasons = []string{
	"Spam",
	"Harassment",
	"Hate speech",
	"NSFW content",
	"Raiding",
	"Scam or phishing links",
	"Ban evasion",
}

// Moderation groups ban and unban under one command.
type Moderation struct {
	moderator port.Moderator
	command   string
}

func NewModeration(moderator port.Moderator, command string) *Moderation {
	return &Moderation{moderator: moderator, command: command}
}

func (m *Moderation) Describe() domain.Descriptor {
	return domain.Descriptor{
		Name:        m.command,
		Description: "Moderation tools",
		Permissions: domain.RequirePermissions(discordgo.PermissionBanMembers),
		Handlers: []domain.HandlerSpec{
			domain.Sub("ban", "Ban a user from this server", m.ban,
				domain.Context(),
				domain.Option("user", "User to ban", domain.OptionUser, true),
				domain.Option("reason", "Reason for the audit log", domain.OptionString, false).
					WithAutocomplete(suggestReasons),
				domain.Option("delete_days", "Days of messages to delete (0-7)", domain.OptionInteger, false),
			),
			domain.Sub("unban", "Lift a ban", m.unban,
				domain.Context(),
				domain.Option("user", "User to unban", domain.OptionUser, true),
			),
		},
	}
}

func (m *Moderation) ban(ctx context.Context, args domain.Arguments) error {
	ic := args.Context(0)
	target := args.User(1)
	reason := args.String(2)

	if ic.GuildID() == "" {
		return ic.ReplyEphemeral(ctx, "Bans only work inside a server.")
	}

	if target == nil {
		return fmt.Errorf("%w: missing user", domain.ErrInvalidOptionValue)
	}

	if caller := ic.User(); caller != nil && caller.ID == target.ID {
		return ic.ReplyEphemeral(ctx, "You cannot ban yourself.")
	}

	if self := ic.SelfUser(); self != nil && self.ID == target.ID {
		return ic.ReplyEphemeral(ctx, "I cannot ban myself.")
	}

	log.Info().
		Str("guild", ic.GuildID()).
		Str("target", target.ID).
		Str("reason", reason).
		Msg("ban requested")

	if err := m.moderator.Ban(ctx, ic.GuildID(), target.ID, reason, int(args.Int(3))); err != nil {
		return err
	}

	msg := fmt.Sprintf("Banned <@%s>.", target.ID)
	if reason != "" {
		msg = fmt.Sprintf("Banned <@%s>: %s", target.ID, reason)
	}

	return ic.Reply(ctx, msg)
}

func (m *Moderation) unban(ctx context.Context, args domain.Arguments) error {
	ic := args.Context(0)
	target := args.User(1)

	if ic.GuildID() == "" {
		return ic.ReplyEphemeral(ctx, "Unbans only work inside a server.")
	}

	if target == nil {
		return fmt.Errorf("%w: missing user", domain.ErrInvalidOptionValue)
	}

	if err := m.moderator.Unban(ctx, ic.GuildID(), target.ID); err != nil {
		return err
	}

	return ic.Reply(ctx, fmt.Sprintf("Unbanned <@%s>.", target.ID))
}

// suggestReasons offers the typed text followed by the canned reasons matching it.
func suggestReasons(_ context.Context, _ *domain.InteractionContext, typed string,
) ([]*discordgo.ApplicationCommandOptionChoice, error) {
	typed = strings.TrimSpace(typed)

	var choices []*discordgo.ApplicationCommandOptionChoice
	if typed != "" {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: typed, Value: typed})
	}

	for _, r := range banReasons {
		if len(choices) == maxChoices {
			break
		}

		if strings.EqualFold(r, typed) {
			continue
		}

		if strings.Contains(strings.ToLower(r), strings.ToLower(typed)) {
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: r, Value: r})
		}
	}

	return choices, nil
}
