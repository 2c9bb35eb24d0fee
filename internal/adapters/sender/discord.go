package sender

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const maxBanDeleteDays = 7

// DiscordSession is the part of *discordgo.Session the sender calls.
type DiscordSession interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand,
		options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	ApplicationCommandCreate(appID string, guildID string, cmd *discordgo.ApplicationCommand,
		options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse,
		options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams,
		options ...discordgo.RequestOption) (*discordgo.Message, error)
	GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error
	GuildBanDelete(guildID, userID string, options ...discordgo.RequestOption) error
}

// DiscordSender talks to the Discord REST API on behalf of the bot. Command submissions run in
// the background; Wait blocks until they are done.
type DiscordSender struct {
	session DiscordSession
	appID   string
	group   *errgroup.Group
}

func NewDiscordSender(session DiscordSession, appID string, concurrency int) *DiscordSender {
	group := &errgroup.Group{}
	if concurrency > 0 {
		group.SetLimit(concurrency)
	}

	return &DiscordSender{session: session, appID: appID, group: group}
}

func (s *DiscordSender) BulkReplaceGuildCommands(ctx context.Context, guildID string,
	cmds []*discordgo.ApplicationCommand,
) error {
	if cmds == nil {
		cmds = []*discordgo.ApplicationCommand{}
	}

	s.group.Go(func() error {
		created, err := s.session.ApplicationCommandBulkOverwrite(s.appID, guildID, cmds, discordgo.WithContext(ctx))
		if err != nil {
			log.Err(err).Str("guild", guildID).Msg("failed to replace guild commands")
			return fmt.Errorf("replacing commands of guild %s: %w", guildID, err)
		}

		log.Info().Str("guild", guildID).Int("commands", len(created)).Msg("guild commands replaced")

		return nil
	})

	return nil
}

func (s *DiscordSender) UpsertGlobalCommand(ctx context.Context, cmd *discordgo.ApplicationCommand) error {
	s.group.Go(func() error {
		created, err := s.session.ApplicationCommandCreate(s.appID, "", cmd, discordgo.WithContext(ctx))
		if err != nil {
			log.Err(err).Str("command", cmd.Name).Msg("failed to upsert global command")
			return fmt.Errorf("upserting global command %s: %w", cmd.Name, err)
		}

		log.Info().Str("command", created.Name).Str("id", created.ID).Msg("global command upserted")

		return nil
	})

	return nil
}

// Wait returns once all queued submissions finished, with the first submission error.
func (s *DiscordSender) Wait() error {
	return s.group.Wait()
}

func (s *DiscordSender) Respond(ctx context.Context, interaction *discordgo.Interaction,
	resp *discordgo.InteractionResponse,
) error {
	err := s.session.InteractionRespond(interaction, resp, discordgo.WithContext(ctx))
	if err != nil {
		log.Error().Err(err).Str("interaction", interaction.ID).Msg("failed to respond to interaction")
		return err
	}

	return nil
}

func (s *DiscordSender) Followup(ctx context.Context, interaction *discordgo.Interaction,
	params *discordgo.WebhookParams,
) error {
	_, err := s.session.FollowupMessageCreate(interaction, true, params, discordgo.WithContext(ctx))
	if err != nil {
		log.Error().Err(err).Str("interaction", interaction.ID).Msg("failed to send followup")
		return err
	}

	return nil
}

func (s *DiscordSender) Ban(ctx context.Context, guildID, userID, reason string, deleteDays int) error {
	deleteDays = max(0, min(deleteDays, maxBanDeleteDays))

	log.Info().Str("guild", guildID).Str("user", userID).Int("deleteDays", deleteDays).Msg("banning user")

	err := s.session.GuildBanCreateWithReason(guildID, userID, reason, deleteDays, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("banning %s: %w", userID, err)
	}

	return nil
}

func (s *DiscordSender) Unban(ctx context.Context, guildID, userID string) error {
	log.Info().Str("guild", guildID).Str("user", userID).Msg("unbanning user")

	err := s.session.GuildBanDelete(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("unbanning %s: %w", userID, err)
	}

	return nil
}
