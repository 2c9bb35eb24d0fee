package domain

import (
	"context"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
)

// Responder delivers interaction responses to the platform.
type Responder interface {
	Respond(ctx context.Context, interaction *discordgo.Interaction, resp *discordgo.InteractionResponse) error
	Followup(ctx context.Context, interaction *discordgo.Interaction, params *discordgo.WebhookParams) error
}

// InteractionContext is a read-only view of one interaction event plus the means to answer it.
// It lives for a single dispatch.
type InteractionContext struct {
	session   *discordgo.Session
	event     *discordgo.InteractionCreate
	responder Responder
	subName   string
	options   OptionValues
	acked     atomic.Bool
}

func NewInteractionContext(s *discordgo.Session, event *discordgo.InteractionCreate, responder Responder,
	subName string, options OptionValues,
) *InteractionContext {
	if options == nil {
		options = OptionValues{}
	}

	return &InteractionContext{
		session:   s,
		event:     event,
		responder: responder,
		subName:   subName,
		options:   options,
	}
}

func (c *InteractionContext) Session() *discordgo.Session {
	return c.session
}

func (c *InteractionContext) Event() *discordgo.InteractionCreate {
	return c.event
}

func (c *InteractionContext) Interaction() *discordgo.Interaction {
	if c.event == nil {
		return nil
	}

	return c.event.Interaction
}

// Name is the invoked command name.
func (c *InteractionContext) Name() string {
	i := c.Interaction()
	if i == nil {
		return ""
	}

	data, ok := i.Data.(discordgo.ApplicationCommandInteractionData)
	if !ok {
		return ""
	}

	return data.Name
}

func (c *InteractionContext) SubcommandName() string {
	return c.subName
}

func (c *InteractionContext) Options() OptionValues {
	return c.options
}

// Option looks up a supplied option by name, ignoring case.
func (c *InteractionContext) Option(name string) (any, bool) {
	v := c.options.Lookup(name)
	return v, v != nil
}

func (c *InteractionContext) GuildID() string {
	if i := c.Interaction(); i != nil {
		return i.GuildID
	}

	return ""
}

func (c *InteractionContext) ChannelID() string {
	if i := c.Interaction(); i != nil {
		return i.ChannelID
	}

	return ""
}

func (c *InteractionContext) state() *discordgo.State {
	if c.session == nil {
		return nil
	}

	return c.session.State
}

// Guild returns the cached guild, an ID-only guild when the cache misses, or nil in DMs.
func (c *InteractionContext) Guild() *discordgo.Guild {
	id := c.GuildID()
	if id == "" {
		return nil
	}

	if st := c.state(); st != nil {
		if g, err := st.Guild(id); err == nil {
			return g
		}
	}

	return &discordgo.Guild{ID: id}
}

// Channel returns the cached channel or an ID-only channel.
func (c *InteractionContext) Channel() *discordgo.Channel {
	id := c.ChannelID()
	if id == "" {
		return nil
	}

	if st := c.state(); st != nil {
		if ch, err := st.Channel(id); err == nil {
			return ch
		}
	}

	return &discordgo.Channel{ID: id}
}

// TextChannel returns the channel only when it is a cached guild text channel.
func (c *InteractionContext) TextChannel() *discordgo.Channel {
	st := c.state()
	if st == nil || c.ChannelID() == "" {
		return nil
	}

	ch, err := st.Channel(c.ChannelID())
	if err != nil || ch.Type != discordgo.ChannelTypeGuildText {
		return nil
	}

	return ch
}

// User is the invoking user, taken from the member in guilds.
func (c *InteractionContext) User() *discordgo.User {
	i := c.Interaction()
	if i == nil {
		return nil
	}

	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}

	return i.User
}

// Member is nil outside guilds.
func (c *InteractionContext) Member() *discordgo.Member {
	if i := c.Interaction(); i != nil {
		return i.Member
	}

	return nil
}

func (c *InteractionContext) ShardID() int {
	if c.session == nil {
		return 0
	}

	return c.session.ShardID
}

func (c *InteractionContext) ShardCount() int {
	if c.session == nil {
		return 0
	}

	return c.session.ShardCount
}

func (c *InteractionContext) SelfUser() *discordgo.User {
	if st := c.state(); st != nil {
		return st.User
	}

	return nil
}

func (c *InteractionContext) SelfMember() *discordgo.Member {
	st := c.state()
	self := c.SelfUser()
	if st == nil || self == nil || c.GuildID() == "" {
		return nil
	}

	m, err := st.Member(c.GuildID(), self.ID)
	if err != nil {
		return nil
	}

	return m
}

// Acknowledged reports whether a response was already sent for this interaction.
func (c *InteractionContext) Acknowledged() bool {
	return c.acked.Load()
}

// Respond sends the initial response. An interaction can be answered only once.
func (c *InteractionContext) Respond(ctx context.Context, resp *discordgo.InteractionResponse) error {
	if c.acked.Swap(true) {
		return ErrAlreadyAcknowledged
	}

	if err := c.responder.Respond(ctx, c.Interaction(), resp); err != nil {
		c.acked.Store(false)
		return err
	}

	return nil
}

func (c *InteractionContext) Reply(ctx context.Context, content string) error {
	return c.Respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
}

func (c *InteractionContext) ReplyEphemeral(ctx context.Context, content string) error {
	return c.Respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// Defer acknowledges the interaction; the answer follows later via Followup.
func (c *InteractionContext) Defer(ctx context.Context, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	return c.Respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	})
}

func (c *InteractionContext) Followup(ctx context.Context, content string, ephemeral bool) error {
	params := &discordgo.WebhookParams{Content: content}
	if ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}

	return c.responder.Followup(ctx, c.Interaction(), params)
}
