package handler

import (
	"context"
	"slashbot/internal/core/domain"
	"slashbot/internal/core/port"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options tune how the dispatcher answers on the user's behalf.
type Options struct {
	// Timeout bounds a single handler invocation. Zero means no limit.
	Timeout time.Duration
	// AutoDefer acknowledges interactions whose handler returned without responding.
	AutoDefer bool
	// UnknownReply is sent ephemerally for unregistered commands. Empty keeps them silent.
	UnknownReply string
	// FailureReply is sent ephemerally when a handler fails. Empty keeps failures silent.
	FailureReply string
}

type Command struct {
	commandRegistry port.CommandRegistry
	responder       domain.Responder
	opts            Options
}

func NewCommand(commandRegistry port.CommandRegistry, responder domain.Responder, opts Options) *Command {
	return &Command{commandRegistry: commandRegistry, responder: responder, opts: opts}
}

// Handle is registered with the session as an InteractionCreate handler. It never panics and
// never returns an error to the event loop.
func (c *Command) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i == nil || i.Interaction == nil {
		return
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		c.dispatch(s, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		c.autocomplete(s, i)
	default:
		log.Debug().Stringer("type", i.Type).Msg("ignoring interaction")
	}
}

func (c *Command) dispatch(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data, ok := i.Data.(discordgo.ApplicationCommandInteractionData)
	if !ok {
		log.Warn().Str("interaction", i.ID).Msg("application command without command data")
		return
	}

	logger := log.With().
		Str("dispatchId", newDispatchID()).
		Str("command", data.Name).
		Str("guild", i.GuildID).
		Logger()

	d, found := c.commandRegistry.Find(data.Name)
	if !found {
		logger.Debug().Msg("no handler for command")
		c.replyUnknown(s, i)
		return
	}

	subName, opts := splitSubcommand(data.Options)
	logger = logger.With().Str("subcommand", subName).Logger()

	values, err := domain.ExtractOptions(opts, data.Resolved)
	ic := domain.NewInteractionContext(s, i, c.responder, subName, values)
	if err != nil {
		logger.Error().Err(err).Str("errorKind", "options").Msg("failed to extract command options")
		c.replyFailure(ic, logger)
		return
	}

	h, ok := d.Resolve(subName)
	if !ok {
		logger.Debug().Msg("no handler for sub-command")
		c.replyUnknown(s, i)
		return
	}

	ctx, cancel := c.newContext()
	defer cancel()

	start := time.Now()
	err = invoke(ctx, h, ic)
	logger = logger.With().Dur("took", time.Since(start)).Logger()

	if err != nil {
		withStack(logger.Error(), err).Err(err).Str("errorKind", errorKind(ctx, err)).Msg("command failed")
		c.replyFailure(ic, logger)
		return
	}

	logger.Debug().Msg("command handled")

	if c.opts.AutoDefer && !ic.Acknowledged() {
		if err := ic.Defer(context.Background(), false); err != nil {
			logger.Warn().Err(err).Msg("failed to defer reply")
		}
	}
}

func (c *Command) autocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data, ok := i.Data.(discordgo.ApplicationCommandInteractionData)
	if !ok {
		return
	}

	logger := log.With().Str("command", data.Name).Logger()

	d, found := c.commandRegistry.Find(data.Name)
	if !found {
		logger.Debug().Msg("autocomplete for unknown command")
		return
	}

	subName, opts := splitSubcommand(data.Options)
	focused := focusedOption(opts)
	if focused == nil {
		return
	}

	h, ok := d.Resolve(subName)
	if !ok {
		return
	}

	ic := domain.NewInteractionContext(s, i, c.responder, subName, nil)
	typed, _ := focused.Value.(string)

	ctx, cancel := c.newContext()
	defer cancel()

	choices := []*discordgo.ApplicationCommandOptionChoice{}

	if p, ok := findParam(h, focused.Name); ok && p.Autocomplete != nil {
		suggested, err := suggest(ctx, p.Autocomplete, ic, typed)
		if err != nil {
			withStack(logger.Warn(), err).Err(err).Str("option", p.Name).Msg("autocomplete failed")
		} else {
			choices = append(choices, suggested...)
		}
	}

	err := ic.Respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to send autocomplete choices")
	}
}

func (c *Command) newContext() (context.Context, context.CancelFunc) {
	if c.opts.Timeout > 0 {
		return context.WithTimeout(context.Background(), c.opts.Timeout)
	}

	return context.WithCancel(context.Background())
}

func (c *Command) replyUnknown(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if c.opts.UnknownReply == "" {
		return
	}

	ic := domain.NewInteractionContext(s, i, c.responder, "", nil)
	if err := ic.ReplyEphemeral(context.Background(), c.opts.UnknownReply); err != nil {
		log.Warn().Err(err).Msg("failed to reply to unknown command")
	}
}

func (c *Command) replyFailure(ic *domain.InteractionContext, logger zerolog.Logger) {
	if c.opts.FailureReply == "" {
		return
	}

	var err error
	if ic.Acknowledged() {
		err = ic.Followup(context.Background(), c.opts.FailureReply, true)
	} else {
		err = ic.ReplyEphemeral(context.Background(), c.opts.FailureReply)
	}

	if err != nil {
		logger.Warn().Err(err).Msg("failed to send failure reply")
	}
}

// invoke runs the handler and turns a panic into an error.
func invoke(ctx context.Context, h domain.HandlerSpec, ic *domain.InteractionContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
	}()

	return h.Run(ctx, h.Bind(ic, ic.Options()))
}

func suggest(ctx context.Context, fn domain.AutocompleteFunc, ic *domain.InteractionContext,
	typed string,
) (choices []*discordgo.ApplicationCommandOptionChoice, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
	}()

	return fn(ctx, ic, typed)
}

// splitSubcommand separates a leading sub-command option from the options it carries.
func splitSubcommand(opts []*discordgo.ApplicationCommandInteractionDataOption,
) (string, []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(opts) > 0 && opts[0] != nil && opts[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		return opts[0].Name, opts[0].Options
	}

	return "", opts
}

func findParam(h domain.HandlerSpec, name string) (domain.ParameterSpec, bool) {
	for _, p := range h.Options() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}

	return domain.ParameterSpec{}, false
}

func focusedOption(opts []*discordgo.ApplicationCommandInteractionDataOption,
) *discordgo.ApplicationCommandInteractionDataOption {
	for _, o := range opts {
		if o != nil && o.Focused {
			return o
		}
	}

	return nil
}

func newDispatchID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return ""
	}

	return id.String()
}
