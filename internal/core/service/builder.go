package service

import (
	"context"
	"fmt"
	"regexp"
	"slashbot/internal/core/domain"
	"slashbot/internal/core/port"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
)

const (
	maxDescriptionLength = 100
	maxOptions           = 25
)

var namePattern = regexp.MustCompile(`^[-_\p{L}\p{N}]{1,32}$`)

// Plan is the set of payloads to submit, split by registration scope.
type Plan struct {
	Guild  []*discordgo.ApplicationCommand
	Global []*discordgo.ApplicationCommand
}

type Builder struct {
	registry  port.CommandRegistry
	publisher port.CommandPublisher
}

func NewBuilder(registry port.CommandRegistry, publisher port.CommandPublisher) *Builder {
	return &Builder{
		registry:  registry,
		publisher: publisher,
	}
}

// Initialize builds every registered command and submits it. The guild batch replaces all
// commands of the target guild at once; global commands are upserted one by one.
func (b *Builder) Initialize(ctx context.Context, guildID string, defaultScope domain.Scope) error {
	plan, err := b.Plan(defaultScope)
	if err != nil {
		return err
	}

	if guildID == "" && len(plan.Guild) > 0 {
		return fmt.Errorf("%w: %d commands", domain.ErrMissingGuild, len(plan.Guild))
	}

	var result *multierror.Error

	if guildID != "" {
		log.Info().Str("guild", guildID).Int("commands", len(plan.Guild)).Msg("replacing guild commands")

		if err := b.publisher.BulkReplaceGuildCommands(ctx, guildID, plan.Guild); err != nil {
			result = multierror.Append(result, fmt.Errorf("guild %s: %w", guildID, err))
		}
	}

	for _, cmd := range plan.Global {
		log.Info().Str("command", cmd.Name).Msg("upserting global command")

		if err := b.publisher.UpsertGlobalCommand(ctx, cmd); err != nil {
			result = multierror.Append(result, fmt.Errorf("command %s: %w", cmd.Name, err))
		}
	}

	return result.ErrorOrNil()
}

// Plan builds a payload for each registered descriptor. Descriptors without their own scope
// take defaultScope, which itself falls back to guild.
func (b *Builder) Plan(defaultScope domain.Scope) (Plan, error) {
	if defaultScope == domain.ScopeDefault {
		defaultScope = domain.ScopeGuild
	}

	var (
		plan   Plan
		result *multierror.Error
	)

	for _, d := range b.registry.List() {
		cmd, err := b.Build(d)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}

		scope := d.Scope
		if scope == domain.ScopeDefault {
			scope = defaultScope
		}

		log.Debug().Str("command", cmd.Name).Stringer("scope", scope).Msg("planned command")

		if scope == domain.ScopeGlobal {
			plan.Global = append(plan.Global, cmd)
		} else {
			plan.Guild = append(plan.Guild, cmd)
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return Plan{}, err
	}

	return plan, nil
}

// Build converts a descriptor into its chat input command payload.
func (b *Builder) Build(d domain.Descriptor) (*discordgo.ApplicationCommand, error) {
	name := strings.ToLower(d.Name)
	if err := checkName(name, d.Description); err != nil {
		return nil, fmt.Errorf("%w: command %q: %w", domain.ErrMalformedPayload, d.Name, err)
	}

	cmd := &discordgo.ApplicationCommand{
		Type:                     discordgo.ChatApplicationCommand,
		Name:                     name,
		Description:              describe(d.Description, name),
		DefaultMemberPermissions: d.Permissions.MemberPermissions(),
	}

	var (
		root    []*discordgo.ApplicationCommandOption
		subs    []*discordgo.ApplicationCommandOption
		hasRoot bool
	)

	for _, h := range d.Handlers {
		opts, err := buildOptions(h)
		if err != nil {
			return nil, fmt.Errorf("%w: command %q: %w", domain.ErrMalformedPayload, d.Name, err)
		}

		if h.IsRoot() {
			hasRoot = true
			root = opts
			continue
		}

		subName := strings.ToLower(h.SubName)
		if err := checkName(subName, h.SubDescription); err != nil {
			return nil, fmt.Errorf("%w: command %q sub-command: %w", domain.ErrMalformedPayload, d.Name, err)
		}

		subs = append(subs, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        subName,
			Description: describe(h.SubDescription, subName),
			Options:     opts,
		})
	}

	if len(subs) > 0 && len(root) > 0 {
		return nil, fmt.Errorf("%w: command %q mixes root options with sub-commands",
			domain.ErrMalformedPayload, d.Name)
	}

	if len(subs) > maxOptions {
		return nil, fmt.Errorf("%w: command %q has %d sub-commands, limit is %d",
			domain.ErrMalformedPayload, d.Name, len(subs), maxOptions)
	}

	cmd.Options = append(subs, root...)

	log.Debug().
		Str("command", cmd.Name).
		Int("subcommands", len(subs)).
		Bool("root", hasRoot).
		Msg("built command payload")

	return cmd, nil
}

func buildOptions(h domain.HandlerSpec) ([]*discordgo.ApplicationCommandOption, error) {
	params := h.Options()
	if len(params) > maxOptions {
		return nil, fmt.Errorf("%d options, limit is %d", len(params), maxOptions)
	}

	opts := make([]*discordgo.ApplicationCommandOption, 0, len(params))
	seen := make(map[string]struct{}, len(params))
	optional := false

	for _, p := range params {
		if _, err := domain.ExtractorFor(p.Type); err != nil {
			return nil, fmt.Errorf("option %q: %w", p.Name, err)
		}

		name := strings.ToLower(p.Name)
		if err := checkName(name, p.Description); err != nil {
			return nil, fmt.Errorf("option: %w", err)
		}

		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("duplicate option %q", name)
		}
		seen[name] = struct{}{}

		if p.Required && optional {
			return nil, fmt.Errorf("required option %q follows an optional one", p.Name)
		}
		optional = optional || !p.Required

		opts = append(opts, &discordgo.ApplicationCommandOption{
			Type:         p.Type,
			Name:         name,
			Description:  describe(p.Description, name),
			Required:     p.Required,
			Autocomplete: p.AutoComplete,
		})
	}

	return opts, nil
}

func checkName(name, description string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid name %q", name)
	}

	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return fmt.Errorf("description of %q longer than %d characters", name, maxDescriptionLength)
	}

	return nil
}

// describe falls back to the name since the platform rejects empty descriptions.
func describe(description, name string) string {
	if strings.TrimSpace(description) == "" {
		return name
	}

	return description
}
