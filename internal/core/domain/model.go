package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

type OptionType = discordgo.ApplicationCommandOptionType

const (
	OptionString      = discordgo.ApplicationCommandOptionString
	OptionInteger     = discordgo.ApplicationCommandOptionInteger
	OptionBoolean     = discordgo.ApplicationCommandOptionBoolean
	OptionUser        = discordgo.ApplicationCommandOptionUser
	OptionChannel     = discordgo.ApplicationCommandOptionChannel
	OptionRole        = discordgo.ApplicationCommandOptionRole
	OptionMentionable = discordgo.ApplicationCommandOptionMentionable
	OptionNumber      = discordgo.ApplicationCommandOptionNumber
	OptionAttachment  = discordgo.ApplicationCommandOptionAttachment
)

// Scope decides where a command is registered.
type Scope int

const (
	// ScopeDefault defers to the scope passed to the builder.
	ScopeDefault Scope = iota
	ScopeGuild
	ScopeGlobal
)

// ParseScope reads a scope from configuration. An empty string yields ScopeDefault.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return ScopeDefault, nil
	case "guild":
		return ScopeGuild, nil
	case "global":
		return ScopeGlobal, nil
	default:
		return ScopeDefault, fmt.Errorf("unknown command scope %q", s)
	}
}

func (s Scope) String() string {
	switch s {
	case ScopeGuild:
		return "guild"
	case ScopeGlobal:
		return "global"
	default:
		return "default"
	}
}

type ParamKind int

const (
	// ParamUnbound slots are always bound to nil.
	ParamUnbound ParamKind = iota
	ParamOption
	ParamContext
)

// HandlerFunc runs a command. args holds one slot per declared parameter, in declaration order.
type HandlerFunc func(ctx context.Context, args Arguments) error

// AutocompleteFunc suggests choices for a focused option. typed is the raw partial input.
type AutocompleteFunc func(ctx context.Context, ic *InteractionContext, typed string) ([]*discordgo.ApplicationCommandOptionChoice, error)

type ParameterSpec struct {
	Kind         ParamKind
	Name         string
	Description  string
	Type         OptionType
	Required     bool
	AutoComplete bool
	Autocomplete AutocompleteFunc
}

// Option declares a named option parameter. An empty description falls back to the name and
// a zero kind means String.
func Option(name, description string, kind OptionType, required bool) ParameterSpec {
	if kind == 0 {
		kind = OptionString
	}

	return ParameterSpec{
		Kind:        ParamOption,
		Name:        name,
		Description: description,
		Type:        kind,
		Required:    required,
	}
}

// Context declares a parameter bound to the InteractionContext of the dispatch.
func Context() ParameterSpec {
	return ParameterSpec{Kind: ParamContext}
}

// Unbound declares a slot that never receives a value.
func Unbound() ParameterSpec {
	return ParameterSpec{Kind: ParamUnbound}
}

// WithAutocomplete flags the option for autocompletion and sets its suggestion source.
func (p ParameterSpec) WithAutocomplete(fn AutocompleteFunc) ParameterSpec {
	p.AutoComplete = true
	p.Autocomplete = fn
	return p
}

type HandlerSpec struct {
	SubName        string
	SubDescription string
	Params         []ParameterSpec
	Run            HandlerFunc
}

func (h HandlerSpec) IsRoot() bool {
	return h.SubName == ""
}

// Root creates the handler invoked when no sub-command is named.
func Root(run HandlerFunc, params ...ParameterSpec) HandlerSpec {
	return HandlerSpec{Params: params, Run: run}
}

// Sub creates a sub-command handler.
func Sub(name, description string, run HandlerFunc, params ...ParameterSpec) HandlerSpec {
	return HandlerSpec{SubName: name, SubDescription: description, Params: params, Run: run}
}

// Options returns the option-tagged parameters in declaration order.
func (h HandlerSpec) Options() []ParameterSpec {
	var opts []ParameterSpec
	for _, p := range h.Params {
		if p.Kind == ParamOption {
			opts = append(opts, p)
		}
	}

	return opts
}

// Bind builds the argument slots for one invocation.
func (h HandlerSpec) Bind(ic *InteractionContext, values OptionValues) Arguments {
	args := make(Arguments, len(h.Params))
	for i, p := range h.Params {
		switch p.Kind {
		case ParamOption:
			args[i] = values.Lookup(p.Name)
		case ParamContext:
			args[i] = ic
		default:
			args[i] = nil
		}
	}

	return args
}

// DefaultPermissions is passed through to the platform as the command's default member permissions.
type DefaultPermissions struct {
	restricted bool
	bits       int64
}

var (
	// Everyone leaves the command usable by every member.
	Everyone = DefaultPermissions{}
	// AdminsOnly hides the command from everyone but administrators.
	AdminsOnly = DefaultPermissions{restricted: true}
)

func RequirePermissions(bits int64) DefaultPermissions {
	return DefaultPermissions{restricted: true, bits: bits}
}

// MemberPermissions returns the payload value, nil when unrestricted.
func (p DefaultPermissions) MemberPermissions() *int64 {
	if !p.restricted {
		return nil
	}

	bits := p.bits
	return &bits
}

type Descriptor struct {
	Name        string
	Description string
	Permissions DefaultPermissions
	Scope       Scope
	Handlers    []HandlerSpec
}

// Describe lets a plain Descriptor be registered as a command.
func (d Descriptor) Describe() Descriptor {
	return d
}

// Root returns the root handler, if any.
func (d Descriptor) Root() (HandlerSpec, bool) {
	for _, h := range d.Handlers {
		if h.IsRoot() {
			return h, true
		}
	}

	return HandlerSpec{}, false
}

// SubCommand finds a sub-command handler by case-insensitive name.
func (d Descriptor) SubCommand(name string) (HandlerSpec, bool) {
	for _, h := range d.Handlers {
		if !h.IsRoot() && strings.EqualFold(h.SubName, name) {
			return h, true
		}
	}

	return HandlerSpec{}, false
}

// Resolve picks the handler for an event: the named sub-command if it exists, else the root handler.
func (d Descriptor) Resolve(subName string) (HandlerSpec, bool) {
	if subName != "" {
		if h, ok := d.SubCommand(subName); ok {
			return h, true
		}
	}

	return d.Root()
}

// Mentionable is either a user or a role.
type Mentionable struct {
	User *discordgo.User
	Role *discordgo.Role
}

func (m Mentionable) ID() string {
	switch {
	case m.User != nil:
		return m.User.ID
	case m.Role != nil:
		return m.Role.ID
	default:
		return ""
	}
}

// OptionValues maps option names to extracted values for a single dispatch.
type OptionValues map[string]any

// Lookup finds a value by option name. Registered names are lowercased, so a declared
// name matches the wire name regardless of case.
func (v OptionValues) Lookup(name string) any {
	if val, ok := v[name]; ok {
		return val
	}

	if val, ok := v[strings.ToLower(name)]; ok {
		return val
	}

	for k, val := range v {
		if strings.EqualFold(k, name) {
			return val
		}
	}

	return nil
}
