package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// maxExactInteger is the largest magnitude a float64 holds without losing integer precision.
const maxExactInteger = 1 << 53

// OptionMapping is one option supplied with an interaction, together with the entities
// the platform resolved for it.
type OptionMapping struct {
	Option   *discordgo.ApplicationCommandInteractionDataOption
	Resolved *discordgo.ApplicationCommandInteractionDataResolved
}

// OptionExtractor turns an option mapping into its typed value.
type OptionExtractor func(m OptionMapping) (any, error)

var extractors = map[OptionType]OptionExtractor{
	OptionString:      func(m OptionMapping) (any, error) { return m.AsString() },
	OptionInteger:     func(m OptionMapping) (any, error) { return m.AsInt() },
	OptionBoolean:     func(m OptionMapping) (any, error) { return m.AsBool() },
	OptionUser:        func(m OptionMapping) (any, error) { return m.AsUser() },
	OptionChannel:     func(m OptionMapping) (any, error) { return m.AsChannel() },
	OptionRole:        func(m OptionMapping) (any, error) { return m.AsRole() },
	OptionMentionable: func(m OptionMapping) (any, error) { return m.AsMentionable() },
	OptionNumber:      func(m OptionMapping) (any, error) { return m.AsFloat() },
	OptionAttachment:  func(m OptionMapping) (any, error) { return m.AsAttachment() },
}

// ExtractorFor returns the extractor registered for an option kind.
func ExtractorFor(kind OptionType) (OptionExtractor, error) {
	fn, ok := extractors[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOptionType, kind)
	}

	return fn, nil
}

// ExtractOptions resolves every supplied option by its declared kind.
func ExtractOptions(opts []*discordgo.ApplicationCommandInteractionDataOption,
	resolved *discordgo.ApplicationCommandInteractionDataResolved,
) (OptionValues, error) {
	values := make(OptionValues, len(opts))

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		fn, err := ExtractorFor(opt.Type)
		if err != nil {
			return nil, fmt.Errorf("option %q: %w", opt.Name, err)
		}

		v, err := fn(OptionMapping{Option: opt, Resolved: resolved})
		if err != nil {
			return nil, fmt.Errorf("option %q: %w", opt.Name, err)
		}

		values[opt.Name] = v
	}

	return values, nil
}

func (m OptionMapping) invalid(want string) error {
	return fmt.Errorf("%w: %q is %T, want %s", ErrInvalidOptionValue, m.Option.Name, m.Option.Value, want)
}

func (m OptionMapping) id() (string, error) {
	switch v := m.Option.Value.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return "", m.invalid("snowflake")
	}
}

func (m OptionMapping) AsString() (string, error) {
	switch v := m.Option.Value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", m.invalid("string")
	}
}

func (m OptionMapping) AsInt() (int64, error) {
	switch v := m.Option.Value.(type) {
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > maxExactInteger {
			return 0, m.invalid("integer")
		}
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidOptionValue, err)
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidOptionValue, err)
		}
		return n, nil
	default:
		return 0, m.invalid("integer")
	}
}

func (m OptionMapping) AsBool() (bool, error) {
	switch v := m.Option.Value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("%w: %w", ErrInvalidOptionValue, err)
		}
		return b, nil
	default:
		return false, m.invalid("boolean")
	}
}

func (m OptionMapping) AsFloat() (float64, error) {
	switch v := m.Option.Value.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidOptionValue, err)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidOptionValue, err)
		}
		return f, nil
	default:
		return 0, m.invalid("number")
	}
}

func (m OptionMapping) AsUser() (*discordgo.User, error) {
	id, err := m.id()
	if err != nil {
		return nil, err
	}

	if m.Resolved != nil {
		if u, ok := m.Resolved.Users[id]; ok && u != nil {
			return u, nil
		}
	}

	return &discordgo.User{ID: id}, nil
}

func (m OptionMapping) AsChannel() (*discordgo.Channel, error) {
	id, err := m.id()
	if err != nil {
		return nil, err
	}

	if m.Resolved != nil {
		if c, ok := m.Resolved.Channels[id]; ok && c != nil {
			return c, nil
		}
	}

	return &discordgo.Channel{ID: id}, nil
}

func (m OptionMapping) AsRole() (*discordgo.Role, error) {
	id, err := m.id()
	if err != nil {
		return nil, err
	}

	if m.Resolved != nil {
		if r, ok := m.Resolved.Roles[id]; ok && r != nil {
			return r, nil
		}
	}

	return &discordgo.Role{ID: id}, nil
}

// AsMentionable prefers a resolved user, then a resolved role. Unresolved IDs are
// reported as users.
func (m OptionMapping) AsMentionable() (Mentionable, error) {
	id, err := m.id()
	if err != nil {
		return Mentionable{}, err
	}

	if m.Resolved != nil {
		if u, ok := m.Resolved.Users[id]; ok && u != nil {
			return Mentionable{User: u}, nil
		}
		if r, ok := m.Resolved.Roles[id]; ok && r != nil {
			return Mentionable{Role: r}, nil
		}
	}

	return Mentionable{User: &discordgo.User{ID: id}}, nil
}

func (m OptionMapping) AsAttachment() (*discordgo.MessageAttachment, error) {
	id, err := m.id()
	if err != nil {
		return nil, err
	}

	if m.Resolved != nil {
		if a, ok := m.Resolved.Attachments[id]; ok && a != nil {
			return a, nil
		}
	}

	return &discordgo.MessageAttachment{ID: id}, nil
}
