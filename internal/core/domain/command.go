package domain

import (
	"fmt"
	"strings"
)

// Validate checks the structural invariants of a descriptor. Platform payload limits
// (name lengths, option ordering) are checked when the payload is built.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: empty command name", ErrInvalidDescriptor)
	}

	if len(d.Handlers) == 0 {
		return fmt.Errorf("%w: command %q has no handlers", ErrInvalidDescriptor, d.Name)
	}

	roots := 0
	subs := make(map[string]struct{}, len(d.Handlers))

	for _, h := range d.Handlers {
		if h.Run == nil {
			return fmt.Errorf("%w: command %q has a handler without a function", ErrInvalidDescriptor, d.Name)
		}

		if h.IsRoot() {
			roots++
			if roots > 1 {
				return fmt.Errorf("%w: command %q declares more than one root handler", ErrInvalidDescriptor, d.Name)
			}
		} else {
			key := strings.ToLower(h.SubName)
			if _, ok := subs[key]; ok {
				return fmt.Errorf("%w: command %q declares sub-command %q twice",
					ErrInvalidDescriptor, d.Name, h.SubName)
			}
			subs[key] = struct{}{}
		}

		if err := validateParams(d.Name, h); err != nil {
			return err
		}
	}

	return nil
}

func validateParams(command string, h HandlerSpec) error {
	seen := make(map[string]struct{}, len(h.Params))

	for _, p := range h.Params {
		if p.Kind != ParamOption {
			continue
		}

		if p.Name == "" {
			return fmt.Errorf("%w: command %q has an option without a name", ErrInvalidDescriptor, command)
		}

		key := strings.ToLower(p.Name)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: command %q declares option %q twice", ErrInvalidDescriptor, command, p.Name)
		}
		seen[key] = struct{}{}

		if _, err := ExtractorFor(p.Type); err != nil {
			return fmt.Errorf("%w: command %q option %q: %w", ErrInvalidDescriptor, command, p.Name, err)
		}
	}

	return nil
}
