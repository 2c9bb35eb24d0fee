package command

import (
	"fmt"
	"slices"
	"slashbot/internal/core/domain"
	"slashbot/internal/core/port"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Registry holds command descriptors for the lifetime of the process. Registration is
// expected to finish before interactions are dispatched.
type Registry struct {
	mu       sync.RWMutex
	commands []domain.Descriptor
	index    map[string]int
}

func (r *Registry) Register(cmd port.Command) error {
	d := cmd.Describe()
	if err := d.Validate(); err != nil {
		return err
	}

	d.Handlers = slices.Clone(d.Handlers)
	for i := range d.Handlers {
		d.Handlers[i].Params = slices.Clone(d.Handlers[i].Params)
	}

	key := strings.ToLower(d.Name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.index == nil {
		r.index = make(map[string]int)
	}

	if _, ok := r.index[key]; ok {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateCommand, d.Name)
	}

	log.Info().Str("command", d.Name).Int("handlers", len(d.Handlers)).Msg("adding command to registry")

	r.index[key] = len(r.commands)
	r.commands = append(r.commands, d)

	return nil
}

func (r *Registry) RegisterAll(cmds ...port.Command) error {
	for _, cmd := range cmds {
		if err := r.Register(cmd); err != nil {
			return err
		}
	}

	return nil
}

func (r *Registry) Find(name string) (domain.Descriptor, bool) {
	log.Debug().Str("command", name).Msg("fetching command from registry")

	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[strings.ToLower(name)]
	if !ok {
		return domain.Descriptor{}, false
	}

	return r.commands[i], true
}

func (r *Registry) List() []domain.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.commands)
}
