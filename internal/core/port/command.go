package port

import "slashbot/internal/core/domain"

type Command interface {
	// Describe returns the declarative definition of the command: its name, handlers and their parameters.
	Describe() domain.Descriptor
}

type CommandRegistry interface {
	// Register validates a command's descriptor and adds it, rejecting names that are already taken.
	Register(cmd Command) error
	// RegisterAll registers commands in order and stops at the first failure.
	RegisterAll(cmds ...Command) error
	// Find looks up a descriptor by case-insensitive name.
	Find(name string) (domain.Descriptor, bool)
	// List returns all descriptors in registration order.
	List() []domain.Descriptor
}
