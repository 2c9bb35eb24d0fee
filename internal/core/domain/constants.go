package domain

import "errors"

var (
	ErrDuplicateCommand    = errors.New("command already registered")
	ErrInvalidDescriptor   = errors.New("invalid command descriptor")
	ErrUnknownOptionType   = errors.New("unknown option type")
	ErrInvalidOptionValue  = errors.New("invalid option value")
	ErrMalformedPayload    = errors.New("malformed command payload")
	ErrMissingGuild        = errors.New("guild scoped commands need a target guild")
	ErrAlreadyAcknowledged = errors.New("interaction already acknowledged")
)
