package models

import "errors"

var (
	ErrInvalidTimestamp = errors.New("timestamp must be RFC3339")
	ErrInvalidSystem    = errors.New("system must be coloured or text")
	ErrInvalidDuration  = errors.New("trial duration must be non-negative")
)
