package common

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is the single error kind reported by the DSP core. Every
// malformed-parameter failure wraps it, so callers can test with errors.Is
// regardless of which component rejected the input.
var ErrInvalidConfig = errors.New("invalid config")

// InvalidConfigf builds an ErrInvalidConfig with a formatted reason
func InvalidConfigf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
