package dispatch

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig = errors.New("dispatch: invalid configuration")
	ErrInvalidUnit   = errors.New("dispatch: unit has no Run func")
	ErrPanic         = errors.New("dispatch: unit panicked")
)

func invalidConfig(msg string, args ...any) error {
	return fmt.Errorf("%w: "+msg, append([]any{ErrInvalidConfig}, args...)...)
}
