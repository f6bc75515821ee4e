package dispatch

import (
	"time"

	"github.com/sirupsen/logrus"
)

type Options struct {
	// MaxAttempts is the total number of tries per unit, first one included.
	MaxAttempts int
	// Interval is waited before every dequeue. Zero disables pacing.
	Interval time.Duration
	// MaxBackoff caps the exponential wait between attempts of the same unit.
	// Zero retries immediately.
	MaxBackoff time.Duration

	LastErrorMaxLen int

	Logger *logrus.Entry
	OnDrop DropFunc
}

func (o *Options) setDefaults() {
	if o.MaxAttempts == 0 {
		o.MaxAttempts = 3
	}
	if o.LastErrorMaxLen == 0 {
		o.LastErrorMaxLen = 2048
	}
	if o.Logger == nil {
		o.Logger = logrusNop()
	}
}

func (o *Options) validate() error {
	if o.MaxAttempts < 0 {
		return invalidConfig("MaxAttempts must be positive, got %d", o.MaxAttempts)
	}
	if o.Interval < 0 {
		return invalidConfig("Interval must not be negative, got %s", o.Interval)
	}
	if o.MaxBackoff < 0 {
		return invalidConfig("MaxBackoff must not be negative, got %s", o.MaxBackoff)
	}
	return nil
}
