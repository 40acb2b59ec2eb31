// Package retry implements the shared retry policy applied to the artifact
// upload. Staging copy steps are never retried, only the final network
// upload is.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultAttempts is the total number of attempts, including the first.
	DefaultAttempts = 4

	// DefaultBaseDelay is the wait after the first failure. It doubles
	// after every subsequent failure.
	DefaultBaseDelay = 2 * time.Second
)

// Policy controls how often and how long Do waits between attempts.
// The zero value uses the defaults.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
}

// Do runs fn until it succeeds, the policy is exhausted, or ctx is done.
func Do(
	ctx context.Context,
	log logrus.FieldLogger,
	p Policy,
	name string,
	fn func(ctx context.Context) error,
) error {
	if p.Attempts <= 0 {
		p.Attempts = DefaultAttempts
	}

	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}

	delay := p.BaseDelay

	var err error

	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}

		if attempt == p.Attempts {
			break
		}

		log.WithError(err).WithFields(logrus.Fields{
			"op":      name,
			"attempt": attempt,
			"delay":   delay.String(),
		}).Warn("Operation failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
	}

	return fmt.Errorf("%s failed after %d attempts: %w", name, p.Attempts, err)
}
