package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/NethermindEth/chaoschain-reality/core"
)

// RetryPolicy controls how retryable cycle failures are retried.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration // doubled after every failed attempt
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Backoff: 2 * time.Second}
}

// sleepFunc waits d or until ctx is done.
type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// retry runs f until it succeeds, fails with a non-retryable error, or runs out of attempts.
func retry(ctx context.Context, p RetryPolicy, sleep sleepFunc, label string, f func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	wait := p.Backoff
	var err error
	for i := 0; i < attempts; i++ {
		err = f()
		if err == nil || !core.IsRetryable(err) {
			return err
		}
		if i < attempts-1 {
			log.Printf("%s: attempt %d failed: %v. Retrying in %v...", label, i+1, err, wait)
			if serr := sleep(ctx, wait); serr != nil {
				return err
			}
			wait *= 2
		}
	}
	return err
}
