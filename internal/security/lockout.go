package security

import (
	"context"
	"time"
)

// Lockout counts failed password attempts per username.
type Lockout interface {
	Locked(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Clear(ctx context.Context, key string) error
}

// NoopLockout is used when no Redis is configured.
type NoopLockout struct{}

func (NoopLockout) Locked(context.Context, string) (bool, error) { return false, nil }
func (NoopLockout) RecordFailure(context.Context, string) error { return nil }
func (NoopLockout) Clear(context.Context, string) error { return nil }

type LockoutPolicy struct {
	Threshold int
	Window    time.Duration
}
