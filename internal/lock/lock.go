// Package lock guards booking critical sections across server instances.
package lock

import (
	"context"
	"errors"
	"strconv"
)

var ErrNotAcquired = errors.New("doctor lock not acquired")

// Locker runs fn while holding an exclusive lock on a doctor's schedule.
type Locker interface {
	WithDoctorLock(ctx context.Context, doctorID int64, fn func(ctx context.Context) error) error
}

// Noop runs fn directly. It is used when only one instance writes bookings or
// the database lock alone is enough.
type Noop struct{}

func (Noop) WithDoctorLock(ctx context.Context, doctorID int64, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func doctorKey(doctorID int64) string {
	return "lock:doctor:" + strconv.FormatInt(doctorID, 10)
}
