package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a Locker.
type UnlockFunc func(ctx context.Context) error

// Locker provides mutual exclusion on a key.
// The pipeline locks on the file name so records of concurrent uploads of the
// same file are not interleaved.
type Locker interface {
	// Lock blocks until the lock is acquired or ctx is done.
	// ttl bounds how long a crashed holder can keep the lock (implementation specific).
	// The returned UnlockFunc MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
