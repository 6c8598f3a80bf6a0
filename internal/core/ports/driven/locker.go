package driven

import "context"

// Locker provides per-key mutual exclusion. Writers of the same
// date or document path serialise on the same key.
type Locker interface {
	// Lock blocks until the key is held or ctx is done.
	// The returned function releases the lock and is safe to call once.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// StateLockKey returns the lock key of a date's state.
func StateLockKey(date string) string {
	return "state:" + date
}

// DocumentLockKey returns the lock key of a document path.
func DocumentLockKey(path string) string {
	return "doc:" + path
}
