package concurrency

import (
	"sync"

	"github.com/google/uuid"
)

// LockManager handles named locks. It is an explicit, injected registry:
// created at startup, shared by the services that need in-process
// serialization on top of database row locks.
type LockManager struct {
	locks sync.Map
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{}
}

// GetLock returns a mutex for the given key
func (lm *LockManager) GetLock(key string) *sync.Mutex {
	lock, _ := lm.locks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// UserLock returns the mutex serializing operations for one user.
func (lm *LockManager) UserLock(userID uuid.UUID) *sync.Mutex {
	return lm.GetLock("user:" + userID.String())
}

// Clear drops all named locks. Callers must ensure no lock is held.
func (lm *LockManager) Clear() {
	lm.locks.Range(func(key, _ any) bool {
		lm.locks.Delete(key)
		return true
	})
}
