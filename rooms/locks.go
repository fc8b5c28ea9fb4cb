package rooms

import "sync"

// roomLocks hands out one mutex per room code so read-check-then-write
// sequences on a room's state run as a unit. Operations on different
// rooms never contend.
type roomLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newRoomLocks() *roomLocks {
	return &roomLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the room's critical section and returns the unlock
// function.
func (rl *roomLocks) acquire(code string) func() {
	rl.mu.Lock()
	lock, ok := rl.locks[code]
	if !ok {
		lock = &sync.Mutex{}
		rl.locks[code] = lock
	}
	rl.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// forget drops the lock entry for a deleted room. The caller must still
// hold the room's lock; a racing acquirer keeps its own reference to
// the mutex and fails its existence check after waking.
func (rl *roomLocks) forget(code string) {
	rl.mu.Lock()
	delete(rl.locks, code)
	rl.mu.Unlock()
}
