package services

import "sync"

// campLocks serializes the validate-then-write section per camp. SQLite
// already enforces a single writer; the keyed mutex additionally closes
// the window where two concurrent submissions for the same camp both
// read counts below capacity before either writes.
var campLocks = struct {
	mu sync.Mutex
	m  map[uint]*sync.Mutex
}{m: map[uint]*sync.Mutex{}}

func lockCamp(campID uint) func() {
	campLocks.mu.Lock()
	l, ok := campLocks.m[campID]
	if !ok {
		l = &sync.Mutex{}
		campLocks.m[campID] = l
	}
	campLocks.mu.Unlock()

	l.Lock()
	return l.Unlock
}
