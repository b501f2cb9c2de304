package service

import "sync"

// idLock is a per-id try-lock. A mutation acquires its item's id before
// touching the registry and releases it after committing; a second writer
// for the same id fails fast instead of blocking. Writers on different
// ids never contend beyond the map guard.
type idLock struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func newIDLock() *idLock {
	return &idLock{
		inFlight: make(map[string]struct{}),
	}
}

// TryAcquire marks the id as in flight. Returns false if another
// mutation already holds it.
func (l *idLock) TryAcquire(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.inFlight[id]; busy {
		return false
	}
	l.inFlight[id] = struct{}{}
	return true
}

// Release clears the in-flight mark for the id
func (l *idLock) Release(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inFlight, id)
}
