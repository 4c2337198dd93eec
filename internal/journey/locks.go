package journey

import "sync"

// sessionLocks serializes turns per session id. Different sessions
// proceed in parallel; two turns for the same session never interleave.
// Entries are reference counted and removed once the last holder
// releases, so the table only grows with sessions that are mid-turn.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

func (l *sessionLocks) acquire(sessionID string) func() {
	l.mu.Lock()
	sl, ok := l.locks[sessionID]
	if !ok {
		sl = &sessionLock{}
		l.locks[sessionID] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, sessionID)
		}
		l.mu.Unlock()
	}
}
