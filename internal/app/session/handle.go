package session

import "sync"

// Process-wide session handle. The session is constructed explicitly
// at startup and installed once; using the handle before installation
// is a programming error and fails loudly instead of returning a
// silent default.

var (
	handleMu sync.RWMutex
	handle   *Session
)

// Install registers the process-wide session. Panics if a session is
// already installed.
func Install(s *Session) {
	handleMu.Lock()
	defer handleMu.Unlock()
	if handle != nil {
		panic("session: Install called twice")
	}
	handle = s
}

// Use returns the installed session. Panics when called before
// Install.
func Use() *Session {
	handleMu.RLock()
	defer handleMu.RUnlock()
	if handle == nil {
		panic("session: Use called before Install")
	}
	return handle
}

// Reset clears the installed session. Intended for tests.
func Reset() {
	handleMu.Lock()
	defer handleMu.Unlock()
	handle = nil
}
