package sync

import "sync"

// userTable tracks per-user pass state and the last completed result. The
// at-most-one-in-flight rule is enforced here, structurally, not by locking
// at the store: acquire refuses a second concurrent pass for the same user
// while leaving other users untouched.
type userTable struct {
	mu      sync.Mutex
	entries map[string]*userEntry
}

type userEntry struct {
	mu     sync.Mutex
	state  State
	result *Result
}

func newUserTable() *userTable {
	return &userTable{entries: make(map[string]*userEntry)}
}

// get returns the entry for a user, creating an idle one if absent.
func (t *userTable) get(userID string) *userEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[userID]
	if !ok {
		entry = &userEntry{state: StateIdle}
		t.entries[userID] = entry
	}
	return entry
}

// acquire attempts to start a pass for the user. Returns the entry and
// whether the caller owns the pass; false means another pass is active.
func (t *userTable) acquire(userID string) (*userEntry, bool) {
	entry := t.get(userID)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.state != StateIdle && entry.state != StateFailed {
		return entry, false
	}
	entry.state = StateFetching
	return entry, true
}

// release ends the pass, leaving the user idle or failed.
func (t *userTable) release(userID string, final State) {
	entry := t.get(userID)
	entry.mu.Lock()
	entry.state = final
	entry.mu.Unlock()
}

// state reports the user's current state.
func (t *userTable) state(userID string) State {
	entry := t.get(userID)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.state
}

func (e *userEntry) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

func (e *userEntry) storeResult(r *Result) {
	e.mu.Lock()
	e.result = r
	e.mu.Unlock()
}

func (e *userEntry) lastResult() *Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result
}
