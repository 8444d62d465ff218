package metrics

import "sync"

// #region store

// DeriveFunc recomputes the lock state from a snapshot. Injected so the
// store does not depend on the lock package.
type DeriveFunc func(Snapshot) LockState

// Store is the single source of truth for the session's metrics. The
// original runtime was single-threaded; here the subscription goroutine
// and the scan job can race the turn loop, so a mutex guards the
// read-modify-write cycle.
type Store struct {
	mu     sync.Mutex
	snap   Snapshot
	derive DeriveFunc
}

// NewStore creates a store seeded with the given snapshot. derive may be
// nil, in which case the lock field is left untouched on commit.
func NewStore(initial Snapshot, derive DeriveFunc) *Store {
	return &Store{snap: initial.Clone(), derive: derive}
}

// Get returns a copy of the current snapshot. No side effects.
func (st *Store) Get() Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.snap.Clone()
}

// Apply merges a patch and returns the committed snapshot. After every
// commit the lock state is re-derived — except when the patch is itself
// a lock write-back, which would otherwise recompute forever. The
// write-back is a no-op when the derived value already matches.
func (st *Store) Apply(p Patch) Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.snap = Apply(st.snap, p)
	if st.derive != nil && !p.LockOnly() {
		if d := st.derive(st.snap); d != st.snap.LockState {
			st.snap.LockState = d
		}
	}
	return st.snap.Clone()
}

// Replace swaps in a whole snapshot. Used by the remote-subscription
// path, where the persisted document wins wholesale. The lock field is
// re-derived so a stale remote lock cannot survive locally.
func (st *Store) Replace(s Snapshot) Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.snap = s.Clone()
	if st.derive != nil {
		if d := st.derive(st.snap); d != st.snap.LockState {
			st.snap.LockState = d
		}
	}
	return st.snap.Clone()
}

// #endregion store
