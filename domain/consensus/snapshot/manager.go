package snapshot

import (
	"sync/atomic"
)

// Manager publishes the current snapshot.
type Manager struct {
	current atomic.Pointer[Snapshot]
}

// NewManager returns a Manager publishing initial, taking over the
// caller's reference to it.
func NewManager(initial *Snapshot) *Manager {
	manager := &Manager{}
	manager.current.Store(initial)
	return manager
}

// Load returns the current snapshot with a reference the caller must
// Release.
func (m *Manager) Load() *Snapshot {
	for {
		snapshot := m.current.Load()
		if snapshot.tryAcquire() {
			return snapshot
		}
	}
}

// Store publishes next, taking over the caller's reference to it, and
// drops the manager's reference to the previous snapshot.
func (m *Manager) Store(next *Snapshot) {
	previous := m.current.Swap(next)
	previous.Release()
}
