// Package prioritylock provides a mutex whose holders are served in
// priority order. The transaction pool uses it so that block handling and
// RPC reads never queue behind a burst of transaction submissions.
package prioritylock

import (
	"sync"
)

// Mutex is a read/write lock with three priorities, highest first:
//
//   - HighPriorityLock: exclusive.
//   - HighPriorityReadLock: shared with other read holders.
//   - LowPriorityLock: exclusive, granted only while no high priority
//     holder or waiter exists, one low priority holder at a time.
type Mutex struct {
	dataMutex           sync.RWMutex
	lowPriorityMutex    sync.Mutex
	highPriorityWaiting sync.WaitGroup
}

// New returns an unlocked Mutex.
func New() *Mutex {
	return &Mutex{}
}

// LowPriorityLock waits for every high priority holder and waiter to leave,
// then locks for writes.
func (mtx *Mutex) LowPriorityLock() {
	mtx.lowPriorityMutex.Lock()
	mtx.highPriorityWaiting.Wait()
	mtx.dataMutex.Lock()
}

// LowPriorityUnlock releases LowPriorityLock.
func (mtx *Mutex) LowPriorityUnlock() {
	mtx.dataMutex.Unlock()
	mtx.lowPriorityMutex.Unlock()
}

// HighPriorityLock locks for writes. A low priority holder is waited for,
// but no new low priority holder gets in once this is called.
func (mtx *Mutex) HighPriorityLock() {
	mtx.highPriorityWaiting.Add(1)
	mtx.dataMutex.Lock()
}

// HighPriorityUnlock releases HighPriorityLock.
func (mtx *Mutex) HighPriorityUnlock() {
	mtx.dataMutex.Unlock()
	mtx.highPriorityWaiting.Done()
}

// HighPriorityReadLock locks for reads with the same precedence over low
// priority holders as HighPriorityLock.
func (mtx *Mutex) HighPriorityReadLock() {
	mtx.highPriorityWaiting.Add(1)
	mtx.dataMutex.RLock()
}

// HighPriorityReadUnlock releases HighPriorityReadLock.
func (mtx *Mutex) HighPriorityReadUnlock() {
	mtx.highPriorityWaiting.Done()
	mtx.dataMutex.RUnlock()
}
