package prioritylock

import (
	"testing"
	"time"
)

func TestHighPriorityGoesFirst(t *testing.T) {
	mtx := New()
	order := make(chan string, 2)

	mtx.HighPriorityReadLock()

	lowDone := make(chan struct{})
	go func() {
		defer close(lowDone)
		mtx.LowPriorityLock()
		order <- "low"
		mtx.LowPriorityUnlock()
	}()

	highDone := make(chan struct{})
	go func() {
		defer close(highDone)
		mtx.HighPriorityLock()
		order <- "high"
		mtx.HighPriorityUnlock()
	}()

	// Give both goroutines time to start waiting.
	time.Sleep(50 * time.Millisecond)
	mtx.HighPriorityReadUnlock()
	<-lowDone
	<-highDone

	if first := <-order; first != "high" {
		t.Fatalf("TestHighPriorityGoesFirst: expected the high priority holder first, got %s", first)
	}
}
