package guard

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestTryAcquireRelease(t *testing.T) {
	var g Guard

	if !g.TryAcquire() {
		t.Fatal("first acquire must succeed")
	}
	if !g.Held() {
		t.Fatal("guard should report held")
	}
	if g.TryAcquire() {
		t.Fatal("second acquire must fail while held")
	}

	g.Release()
	if g.Held() {
		t.Fatal("guard should report free after release")
	}
	if !g.TryAcquire() {
		t.Fatal("acquire after release must succeed")
	}
}

func TestReleaseIdempotent(t *testing.T) {
	var g Guard

	// Releasing a free guard is a no-op, not a panic.
	g.Release()
	g.Release()

	if !g.TryAcquire() {
		t.Fatal("acquire must succeed")
	}
	g.Release()
	g.Release()
	if !g.TryAcquire() {
		t.Fatal("double release must not corrupt the guard")
	}
}

func TestConcurrentAcquireSingleWinner(t *testing.T) {
	var g Guard
	var wins int32
	var wg sync.WaitGroup

	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryAcquire() {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("winners = %d, want exactly 1", wins)
	}
}
