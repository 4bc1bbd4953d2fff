package gate

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewClampsCapacity(t *testing.T) {
	for _, n := range []int{-1, 0, 1, 4} {
		g := New(n)
		want := n
		if want < 1 {
			want = 1
		}
		if g.Capacity() != want {
			t.Errorf("New(%d).Capacity() = %d, want %d", n, g.Capacity(), want)
		}
	}
}

func TestTryAcquireAtCapacity(t *testing.T) {
	g := New(2)

	if !g.TryAcquire() || !g.TryAcquire() {
		t.Fatal("expected two acquires to succeed")
	}
	if g.TryAcquire() {
		t.Error("third acquire succeeded beyond capacity")
	}
	if g.Active() != 2 {
		t.Errorf("Active() = %d, want 2", g.Active())
	}

	g.Release()
	if !g.TryAcquire() {
		t.Error("acquire after release failed")
	}
}

func TestAcquireBlocksUntilRelease(t *testing.T) {
	g := New(1)
	if !g.TryAcquire() {
		t.Fatal("initial acquire failed")
	}

	acquired := make(chan struct{})
	go func() {
		if err := g.Acquire(context.Background()); err != nil {
			t.Errorf("Acquire: %v", err)
			return
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("Acquire returned while gate was full")
	case <-time.After(20 * time.Millisecond):
	}

	g.Release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("Acquire did not proceed after release")
	}
}

func TestAcquireHonorsContext(t *testing.T) {
	g := New(1)
	if !g.TryAcquire() {
		t.Fatal("initial acquire failed")
	}
	defer g.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := g.Acquire(ctx); err == nil {
		t.Error("Acquire succeeded on full gate with expired context")
	}
}

func TestNeverExceedsCapacity(t *testing.T) {
	const capacity = 3
	g := New(capacity)

	var held, peak atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !g.TryAcquire() {
				return
			}
			now := held.Add(1)
			for {
				p := peak.Load()
				if now <= p || peak.CompareAndSwap(p, now) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			held.Add(-1)
			g.Release()
		}()
	}
	wg.Wait()

	if peak.Load() > capacity {
		t.Errorf("peak concurrent holders = %d, capacity %d", peak.Load(), capacity)
	}
	if g.Active() != 0 {
		t.Errorf("Active() = %d after all released", g.Active())
	}
}
