package stream

import (
	"sync"
	"testing"
)

func TestBufferSendReceive(t *testing.T) {
	b := NewGrowableBuffer[int](10)

	for i := 0; i < 5; i++ {
		if !b.Send(i) {
			t.Fatalf("Send(%d) returned false", i)
		}
	}
	if b.Len() != 5 {
		t.Errorf("Len = %d, want 5", b.Len())
	}

	for i := 0; i < 5; i++ {
		v, ok := b.Receive()
		if !ok {
			t.Fatalf("Receive returned closed at %d", i)
		}
		if v != i {
			t.Errorf("Receive = %d, want %d (FIFO order)", v, i)
		}
	}
}

func TestBufferGrowth(t *testing.T) {
	b := NewGrowableBuffer[int](4)

	// Push well past 70% of the initial capacity.
	for i := 0; i < 100; i++ {
		b.Send(i)
	}

	stats := b.Stats()
	if stats.Resizes == 0 {
		t.Error("buffer never grew")
	}
	if stats.Capacity < 100 {
		t.Errorf("Capacity = %d, want >= 100", stats.Capacity)
	}

	// FIFO survives growth.
	for i := 0; i < 100; i++ {
		v, ok := b.TryReceive()
		if !ok || v != i {
			t.Fatalf("TryReceive = %d, %v; want %d, true", v, ok, i)
		}
	}
}

func TestBufferGrowthWrapped(t *testing.T) {
	b := NewGrowableBuffer[int](8)

	// Wrap the ring: push, pop, then push past the threshold.
	for i := 0; i < 4; i++ {
		b.Send(i)
	}
	for i := 0; i < 4; i++ {
		b.TryReceive()
	}
	for i := 10; i < 30; i++ {
		b.Send(i)
	}

	for i := 10; i < 30; i++ {
		v, ok := b.TryReceive()
		if !ok || v != i {
			t.Fatalf("TryReceive = %d, %v; want %d, true", v, ok, i)
		}
	}
}

func TestBufferClose(t *testing.T) {
	b := NewGrowableBuffer[string](4)
	b.Send("a")
	b.Close()

	if b.Send("b") {
		t.Error("Send after Close returned true")
	}

	// Remaining item drains, then closed signal.
	if v, ok := b.Receive(); !ok || v != "a" {
		t.Errorf("Receive = %q, %v; want a, true", v, ok)
	}
	if _, ok := b.Receive(); ok {
		t.Error("Receive on drained closed buffer returned ok")
	}
}

func TestBufferCloseWakesReceiver(t *testing.T) {
	b := NewGrowableBuffer[int](4)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, ok := b.Receive(); ok {
			t.Error("blocked Receive returned ok after Close")
		}
	}()

	b.Close()
	wg.Wait()
}

func TestBufferDrain(t *testing.T) {
	b := NewGrowableBuffer[int](16)
	for i := 0; i < 10; i++ {
		b.Send(i)
	}

	first := b.Drain(4)
	if len(first) != 4 || first[0] != 0 || first[3] != 3 {
		t.Errorf("Drain(4) = %v", first)
	}

	rest := b.Drain(0)
	if len(rest) != 6 || rest[0] != 4 {
		t.Errorf("Drain(0) = %v", rest)
	}
	if b.Len() != 0 {
		t.Errorf("Len = %d, want 0", b.Len())
	}
}

func TestBufferConcurrent(t *testing.T) {
	b := NewGrowableBuffer[int](8)
	const n = 1000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			b.Send(i)
		}
		b.Close()
	}()

	got := 0
	for {
		_, ok := b.Receive()
		if !ok {
			break
		}
		got++
	}
	wg.Wait()

	if got != n {
		t.Errorf("received %d items, want %d", got, n)
	}
}
