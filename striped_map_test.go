package atomix

import (
	"testing"
	"unsafe"

	"golang.org/x/sync/errgroup"
)

func TestStripedMapDeterminism(t *testing.T) {
	var m StripedMap
	buf := make([]byte, 1<<16)
	for i := 0; i < len(buf); i += 101 {
		addr := unsafe.Pointer(&buf[i])
		if m.stripeFor(addr) != m.stripeFor(addr) {
			t.Fatalf("stripeFor(%p) returned distinct lock instances", addr)
		}
	}
}

func TestStripedMapBounded(t *testing.T) {
	var m StripedMap
	buf := make([]byte, 1<<16)
	seen := make(map[*SpinLock]struct{})
	for i := range buf {
		seen[m.stripeFor(unsafe.Pointer(&buf[i]))] = struct{}{}
	}
	if len(seen) > stripeCount {
		t.Fatalf("distinct stripes = %d, want <= %d", len(seen), stripeCount)
	}
	if len(seen) < 2 {
		t.Fatalf("distinct stripes = %d, mapping is degenerate", len(seen))
	}
}

func TestStripedMapNilAddress(t *testing.T) {
	var m StripedMap
	m.Lock(nil)
	m.Unlock(nil)
	m.LockPair(nil, nil)
	m.UnlockPair(nil, nil)
}

func TestStripedMapInstancesIndependent(t *testing.T) {
	var m1, m2 StripedMap
	var x int
	p := unsafe.Pointer(&x)
	if m1.stripeFor(p) == m2.stripeFor(p) {
		t.Fatal("distinct tables share a stripe")
	}
	// Holding an address in one table must not block it in another.
	m1.Lock(p)
	if !m2.stripeFor(p).TryLock() {
		t.Fatal("stripe in the other table is held")
	}
	m2.stripeFor(p).Unlock()
	m1.Unlock(p)
}

// LockPair must acquire an aliased stripe exactly once; a second
// acquisition would self-deadlock and this test would hang.
func TestStripedMapLockPairSameStripe(t *testing.T) {
	var m StripedMap
	buf := make([]byte, 8192)
	a := unsafe.Pointer(&buf[0])
	var b unsafe.Pointer
	for i := 1; i < len(buf); i++ {
		p := unsafe.Pointer(&buf[i])
		if indexFor(p) == indexFor(a) && p != a {
			b = p
			break
		}
	}
	if b == nil {
		t.Fatal("no aliasing address found")
	}
	m.LockPair(a, b)
	if m.stripeFor(a).TryLock() {
		t.Fatal("shared stripe not held after LockPair")
	}
	m.UnlockPair(a, b)
	if !m.stripeFor(a).TryLock() {
		t.Fatal("shared stripe still held after UnlockPair")
	}
	m.stripeFor(a).Unlock()
}

// Liveness under address-swapped double locking: two goroutines locking
// the same pair with roles reversed must both complete.
func TestStripedMapLockPairSwapped(t *testing.T) {
	var m StripedMap
	var x, y [64]byte
	a, b := unsafe.Pointer(&x[0]), unsafe.Pointer(&y[0])
	const iters = 2000
	var g errgroup.Group
	g.Go(func() error {
		for range iters {
			m.LockPair(a, b)
			m.UnlockPair(a, b)
		}
		return nil
	})
	g.Go(func() error {
		for range iters {
			m.LockPair(b, a)
			m.UnlockPair(b, a)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}
