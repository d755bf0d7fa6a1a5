package atomix

import (
	"sync"
	"testing"
)

func TestDomainStable(t *testing.T) {
	if Domain("x") != Domain("x") {
		t.Fatal("same name returned distinct tables")
	}
	if Domain("x") == Domain("y") {
		t.Fatal("distinct names share a table")
	}
}

func TestDomainBuiltins(t *testing.T) {
	p, r, c := Domain(DomainProperty), Domain(DomainRegion), Domain(DomainCustom)
	if p == r || r == c || p == c {
		t.Fatal("built-in domains share a table")
	}
}

// Concurrent first use of a name must converge on one table instance.
func TestDomainConcurrentCreate(t *testing.T) {
	const n = 32
	tables := make([]*StripedMap, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		go func(i int) {
			defer wg.Done()
			tables[i] = Domain("concurrent-create")
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		if tables[i] != tables[0] {
			t.Fatalf("table %d differs from table 0", i)
		}
	}
}
