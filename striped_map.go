package atomix

import (
	"unsafe"

	"github.com/llxisdsh/atomix/internal/opt"
)

// stripeCount is the fixed number of locks per table. Power of two so the
// index reduction is a mask. 64 bounds both memory (one cache line per
// stripe) and worst-case convoying when many addresses alias.
const stripeCount = 64

// stripe pads each lock out to a cache line so contention on one stripe
// does not bounce its neighbours' lines.
type stripe struct {
	lock SpinLock
	_    [(opt.CacheLineSize_ - unsafe.Sizeof(struct {
		lock SpinLock
	}{})%opt.CacheLineSize_) % opt.CacheLineSize_]byte
}

// StripedMap maps arbitrary addresses onto a fixed set of spinlocks.
// Unrelated addresses usually land on different stripes and proceed in
// parallel; any two callers presenting the same address always contend on
// the same lock instance, which is what makes read-modify-write on that
// address serializable without a per-address lock allocation.
//
// The address is an opaque key: it is never dereferenced, nil is legal,
// and the address-to-stripe mapping is a pure function of the address.
// Distinct addresses may alias to one stripe; that is the accepted cost of
// keeping the table bounded. The table is never grown, shrunk or torn down.
//
// It is zero-value usable. Tables intended to be process-wide should be
// obtained via [Domain] so every caller shares the instance.
type StripedMap struct {
	_       noCopy
	stripes [stripeCount]stripe
}

// indexFor reduces an address to a stripe index. The shifts discard the
// low bits that allocator alignment forces to zero and fold in higher
// bits, so same-sized objects don't cluster on a few stripes.
//
//go:nosplit
func indexFor(addr unsafe.Pointer) uintptr {
	a := uintptr(addr)
	return ((a >> 4) ^ (a >> 9)) & (stripeCount - 1)
}

// stripeFor returns the lock addr hashes to. Repeated calls with the same
// address on the same table return the same lock instance.
//
//go:nosplit
func (m *StripedMap) stripeFor(addr unsafe.Pointer) *SpinLock {
	return &m.stripes[indexFor(addr)].lock
}

// Lock acquires the stripe addr hashes to.
func (m *StripedMap) Lock(addr unsafe.Pointer) {
	m.stripeFor(addr).Lock()
}

// Unlock releases the stripe addr hashes to. Only valid while held by a
// matching Lock (or LockPair covering addr).
func (m *StripedMap) Unlock(addr unsafe.Pointer) {
	m.stripeFor(addr).Unlock()
}

// LockPair acquires the stripes for two addresses in table order, so two
// concurrent callers locking the same pair with the roles of a and b
// swapped cannot deadlock. The order is derived from stripe identity, not
// from the raw addresses: two different addresses may legitimately alias
// to one stripe, in which case the stripe is acquired exactly once.
//
// The ordering discipline only holds within one table. Addresses from
// different tables can never map to the same lock, so cross-table
// acquisitions need no ordering.
func (m *StripedMap) LockPair(a, b unsafe.Pointer) {
	i, j := indexFor(a), indexFor(b)
	if i > j {
		i, j = j, i
	}
	m.stripes[i].lock.Lock()
	if j != i {
		m.stripes[j].lock.Lock()
	}
}

// UnlockPair releases the stripes for two addresses, in reverse of the
// LockPair acquisition order.
func (m *StripedMap) UnlockPair(a, b unsafe.Pointer) {
	i, j := indexFor(a), indexFor(b)
	if i > j {
		i, j = j, i
	}
	if j != i {
		m.stripes[j].lock.Unlock()
	}
	m.stripes[i].lock.Unlock()
}
