//go:build race

package opt

import (
	"sync/atomic"
	"unsafe"
)

// Race_ under race detector, use conservative atomic loads/stores.
const Race_ = true

// LoadPtr conservative: atomic pointer load to satisfy race detector
//
//go:nosplit
func LoadPtr(addr *unsafe.Pointer) unsafe.Pointer {
	return atomic.LoadPointer(addr)
}

// StorePtr conservative: atomic pointer store to satisfy race detector
//
//go:nosplit
func StorePtr(addr *unsafe.Pointer, val unsafe.Pointer) {
	atomic.StorePointer(addr, val)
}
