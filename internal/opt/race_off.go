//go:build !race

package opt

import (
	"unsafe"
)

const Race_ = false

// LoadPtr is a plain pointer load in non-race builds.
//
//go:nosplit
func LoadPtr(addr *unsafe.Pointer) unsafe.Pointer {
	return *addr
}

// StorePtr is a plain pointer store in non-race builds.
//
//go:nosplit
func StorePtr(addr *unsafe.Pointer, val unsafe.Pointer) {
	*addr = val
}
