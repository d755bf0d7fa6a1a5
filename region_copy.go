package atomix

import (
	"unsafe"
)

// CopyFunc performs a caller-defined construction or copy from src to dst.
// It runs with both addresses' stripes held, so it must be fast and must
// not reenter this package on addresses in the same domain.
type CopyFunc func(dst, src unsafe.Pointer)

// Copier makes whole-region copies appear atomic with respect to other
// copies (and only other copies) in the same lock domains. It holds two
// tables: one for trivial byte-range copies, one for custom-constructed
// copies, so the two kinds of traffic never contend with each other.
type Copier struct {
	_      noCopy
	region *StripedMap
	custom *StripedMap
}

// NewCopier returns a copier serializing CopyRegion on the region table
// and CopyCustom on the custom table. The package-level CopyRegion and
// CopyCustom use the process-wide [DomainRegion] and [DomainCustom]
// tables.
func NewCopier(region, custom *StripedMap) *Copier {
	return &Copier{region: region, custom: custom}
}

// CopyRegion copies size bytes from src to dst. Overlapping ranges are
// handled like a move, never corrupted by a naive forward copy. If atomic,
// the stripes for both addresses are held in table order for the duration
// of the copy.
//
// Known, deliberate limitation: only callers that themselves route through
// this entry point (or the accessor, on the same addresses in the same
// domain) are excluded. A consumer reading src directly can observe the
// copy mid-flight; this entry point locks symmetrically even when used
// purely as a getter or purely as a setter.
func (c *Copier) CopyRegion(dst, src unsafe.Pointer, size uintptr, atomic bool) {
	if atomic {
		c.region.LockPair(src, dst)
	}
	memmove(dst, src, size)
	if atomic {
		c.region.UnlockPair(src, dst)
	}
}

// CopyCustom invokes fn(dst, src) exactly once with the stripes for both
// addresses held in table order. There is no non-atomic variant. The
// copier does not inspect what fn does; it only guarantees fn runs under
// both locks.
func (c *Copier) CopyCustom(dst, src unsafe.Pointer, fn CopyFunc) {
	c.custom.LockPair(src, dst)
	fn(dst, src)
	c.custom.UnlockPair(src, dst)
}

// memmove copies n bytes between possibly overlapping ranges. The built-in
// copy already has move semantics.
//
//go:nosplit
func memmove(dst, src unsafe.Pointer, n uintptr) {
	if n == 0 || dst == src {
		return
	}
	copy(unsafe.Slice((*byte)(dst), n), unsafe.Slice((*byte)(src), n))
}

var defaultCopier = NewCopier(Domain(DomainRegion), Domain(DomainCustom))

// CopyRegion copies size bytes from src to dst on the process-wide
// [DomainRegion] table. See [Copier.CopyRegion].
func CopyRegion(dst, src unsafe.Pointer, size uintptr, atomic bool) {
	defaultCopier.CopyRegion(dst, src, size, atomic)
}

// CopyCustom invokes fn(dst, src) under both addresses' stripes on the
// process-wide [DomainCustom] table. See [Copier.CopyCustom].
func CopyCustom(dst, src unsafe.Pointer, fn CopyFunc) {
	defaultCopier.CopyCustom(dst, src, fn)
}
