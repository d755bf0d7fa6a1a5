package atomix

import (
	"unsafe"

	"github.com/llxisdsh/atomix/internal/opt"
)

// Value is a reference-counted handle managed by the caller's runtime.
// This package never implements refcounting; it only drives the handle's
// own operations at the points the accessor protocol requires:
//
//   - Retain increments the refcount and returns an equivalent handle.
//   - Release decrements the refcount and may destroy the value. Release
//     can run arbitrary destruction logic, so the accessor only ever calls
//     it outside a held stripe.
//   - Autorelease defers the decrement to an ambient scope and returns an
//     equivalent handle.
//
// Handles are compared by identity (pointer-shaped dynamic types are
// expected); nil is a legal slot content and the accessor never invokes
// methods on a nil handle.
type Value interface {
	Retain() Value
	Release()
	Autorelease() Value
}

// Cloneable is implemented by values that support the clone-on-assign set
// modes. CloneShallow returns a new container sharing substructure with
// the original; CloneDeep returns a fully independent copy. Both return a
// handle already owned by the caller, so the accessor performs no
// additional retain on the clone.
type Cloneable interface {
	Value
	CloneShallow() Value
	CloneDeep() Value
}

// CopyMode selects how Set treats the incoming value.
type CopyMode uint8

const (
	// CopyNone stores the value itself, retained.
	CopyNone CopyMode = iota
	// CopyShallow stores the value's CloneShallow result.
	CopyShallow
	// CopyDeep stores the value's CloneDeep result.
	CopyDeep
)

// Aggregate is an object whose reference-counted field slots live at fixed
// byte offsets from a base address. Offset zero is reserved: it addresses
// the aggregate's dynamic type descriptor rather than a field slot. Type
// descriptors are handles the accessor passes through verbatim; it never
// retains, releases or locks around them.
type Aggregate interface {
	// Base returns the address that field offsets are relative to.
	Base() unsafe.Pointer
	// Type returns the aggregate's dynamic type descriptor.
	Type() Value
	// SetType replaces the aggregate's dynamic type descriptor.
	SetType(Value)
}

// Accessor makes get/set of individual field slots appear atomic by
// serializing them on the stripes of one lock table. Aggregates do not
// register with the accessor and no per-slot state is kept: the slot's
// address alone picks the stripe, so any two accesses to the same slot
// through accessors sharing a table exclude each other.
//
// For a slot accessed only through atomic Get/Set, accesses are
// linearizable: a Get returns a value some completed Set stored (or the
// initial value), never a torn read. Non-atomic accesses take no lock and
// carry no such guarantee; they are for fields whose callers synchronize
// externally or accept the race.
type Accessor struct {
	_     noCopy
	locks *StripedMap
}

// NewAccessor returns an accessor serializing slot access on the given
// table. Accessors sharing a table exclude each other; accessors with
// distinct tables never contend. The package-level GetField/SetField use
// the process-wide [DomainProperty] table.
func NewAccessor(locks *StripedMap) *Accessor {
	return &Accessor{locks: locks}
}

// Get reads the field slot at offset from obj's base.
//
// Offset zero returns the aggregate's type descriptor directly: no lock,
// no refcount traffic.
//
// If atomic, the slot's stripe is held across the read and the retain, so
// the returned handle cannot be a value some concurrent Set has already
// released. The balancing autorelease runs after the stripe is dropped;
// that bookkeeping needs no exclusion on this slot, and keeping it outside
// shrinks the critical section to a read and a refcount bump.
func (a *Accessor) Get(obj Aggregate, offset uintptr, atomic bool) Value {
	if offset == 0 {
		return obj.Type()
	}
	slot := (*Value)(unsafe.Add(obj.Base(), offset))
	if !atomic {
		return loadSlot(slot)
	}

	lock := a.locks.stripeFor(unsafe.Pointer(slot))
	lock.Lock()
	v := loadSlot(slot)
	if v != nil {
		v = v.Retain()
	}
	lock.Unlock()

	if v != nil {
		v = v.Autorelease()
	}
	return v
}

// Set stores v into the field slot at offset from obj's base, releasing
// whatever the slot held before.
//
// Offset zero replaces the aggregate's type descriptor and returns
// immediately; descriptors are not refcounted, so no retain or release
// happens on either the old or the new one.
//
// CopyShallow and CopyDeep replace v with its clone before storing; the
// clone arrives already owned, so it is stored without a retain. Both
// modes panic if v is non-nil and does not implement [Cloneable]. With
// CopyNone, storing the slot's current value is a defined no-op: no
// retain, no release, no lock, no write.
//
// If atomic, the old-value capture and the overwrite happen under the
// slot's stripe as one critical section, so a concurrent Get can never
// observe a torn or already-superseded value. The old value's Release
// always runs after the stripe is dropped: destructors are arbitrary code
// and may reenter this package on a slot that hashes to the same stripe.
func (a *Accessor) Set(obj Aggregate, offset uintptr, v Value, atomic bool, mode CopyMode) {
	if offset == 0 {
		obj.SetType(v)
		return
	}
	slot := (*Value)(unsafe.Add(obj.Base(), offset))

	switch mode {
	case CopyShallow:
		if v != nil {
			v = v.(Cloneable).CloneShallow()
		}
	case CopyDeep:
		if v != nil {
			v = v.(Cloneable).CloneDeep()
		}
	default:
		// Self-assignment fast path. The comparison read is unlocked,
		// matching the non-atomic path's guarantees for the slot.
		if loadSlot(slot) == v {
			return
		}
		if v != nil {
			v = v.Retain()
		}
	}

	var old Value
	if !atomic {
		old = loadSlot(slot)
		storeSlot(slot, v)
	} else {
		lock := a.locks.stripeFor(unsafe.Pointer(slot))
		lock.Lock()
		old = loadSlot(slot)
		storeSlot(slot, v)
		lock.Unlock()
	}

	if old != nil {
		old.Release()
	}
}

// loadSlot and storeSlot access a slot's two interface words. In normal
// builds they are plain accesses; atomicity comes from the stripe alone.
// Under the race detector they degrade to word-wise atomics so the
// documented unlocked accesses (the self-assignment comparison, the
// non-atomic paths) stay visible to it without being reported. A torn
// fast-path comparison at worst reads as unequal and takes the slow path.

//go:nosplit
func loadSlot(slot *Value) Value {
	w := (*[2]unsafe.Pointer)(unsafe.Pointer(slot))
	var v Value
	o := (*[2]unsafe.Pointer)(unsafe.Pointer(&v))
	o[0] = opt.LoadPtr(&w[0])
	o[1] = opt.LoadPtr(&w[1])
	return v
}

//go:nosplit
func storeSlot(slot *Value, v Value) {
	w := (*[2]unsafe.Pointer)(unsafe.Pointer(slot))
	n := (*[2]unsafe.Pointer)(unsafe.Pointer(&v))
	opt.StorePtr(&w[0], n[0])
	opt.StorePtr(&w[1], n[1])
}

var defaultAccessor = NewAccessor(Domain(DomainProperty))

// GetField reads the field slot at offset from obj's base, serialized on
// the process-wide [DomainProperty] table. See [Accessor.Get].
func GetField(obj Aggregate, offset uintptr, atomic bool) Value {
	return defaultAccessor.Get(obj, offset, atomic)
}

// SetField stores v into the field slot at offset from obj's base,
// serialized on the process-wide [DomainProperty] table. See
// [Accessor.Set].
func SetField(obj Aggregate, offset uintptr, v Value, atomic bool, mode CopyMode) {
	defaultAccessor.Set(obj, offset, v, atomic, mode)
}
