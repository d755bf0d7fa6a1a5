package atomix

import (
	"github.com/llxisdsh/pb"
)

// Built-in lock domains. Each usage domain gets its own table so that
// contention in one (say, a hot property slot) can never block another
// (a struct copy that happens to hash alike).
const (
	// DomainProperty backs GetField and SetField.
	DomainProperty = "property"
	// DomainRegion backs CopyRegion.
	DomainRegion = "region"
	// DomainCustom backs CopyCustom.
	DomainCustom = "custom"
)

// domains holds the process-wide lock tables, keyed by domain name.
// Tables are created on first use and live for the process's lifetime;
// there is no teardown.
var domains pb.MapOf[string, *StripedMap]

// Domain returns the process-wide lock table registered under name,
// creating it on first use. All callers passing the same name share one
// table instance, which is required for them to actually exclude each
// other. Callers that want isolation from the built-in entry points can
// carve out a private domain under their own name, or construct a
// *StripedMap directly and feed it to NewAccessor / NewCopier.
func Domain(name string) *StripedMap {
	var m *StripedMap
	domains.ProcessEntry(
		name,
		func(l *pb.EntryOf[string, *StripedMap]) (*pb.EntryOf[string, *StripedMap], *StripedMap, bool) {
			if l != nil {
				m = l.Value
				return l, m, true
			}
			m = &StripedMap{}
			return &pb.EntryOf[string, *StripedMap]{Value: m}, m, false
		},
	)
	return m
}
