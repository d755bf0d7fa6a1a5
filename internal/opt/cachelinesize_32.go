//go:build atomix_cachelinesize_32

package opt

// CacheLineSize_ is force-set via the atomix_cachelinesize_32 build tag.
// Use: go build -tags=atomix_cachelinesize_32
const CacheLineSize_ = 32
