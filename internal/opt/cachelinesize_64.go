//go:build atomix_cachelinesize_64

package opt

// CacheLineSize_ is force-set via the atomix_cachelinesize_64 build tag.
// Use: go build -tags=atomix_cachelinesize_64
const CacheLineSize_ = 64
