//go:build atomix_cachelinesize_128

package opt

// CacheLineSize_ is force-set via the atomix_cachelinesize_128 build tag.
// Use: go build -tags=atomix_cachelinesize_128
const CacheLineSize_ = 128
