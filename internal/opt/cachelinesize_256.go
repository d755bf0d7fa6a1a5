//go:build atomix_cachelinesize_256

package opt

// CacheLineSize_ is force-set via the atomix_cachelinesize_256 build tag.
// Use: go build -tags=atomix_cachelinesize_256
const CacheLineSize_ = 256
