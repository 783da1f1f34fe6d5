package redis

// Key prefixes keep facet's cache entries isolated in a shared redis.
const (
	KeyPrefixSearch = "facet:search:"
)

// SearchKey builds the cache key for a search query digest.
func SearchKey(digest string) string {
	return KeyPrefixSearch + digest
}
