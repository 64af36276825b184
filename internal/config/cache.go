package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching is
// disabled. Methods lists the HTTP methods to cache (e.g. GET, HEAD). TTL
// is the lifetime of cache entries. Prefix, followed by a per-process id,
// namespaces the keys that mutations invalidate. KeyStrategy selects the key parts
// (route, method_route, method_route_query, route_query). MaxBodyBytes
// caps the size of cached bodies.
type CacheConfig struct {
	Enabled      bool          `env:"ENABLED" envDefault:"false"`
	Methods      []string      `env:"METHODS" envDefault:"GET" envSeparator:","`
	TTL          time.Duration `env:"TTL" envDefault:"30s"`
	Prefix       string        `env:"PREFIX" envDefault:"cache"`
	KeyStrategy  string        `env:"KEY_STRATEGY" envDefault:"route_query"`
	MaxBodyBytes int           `env:"MAX_BODY_BYTES" envDefault:"1048576"`
}

// Caches reports whether responses to method are cached.
func (c CacheConfig) Caches(method string) bool {
	for _, m := range c.Methods {
		if strings.EqualFold(strings.TrimSpace(m), method) {
			return true
		}
	}
	return false
}
