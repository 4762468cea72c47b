package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware.
// KeyStrategy determines which parts of the request contribute to the
// cache key.
type CacheConfig struct {
	Enabled      bool          `env:"CACHE_ENABLED" envDefault:"true"`
	MethodList   []string      `env:"CACHE_METHODS" envDefault:"GET"`
	TTL          time.Duration `env:"CACHE_TTL" envDefault:"30s"`
	KeyStrategy  string        `env:"CACHE_KEY_STRATEGY" envDefault:"route_query"`
	Prefix       string        `env:"CACHE_PREFIX" envDefault:"cache"`
	MaxBodyBytes int           `env:"CACHE_MAX_BODY_BYTES" envDefault:"1048576"`

	methods map[string]bool
}

func (c *CacheConfig) normalize() {
	c.methods = map[string]bool{}
	for _, m := range c.MethodList {
		m = strings.TrimSpace(strings.ToUpper(m))
		if m != "" {
			c.methods[m] = true
		}
	}
	if c.TTL <= 0 {
		c.TTL = time.Second
	}
}

// Caches reports whether responses to method are cached.
func (c CacheConfig) Caches(method string) bool {
	if c.methods == nil {
		c.normalize()
	}
	return c.methods[strings.ToUpper(method)]
}
