package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CacheConfig represents cache control configuration
type CacheConfig struct {
	MaxAge               int
	Private              bool
	NoStore              bool
	MustRevalidate       bool
	NoCache              bool
	StaleWhileRevalidate int
	StaleIfError         int
	Vary                 []string
}

// DefaultCacheConfig keeps browsers from caching clinical data beyond the
// collection TTL.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxAge:         0,
		Private:        true,
		NoCache:        true,
		MustRevalidate: true,
		Vary:           []string{"Accept", "Origin"},
	}
}

// Cache adds cache control headers to responses
func Cache(config CacheConfig) gin.HandlerFunc {
	value := config.directives()
	vary := strings.Join(config.Vary, ", ")

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Header("Cache-Control", "no-store")
			c.Next()
			return
		}

		if value != "" {
			c.Header("Cache-Control", value)
		}
		if vary != "" {
			c.Writer.Header().Add("Vary", vary)
		}

		c.Next()
	}
}

func (config CacheConfig) directives() string {
	directives := make([]string, 0, 6)

	if config.Private {
		directives = append(directives, "private")
	} else {
		directives = append(directives, "public")
	}
	if config.MaxAge > 0 {
		directives = append(directives, "max-age="+strconv.Itoa(config.MaxAge))
	}
	if config.NoStore {
		directives = append(directives, "no-store")
	}
	if config.NoCache {
		directives = append(directives, "no-cache")
	}
	if config.MustRevalidate {
		directives = append(directives, "must-revalidate")
	}
	if config.StaleWhileRevalidate > 0 {
		directives = append(directives, "stale-while-revalidate="+strconv.Itoa(config.StaleWhileRevalidate))
	}
	if config.StaleIfError > 0 {
		directives = append(directives, "stale-if-error="+strconv.Itoa(config.StaleIfError))
	}

	return strings.Join(directives, ", ")
}
