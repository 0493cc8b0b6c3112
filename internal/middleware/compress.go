package middleware

import (
	"compress/gzip"
	"strings"

	"github.com/gin-gonic/gin"
)

type gzipWriter struct {
	gin.ResponseWriter
	writer *gzip.Writer
}

func (g *gzipWriter) Write(data []byte) (int, error) {
	g.Header().Del("Content-Length")
	return g.writer.Write(data)
}

func (g *gzipWriter) WriteString(s string) (int, error) {
	return g.Write([]byte(s))
}

// CompressConfig represents compression configuration
type CompressConfig struct {
	Level     int
	Blacklist []string
}

// DefaultCompressConfig skips the probes and the metrics scrape.
func DefaultCompressConfig() CompressConfig {
	return CompressConfig{
		Level: gzip.DefaultCompression,
		Blacklist: []string{
			"/api/v1/health",
			"/metrics",
		},
	}
}

// Compress gzips responses for clients that accept it. WebSocket upgrades
// pass through untouched.
func Compress(config CompressConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, path := range config.Blacklist {
			if strings.HasPrefix(c.Request.URL.Path, path) {
				c.Next()
				return
			}
		}

		if c.GetHeader("Upgrade") != "" ||
			!strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
			c.Next()
			return
		}

		gz, err := gzip.NewWriterLevel(c.Writer, config.Level)
		if err != nil {
			c.Next()
			return
		}

		c.Header("Content-Encoding", "gzip")
		c.Writer.Header().Add("Vary", "Accept-Encoding")
		c.Writer = &gzipWriter{c.Writer, gz}
		defer func() {
			_ = gz.Close()
		}()

		c.Next()
	}
}
