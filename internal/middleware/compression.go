package middleware

import (
	"compress/gzip"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"
)

// CompressionConfig holds configuration for the compression middleware
type CompressionConfig struct {
	// MinSize is the smallest body, in bytes, worth compressing.
	MinSize int
	// Types are the media types eligible for compression.
	Types map[string]bool
}

// DefaultCompressionConfig compresses the API and feed formats. Page images
// are already compressed and are never listed.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize: 1024,
		Types: map[string]bool{
			"application/json":     true,
			"application/xml":      true,
			"application/rss+xml":  true,
			"text/xml":             true,
			"text/plain":           true,
			"text/html":            true,
			"application/atom+xml": true,
		},
	}
}

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		return gzip.NewWriter(io.Discard)
	},
}

// gzipWriter buffers up to MinSize bytes, then commits to compressed or
// plain output based on size and Content-Type.
type gzipWriter struct {
	http.ResponseWriter
	config    CompressionConfig
	status    int
	buf       []byte
	committed bool
	gz        *gzip.Writer
}

func (g *gzipWriter) WriteHeader(code int) {
	if !g.committed {
		g.status = code
	}
}

func (g *gzipWriter) Write(p []byte) (int, error) {
	if g.committed {
		if g.gz != nil {
			return g.gz.Write(p)
		}
		return g.ResponseWriter.Write(p)
	}
	g.buf = append(g.buf, p...)
	if len(g.buf) >= g.config.MinSize {
		if err := g.commit(); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// eligible decides on the buffered size since commit clears the buffer.
func (g *gzipWriter) eligible(size int) bool {
	if size < g.config.MinSize || g.Header().Get("Content-Encoding") != "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(g.Header().Get("Content-Type"))
	return err == nil && g.config.Types[strings.ToLower(mediaType)]
}

func (g *gzipWriter) commit() error {
	g.committed = true
	buffered := g.buf
	g.buf = nil

	if g.eligible(len(buffered)) {
		h := g.Header()
		h.Del("Content-Length")
		h.Set("Content-Encoding", "gzip")
		h.Add("Vary", "Accept-Encoding")
		g.ResponseWriter.WriteHeader(g.status)

		g.gz = gzipWriterPool.Get().(*gzip.Writer)
		g.gz.Reset(g.ResponseWriter)
		_, err := g.gz.Write(buffered)
		return err
	}

	g.ResponseWriter.WriteHeader(g.status)
	_, err := g.ResponseWriter.Write(buffered)
	return err
}

func (g *gzipWriter) Flush() {
	if !g.committed {
		_ = g.commit()
	}
	if g.gz != nil {
		_ = g.gz.Flush()
	}
	if f, ok := g.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (g *gzipWriter) close() error {
	if !g.committed {
		if err := g.commit(); err != nil {
			return err
		}
	}
	if g.gz == nil {
		return nil
	}
	err := g.gz.Close()
	gzipWriterPool.Put(g.gz)
	g.gz = nil
	return err
}

// Compression returns a middleware that gzips eligible responses for clients
// that accept it. HEAD requests and range requests pass through untouched.
func Compression(config CompressionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead || r.Header.Get("Range") != "" ||
				!strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}

			gzw := &gzipWriter{ResponseWriter: w, config: config, status: http.StatusOK}
			defer func() { _ = gzw.close() }()
			next.ServeHTTP(gzw, r)
		})
	}
}
