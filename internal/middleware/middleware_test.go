package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"otaku-manga/internal/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestStatusRecorder(t *testing.T) {
	rr := httptest.NewRecorder()
	rec := newStatusRecorder(rr)

	rec.WriteHeader(http.StatusNotFound)
	rec.WriteHeader(http.StatusOK)
	if _, err := rec.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}

	if rec.status != http.StatusNotFound || rr.Code != http.StatusNotFound {
		t.Errorf("status = %d/%d, want 404", rec.status, rr.Code)
	}
	if rec.bytes != 5 {
		t.Errorf("bytes = %d, want 5", rec.bytes)
	}
}

func TestLoggerWritesW3CLine(t *testing.T) {
	buf := captureLog(t)

	handler := Logger(DefaultLoggingConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("abc"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/mangas?q=one", nil)
	req.Header.Set("User-Agent", "Test Agent")
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	for _, want := range []string{" 10.0.0.1 GET /api/mangas q=one 418 3 ", `"Test Agent"`} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %q", line, want)
		}
	}
}

func TestLoggerSkips(t *testing.T) {
	tests := []struct {
		name   string
		config LoggingConfig
		path   string
		logged bool
	}{
		{"static off", DefaultLoggingConfig(), "/content/a/ch-1/001.jpg", false},
		{"static on", LoggingConfig{StaticPrefix: "/content/", LogStaticFiles: true, LogHealthChecks: true}, "/content/a/ch-1/001.jpg", true},
		{"health on", DefaultLoggingConfig(), "/health", true},
		{"health off", LoggingConfig{LogHealthChecks: false}, "/livez", false},
		{"metrics skipped", DefaultLoggingConfig(), "/metrics", false},
		{"api logged", DefaultLoggingConfig(), "/api/tags", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)
			handler := Logger(tt.config)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			if got := buf.Len() > 0; got != tt.logged {
				t.Errorf("logged = %v, want %v", got, tt.logged)
			}
		})
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := map[string]string{
		"plain":          "plain",
		"line1\nline2":   "line1 line2",
		"a\r\nb":         "a  b",
		"esc\x1b[31mred": "esc[31mred",
		"nul\x00byte":    "nulbyte",
		"tab\tkept":      "tab\tkept",
		"del\x7fchar":    "delchar",
	}
	for in, want := range tests {
		if got := sanitizeLogField(in); got != want {
			t.Errorf("sanitizeLogField(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:4321"
	if got := clientIP(req); got != "192.168.1.5" {
		t.Errorf("clientIP() = %q", got)
	}

	req.Header.Set("X-Real-IP", "172.16.0.1")
	if got := clientIP(req); got != "172.16.0.1" {
		t.Errorf("clientIP() with X-Real-IP = %q", got)
	}
}

func TestEscapeW3CField(t *testing.T) {
	if got := escapeW3CField("curl/8.0"); got != "curl/8.0" {
		t.Errorf("escapeW3CField(simple) = %q", got)
	}
	if got := escapeW3CField(`a "b" c`); got != `"a ""b"" c"` {
		t.Errorf("escapeW3CField(quoted) = %q", got)
	}
}

func serveCompressed(t *testing.T, contentType string, body []byte, acceptGzip bool) *httptest.ResponseRecorder {
	t.Helper()
	handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(body)
	}))

	req := httptest.NewRequest(http.MethodGet, "/feed.xml", nil)
	if acceptGzip {
		req.Header.Set("Accept-Encoding", "gzip, deflate")
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestCompressionLargeXML(t *testing.T) {
	body := bytes.Repeat([]byte("<item>chapter</item>"), 200)
	rr := serveCompressed(t, "application/rss+xml; charset=utf-8", body, true)

	if rr.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", rr.Header().Get("Content-Encoding"))
	}
	zr, err := gzip.NewReader(rr.Body)
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, body) {
		t.Error("decompressed body differs")
	}
}

func TestCompressionChunkedJSON(t *testing.T) {
	chunk := bytes.Repeat([]byte("a"), 100)
	handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		for i := 0; i < 50; i++ {
			_, _ = w.Write(chunk)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/mangas", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", rr.Header().Get("Content-Encoding"))
	}
	if rr.Header().Get("Vary") != "Accept-Encoding" {
		t.Errorf("Vary = %q, want Accept-Encoding", rr.Header().Get("Vary"))
	}
	zr, err := gzip.NewReader(rr.Body)
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 5000 {
		t.Errorf("decompressed %d bytes, want 5000", len(got))
	}
}

func TestCompressionPassThrough(t *testing.T) {
	large := bytes.Repeat([]byte("x"), 4096)

	tests := []struct {
		name        string
		contentType string
		body        []byte
		accept      bool
	}{
		{"small body", "application/json", []byte(`{"ok":true}`), true},
		{"image", "image/jpeg", large, true},
		{"client without gzip", "application/json", large, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serveCompressed(t, tt.contentType, tt.body, tt.accept)
			if rr.Header().Get("Content-Encoding") != "" {
				t.Errorf("unexpected Content-Encoding %q", rr.Header().Get("Content-Encoding"))
			}
			if !bytes.Equal(rr.Body.Bytes(), tt.body) {
				t.Error("body altered")
			}
		})
	}
}

func TestCompressionKeepsStatus(t *testing.T) {
	handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"missing"}`))
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/mangas/x", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Metrics(DefaultMetricsConfig()))
	r.HandleFunc("/api/mangas/{slug}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	counter := metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/mangas/{slug}", "200")
	before := testutil.ToFloat64(counter)

	for _, slug := range []string{"berserk", "yotsuba", "blame"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/mangas/"+slug, nil))
	}

	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Errorf("counter delta = %v, want 3", got)
	}
}

func TestMetricsSkipPaths(t *testing.T) {
	called := false
	handler := Metrics(DefaultMetricsConfig())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	counter := metrics.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "200")
	before := testutil.ToFloat64(counter)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if !called {
		t.Error("next handler not called")
	}
	if testutil.ToFloat64(counter) != before {
		t.Error("skipped path was recorded")
	}
}

func BenchmarkLoggingMiddleware(b *testing.B) {
	log.SetOutput(io.Discard)
	defer log.SetOutput(os.Stderr)

	handler := Logger(DefaultLoggingConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/mangas", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
}
