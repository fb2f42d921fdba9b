package middleware

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestRequestIDMiddleware(t *testing.T) {
	t.Run("generates uuid when absent", func(t *testing.T) {
		var seen string
		handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/catalog", nil))

		uuidPattern := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
		if !uuidPattern.MatchString(seen) {
			t.Errorf("request ID %q is not a UUID", seen)
		}
		if got := w.Header().Get(RequestIDHeader); got != seen {
			t.Errorf("response header %q != context value %q", got, seen)
		}
	})

	t.Run("honors client-provided ID", func(t *testing.T) {
		handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := GetRequestID(r.Context()); got != "client-123" {
				t.Errorf("request ID = %q, want client-123", got)
			}
		}))

		r := httptest.NewRequest("GET", "/catalog", nil)
		r.Header.Set(RequestIDHeader, "client-123")
		handler.ServeHTTP(httptest.NewRecorder(), r)
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/catalog", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}
	if body := w.Body.String(); body == "" || regexp.MustCompile(`boom`).MatchString(body) {
		t.Errorf("body should hide panic detail, got %q", body)
	}
}

func TestCORSMiddleware(t *testing.T) {
	pass := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("wildcard origin", func(t *testing.T) {
		handler := CORSMiddleware(DefaultCORSConfig())(pass)
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/catalog", nil)
		r.Header.Set("Origin", "https://example.org")
		handler.ServeHTTP(w, r)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://example.org" {
			t.Errorf("Allow-Origin = %q", got)
		}
		exposed := w.Header().Get("Access-Control-Expose-Headers")
		if !regexp.MustCompile(`ETag`).MatchString(exposed) {
			t.Errorf("ETag not exposed: %q", exposed)
		}
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		handler := CORSMiddleware(DefaultCORSConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not run for preflight")
		}))
		w := httptest.NewRecorder()
		r := httptest.NewRequest("OPTIONS", "/catalog", nil)
		r.Header.Set("Origin", "https://example.org")
		handler.ServeHTTP(w, r)

		if w.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", w.Code)
		}
		if w.Header().Get("Access-Control-Allow-Methods") == "" {
			t.Error("missing Allow-Methods on preflight")
		}
	})

	t.Run("origin not in list", func(t *testing.T) {
		cfg := &CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"https://folio.example"},
			AllowedMethods: []string{"GET"},
		}
		handler := CORSMiddleware(cfg)(pass)
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/catalog", nil)
		r.Header.Set("Origin", "https://evil.example")
		handler.ServeHTTP(w, r)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q, want empty", got)
		}
	})

	t.Run("disabled passes through", func(t *testing.T) {
		handler := CORSMiddleware(&CORSConfig{Enabled: false})(pass)
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/catalog", nil)
		r.Header.Set("Origin", "https://example.org")
		handler.ServeHTTP(w, r)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q, want empty when disabled", got)
		}
	})
}

func TestTimeoutMiddleware(t *testing.T) {
	t.Run("fast handler unaffected", func(t *testing.T) {
		handler := TimeoutMiddleware(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/catalog", nil))
		if w.Code != http.StatusOK {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("slow handler times out", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)

		handler := TimeoutMiddleware(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-release:
			}
		}))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/catalog", nil))
		if w.Code != http.StatusGatewayTimeout {
			t.Errorf("status = %d, want 504", w.Code)
		}
	})

	t.Run("writes after the deadline are discarded", func(t *testing.T) {
		release := make(chan struct{})
		finished := make(chan error, 1)

		handler := TimeoutMiddleware(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusOK)
			_, err := w.Write([]byte("too late"))
			finished <- err
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/catalog", nil))
		if w.Code != http.StatusGatewayTimeout {
			t.Fatalf("status = %d, want 504", w.Code)
		}

		close(release)
		if err := <-finished; err != http.ErrHandlerTimeout {
			t.Errorf("late write error = %v, want http.ErrHandlerTimeout", err)
		}
		if got := w.Body.String(); strings.Contains(got, "too late") {
			t.Errorf("late handler output leaked into the response: %q", got)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
	})
}

func TestLoggingMiddlewareStatusCapture(t *testing.T) {
	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetStartTime(r.Context()).IsZero() {
			t.Error("start time missing from context")
		}
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/catalog", nil))
	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", w.Code)
	}
}
