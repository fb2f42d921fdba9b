package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCollectorRecords(t *testing.T) {
	c := NewCollector(true)

	c.RecordRequest("catalog", 200, "hit", 12*time.Millisecond)
	c.RecordRequest("catalog", 502, "", 40*time.Millisecond)
	c.RecordUpstream("github", "success", 80*time.Millisecond)
	c.SetMemoEntries(4)
	c.RecordSnapshotFallback()

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body := w.Body.String()

	for _, want := range []string{
		`folio_relay_requests_total{cache="hit",endpoint="catalog",status="2xx"} 1`,
		`folio_relay_requests_total{cache="none",endpoint="catalog",status="5xx"} 1`,
		`folio_relay_upstream_requests_total{outcome="success",upstream="github"} 1`,
		`folio_relay_memo_entries 4`,
		`folio_relay_snapshot_fallbacks_total 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestCollectorDisabled(t *testing.T) {
	c := NewCollector(false)

	c.RecordRequest("catalog", 200, "hit", time.Millisecond)
	c.RecordSnapshotFallback()

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if strings.Contains(w.Body.String(), "folio_relay") {
		t.Error("disabled collector should not export relay metrics")
	}
}
