package handlers

import (
	"net/http"
	"time"

	"folio-hq/relay/pkg/proxy"
)

// healthBody is the JSON shape of the health endpoints.
type healthBody struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// HealthHandler answers liveness probes. It carries no dependencies: a
// process that can serve it is alive.
type HealthHandler struct{}

// NewHealthHandler creates the liveness endpoint handler.
func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	_ = proxy.WriteJSON(w, http.StatusOK, healthBody{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadyHandler answers readiness probes. The relay is ready as soon as
// its HTTP stack is up; upstream credentials are checked per request so
// a missing token degrades individual endpoints, not the whole process.
type ReadyHandler struct {
	svc *Service
}

// NewReadyHandler creates the readiness endpoint handler.
func NewReadyHandler(svc *Service) *ReadyHandler {
	svc.normalize()
	return &ReadyHandler{svc: svc}
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	_ = proxy.WriteJSON(w, http.StatusOK, healthBody{
		Status: "ready",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
