// Package http serves the agent-to-agent protocol over HTTP.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/AgentRelay/internal/domain/message"
	"github.com/Strob0t/AgentRelay/internal/domain/task"
	"github.com/Strob0t/AgentRelay/internal/port/capability"
	"github.com/Strob0t/AgentRelay/internal/port/delegate"
	"github.com/Strob0t/AgentRelay/internal/port/replay"
	"github.com/Strob0t/AgentRelay/internal/service"
)

// Handler serves the protocol endpoints.
type Handler struct {
	protocol *service.Protocol
	executor delegate.Executor
	guard    replay.Guard
	caps     capability.Registry
	card     CardInfo

	// Health probes; either may be nil.
	AnnouncerUp  func() bool
	CircuitCount func() int
}

// CardInfo holds the static fields of the agent card.
type CardInfo struct {
	Name        string
	Description string
	BaseURL     string
	Version     string
}

// NewHandler creates the protocol HTTP handler. guard may be nil to
// disable replay suppression.
func NewHandler(p *service.Protocol, exec delegate.Executor, guard replay.Guard, caps capability.Registry, card CardInfo) *Handler {
	return &Handler{
		protocol: p,
		executor: exec,
		guard:    guard,
		caps:     caps,
		card:     card,
	}
}

// MountRoutes registers the protocol routes on the given chi router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/.well-known/agent.json", h.handleAgentCard)
	r.Post("/a2a/messages", h.handleMessage)
	r.Post("/a2a/tasks", h.handleTask)
	r.Get("/health", h.handleHealth)
}

func (h *Handler) handleAgentCard(w http.ResponseWriter, r *http.Request) {
	caps, err := h.caps.List(r.Context())
	if err != nil {
		slog.Error("agent card capability list failed", "error", err)
		caps = nil
	}
	writeJSON(w, http.StatusOK, BuildAgentCard(h.card, caps))
}

// handleMessage accepts one protocol message and routes it through the
// matching flow. The response is always a protocol message; flow failures
// surface as error envelopes, not HTTP errors.
func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	var m message.Message
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if h.guard != nil && m.ID != "" {
		seen, err := h.guard.Seen(r.Context(), m.ID)
		if err != nil {
			slog.Error("replay guard failed", "message_id", m.ID, "error", err)
		} else if seen {
			writeError(w, http.StatusConflict, "duplicate message")
			return
		}
	}

	var resp *message.Message
	switch m.Type {
	case message.TypeRequest:
		resp = h.protocol.HandleNegotiation(r.Context(), &m)
	case message.TypeCapabilityDiscovery:
		resp = h.protocol.HandleCapabilityDiscovery(r.Context(), &m)
	case message.TypeError:
		resp = h.protocol.HandleError(r.Context(), m.Error)
	default:
		writeError(w, http.StatusBadRequest, "unsupported message type")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleTask accepts a delegated task and reports its result. The result
// status is the caller-visible signal, so failed delegations still answer
// 200.
func (h *Handler) handleTask(w http.ResponseWriter, r *http.Request) {
	var t task.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res := h.protocol.HandleTaskDelegation(r.Context(), &t, h.executor)
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	body := map[string]any{"status": status}
	if h.AnnouncerUp != nil {
		up := h.AnnouncerUp()
		body["announcer_connected"] = up
		if !up {
			body["status"] = "degraded"
		}
	}
	if h.CircuitCount != nil {
		body["circuits_tracked"] = h.CircuitCount()
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
