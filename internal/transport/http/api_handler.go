package http

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"
	"trivia-visualizer/internal/app"
	"trivia-visualizer/internal/domain"
	"trivia-visualizer/internal/render"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// SessionHeader carries the dashboard session id to and from clients.
const SessionHeader = "X-Session-ID"

// APIHandler serves the dashboard page, its JSON actions and the chart images.
type APIHandler struct {
	service *app.DashboardService
}

func NewAPIHandler(service *app.DashboardService) *APIHandler {
	return &APIHandler{service: service}
}

// Routes registers every dashboard endpoint on mux, including the websocket.
func Routes(mux *http.ServeMux, service *app.DashboardService) {
	api := NewAPIHandler(service)
	ws := NewWSHandler(service)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /{$}", api.Index)
	mux.HandleFunc("GET /api/state", api.State)
	mux.HandleFunc("POST /api/refresh", api.Refresh)
	mux.HandleFunc("POST /api/category", api.SelectCategory)
	mux.HandleFunc("GET /charts/categories.svg", api.CategoryChart)
	mux.HandleFunc("GET /charts/difficulties.svg", api.DifficultyChart)
	mux.HandleFunc("GET /ws", ws.ServeWS)
}

// Index renders the dashboard page bound to a fresh or existing session.
func (h *APIHandler) Index(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionFromRequest(r)
	w.Header().Set(SessionHeader, sessionID)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		SessionID string
		All       string
	}{SessionID: sessionID, All: domain.AllCategories}
	if err := indexTemplate.Execute(w, data); err != nil {
		log.Printf("render index failed: %v", err)
	}
}

// State opens the session's dashboard (loading it on first use) and returns its state.
func (h *APIHandler) State(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionFromRequest(r)
	state, err := h.service.Open(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set(SessionHeader, sessionID)
	writeJSON(w, http.StatusOK, state)
}

func (h *APIHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := requireSession(w, r)
	if !ok {
		return
	}
	state, err := h.service.Refresh(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *APIHandler) SelectCategory(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := requireSession(w, r)
	if !ok {
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}
	state, err := h.service.SelectCategory(r.Context(), sessionID, name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *APIHandler) CategoryChart(w http.ResponseWriter, r *http.Request) {
	h.chart(w, r, func(out io.Writer, s *domain.ProcessedSnapshot) error {
		return render.CategoryChart(out, s.Categories)
	})
}

func (h *APIHandler) DifficultyChart(w http.ResponseWriter, r *http.Request) {
	h.chart(w, r, func(out io.Writer, s *domain.ProcessedSnapshot) error {
		return render.DifficultyChart(out, s.Difficulties)
	})
}

func (h *APIHandler) chart(w http.ResponseWriter, r *http.Request, draw func(io.Writer, *domain.ProcessedSnapshot) error) {
	sessionID, ok := requireSession(w, r)
	if !ok {
		return
	}
	state, err := h.service.State(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	if state.ProcessedData == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var buf bytes.Buffer
	if err := draw(&buf, state.ProcessedData); err != nil {
		if errors.Is(err, domain.ErrNoData) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		log.Printf("render chart failed: %v", err)
		http.Error(w, "chart rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

func sessionFromRequest(r *http.Request) string {
	if id := r.URL.Query().Get("session"); id != "" {
		return id
	}
	if id := r.Header.Get(SessionHeader); id != "" {
		return id
	}
	return uuid.New().String()
}

func requireSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.URL.Query().Get("session")
	if id == "" {
		id = r.Header.Get(SessionHeader)
	}
	if id == "" {
		http.Error(w, "missing session", http.StatusBadRequest)
		return "", false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrDashboardNotFound) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, errorPayload{Message: err.Error()})
}
