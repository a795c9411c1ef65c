package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/sfl-lite/internal/service"
	"github.com/example/sfl-lite/internal/storage"
	"github.com/example/sfl-lite/sfl/domain"
	"github.com/example/sfl-lite/sfl/report"
)

// SessionSummary is the JSON form of a recorded session.
type SessionSummary struct {
	ID           string    `json:"id"`
	Project      string    `json:"project"`
	Heuristic    string    `json:"heuristic"`
	Status       string    `json:"status"`
	TotalTests   int       `json:"total_tests"`
	FailedTests  int       `json:"failed_tests"`
	Requirements int       `json:"requirements"`
	ElapsedMs    int64     `json:"elapsed_ms"`
	CreatedAt    time.Time `json:"created_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// ListSessionsResponse is the response for GET /api/sessions
type ListSessionsResponse struct {
	Sessions []SessionSummary `json:"sessions"`
}

// HeuristicInfo describes one heuristic.
type HeuristicInfo struct {
	Name    string `json:"name"`
	Formula string `json:"formula"`
}

func convertSession(rec *storage.SessionRecord) SessionSummary {
	return SessionSummary{
		ID:           rec.ID,
		Project:      rec.Project,
		Heuristic:    rec.Heuristic,
		Status:       rec.Status.String(),
		TotalTests:   rec.TotalTests,
		FailedTests:  rec.FailedTests,
		Requirements: rec.Requirements,
		ElapsedMs:    rec.Elapsed.Milliseconds(),
		CreatedAt:    rec.CreatedAt,
		FinishedAt:   rec.FinishedAt,
	}
}

// Handlers contains HTTP handlers for the web API
type Handlers struct {
	history *service.HistoryService
	logger  *slog.Logger
}

// NewHandlers creates new API handlers
func NewHandlers(history *service.HistoryService, logger *slog.Logger) *Handlers {
	return &Handlers{history: history, logger: logger}
}

// ListSessions handles GET /api/sessions?project=&status=&limit=&offset=
func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := storage.ListOptions{Project: q.Get("project")}
	if v := q.Get("status"); v != "" {
		status, err := domain.ParseSessionStatus(strings.ToUpper(v))
		if err != nil {
			h.writeError(w, err)
			return
		}
		opts.Statuses = []domain.SessionStatus{status}
	}
	var err error
	if opts.Limit, err = intParam(q.Get("limit")); err != nil {
		h.writeError(w, err)
		return
	}
	if opts.Offset, err = intParam(q.Get("offset")); err != nil {
		h.writeError(w, err)
		return
	}

	records, err := h.history.List(r.Context(), opts)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response := ListSessionsResponse{Sessions: make([]SessionSummary, 0, len(records))}
	for _, rec := range records {
		response.Sessions = append(response.Sessions, convertSession(rec))
	}
	writeJSON(w, http.StatusOK, response)
}

// GetSession handles GET /api/sessions/:id
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	rec, err := h.history.Get(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convertSession(rec))
}

// RankSession handles GET /api/sessions/:id/rank?heuristic=&top=
func (h *Handlers) RankSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	top, err := intParam(r.URL.Query().Get("top"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	result, err := h.history.Rank(r.Context(), sessionID, r.URL.Query().Get("heuristic"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	rep := report.New(result)
	if top > 0 && top < len(rep.Entries) {
		rep.Entries = rep.Entries[:top]
	}
	writeJSON(w, http.StatusOK, rep)
}

// DeleteSession handles DELETE /api/sessions/:id
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := h.history.Delete(r.Context(), sessionID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListHeuristics handles GET /api/heuristics
func (h *Handlers) ListHeuristics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	all := h.history.Heuristics()
	out := make([]HeuristicInfo, 0, len(all))
	for _, hh := range all {
		out = append(out, HeuristicInfo{Name: hh.Name, Formula: hh.Description})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrUnknownHeuristic):
		code = http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionAborted):
		code = http.StatusConflict
	}
	if code == http.StatusInternalServerError {
		h.logger.Error("history request failed", "error", err)
		http.Error(w, "internal error", code)
		return
	}
	http.Error(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: expected a non-negative integer, got %q", domain.ErrInvalidArgument, v)
	}
	return n, nil
}
