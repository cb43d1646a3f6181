// Package admin exposes the commissioner's draft controls over plain
// HTTP, for tooling and dashboards that do not hold a websocket.
package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/courtsideapp/courtside/go/internal/draft/engine"
)

// Handler serves the draft admin API.
type Handler struct {
	manager *engine.Manager
}

// NewHandler creates a new admin handler.
func NewHandler(manager *engine.Manager) *Handler {
	return &Handler{manager: manager}
}

// controlRequest identifies the acting member for a control operation.
type controlRequest struct {
	MemberID string `json:"member_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleStart handles POST /api/leagues/{league_id}/draft/start.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, func(eng *engine.Engine, memberID uuid.UUID) (any, error) {
		return eng.Start(memberID)
	})
}

// HandlePause handles POST /api/leagues/{league_id}/draft/pause.
func (h *Handler) HandlePause(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, func(eng *engine.Engine, memberID uuid.UUID) (any, error) {
		return eng.Pause(memberID)
	})
}

// HandleResume handles POST /api/leagues/{league_id}/draft/resume.
func (h *Handler) HandleResume(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, func(eng *engine.Engine, memberID uuid.UUID) (any, error) {
		return eng.Resume(memberID)
	})
}

// HandleState handles GET /api/leagues/{league_id}/draft/state.
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.loadEngine(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, eng.Snapshot())
}

// control runs one lifecycle operation and writes the resulting snapshot
// synchronously; the same snapshot also reaches the room through the
// engine's broadcast.
func (h *Handler) control(w http.ResponseWriter, r *http.Request, op func(*engine.Engine, uuid.UUID) (any, error)) {
	eng, ok := h.loadEngine(w, r)
	if !ok {
		return
	}

	var req controlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	memberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "member_id is required"})
		return
	}

	snap, err := op(eng, memberID)
	if err != nil {
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) loadEngine(w http.ResponseWriter, r *http.Request) (*engine.Engine, bool) {
	leagueID, err := uuid.Parse(r.PathValue("league_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid league id"})
		return nil, false
	}

	eng, err := h.manager.Get(r.Context(), leagueID)
	if err != nil {
		log.Error().Err(err).Str("league_id", leagueID.String()).Msg("failed to load draft")
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "draft not found"})
		return nil, false
	}
	return eng, true
}

// statusForError maps the engine's rejection taxonomy onto HTTP codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, engine.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrInvalidTransition),
		errors.Is(err, engine.ErrNotLive),
		errors.Is(err, engine.ErrNotYourTurn),
		errors.Is(err, engine.ErrTeamUnavailable),
		errors.Is(err, engine.ErrConferenceCap):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// RegisterRoutes registers the admin API on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/leagues/{league_id}/draft/start", h.HandleStart)
	mux.HandleFunc("POST /api/leagues/{league_id}/draft/pause", h.HandlePause)
	mux.HandleFunc("POST /api/leagues/{league_id}/draft/resume", h.HandleResume)
	mux.HandleFunc("GET /api/leagues/{league_id}/draft/state", h.HandleState)
}
