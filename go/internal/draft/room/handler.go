package room

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/courtsideapp/courtside/go/internal/draft/engine"
	"github.com/courtsideapp/courtside/go/internal/draft/events"
)

// Handler upgrades draft clients into the room and routes their commands
// to the league engine.
type Handler struct {
	room    *Room
	manager *engine.Manager
}

// NewHandler creates a new websocket handler.
func NewHandler(room *Room, manager *engine.Manager) *Handler {
	return &Handler{
		room:    room,
		manager: manager,
	}
}

// HandleDraftConnection joins a league member to their draft room. The
// client identifies itself with league_id and member_id query params;
// production deployments put an auth proxy in front of this.
func (h *Handler) HandleDraftConnection(w http.ResponseWriter, r *http.Request) {
	leagueID, err := uuid.Parse(r.URL.Query().Get("league_id"))
	if err != nil {
		http.Error(w, "league_id is required", http.StatusBadRequest)
		return
	}
	memberID, err := uuid.Parse(r.URL.Query().Get("member_id"))
	if err != nil {
		http.Error(w, "member_id is required", http.StatusBadRequest)
		return
	}

	eng, err := h.manager.Get(r.Context(), leagueID)
	if err != nil {
		log.Error().Err(err).Str("league_id", leagueID.String()).Msg("failed to load draft for connection")
		http.Error(w, "draft not found", http.StatusNotFound)
		return
	}
	if _, ok := eng.Member(memberID); !ok {
		http.Error(w, "not a member of this league", http.StatusForbidden)
		return
	}

	conn, err := h.room.Join(w, r, leagueID, memberID, func(c *Connection, cmd ClientCommand) {
		h.handleCommand(eng, c, cmd)
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("league_id", leagueID.String()).
			Str("member_id", memberID.String()).
			Msg("failed to upgrade websocket connection")
		return
	}

	// The joiner immediately gets the full state so it can render without
	// waiting for the next broadcast.
	if event, err := events.NewSnapshotEvent(leagueID, eng.Snapshot()); err == nil {
		conn.deliver(event)
	}
}

// handleCommand executes one client command against the engine. A
// rejected command produces an error event for the sender alone; an
// accepted one reaches everyone through the engine's broadcast.
func (h *Handler) handleCommand(eng *engine.Engine, c *Connection, cmd ClientCommand) {
	var err error
	switch cmd.Action {
	case "leave":
		h.room.Leave(c)
		return
	case "start":
		_, err = eng.Start(c.MemberID)
	case "pause":
		_, err = eng.Pause(c.MemberID)
	case "resume":
		_, err = eng.Resume(c.MemberID)
	case "submit_pick":
		var teamID uuid.UUID
		teamID, err = uuid.Parse(cmd.TeamID)
		if err != nil {
			err = fmt.Errorf("invalid team_id %q", cmd.TeamID)
			break
		}
		_, err = eng.SubmitPick(c.MemberID, teamID)
	default:
		err = fmt.Errorf("unknown action %q", cmd.Action)
	}

	if err != nil {
		log.Debug().
			Err(err).
			Str("member_id", c.MemberID.String()).
			Str("action", cmd.Action).
			Msg("client command rejected")
		c.deliver(events.NewErrorEvent(c.LeagueID, err.Error()))
	}
}

// HandleStats reports active connection counts.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	total, leagues := h.room.Stats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"total_connections":  total,
		"league_connections": leagues,
	})
}

// RegisterRoutes registers the room's routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/draft", h.HandleDraftConnection)
	mux.HandleFunc("/ws/stats", h.HandleStats)
}
