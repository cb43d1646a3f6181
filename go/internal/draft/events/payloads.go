// Package events defines the coordinator's outbound event contract,
// shared by the in-process room, the admin API, and the NATS publisher.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DraftEvent is the envelope for everything broadcast to draft clients.
type DraftEvent struct {
	ID        string          `json:"id"`
	LeagueID  string          `json:"league_id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// EventType represents the type of draft event.
type EventType string

const (
	// EventTypeSnapshot carries the full draft state. Sent to a client on
	// join and broadcast to the league after every state-affecting
	// operation.
	EventTypeSnapshot EventType = "snapshot"
	// EventTypeError is sent only to the client whose command was
	// rejected.
	EventTypeError EventType = "error"
)

// MemberInfo is the roster entry inside a snapshot.
type MemberInfo struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name"`
	TeamName     string `json:"team_name"`
	DraftOrder   int    `json:"draft_order"`
	Commissioner bool   `json:"commissioner"`
}

// SlotInfo describes one turn slot with its member resolved to a name.
type SlotInfo struct {
	Overall     int    `json:"overall"`
	Round       int    `json:"round"`
	PickInRound int    `json:"pick_in_round"`
	MemberID    string `json:"member_id"`
	DisplayName string `json:"display_name"`
}

// TeamInfo is a draftable team still in the pool.
type TeamInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ConferenceID   string `json:"conference_id,omitempty"`
	ConferenceName string `json:"conference_name,omitempty"`
}

// PickInfo is a committed pick. TeamID is empty for skipped slots.
type PickInfo struct {
	Overall     int       `json:"overall"`
	MemberID    string    `json:"member_id"`
	TeamID      string    `json:"team_id,omitempty"`
	TeamName    string    `json:"team_name,omitempty"`
	AutoPick    bool      `json:"auto_pick"`
	CommittedAt time.Time `json:"committed_at"`
}

// SnapshotPayload is the full state projection clients render from. It
// always carries ServerNow so clients can offset their local clock when
// counting down to ExpiresAt.
type SnapshotPayload struct {
	LeagueID       string       `json:"league_id"`
	Status         string       `json:"status"`
	TotalSlots     int          `json:"total_slots"`
	CurrentSlot    *SlotInfo    `json:"current_slot,omitempty"`
	OnDeck         *SlotInfo    `json:"on_deck,omitempty"`
	InTheHole      *SlotInfo    `json:"in_the_hole,omitempty"`
	ExpiresAt      *time.Time   `json:"expires_at,omitempty"`
	ServerNow      time.Time    `json:"server_now"`
	AvailableTeams []TeamInfo   `json:"available_teams"`
	Picks          []PickInfo   `json:"picks"`
	Members        []MemberInfo `json:"members"`
}

// ErrorPayload reports a rejected command to its sender.
type ErrorPayload struct {
	Message string `json:"message"`
}

// NewSnapshotEvent wraps a snapshot payload in an event envelope.
func NewSnapshotEvent(leagueID uuid.UUID, snap *SnapshotPayload) (*DraftEvent, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	return &DraftEvent{
		ID:        uuid.New().String(),
		LeagueID:  leagueID.String(),
		Type:      EventTypeSnapshot,
		Timestamp: snap.ServerNow,
		Data:      data,
	}, nil
}

// NewErrorEvent wraps an error message in an event envelope.
func NewErrorEvent(leagueID uuid.UUID, message string) *DraftEvent {
	data, _ := json.Marshal(ErrorPayload{Message: message})
	return &DraftEvent{
		ID:        uuid.New().String(),
		LeagueID:  leagueID.String(),
		Type:      EventTypeError,
		Timestamp: time.Now(),
		Data:      data,
	}
}
