package models

import (
	"github.com/google/uuid"
)

// Member represents a league member participating in the draft.
// Membership itself is owned by the league service; the coordinator
// only reads the ordered roster.
type Member struct {
	ID           uuid.UUID `json:"id"`
	LeagueID     uuid.UUID `json:"league_id"`
	DisplayName  string    `json:"display_name"`
	TeamName     string    `json:"team_name"`
	DraftOrder   int       `json:"draft_order"` // 1..M, dense and unique
	Commissioner bool      `json:"commissioner"`
}
