package models

import (
	"time"

	"github.com/google/uuid"
)

// TurnSlot is one position in the draft order. The full slot sequence is
// generated once at draft creation and never changes.
type TurnSlot struct {
	Overall     int       `json:"overall"`       // 1-based overall pick number
	Round       int       `json:"round"`         // 1-based
	PickInRound int       `json:"pick_in_round"` // 1-based within the round
	MemberID    uuid.UUID `json:"member_id"`
}

// Pick records the resolution of one TurnSlot. SportTeamID is nil when
// the turn timed out under AUTO_SKIP; the slot still counts as resolved
// so the pick pointer can be rebuilt from the committed log.
type Pick struct {
	Overall     int        `json:"overall"`
	MemberID    uuid.UUID  `json:"member_id"`
	SportTeamID *uuid.UUID `json:"sport_team_id,omitempty"`
	AutoPick    bool       `json:"auto_pick"`
	CommittedAt time.Time  `json:"committed_at"`
}

// Skipped reports whether the slot resolved without a team.
func (p Pick) Skipped() bool {
	return p.SportTeamID == nil
}
