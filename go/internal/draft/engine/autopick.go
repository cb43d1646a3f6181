package engine

import (
	"github.com/google/uuid"

	"github.com/courtsideapp/courtside/go/internal/draft/eligibility"
	"github.com/courtsideapp/courtside/go/internal/models"
)

// autoPickTeam selects the team an expired AUTO_PICK turn receives: the
// eligible team with the lowest UUID in string order. The rule must stay
// deterministic so a replayed draft resolves identically. Returns nil
// when nothing is eligible, in which case the slot is skipped instead.
//
// Callers must hold e.mu.
func (e *Engine) autoPickTeam(memberID uuid.UUID) *models.SportTeam {
	holdings := eligibility.HoldingsFromPicks(e.picks, memberID, e.teams)

	var chosen *models.SportTeam
	for _, id := range e.poolOrder {
		if e.pickedTeams[id] {
			continue
		}
		team := e.teams[id]
		if !eligibility.Allowed(team, holdings, e.caps) {
			continue
		}
		if chosen == nil || team.ID.String() < chosen.ID.String() {
			t := team
			chosen = &t
		}
	}
	return chosen
}
