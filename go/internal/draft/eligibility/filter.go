// Package eligibility computes which teams a member may still draft
// under per-conference ownership caps.
package eligibility

import (
	"github.com/google/uuid"

	"github.com/courtsideapp/courtside/go/internal/models"
)

// Holdings counts a member's current teams per conference. Derived from
// the committed pick log, never cached across picks.
type Holdings map[uuid.UUID]int

// HoldingsFromPicks tallies the member's committed picks per conference.
// Skipped slots and teams without a conference contribute nothing.
func HoldingsFromPicks(picks []models.Pick, memberID uuid.UUID, teams map[uuid.UUID]models.SportTeam) Holdings {
	holdings := make(Holdings)
	for _, p := range picks {
		if p.MemberID != memberID || p.Skipped() {
			continue
		}
		team, ok := teams[*p.SportTeamID]
		if !ok || team.ConferenceID == nil {
			continue
		}
		holdings[*team.ConferenceID]++
	}
	return holdings
}

// Filter returns the subset of pool the member may draft given their
// current holdings. A team passes when its conference count is strictly
// below the cap. A cap of zero excludes the conference entirely; a
// conference without a cap entry is unlimited, as are independents.
func Filter(pool []models.SportTeam, holdings Holdings, caps map[uuid.UUID]int) []models.SportTeam {
	eligible := make([]models.SportTeam, 0, len(pool))
	for _, team := range pool {
		if Allowed(team, holdings, caps) {
			eligible = append(eligible, team)
		}
	}
	return eligible
}

// Allowed reports whether a single team is draftable under the caps.
func Allowed(team models.SportTeam, holdings Holdings, caps map[uuid.UUID]int) bool {
	if team.ConferenceID == nil {
		return true // independent
	}
	limit, capped := caps[*team.ConferenceID]
	if !capped {
		return true
	}
	return holdings[*team.ConferenceID] < limit
}
