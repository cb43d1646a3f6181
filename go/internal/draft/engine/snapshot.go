package engine

import (
	"github.com/courtsideapp/courtside/go/internal/draft/events"
	"github.com/courtsideapp/courtside/go/internal/models"
)

// snapshotLocked projects the engine state into the wire payload.
// Callers must hold e.mu. Nothing here is cached; the pool and holdings
// are derived from the committed log on every call.
func (e *Engine) snapshotLocked() *events.SnapshotPayload {
	snap := &events.SnapshotPayload{
		LeagueID:       e.leagueID.String(),
		Status:         string(e.status),
		TotalSlots:     len(e.slots),
		ServerNow:      e.clk.Now(),
		AvailableTeams: e.availableTeamsLocked(),
		Picks:          e.pickInfosLocked(),
		Members:        e.memberInfosLocked(),
	}

	if e.expiresAt != nil {
		t := *e.expiresAt
		snap.ExpiresAt = &t
	}

	current := e.currentOverall()
	snap.CurrentSlot = e.slotInfoLocked(current)
	snap.OnDeck = e.slotInfoLocked(current + 1)
	snap.InTheHole = e.slotInfoLocked(current + 2)
	return snap
}

// slotInfoLocked resolves the slot at the given overall number, or nil
// past the end of the sequence or once the draft is complete.
func (e *Engine) slotInfoLocked(overall int) *events.SlotInfo {
	if e.status == models.DraftStatusComplete || overall < 1 || overall > len(e.slots) {
		return nil
	}
	slot := e.slots[overall-1]
	return &events.SlotInfo{
		Overall:     slot.Overall,
		Round:       slot.Round,
		PickInRound: slot.PickInRound,
		MemberID:    slot.MemberID.String(),
		DisplayName: e.membersByID[slot.MemberID].DisplayName,
	}
}

func (e *Engine) availableTeamsLocked() []events.TeamInfo {
	available := make([]events.TeamInfo, 0, len(e.poolOrder)-len(e.pickedTeams))
	for _, id := range e.poolOrder {
		if e.pickedTeams[id] {
			continue
		}
		team := e.teams[id]
		info := events.TeamInfo{ID: team.ID.String(), Name: team.Name}
		if team.ConferenceID != nil {
			info.ConferenceID = team.ConferenceID.String()
			info.ConferenceName = e.conferences[*team.ConferenceID].Name
		}
		available = append(available, info)
	}
	return available
}

func (e *Engine) pickInfosLocked() []events.PickInfo {
	picks := make([]events.PickInfo, len(e.picks))
	for i, p := range e.picks {
		info := events.PickInfo{
			Overall:     p.Overall,
			MemberID:    p.MemberID.String(),
			AutoPick:    p.AutoPick,
			CommittedAt: p.CommittedAt,
		}
		if !p.Skipped() {
			info.TeamID = p.SportTeamID.String()
			info.TeamName = e.teams[*p.SportTeamID].Name
		}
		picks[i] = info
	}
	return picks
}

func (e *Engine) memberInfosLocked() []events.MemberInfo {
	members := make([]events.MemberInfo, len(e.members))
	for i, m := range e.members {
		members[i] = events.MemberInfo{
			ID:           m.ID.String(),
			DisplayName:  m.DisplayName,
			TeamName:     m.TeamName,
			DraftOrder:   m.DraftOrder,
			Commissioner: m.Commissioner,
		}
	}
	return members
}
