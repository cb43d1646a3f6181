package models

import (
	"github.com/google/uuid"
)

// Conference groups sport teams for ownership capping.
type Conference struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	// MaxTeamsPerOwner caps how many teams from this conference a single
	// member may hold. Zero excludes the conference entirely; a negative
	// value means no cap.
	MaxTeamsPerOwner int `json:"max_teams_per_owner"`
}

// SportTeam is a draftable real-world team.
type SportTeam struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	ConferenceID *uuid.UUID `json:"conference_id,omitempty"` // nil = independent, never capped
}
