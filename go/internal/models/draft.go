package models

import "time"

// DraftStyle defines how the pick order repeats across rounds.
type DraftStyle string

const (
	DraftStyleStraight DraftStyle = "STRAIGHT"
	DraftStyleSnake    DraftStyle = "SNAKE"
)

// TimeoutAction defines what happens when a turn expires.
type TimeoutAction string

const (
	TimeoutActionAutoSkip TimeoutAction = "AUTO_SKIP"
	TimeoutActionAutoPick TimeoutAction = "AUTO_PICK"
)

// DraftStatus defines the status of a draft.
type DraftStatus string

const (
	DraftStatusNotStarted DraftStatus = "NOT_STARTED"
	DraftStatusLive       DraftStatus = "LIVE"
	DraftStatusPaused     DraftStatus = "PAUSED"
	DraftStatusComplete   DraftStatus = "COMPLETE"
)

// DraftConfig holds the per-league draft configuration. Immutable once
// the draft has started.
type DraftConfig struct {
	DraftStyle       DraftStyle    `json:"draft_style"`
	SelectionSeconds int           `json:"selection_seconds"`
	GraceSeconds     int           `json:"grace_seconds"`
	Rounds           int           `json:"rounds"`
	TimeoutAction    TimeoutAction `json:"timeout_action"`
}

// TurnWindow is the full armed duration for one turn.
func (c DraftConfig) TurnWindow() time.Duration {
	return time.Duration(c.SelectionSeconds+c.GraceSeconds) * time.Second
}
