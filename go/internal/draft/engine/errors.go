package engine

import "errors"

// Command rejection errors. Each rejects a single command, leaves the
// draft state untouched, and is reported only to the sender.
var (
	// ErrInvalidTransition: the current status does not permit the
	// requested operation (e.g. pausing a draft that never started).
	ErrInvalidTransition = errors.New("draft status does not permit this operation")

	// ErrNotLive: a pick was submitted while the draft is not live.
	ErrNotLive = errors.New("draft is not live")

	// ErrNotYourTurn: the acting member is not on the clock.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrTeamUnavailable: the team is unknown or already picked.
	ErrTeamUnavailable = errors.New("team is not available")

	// ErrConferenceCap: the pick would exceed the member's cap for the
	// team's conference.
	ErrConferenceCap = errors.New("conference cap reached")

	// ErrUnauthorized: a non-commissioner attempted start/pause/resume.
	ErrUnauthorized = errors.New("commissioner access required")

	// ErrConfiguration: fatal construction-time error (zero members,
	// zero rounds, slot sequence inconsistent with the config).
	ErrConfiguration = errors.New("invalid draft configuration")
)
