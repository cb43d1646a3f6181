// Package engine hosts the authoritative per-league draft state machine.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/courtsideapp/courtside/go/internal/draft/clock"
	"github.com/courtsideapp/courtside/go/internal/draft/eligibility"
	"github.com/courtsideapp/courtside/go/internal/draft/events"
	"github.com/courtsideapp/courtside/go/internal/models"
)

// Store is what the engine needs from the persistence gateway. Writes
// are enqueued by the engine and applied asynchronously in order, so a
// broadcast never waits on durable storage.
type Store interface {
	AppendPick(ctx context.Context, leagueID uuid.UUID, pick models.Pick) error
	SetStatus(ctx context.Context, leagueID uuid.UUID, status models.DraftStatus, remainingMs *int64) error
}

// Broadcaster receives every snapshot the engine emits. The session room
// and the JetStream publisher both implement it.
type Broadcaster interface {
	Broadcast(event *events.DraftEvent)
}

// State is the full reloadable aggregate for one league's draft, as
// returned by the persistence gateway at cold start.
type State struct {
	LeagueID           uuid.UUID
	Config             models.DraftConfig
	Members            []models.Member
	Conferences        []models.Conference
	Teams              []models.SportTeam
	Slots              []models.TurnSlot
	Picks              []models.Pick
	Status             models.DraftStatus
	RemainingMsAtPause *int64
}

// Engine is the single-writer actor for one league's draft. All mutating
// operations serialize on its mutex; the armed turn timer re-enters
// through handleTimeout with a token so a stale fire is a no-op.
type Engine struct {
	mu sync.Mutex

	leagueID    uuid.UUID
	cfg         models.DraftConfig
	members     []models.Member
	membersByID map[uuid.UUID]models.Member
	teams       map[uuid.UUID]models.SportTeam
	conferences map[uuid.UUID]models.Conference
	caps        map[uuid.UUID]int
	poolOrder   []uuid.UUID
	slots       []models.TurnSlot

	picks       []models.Pick
	pickedTeams map[uuid.UUID]bool
	status      models.DraftStatus
	expiresAt   *time.Time
	armedToken  uint64

	turnClock    *clock.TurnClock
	clk          clockwork.Clock
	store        Store
	broadcasters []Broadcaster

	persistCh   chan func(context.Context) error
	persistDone chan struct{}
	closed      bool

	log zerolog.Logger
}

// New builds an engine from a loaded state. A LIVE state re-arms a full
// turn window (a restart grants a fresh clock); a PAUSED state restores
// the captured remainder.
func New(state State, clk clockwork.Clock, store Store, broadcasters ...Broadcaster) (*Engine, error) {
	if len(state.Members) == 0 {
		return nil, fmt.Errorf("%w: no members", ErrConfiguration)
	}
	if state.Config.Rounds < 1 {
		return nil, fmt.Errorf("%w: rounds = %d", ErrConfiguration, state.Config.Rounds)
	}
	if want := state.Config.Rounds * len(state.Members); len(state.Slots) != want {
		return nil, fmt.Errorf("%w: %d slots for %d rounds x %d members",
			ErrConfiguration, len(state.Slots), state.Config.Rounds, len(state.Members))
	}
	for i, p := range state.Picks {
		if p.Overall != i+1 {
			return nil, fmt.Errorf("%w: pick log has overall %d at position %d", ErrConfiguration, p.Overall, i+1)
		}
	}

	e := &Engine{
		leagueID:     state.LeagueID,
		cfg:          state.Config,
		members:      state.Members,
		membersByID:  make(map[uuid.UUID]models.Member, len(state.Members)),
		teams:        make(map[uuid.UUID]models.SportTeam, len(state.Teams)),
		conferences:  make(map[uuid.UUID]models.Conference, len(state.Conferences)),
		caps:         make(map[uuid.UUID]int, len(state.Conferences)),
		poolOrder:    make([]uuid.UUID, 0, len(state.Teams)),
		slots:        state.Slots,
		picks:        state.Picks,
		pickedTeams:  make(map[uuid.UUID]bool, len(state.Picks)),
		status:       state.Status,
		clk:          clk,
		store:        store,
		broadcasters: broadcasters,
		persistCh:    make(chan func(context.Context) error, 256),
		persistDone:  make(chan struct{}),
		log:          log.With().Str("league_id", state.LeagueID.String()).Logger(),
	}
	e.turnClock = clock.New(clk, e.handleTimeout)

	for _, m := range state.Members {
		e.membersByID[m.ID] = m
	}
	for _, c := range state.Conferences {
		e.conferences[c.ID] = c
		if c.MaxTeamsPerOwner >= 0 {
			e.caps[c.ID] = c.MaxTeamsPerOwner
		}
	}
	for _, t := range state.Teams {
		e.teams[t.ID] = t
		e.poolOrder = append(e.poolOrder, t.ID)
	}
	for _, p := range state.Picks {
		if !p.Skipped() {
			e.pickedTeams[*p.SportTeamID] = true
		}
	}

	go e.persistLoop()

	// A crash between the final pick write and the status write leaves a
	// full pick log behind a stale LIVE or PAUSED status. Finish the
	// transition here instead of arming a turn past the sequence.
	if len(e.picks) == len(e.slots) && e.status != models.DraftStatusComplete {
		e.status = models.DraftStatusComplete
		e.persistStatus(nil)
		e.log.Info().Msg("pick log full on reload, restored as complete")
	}

	switch e.status {
	case models.DraftStatusLive:
		// A restart grants a fresh full window for the turn in flight.
		e.armTurn()
	case models.DraftStatusPaused:
		remaining := e.cfg.TurnWindow()
		if state.RemainingMsAtPause != nil {
			remaining = time.Duration(*state.RemainingMsAtPause) * time.Millisecond
		}
		e.turnClock.PrimeRemaining(remaining)
	}

	return e, nil
}

// LeagueID returns the league this engine coordinates.
func (e *Engine) LeagueID() uuid.UUID {
	return e.leagueID
}

// Start transitions NOT_STARTED -> LIVE and arms the clock for slot #1.
func (e *Engine) Start(actingMemberID uuid.UUID) (*events.SnapshotPayload, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireCommissioner(actingMemberID); err != nil {
		return nil, err
	}
	if e.status != models.DraftStatusNotStarted {
		return nil, fmt.Errorf("%w: cannot start from %s", ErrInvalidTransition, e.status)
	}

	e.status = models.DraftStatusLive
	e.armTurn()
	e.persistStatus(nil)
	e.log.Info().Int("total_slots", len(e.slots)).Msg("draft started")
	return e.broadcastLocked(), nil
}

// Pause freezes the live draft, capturing the remaining turn time.
func (e *Engine) Pause(actingMemberID uuid.UUID) (*events.SnapshotPayload, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireCommissioner(actingMemberID); err != nil {
		return nil, err
	}
	if e.status != models.DraftStatusLive {
		return nil, fmt.Errorf("%w: cannot pause from %s", ErrInvalidTransition, e.status)
	}

	remaining := e.turnClock.Pause()
	e.status = models.DraftStatusPaused
	e.expiresAt = nil
	e.armedToken = 0

	remainingMs := remaining.Milliseconds()
	e.persistStatus(&remainingMs)
	e.log.Info().Dur("remaining", remaining).Msg("draft paused")
	return e.broadcastLocked(), nil
}

// Resume re-arms the clock with the remainder captured at pause time.
func (e *Engine) Resume(actingMemberID uuid.UUID) (*events.SnapshotPayload, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireCommissioner(actingMemberID); err != nil {
		return nil, err
	}
	if e.status != models.DraftStatusPaused {
		return nil, fmt.Errorf("%w: cannot resume from %s", ErrInvalidTransition, e.status)
	}

	e.status = models.DraftStatusLive
	token, exp := e.turnClock.Resume()
	e.armedToken = token
	e.expiresAt = &exp
	e.persistStatus(nil)
	e.log.Info().Time("expires_at", exp).Msg("draft resumed")
	return e.broadcastLocked(), nil
}

// SubmitPick commits a pick for the on-the-clock member and advances the
// turn. Validation order follows the command contract: live status,
// turn ownership, availability, conference cap.
func (e *Engine) SubmitPick(actingMemberID, teamID uuid.UUID) (*events.SnapshotPayload, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != models.DraftStatusLive {
		return nil, fmt.Errorf("%w: status is %s", ErrNotLive, e.status)
	}

	slot := e.slots[e.currentOverall()-1]
	if slot.MemberID != actingMemberID {
		return nil, fmt.Errorf("%w: slot %d belongs to another member", ErrNotYourTurn, slot.Overall)
	}

	team, ok := e.teams[teamID]
	if !ok || e.pickedTeams[teamID] {
		return nil, fmt.Errorf("%w: %s", ErrTeamUnavailable, teamID)
	}

	holdings := eligibility.HoldingsFromPicks(e.picks, actingMemberID, e.teams)
	if !eligibility.Allowed(team, holdings, e.caps) {
		conf := e.conferences[*team.ConferenceID]
		return nil, fmt.Errorf("%w: %s (%d/%d)", ErrConferenceCap,
			conf.Name, holdings[*team.ConferenceID], conf.MaxTeamsPerOwner)
	}

	e.commit(models.Pick{
		Overall:     slot.Overall,
		MemberID:    actingMemberID,
		SportTeamID: &team.ID,
		CommittedAt: e.clk.Now(),
	})
	return e.broadcastLocked(), nil
}

// Member looks up a league member by id.
func (e *Engine) Member(id uuid.UUID) (models.Member, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.membersByID[id]
	return m, ok
}

// Snapshot returns the current state projection without mutating
// anything.
func (e *Engine) Snapshot() *events.SnapshotPayload {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// handleTimeout is the clock's expiry callback. A token that no longer
// matches the armed turn means a pick or transition won the race; the
// fire is silently dropped.
func (e *Engine) handleTimeout(token uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != models.DraftStatusLive || token != e.armedToken {
		e.log.Debug().Uint64("token", token).Msg("stale turn timeout ignored")
		return
	}

	slot := e.slots[e.currentOverall()-1]
	pick := models.Pick{
		Overall:     slot.Overall,
		MemberID:    slot.MemberID,
		AutoPick:    true,
		CommittedAt: e.clk.Now(),
	}

	if e.cfg.TimeoutAction == models.TimeoutActionAutoPick {
		if team := e.autoPickTeam(slot.MemberID); team != nil {
			pick.SportTeamID = &team.ID
		}
	}

	if pick.SportTeamID != nil {
		e.log.Info().Int("overall", slot.Overall).Str("team_id", pick.SportTeamID.String()).
			Msg("turn timed out, auto-picked")
	} else {
		e.log.Info().Int("overall", slot.Overall).Msg("turn timed out, skipped")
	}

	e.commit(pick)
	e.broadcastLocked()
}

// commit appends the pick, cancels the turn's timer, and advances:
// either arming the next turn or completing the draft.
func (e *Engine) commit(pick models.Pick) {
	e.picks = append(e.picks, pick)
	if !pick.Skipped() {
		e.pickedTeams[*pick.SportTeamID] = true
	}
	e.enqueuePersist(func(ctx context.Context) error {
		return e.store.AppendPick(ctx, e.leagueID, pick)
	})

	e.turnClock.Cancel()
	e.armedToken = 0
	e.expiresAt = nil

	if e.currentOverall() > len(e.slots) {
		e.status = models.DraftStatusComplete
		e.persistStatus(nil)
		e.log.Info().Int("picks", len(e.picks)).Msg("draft complete")
		return
	}
	e.armTurn()
}

// currentOverall derives the pick pointer from the committed log.
func (e *Engine) currentOverall() int {
	return len(e.picks) + 1
}

func (e *Engine) armTurn() {
	token, exp := e.turnClock.Begin(e.cfg.TurnWindow())
	e.armedToken = token
	e.expiresAt = &exp
}

func (e *Engine) requireCommissioner(memberID uuid.UUID) error {
	m, ok := e.membersByID[memberID]
	if !ok || !m.Commissioner {
		return fmt.Errorf("%w: member %s", ErrUnauthorized, memberID)
	}
	return nil
}

func (e *Engine) persistStatus(remainingMs *int64) {
	status := e.status
	e.enqueuePersist(func(ctx context.Context) error {
		return e.store.SetStatus(ctx, e.leagueID, status, remainingMs)
	})
}

// enqueuePersist hands a write to the persistence worker. The queue
// preserves commit order; broadcasts never wait on the database.
func (e *Engine) enqueuePersist(fn func(context.Context) error) {
	if e.closed {
		return
	}
	e.persistCh <- fn
}

func (e *Engine) persistLoop() {
	defer close(e.persistDone)
	for fn := range e.persistCh {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := fn(ctx); err != nil {
			e.log.Error().Err(err).Msg("persistence write failed")
		}
		cancel()
	}
}

// broadcastLocked builds a snapshot, fans it out, and returns it.
func (e *Engine) broadcastLocked() *events.SnapshotPayload {
	snap := e.snapshotLocked()
	event, err := events.NewSnapshotEvent(e.leagueID, snap)
	if err != nil {
		e.log.Error().Err(err).Msg("failed to build snapshot event")
		return snap
	}
	for _, b := range e.broadcasters {
		b.Broadcast(event)
	}
	return snap
}

// Close cancels the armed timer and waits for the persistence queue to
// drain. A closed engine accepts no more writes.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.turnClock.Cancel()
	e.armedToken = 0
	close(e.persistCh)
	e.mu.Unlock()
	<-e.persistDone
}
