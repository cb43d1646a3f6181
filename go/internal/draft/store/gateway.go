// Package store is the Postgres persistence gateway for draft state.
// The engine is the only writer; reads happen once per league at engine
// restore time.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"

	"github.com/courtsideapp/courtside/go/internal/draft/engine"
	"github.com/courtsideapp/courtside/go/internal/models"
	"github.com/courtsideapp/courtside/go/internal/sqlutil"
)

// ErrDraftNotFound means no draft row exists for the league.
var ErrDraftNotFound = errors.New("draft not found")

type Gateway struct {
	db *sql.DB
}

func NewGateway(db *sql.DB) *Gateway {
	return &Gateway{db: db}
}

var _ engine.Gateway = (*Gateway)(nil)

// CreateDraft persists the draft configuration and the prepopulated turn
// sequence in one transaction. Call it once, at league creation.
func (g *Gateway) CreateDraft(ctx context.Context, leagueID uuid.UUID, cfg models.DraftConfig, slots []models.TurnSlot) error {
	configBytes, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal draft config: %w", err)
	}

	overalls := make([]int32, len(slots))
	rounds := make([]int32, len(slots))
	picksInRound := make([]int32, len(slots))
	memberIDs := make([]uuid.UUID, len(slots))
	for i, slot := range slots {
		overalls[i] = int32(slot.Overall)
		rounds[i] = int32(slot.Round)
		picksInRound[i] = int32(slot.PickInRound)
		memberIDs[i] = slot.MemberID
	}

	return sqlutil.Run(ctx, g.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO league_drafts (league_id, config, status)
			 VALUES ($1, $2, $3)`,
			leagueID,
			pqtype.NullRawMessage{RawMessage: configBytes, Valid: true},
			models.DraftStatusNotStarted,
		)
		if err != nil {
			return fmt.Errorf("failed to create draft: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO draft_slots (league_id, overall, round, pick_in_round, member_id)
			 SELECT $1, unnest($2::int[]), unnest($3::int[]), unnest($4::int[]), unnest($5::uuid[])`,
			leagueID,
			pq.Array(overalls),
			pq.Array(rounds),
			pq.Array(picksInRound),
			pq.Array(memberIDs),
		)
		if err != nil {
			return fmt.Errorf("failed to batch create draft slots: %w", err)
		}
		return nil
	})
}

// AppendPick records the resolution of one turn slot. A slot resolves at
// most once; a second write for the same overall is an error.
func (g *Gateway) AppendPick(ctx context.Context, leagueID uuid.UUID, pick models.Pick) error {
	result, err := g.db.ExecContext(ctx,
		`INSERT INTO draft_picks (league_id, overall, member_id, sport_team_id, auto_pick, committed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (league_id, overall) DO NOTHING`,
		leagueID,
		pick.Overall,
		pick.MemberID,
		sqlutil.ToNullUUID(pick.SportTeamID),
		pick.AutoPick,
		pick.CommittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append pick: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected count: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("pick %d for league %s already committed", pick.Overall, leagueID)
	}
	return nil
}

// SetStatus updates the draft lifecycle status. remainingMs is non-nil
// only on a pause, capturing the unspent turn time.
func (g *Gateway) SetStatus(ctx context.Context, leagueID uuid.UUID, status models.DraftStatus, remainingMs *int64) error {
	result, err := g.db.ExecContext(ctx,
		`UPDATE league_drafts SET status = $2, remaining_ms_at_pause = $3, updated_at = now()
		 WHERE league_id = $1`,
		leagueID,
		status,
		sqlutil.ToSqlInt64(remainingMs),
	)
	if err != nil {
		return fmt.Errorf("failed to set draft status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected count: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("set status: %w: league %s", ErrDraftNotFound, leagueID)
	}
	return nil
}

// LoadState reads back everything the engine needs to resume a league's
// draft: config, roster of members, the conference caps, the team pool,
// the prepopulated turn sequence, and the committed pick log.
func (g *Gateway) LoadState(ctx context.Context, leagueID uuid.UUID) (*engine.State, error) {
	state := &engine.State{LeagueID: leagueID}

	var configRaw pqtype.NullRawMessage
	var remaining sql.NullInt64
	err := g.db.QueryRowContext(ctx,
		`SELECT config, status, remaining_ms_at_pause FROM league_drafts WHERE league_id = $1`,
		leagueID,
	).Scan(&configRaw, &state.Status, &remaining)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load state: %w: league %s", ErrDraftNotFound, leagueID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	if configRaw.Valid {
		if err := json.Unmarshal(configRaw.RawMessage, &state.Config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal draft config: %w", err)
		}
	}
	state.RemainingMsAtPause = sqlutil.FromSqlInt64(remaining)

	if state.Members, err = g.loadMembers(ctx, leagueID); err != nil {
		return nil, err
	}
	if state.Conferences, err = g.loadConferences(ctx); err != nil {
		return nil, err
	}
	if state.Teams, err = g.loadTeams(ctx); err != nil {
		return nil, err
	}
	if state.Slots, err = g.loadSlots(ctx, leagueID); err != nil {
		return nil, err
	}
	if state.Picks, err = g.loadPicks(ctx, leagueID); err != nil {
		return nil, err
	}
	return state, nil
}

func (g *Gateway) loadMembers(ctx context.Context, leagueID uuid.UUID) ([]models.Member, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT id, display_name, team_name, draft_order, commissioner
		 FROM league_members WHERE league_id = $1 ORDER BY draft_order`,
		leagueID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		m := models.Member{LeagueID: leagueID}
		if err := rows.Scan(&m.ID, &m.DisplayName, &m.TeamName, &m.DraftOrder, &m.Commissioner); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (g *Gateway) loadConferences(ctx context.Context) ([]models.Conference, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT id, name, max_teams_per_owner FROM conferences ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to load conferences: %w", err)
	}
	defer rows.Close()

	var conferences []models.Conference
	for rows.Next() {
		var c models.Conference
		if err := rows.Scan(&c.ID, &c.Name, &c.MaxTeamsPerOwner); err != nil {
			return nil, fmt.Errorf("failed to scan conference: %w", err)
		}
		conferences = append(conferences, c)
	}
	return conferences, rows.Err()
}

func (g *Gateway) loadTeams(ctx context.Context) ([]models.SportTeam, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT id, name, conference_id FROM sport_teams ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	defer rows.Close()

	var teams []models.SportTeam
	for rows.Next() {
		var t models.SportTeam
		var confID uuid.NullUUID
		if err := rows.Scan(&t.ID, &t.Name, &confID); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		t.ConferenceID = sqlutil.FromNullUUID(confID)
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (g *Gateway) loadSlots(ctx context.Context, leagueID uuid.UUID) ([]models.TurnSlot, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT overall, round, pick_in_round, member_id
		 FROM draft_slots WHERE league_id = $1 ORDER BY overall`,
		leagueID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load draft slots: %w", err)
	}
	defer rows.Close()

	var slots []models.TurnSlot
	for rows.Next() {
		var s models.TurnSlot
		if err := rows.Scan(&s.Overall, &s.Round, &s.PickInRound, &s.MemberID); err != nil {
			return nil, fmt.Errorf("failed to scan draft slot: %w", err)
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (g *Gateway) loadPicks(ctx context.Context, leagueID uuid.UUID) ([]models.Pick, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT overall, member_id, sport_team_id, auto_pick, committed_at
		 FROM draft_picks WHERE league_id = $1 ORDER BY overall`,
		leagueID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load picks: %w", err)
	}
	defer rows.Close()

	var picks []models.Pick
	for rows.Next() {
		var p models.Pick
		var teamID uuid.NullUUID
		if err := rows.Scan(&p.Overall, &p.MemberID, &teamID, &p.AutoPick, &p.CommittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pick: %w", err)
		}
		p.SportTeamID = sqlutil.FromNullUUID(teamID)
		picks = append(picks, p)
	}
	return picks, rows.Err()
}
