package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/courtsideapp/courtside/go/internal/dbconfig"
)

// Conference mirrors the JSON snapshot layout
type Conference struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	MaxTeamsPerOwner int       `json:"max_teams_per_owner"`
}

// Team mirrors the JSON snapshot layout. ConferenceID is null for
// independents.
type Team struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	ConferenceID *uuid.UUID `json:"conference_id"`
}

type snapshot struct {
	Conferences []Conference `json:"conferences"`
	Teams       []Team       `json:"teams"`
}

func main() {
	ctx := context.Background()

	// 1) Load the JSON snapshot
	data, err := os.ReadFile("go/internal/assets/teams.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "read JSON: %v\n", err)
		os.Exit(1)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal JSON: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Upsert conferences first, teams reference them
	total, inserted, skipped, errs := len(snap.Conferences), 0, 0, 0
	for _, c := range snap.Conferences {
		tag, err := pool.Exec(ctx, `
            INSERT INTO conferences (id, name, max_teams_per_owner)
            VALUES ($1,$2,$3)
            ON CONFLICT (id) DO NOTHING
        `, c.ID, c.Name, c.MaxTeamsPerOwner)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting conference %s: %v\n", c.ID, err)
			errs++
			continue
		}
		if tag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}
	fmt.Printf(
		"Conferences seed: total=%d inserted=%d skipped=%d errors=%d\n",
		total, inserted, skipped, errs,
	)

	// 4) Upsert teams
	total, inserted, skipped, errs = len(snap.Teams), 0, 0, 0
	for _, t := range snap.Teams {
		tag, err := pool.Exec(ctx, `
            INSERT INTO sport_teams (id, name, conference_id)
            VALUES ($1,$2,$3)
            ON CONFLICT (id) DO NOTHING
        `, t.ID, t.Name, t.ConferenceID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting team %s: %v\n", t.ID, err)
			errs++
			continue
		}
		if tag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}
	fmt.Printf(
		"Teams seed: total=%d inserted=%d skipped=%d errors=%d\n",
		total, inserted, skipped, errs,
	)
}
