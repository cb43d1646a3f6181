package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/courtsideapp/courtside/go/internal/dbconfig"
	"github.com/courtsideapp/courtside/go/internal/draft/order"
	"github.com/courtsideapp/courtside/go/internal/draft/store"
	"github.com/courtsideapp/courtside/go/internal/models"
)

// LeagueSeed mirrors the JSON layout: one league, its members in draft
// order, and the draft configuration.
type LeagueSeed struct {
	ID      uuid.UUID          `json:"id"`
	Name    string             `json:"name"`
	Members []MemberSeed       `json:"members"`
	Config  models.DraftConfig `json:"draft_config"`
}

type MemberSeed struct {
	ID           uuid.UUID `json:"id"`
	DisplayName  string    `json:"display_name"`
	TeamName     string    `json:"team_name"`
	DraftOrder   int       `json:"draft_order"`
	Commissioner bool      `json:"commissioner"`
}

func main() {
	ctx := context.Background()

	// 1) Load league.json
	data, err := os.ReadFile("go/internal/assets/league.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "read league.json: %v\n", err)
		os.Exit(1)
	}
	var seed LeagueSeed
	if err := json.Unmarshal(data, &seed); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal league: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect to DB
	cfg := dbconfig.NewConfigFromEnv()
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3) Insert league and members
	if _, err := db.ExecContext(ctx, `
        INSERT INTO leagues (id, name) VALUES ($1,$2)
        ON CONFLICT (id) DO NOTHING
    `, seed.ID, seed.Name); err != nil {
		fmt.Fprintf(os.Stderr, "insert league: %v\n", err)
		os.Exit(1)
	}

	members := make([]models.Member, 0, len(seed.Members))
	for _, m := range seed.Members {
		if _, err := db.ExecContext(ctx, `
            INSERT INTO league_members (id, league_id, display_name, team_name, draft_order, commissioner)
            VALUES ($1,$2,$3,$4,$5,$6)
            ON CONFLICT (id) DO NOTHING
        `, m.ID, seed.ID, m.DisplayName, m.TeamName, m.DraftOrder, m.Commissioner); err != nil {
			fmt.Fprintf(os.Stderr, "insert member %s: %v\n", m.ID, err)
			os.Exit(1)
		}
		members = append(members, models.Member{
			ID:           m.ID,
			LeagueID:     seed.ID,
			DisplayName:  m.DisplayName,
			TeamName:     m.TeamName,
			DraftOrder:   m.DraftOrder,
			Commissioner: m.Commissioner,
		})
	}

	// 4) Build the turn sequence and persist the draft
	slots, err := order.Build(members, seed.Config.Rounds, seed.Config.DraftStyle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build turn order: %v\n", err)
		os.Exit(1)
	}

	gateway := store.NewGateway(db)
	if err := gateway.CreateDraft(ctx, seed.ID, seed.Config, slots); err != nil {
		fmt.Fprintf(os.Stderr, "create draft: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf(
		"League seed complete: league=%s members=%d slots=%d style=%s\n",
		seed.ID, len(members), len(slots), seed.Config.DraftStyle,
	)
}
