package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Gateway is the full persistence contract: the engine's write side plus
// cold-start state reconstruction.
type Gateway interface {
	Store
	LoadState(ctx context.Context, leagueID uuid.UUID) (*State, error)
}

// Manager is the per-process registry of league engines. Engines are
// restored lazily from the gateway, one per league, and shared by the
// session room and the admin API.
type Manager struct {
	mu      sync.Mutex
	engines map[uuid.UUID]*Engine

	gateway      Gateway
	clk          clockwork.Clock
	broadcasters []Broadcaster
}

// NewManager creates an empty registry.
func NewManager(gateway Gateway, clk clockwork.Clock, broadcasters ...Broadcaster) *Manager {
	return &Manager{
		engines:      make(map[uuid.UUID]*Engine),
		gateway:      gateway,
		clk:          clk,
		broadcasters: broadcasters,
	}
}

// Get returns the engine for a league, restoring it from the gateway on
// first access. Restoring a LIVE draft re-arms a fresh turn window.
func (m *Manager) Get(ctx context.Context, leagueID uuid.UUID) (*Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.engines[leagueID]; ok {
		return e, nil
	}

	state, err := m.gateway.LoadState(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("load draft state for league %s: %w", leagueID, err)
	}

	e, err := New(*state, m.clk, m.gateway, m.broadcasters...)
	if err != nil {
		return nil, err
	}

	m.engines[leagueID] = e
	log.Info().
		Str("league_id", leagueID.String()).
		Str("status", string(state.Status)).
		Int("picks", len(state.Picks)).
		Msg("draft engine restored")
	return e, nil
}

// Close shuts down every engine in the registry.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.engines {
		e.Close()
	}
}
