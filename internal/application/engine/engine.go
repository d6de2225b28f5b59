// Package engine implements the period orchestrator: the state machine
// that turns every team's submitted decisions into simulated results,
// once per period, atomically across the whole cohort.
//
// The orchestrator is the only component with side effects. It loads the
// cohort through ports.Repository, materializes the market metrics for
// each product (the synchronization barrier: no team is ever computed
// from a partial view of the market), runs the per-team pipeline from
// internal/domain, and commits. Preview runs the identical pipeline
// without committing; recalculation produces a diff that must be
// explicitly confirmed before anything is overwritten.
package engine

import (
	"context"
	"fmt"

	"github.com/aantao/marksim/internal/domain"
	"github.com/aantao/marksim/internal/ports"
)

// Config is the shape of the simulation run.
type Config struct {
	TotalPeriods      int
	HistoricalPeriods int
	StartYear         int
}

// DefaultConfig is the classroom setup: five bootstrap quarters plus five
// live decision quarters, starting in 2024.
func DefaultConfig() Config {
	return Config{
		TotalPeriods:      10,
		HistoricalPeriods: 5,
		StartYear:         2024,
	}
}

// QuarterLabel renders a period number as its calendar quarter.
func (c Config) QuarterLabel(period int) string {
	return fmt.Sprintf("Q%d %d", domain.Quarter(period), c.StartYear+(period-1)/4)
}

// Engine is the period orchestrator. It holds no locks and assumes a
// single operator runs at most one mutating operation at a time.
type Engine struct {
	cfg    Config
	tbl    domain.Tables
	repo   ports.Repository
	recalc *RecalcReport // pending diff, applied by ConfirmRecalculation
}

// New creates an orchestrator over the given repository.
func New(cfg Config, tbl domain.Tables, repo ports.Repository) *Engine {
	if cfg.TotalPeriods <= 0 {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg, tbl: tbl, repo: repo}
}

// Config returns the run shape the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Tables returns the economic tables the engine computes with.
func (e *Engine) Tables() domain.Tables {
	return e.tbl
}

// Team returns one team's full state, product histories included.
func (e *Engine) Team(ctx context.Context, code string) (*domain.Team, error) {
	if _, err := e.state(ctx); err != nil {
		return nil, err
	}
	team, err := e.repo.GetTeam(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("engine: load team %q: %w", code, err)
	}
	if team == nil {
		return nil, ErrTeamNotFound
	}
	return team, nil
}

// state loads the simulation state and fails unless initialized.
func (e *Engine) state(ctx context.Context) (*domain.SimulationState, error) {
	state, err := e.repo.GetSimulationState(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine: load state: %w", err)
	}
	if state == nil || !state.Initialized {
		return nil, ErrNotInitialized
	}
	return state, nil
}

// cohort loads the team roster in code order.
func (e *Engine) cohort(ctx context.Context) ([]string, map[string]domain.Team, error) {
	codes, err := e.repo.GetTeamCodes(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("engine: load team codes: %w", err)
	}
	teams, err := e.repo.GetAllTeams(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("engine: load teams: %w", err)
	}
	return codes, teams, nil
}
