package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aantao/marksim/internal/domain"
)

// RecalcChange is one line of the recalculation diff: what a confirmed
// recalculation would do to a product's period.
type RecalcChange struct {
	TeamCode   string
	ProductID  domain.ProductID
	Period     int
	OldRevenue float64
	NewRevenue float64
	OldProfit  float64
	NewProfit  float64
}

// RecalcReport is the diff produced by RecalculatePreviousPeriods. It is
// held by the engine until the operator confirms; nothing is persisted
// before ConfirmRecalculation.
type RecalcReport struct {
	Periods []int
	Changes []RecalcChange

	// Recomputed cohort, applied verbatim on confirmation.
	teams map[string]domain.Team
	codes []string
}

// RecalculatePreviousPeriods re-runs the full pipeline, under the current
// formulas, for every already-simulated period after the bootstrap block.
// Periods are replayed in order so each one chains off the recomputed
// customer base of the one before. Returns the diff; the stored records
// are untouched until ConfirmRecalculation.
func (e *Engine) RecalculatePreviousPeriods(ctx context.Context) (*RecalcReport, error) {
	state, err := e.state(ctx)
	if err != nil {
		return nil, err
	}

	codes, teams, err := e.cohort(ctx)
	if err != nil {
		return nil, err
	}

	// Snapshot old figures before recomputing in place.
	type key struct {
		code    string
		product domain.ProductID
		period  int
	}
	old := make(map[key]*domain.PeriodResult)

	var periods []int
	for p := e.cfg.HistoricalPeriods + 1; p <= state.CurrentPeriod && p <= e.cfg.TotalPeriods; p++ {
		simulated := false
		for _, code := range codes {
			team, ok := teams[code]
			if !ok {
				continue
			}
			for _, line := range team.Products {
				rec := line.Record(p)
				if rec != nil && rec.Status == domain.StatusSimulated {
					old[key{code, line.ID, p}] = rec.Result
					simulated = true
				}
			}
		}
		if simulated {
			periods = append(periods, p)
		}
	}
	if len(periods) == 0 {
		return nil, ErrNothingToRecalculate
	}

	report := &RecalcReport{Periods: periods, teams: teams, codes: codes}

	for _, p := range periods {
		_, skipped := e.computePeriod(teams, codes, p, false)
		for _, f := range skipped {
			slog.Warn("recalculation skipped team", "team", f.Code, "period", p, "reason", f.Reason)
		}
	}

	for _, p := range periods {
		for _, code := range codes {
			team, ok := teams[code]
			if !ok {
				continue
			}
			for _, line := range team.Products {
				prev := old[key{code, line.ID, p}]
				rec := line.Record(p)
				if prev == nil || rec == nil || rec.Result == nil {
					continue
				}
				report.Changes = append(report.Changes, RecalcChange{
					TeamCode:   code,
					ProductID:  line.ID,
					Period:     p,
					OldRevenue: prev.Revenue,
					NewRevenue: rec.Result.Revenue,
					OldProfit:  prev.Profit,
					NewProfit:  rec.Result.Profit,
				})
			}
		}
	}

	e.recalc = report
	slog.Info("recalculation prepared",
		"periods", len(periods), "changes", len(report.Changes))
	return report, nil
}

// ConfirmRecalculation applies the pending diff: the recomputed records
// are persisted and every balance sheet is rebuilt from scratch as
// initial equity plus the sum of non-bootstrap profits.
func (e *Engine) ConfirmRecalculation(ctx context.Context) error {
	if e.recalc == nil {
		return ErrNoPendingRecalc
	}
	report := e.recalc

	for _, code := range report.codes {
		team, ok := report.teams[code]
		if !ok {
			continue
		}
		team.Balance = domain.RecomputeBalance(e.tbl, e.cumulativeProfit(team))
		report.teams[code] = team
	}

	if err := e.repo.SaveAllTeams(ctx, report.teams); err != nil {
		return fmt.Errorf("engine.ConfirmRecalculation: save teams: %w", err)
	}

	e.recalc = nil
	slog.Info("recalculation applied", "changes", len(report.Changes))
	return nil
}

// cumulativeProfit sums a team's simulated profit over every
// non-bootstrap period, across its three products.
func (e *Engine) cumulativeProfit(team domain.Team) float64 {
	total := 0.0
	for _, line := range team.Products {
		for _, rec := range line.Periods {
			if rec.Period <= e.cfg.HistoricalPeriods {
				continue
			}
			if rec.Status == domain.StatusSimulated && rec.Result != nil {
				total += rec.Result.Profit
			}
		}
	}
	return total
}

// RollbackPeriod reverts the most recent simulated period to pending,
// discarding its results and rewinding the current period so it can be
// re-run. Bootstrap periods are immutable; only the highest simulated
// period may be rolled back, so later results never dangle off discarded
// inputs.
func (e *Engine) RollbackPeriod(ctx context.Context, period int) error {
	state, err := e.state(ctx)
	if err != nil {
		return err
	}
	if period <= e.cfg.HistoricalPeriods {
		return ErrBootstrapPeriod
	}

	codes, teams, err := e.cohort(ctx)
	if err != nil {
		return err
	}

	highest := e.highestSimulatedPeriod(teams, codes)
	if highest == 0 || highest < period {
		return fmt.Errorf("%w: period %d", ErrPeriodNotSimulated, period)
	}
	if period != highest {
		return fmt.Errorf("engine.RollbackPeriod: period %d is not the latest simulated (%d)", period, highest)
	}

	for _, code := range codes {
		team, ok := teams[code]
		if !ok {
			continue
		}
		for i := range team.Products {
			if rec := team.Products[i].Record(period); rec != nil && rec.Status == domain.StatusSimulated {
				rec.Result = nil
				rec.Status = domain.StatusPending
			}
		}
		team.Balance = domain.RecomputeBalance(e.tbl, e.cumulativeProfit(team))
		teams[code] = team
	}

	if err := e.repo.SaveAllTeams(ctx, teams); err != nil {
		return fmt.Errorf("engine.RollbackPeriod: save teams: %w", err)
	}

	if state.CurrentPeriod > period {
		state.CurrentPeriod = period
		if err := e.repo.SaveSimulationState(ctx, *state); err != nil {
			return fmt.Errorf("engine.RollbackPeriod: save state: %w", err)
		}
	}

	slog.Info("period rolled back", "period", period)
	return nil
}

// highestSimulatedPeriod scans the cohort for the largest period number
// carrying results.
func (e *Engine) highestSimulatedPeriod(teams map[string]domain.Team, codes []string) int {
	highest := 0
	for _, code := range codes {
		team, ok := teams[code]
		if !ok {
			continue
		}
		for _, line := range team.Products {
			if rec := line.LatestSimulated(); rec != nil && rec.Period > highest {
				highest = rec.Period
			}
		}
	}
	return highest
}
