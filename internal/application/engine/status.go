package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// AdvancePeriod moves the cohort to the next period and returns it.
func (e *Engine) AdvancePeriod(ctx context.Context) (int, error) {
	state, err := e.state(ctx)
	if err != nil {
		return 0, err
	}
	if state.CurrentPeriod > e.cfg.TotalPeriods {
		return 0, ErrSimulationOver
	}

	state.CurrentPeriod++
	if err := e.repo.SaveSimulationState(ctx, *state); err != nil {
		return 0, fmt.Errorf("engine.AdvancePeriod: save state: %w", err)
	}

	slog.Info("period advanced",
		"period", state.CurrentPeriod, "quarter", e.cfg.QuarterLabel(state.CurrentPeriod))
	return state.CurrentPeriod, nil
}

// TeamSubmission is one team's submission state for the current period.
type TeamSubmission struct {
	Code          string
	Name          string
	Submitted     bool
	AutoSubmitted bool
	SubmittedAt   time.Time
}

// StatusReport shows where the cohort stands in the current period.
type StatusReport struct {
	Period         int
	Quarter        string
	TotalPeriods   int
	SubmittedCount int
	Teams          []TeamSubmission
}

// SubmissionStatus reports which teams have submitted for the current period.
func (e *Engine) SubmissionStatus(ctx context.Context) (*StatusReport, error) {
	state, err := e.state(ctx)
	if err != nil {
		return nil, err
	}

	codes, teams, err := e.cohort(ctx)
	if err != nil {
		return nil, err
	}

	report := &StatusReport{
		Period:       state.CurrentPeriod,
		Quarter:      e.cfg.QuarterLabel(state.CurrentPeriod),
		TotalPeriods: state.TotalPeriods,
	}

	for _, code := range codes {
		team, ok := teams[code]
		if !ok || len(team.Products) == 0 {
			continue
		}
		sub := TeamSubmission{Code: code, Name: team.Name}
		if rec := team.Products[0].Record(state.CurrentPeriod); rec != nil {
			sub.Submitted = true
			sub.AutoSubmitted = rec.AutoSubmitted
			sub.SubmittedAt = rec.SubmittedAt
			report.SubmittedCount++
		}
		report.Teams = append(report.Teams, sub)
	}

	return report, nil
}

// Standing is one team's line in the cohort ranking.
type Standing struct {
	Rank             int
	Code             string
	Name             string
	Revenue          float64 // latest simulated period, all products
	Profit           float64
	CumulativeProfit float64 // non-bootstrap periods
	Customers        int
	Equity           float64
	LastPeriod       int // highest simulated period number
}

// Standings ranks the cohort by latest-period revenue.
func (e *Engine) Standings(ctx context.Context) ([]Standing, error) {
	if _, err := e.state(ctx); err != nil {
		return nil, err
	}

	codes, teams, err := e.cohort(ctx)
	if err != nil {
		return nil, err
	}

	var standings []Standing
	for _, code := range codes {
		team, ok := teams[code]
		if !ok {
			continue
		}
		s := Standing{Code: code, Name: team.Name, Equity: team.Balance.Equity}
		for _, line := range team.Products {
			if rec := line.LatestSimulated(); rec != nil {
				s.Revenue += rec.Result.Revenue
				s.Profit += rec.Result.Profit
				s.Customers += rec.Result.CustomerBase
				if rec.Period > s.LastPeriod {
					s.LastPeriod = rec.Period
				}
			}
		}
		s.CumulativeProfit = e.cumulativeProfit(team)
		standings = append(standings, s)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Revenue > standings[j].Revenue
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings, nil
}

// Reset wipes the whole simulation. The CLI double-confirms before
// calling; the engine just does it.
func (e *Engine) Reset(ctx context.Context) error {
	if err := e.repo.Reset(ctx); err != nil {
		return fmt.Errorf("engine.Reset: %w", err)
	}
	e.recalc = nil
	slog.Info("simulation reset")
	return nil
}
