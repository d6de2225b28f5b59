package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aantao/marksim/internal/domain"
	"github.com/aantao/marksim/internal/ports"
)

// ProductOutcome is one product line's simulated result.
type ProductOutcome struct {
	ID     domain.ProductID
	Name   string
	Result *domain.PeriodResult
}

// TeamOutcome is one team's full outcome for a period.
type TeamOutcome struct {
	Code         string
	Name         string
	PeriodProfit float64
	Balance      domain.BalanceSheet
	Products     []ProductOutcome
}

// TeamFailure reports a team skipped by a cross-team operation. One bad
// team never aborts the batch for the others.
type TeamFailure struct {
	Code   string
	Reason string
}

// RunReport is the outcome of one simulation step (or preview) across
// the whole cohort.
type RunReport struct {
	RunID      string
	Period     int
	Quarter    string
	Preview    bool
	AutoFilled []string
	Teams      []TeamOutcome
	Skipped    []TeamFailure
}

// RunSimulation executes the current period for every team and commits.
//
// Teams without a submission block the run unless autoFill is set (the
// operator's confirmation): each absentee then gets a pending record
// deep-copied from its most recent decisions, flagged AutoSubmitted,
// before any metrics are aggregated. Market metrics are computed once
// per product from the full cohort (the aggregation barrier), and only
// then is the per-team pipeline run and each balance sheet updated.
func (e *Engine) RunSimulation(ctx context.Context, autoFill bool) (*RunReport, error) {
	state, err := e.state(ctx)
	if err != nil {
		return nil, err
	}
	period := state.CurrentPeriod
	if period > e.cfg.TotalPeriods {
		return nil, ErrSimulationOver
	}

	codes, teams, err := e.cohort(ctx)
	if err != nil {
		return nil, err
	}

	missing := missingSubmissions(teams, codes, period)
	if len(missing) > 0 && !autoFill {
		return nil, &MissingSubmissionsError{Period: period, Teams: missing}
	}

	report := &RunReport{
		RunID:   uuid.New().String(),
		Period:  period,
		Quarter: e.cfg.QuarterLabel(period),
	}

	for _, code := range missing {
		entry, err := e.autoFillTeam(teams, code, period)
		if err != nil {
			report.Skipped = append(report.Skipped, TeamFailure{Code: code, Reason: err.Error()})
			continue
		}
		if err := e.repo.RecordSubmission(ctx, entry); err != nil {
			slog.Warn("auto-fill audit write failed", "team", code, "err", err)
		}
		report.AutoFilled = append(report.AutoFilled, code)
	}

	outcomes, skipped := e.computePeriod(teams, codes, period, true)
	report.Teams = outcomes
	report.Skipped = append(report.Skipped, skipped...)

	if err := e.repo.SaveAllTeams(ctx, teams); err != nil {
		return nil, fmt.Errorf("engine.RunSimulation: save teams: %w", err)
	}

	slog.Info("period simulated",
		"run", report.RunID,
		"period", period,
		"quarter", report.Quarter,
		"teams", len(report.Teams),
		"auto_filled", len(report.AutoFilled),
		"skipped", len(report.Skipped),
	)
	return report, nil
}

// missingSubmissions lists teams without a record for the period,
// in roster order.
func missingSubmissions(teams map[string]domain.Team, codes []string, period int) []string {
	var missing []string
	for _, code := range codes {
		team, ok := teams[code]
		if !ok || len(team.Products) == 0 {
			continue
		}
		if team.Products[0].Record(period) == nil {
			missing = append(missing, code)
		}
	}
	return missing
}

// autoFillTeam copies the team's most recent decisions into a new pending
// record for the period, across all three product lines.
func (e *Engine) autoFillTeam(teams map[string]domain.Team, code string, period int) (ports.SubmissionEntry, error) {
	team := teams[code]
	entry := ports.SubmissionEntry{
		SubmissionID:  uuid.New().String(),
		TeamCode:      code,
		Period:        period,
		AutoSubmitted: true,
		SubmittedAt:   time.Now().UTC(),
	}

	updated := team.Clone()
	for _, spec := range e.tbl.Products {
		line := updated.Product(spec.ID)
		if line == nil {
			return entry, fmt.Errorf("%w: %s on team %q", ErrProductNotFound, spec.ID, code)
		}
		latest := line.Latest()
		if latest == nil {
			return entry, fmt.Errorf("%w: team %q has no prior decisions to copy", ErrMissingPreviousPeriod, code)
		}
		line.Periods = append(line.Periods, domain.PeriodRecord{
			Period:        period,
			Decisions:     latest.Decisions.Clone(),
			Global:        latest.Global,
			Status:        domain.StatusPending,
			SubmittedAt:   entry.SubmittedAt,
			AutoSubmitted: true,
			SubmissionID:  entry.SubmissionID,
		})
	}
	teams[code] = updated
	return entry, nil
}

// marketMetrics aggregates the cohort's decisions once per product.
// Every submitted decision participates, even if its team later fails
// the pipeline: the market saw those prices and budgets.
func (e *Engine) marketMetrics(teams map[string]domain.Team, codes []string, period int) map[domain.ProductID]domain.MarketMetrics {
	metrics := make(map[domain.ProductID]domain.MarketMetrics, len(e.tbl.Products))
	for _, spec := range e.tbl.Products {
		var decisions []domain.Decisions
		for _, code := range codes {
			team, ok := teams[code]
			if !ok {
				continue
			}
			line := team.Product(spec.ID)
			if line == nil {
				continue
			}
			if rec := line.Record(period); rec != nil {
				decisions = append(decisions, rec.Decisions)
			}
		}
		metrics[spec.ID] = domain.AggregateMarket(decisions)
	}
	return metrics
}

// computePeriod runs the full pipeline for one period over the cohort,
// in place. With onlyPending set, already-simulated records are left
// untouched; recalculation passes false to recompute them.
//
// A team is simulated as a unit: if any of its three product lines
// cannot be computed, none of them transitions, and the team is skipped
// with a reason.
func (e *Engine) computePeriod(teams map[string]domain.Team, codes []string, period int, onlyPending bool) ([]TeamOutcome, []TeamFailure) {
	metrics := e.marketMetrics(teams, codes, period)

	var outcomes []TeamOutcome
	var skipped []TeamFailure

	for _, code := range codes {
		team, ok := teams[code]
		if !ok {
			skipped = append(skipped, TeamFailure{Code: code, Reason: ErrTeamNotFound.Error()})
			continue
		}

		results := make([]*domain.PeriodResult, len(e.tbl.Products))
		failure := ""
		simulatable := false

		for i, spec := range e.tbl.Products {
			line := team.Product(spec.ID)
			if line == nil {
				failure = fmt.Sprintf("%s: %s", ErrProductNotFound, spec.ID)
				break
			}
			rec := line.Record(period)
			if rec == nil {
				failure = fmt.Sprintf("no submission for period %d", period)
				break
			}
			if onlyPending && rec.Status == domain.StatusSimulated {
				continue
			}
			prev := line.Record(period - 1)
			if prev == nil || prev.Result == nil {
				failure = fmt.Sprintf("%s: period %d", ErrMissingPreviousPeriod, period-1)
				break
			}

			results[i] = e.simulateProduct(spec.Type, prev.Result.CustomerBase, period, rec, metrics[spec.ID])
			simulatable = true
		}

		if failure != "" {
			skipped = append(skipped, TeamFailure{Code: code, Reason: failure})
			continue
		}
		if !simulatable {
			continue // everything already simulated, nothing to do
		}

		outcome := TeamOutcome{Code: code, Name: team.Name}
		for i, spec := range e.tbl.Products {
			if results[i] == nil {
				continue
			}
			rec := team.Product(spec.ID).Record(period)
			rec.Result = results[i]
			rec.Status = domain.StatusSimulated
			outcome.PeriodProfit += results[i].Profit
			outcome.Products = append(outcome.Products, ProductOutcome{
				ID: spec.ID, Name: spec.Name, Result: results[i],
			})
		}

		team.Balance = domain.ApplyPeriodProfit(e.tbl, team.Balance, outcome.PeriodProfit)
		outcome.Balance = team.Balance
		teams[code] = team
		outcomes = append(outcomes, outcome)
	}

	return outcomes, skipped
}

// simulateProduct is the per-team, per-product pipeline: competitive
// effects from the shared metrics, then customers, channels and profit.
func (e *Engine) simulateProduct(
	pt domain.ProductType,
	prevCustomers int,
	period int,
	rec *domain.PeriodRecord,
	metrics domain.MarketMetrics,
) *domain.PeriodResult {
	season := e.tbl.Season(period, pt)
	ce := domain.ComputeCompetitiveEffects(e.tbl, rec.Decisions, metrics)
	customers := domain.SimulateCustomers(e.tbl, pt, prevCustomers, rec.Decisions, rec.Global, season, ce)
	sales := domain.AllocateChannels(e.tbl, pt, customers.CustomerBase, rec.Decisions, rec.Global, season, ce)
	profit := domain.ComputeProfit(e.tbl, pt, sales, rec.Decisions, rec.Global)
	return domain.BuildResult(rec.Decisions, customers, sales, profit)
}
