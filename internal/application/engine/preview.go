package engine

import (
	"context"

	"github.com/google/uuid"
)

// PreviewSimulation runs the identical pipeline as RunSimulation on an
// in-memory copy of the cohort: no state transition, no persistence, no
// audit rows. Missing teams are auto-filled in memory only, so the
// operator sees the exact outcome a confirmed run would commit. Calling
// it twice over unchanged inputs yields identical results.
func (e *Engine) PreviewSimulation(ctx context.Context) (*RunReport, error) {
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

	report := &RunReport{
		RunID:   uuid.New().String(),
		Period:  period,
		Quarter: e.cfg.QuarterLabel(period),
		Preview: true,
	}

	for _, code := range missingSubmissions(teams, codes, period) {
		if _, err := e.autoFillTeam(teams, code, period); err != nil {
			report.Skipped = append(report.Skipped, TeamFailure{Code: code, Reason: err.Error()})
			continue
		}
		report.AutoFilled = append(report.AutoFilled, code)
	}

	outcomes, skipped := e.computePeriod(teams, codes, period, true)
	report.Teams = outcomes
	report.Skipped = append(report.Skipped, skipped...)
	return report, nil
}
