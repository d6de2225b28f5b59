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

// Submission is the receipt of an accepted decision set.
type Submission struct {
	ID          string
	TeamCode    string
	Period      int
	SubmittedAt time.Time
}

// SubmitDecisions records one team's decisions for the current period.
// It is all-or-nothing: either pending records are created for all three
// product lines or nothing is persisted. A second submission for the same
// period is rejected (checked against the first product line, which is
// authoritative because records are only ever created as a triple).
func (e *Engine) SubmitDecisions(
	ctx context.Context,
	teamCode string,
	decisions map[domain.ProductID]domain.Decisions,
	global domain.GlobalDecisions,
) (*Submission, error) {
	state, err := e.state(ctx)
	if err != nil {
		return nil, err
	}
	period := state.CurrentPeriod
	if period > e.cfg.TotalPeriods {
		return nil, ErrSimulationOver
	}

	team, err := e.repo.GetTeam(ctx, teamCode)
	if err != nil {
		return nil, fmt.Errorf("engine.SubmitDecisions: load team: %w", err)
	}
	if team == nil {
		return nil, fmt.Errorf("%w: %q", ErrTeamNotFound, teamCode)
	}

	if len(team.Products) == 0 {
		return nil, fmt.Errorf("%w: team %q has no product lines", ErrProductNotFound, teamCode)
	}
	if team.Products[0].Record(period) != nil {
		return nil, ErrAlreadySubmitted
	}

	for _, spec := range e.tbl.Products {
		if _, ok := decisions[spec.ID]; !ok {
			return nil, fmt.Errorf("%w: missing decisions for %s", ErrBadDecisions, spec.ID)
		}
	}

	sub := &Submission{
		ID:          uuid.New().String(),
		TeamCode:    teamCode,
		Period:      period,
		SubmittedAt: time.Now().UTC(),
	}

	// Mutate a clone; the original team is only replaced on a full save.
	updated := team.Clone()
	for _, spec := range e.tbl.Products {
		line := updated.Product(spec.ID)
		if line == nil {
			return nil, fmt.Errorf("%w: %s on team %q", ErrProductNotFound, spec.ID, teamCode)
		}
		line.Periods = append(line.Periods, domain.PeriodRecord{
			Period:       period,
			Decisions:    decisions[spec.ID].Clone(),
			Global:       global,
			Status:       domain.StatusPending,
			SubmittedAt:  sub.SubmittedAt,
			SubmissionID: sub.ID,
		})
	}

	if err := e.repo.SaveTeam(ctx, updated); err != nil {
		return nil, fmt.Errorf("engine.SubmitDecisions: save team: %w", err)
	}
	if err := e.repo.RecordSubmission(ctx, ports.SubmissionEntry{
		SubmissionID: sub.ID,
		TeamCode:     teamCode,
		Period:       period,
		SubmittedAt:  sub.SubmittedAt,
	}); err != nil {
		slog.Warn("submission audit write failed", "team", teamCode, "err", err)
	}

	slog.Info("decisions submitted",
		"team", teamCode, "period", period, "submission", sub.ID)
	return sub, nil
}
