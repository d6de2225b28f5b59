package ports

import (
	"context"
	"time"

	"github.com/aantao/marksim/internal/domain"
)

// Repository persists the whole simulation: cohort state, teams and the
// team-code roster. All operations are synchronous get/set; a missing
// record comes back as nil (or an empty slice), not an error.
//
// Writes are fire-and-forget from the engine's point of view: a call
// returning nil means the write was handed to the store, not that any
// replication side-channel has acknowledged it.
type Repository interface {
	GetSimulationState(ctx context.Context) (*domain.SimulationState, error)
	SaveSimulationState(ctx context.Context, state domain.SimulationState) error

	GetTeam(ctx context.Context, code string) (*domain.Team, error)
	SaveTeam(ctx context.Context, team domain.Team) error

	GetAllTeams(ctx context.Context) (map[string]domain.Team, error)
	SaveAllTeams(ctx context.Context, teams map[string]domain.Team) error

	GetTeamCodes(ctx context.Context) ([]string, error)
	SaveTeamCodes(ctx context.Context, codes []string) error

	// RecordSubmission appends an audit row for a decision submission.
	RecordSubmission(ctx context.Context, entry SubmissionEntry) error
	// GetSubmissions returns the audit trail for one period, oldest first.
	GetSubmissions(ctx context.Context, period int) ([]SubmissionEntry, error)

	// Reset wipes every record. Operator-confirmed, irreversible.
	Reset(ctx context.Context) error

	// Close releases the underlying store cleanly.
	Close() error
}

// SubmissionEntry is one row of the submissions audit trail.
type SubmissionEntry struct {
	SubmissionID  string
	TeamCode      string
	Period        int
	AutoSubmitted bool
	SubmittedAt   time.Time
}
