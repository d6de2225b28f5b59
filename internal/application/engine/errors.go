package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy. State errors block an operation because the simulation
// is in the wrong phase; validation errors reject a malformed request;
// integrity errors mean the stored data is inconsistent. None of them
// leaves a partial mutation behind.
var (
	// State.
	ErrNotInitialized       = errors.New("engine: simulation not initialized")
	ErrAlreadyInitialized   = errors.New("engine: simulation already initialized")
	ErrSimulationOver       = errors.New("engine: simulation has ended")
	ErrAlreadySubmitted     = errors.New("engine: decisions already submitted for this period")
	ErrPeriodNotSimulated   = errors.New("engine: period has not been simulated")
	ErrBootstrapPeriod      = errors.New("engine: bootstrap periods are immutable")
	ErrNothingToRecalculate = errors.New("engine: no simulated periods to recalculate")
	ErrNoPendingRecalc      = errors.New("engine: no recalculation pending confirmation")

	// Validation.
	ErrEmptyTeamCode     = errors.New("engine: empty team code")
	ErrDuplicateTeamCode = errors.New("engine: duplicate team code")
	ErrBadDecisions      = errors.New("engine: malformed decisions payload")

	// Data integrity.
	ErrTeamNotFound          = errors.New("engine: team not found")
	ErrProductNotFound       = errors.New("engine: product not found")
	ErrMissingPreviousPeriod = errors.New("engine: previous period missing")
)

// MissingSubmissionsError reports which teams have not submitted when a
// run is attempted without auto-fill confirmation.
type MissingSubmissionsError struct {
	Period int
	Teams  []string
}

func (e *MissingSubmissionsError) Error() string {
	return fmt.Sprintf("engine: %d team(s) without submission for period %d: %s",
		len(e.Teams), e.Period, strings.Join(e.Teams, ", "))
}
