package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aantao/marksim/internal/application/engine"
	"github.com/aantao/marksim/internal/domain"
)

func TestSubmitDecisions_CreatesPendingTriple(t *testing.T) {
	eng, repo := newEngine(t, "ALPHA", "BETA")
	ctx := context.Background()

	sub, err := eng.SubmitDecisions(ctx, "ALPHA", fullDecisions(150, 20000), testGlobal)
	require.NoError(t, err)
	assert.Equal(t, "ALPHA", sub.TeamCode)
	assert.Equal(t, 6, sub.Period)
	assert.NotEmpty(t, sub.ID)

	// Las tres líneas reciben un registro pendiente con el mismo ID
	team := repo.teams["ALPHA"]
	for _, line := range team.Products {
		rec := line.Record(6)
		require.NotNil(t, rec, "product %s", line.ID)
		assert.Equal(t, domain.StatusPending, rec.Status)
		assert.Nil(t, rec.Result)
		assert.False(t, rec.AutoSubmitted)
		assert.Equal(t, sub.ID, rec.SubmissionID)
	}

	// BETA no se toca
	for _, line := range repo.teams["BETA"].Products {
		assert.Nil(t, line.Record(6))
	}

	// Y queda rastro en la auditoría
	subs, err := repo.GetSubmissions(ctx, 6)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, sub.ID, subs[0].SubmissionID)
}

func TestSubmitDecisions_RejectsDuplicate(t *testing.T) {
	eng, _ := newEngine(t, "ALPHA")
	ctx := context.Background()

	_, err := eng.SubmitDecisions(ctx, "ALPHA", fullDecisions(150, 20000), testGlobal)
	require.NoError(t, err)

	_, err = eng.SubmitDecisions(ctx, "ALPHA", fullDecisions(140, 25000), testGlobal)
	assert.ErrorIs(t, err, engine.ErrAlreadySubmitted)
}

func TestSubmitDecisions_AllOrNothing(t *testing.T) {
	eng, repo := newEngine(t, "ALPHA")

	// Falta productC: no debe persistirse nada
	decisions := fullDecisions(150, 20000)
	delete(decisions, domain.ProductC)

	_, err := eng.SubmitDecisions(context.Background(), "ALPHA", decisions, testGlobal)
	assert.ErrorIs(t, err, engine.ErrBadDecisions)

	for _, line := range repo.teams["ALPHA"].Products {
		assert.Nil(t, line.Record(6), "product %s must stay untouched", line.ID)
	}
}

func TestSubmitDecisions_UnknownTeam(t *testing.T) {
	eng, _ := newEngine(t, "ALPHA")
	_, err := eng.SubmitDecisions(context.Background(), "NOPE", fullDecisions(150, 20000), testGlobal)
	assert.ErrorIs(t, err, engine.ErrTeamNotFound)
}

func TestSubmissionStatus_TracksCohort(t *testing.T) {
	eng, _ := newEngine(t, "ALPHA", "BETA")
	ctx := context.Background()

	_, err := eng.SubmitDecisions(ctx, "ALPHA", fullDecisions(150, 20000), testGlobal)
	require.NoError(t, err)

	report, err := eng.SubmissionStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, report.Period)
	assert.Equal(t, 1, report.SubmittedCount)
	require.Len(t, report.Teams, 2)

	byCode := make(map[string]bool, 2)
	for _, ts := range report.Teams {
		byCode[ts.Code] = ts.Submitted
	}
	assert.True(t, byCode["ALPHA"])
	assert.False(t, byCode["BETA"])
}
