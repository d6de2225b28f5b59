package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aantao/marksim/internal/adapters/storage"
	"github.com/aantao/marksim/internal/domain"
	"github.com/aantao/marksim/internal/ports"
)

func openRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func makeTeam(code string) domain.Team {
	return domain.Team{
		Code: code,
		Name: "Equipo " + code,
		Products: []domain.ProductLine{
			{
				ID: domain.ProductA, Name: "Product A (Premium)", Type: domain.ProductPremium,
				Periods: []domain.PeriodRecord{
					{
						Period:    1,
						Status:    domain.StatusSimulated,
						Decisions: domain.Decisions{Price: 150, AdChannels: map[domain.AdChannelID]float64{domain.AdGoogle: 100}},
						Result: &domain.PeriodResult{
							CustomerBase: 5000, Revenue: 68750, Profit: -22437.50,
							AdPerformance: map[domain.AdChannelID]domain.AdChannelResult{
								domain.AdGoogle: {Investment: 20000, CustomersAcquired: 900, CAC: 22.22},
							},
						},
					},
				},
			},
		},
		Balance: domain.BalanceSheet{TotalAssets: 500000, Equity: 300000, TotalLiabilities: 200000},
	}
}

func TestSQLiteRepository_SimulationStateRoundTrip(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	// Antes de inicializar no hay estado
	state, err := repo.GetSimulationState(ctx)
	require.NoError(t, err)
	assert.Nil(t, state)

	want := domain.SimulationState{
		Initialized:   true,
		CurrentPeriod: 6,
		TotalPeriods:  10,
		StartedAt:     time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.SaveSimulationState(ctx, want))

	state, err = repo.GetSimulationState(ctx)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, want, *state)

	// El guardado es un upsert
	want.CurrentPeriod = 7
	require.NoError(t, repo.SaveSimulationState(ctx, want))
	state, err = repo.GetSimulationState(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, state.CurrentPeriod)
}

func TestSQLiteRepository_TeamDocument(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	missing, err := repo.GetTeam(ctx, "NOPE")
	require.NoError(t, err)
	assert.Nil(t, missing)

	team := makeTeam("ALPHA")
	require.NoError(t, repo.SaveTeam(ctx, team))

	got, err := repo.GetTeam(ctx, "ALPHA")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, team.Code, got.Code)
	assert.Equal(t, team.Balance, got.Balance)

	// El histórico sobrevive el viaje por JSON, resultado incluido
	rec := got.Products[0].Record(1)
	require.NotNil(t, rec)
	require.NotNil(t, rec.Result)
	assert.InDelta(t, -22437.50, rec.Result.Profit, 0.001)
	assert.Equal(t, 900, rec.Result.AdPerformance[domain.AdGoogle].CustomersAcquired)

	// Mutar lo leído no toca lo almacenado
	got.Balance.Equity = 0
	again, err := repo.GetTeam(ctx, "ALPHA")
	require.NoError(t, err)
	assert.InDelta(t, 300000.0, again.Balance.Equity, 0.001)
}

func TestSQLiteRepository_SaveAllTeamsTransactional(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	teams := map[string]domain.Team{
		"ALPHA": makeTeam("ALPHA"),
		"BETA":  makeTeam("BETA"),
	}
	require.NoError(t, repo.SaveAllTeams(ctx, teams))

	got, err := repo.GetAllTeams(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Equipo BETA", got["BETA"].Name)
}

func TestSQLiteRepository_TeamCodesRoundTrip(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	codes, err := repo.GetTeamCodes(ctx)
	require.NoError(t, err)
	assert.Empty(t, codes)

	want := []string{"ALPHA", "BETA", "GAMMA"}
	require.NoError(t, repo.SaveTeamCodes(ctx, want))

	codes, err = repo.GetTeamCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, codes)
}

func TestSQLiteRepository_SubmissionsAuditTrail(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	entries := []ports.SubmissionEntry{
		{SubmissionID: "s1", TeamCode: "ALPHA", Period: 6, SubmittedAt: base},
		{SubmissionID: "s2", TeamCode: "BETA", Period: 6, AutoSubmitted: true, SubmittedAt: base.Add(time.Minute)},
		{SubmissionID: "s3", TeamCode: "ALPHA", Period: 7, SubmittedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		require.NoError(t, repo.RecordSubmission(ctx, e))
	}

	got, err := repo.GetSubmissions(ctx, 6)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Orden cronológico, flag de auto-relleno preservado
	assert.Equal(t, "s1", got[0].SubmissionID)
	assert.False(t, got[0].AutoSubmitted)
	assert.Equal(t, "s2", got[1].SubmissionID)
	assert.True(t, got[1].AutoSubmitted)

	empty, err := repo.GetSubmissions(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLiteRepository_Reset(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveTeam(ctx, makeTeam("ALPHA")))
	require.NoError(t, repo.SaveTeamCodes(ctx, []string{"ALPHA"}))
	require.NoError(t, repo.SaveSimulationState(ctx, domain.SimulationState{Initialized: true}))
	require.NoError(t, repo.RecordSubmission(ctx, ports.SubmissionEntry{SubmissionID: "s1", TeamCode: "ALPHA", Period: 6, SubmittedAt: time.Now().UTC()}))

	require.NoError(t, repo.Reset(ctx))

	state, err := repo.GetSimulationState(ctx)
	require.NoError(t, err)
	assert.Nil(t, state)

	teams, err := repo.GetAllTeams(ctx)
	require.NoError(t, err)
	assert.Empty(t, teams)

	codes, err := repo.GetTeamCodes(ctx)
	require.NoError(t, err)
	assert.Empty(t, codes)

	subs, err := repo.GetSubmissions(ctx, 6)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

// notifierSpy acumula las claves publicadas por el adaptador.
type notifierSpy struct {
	keys []string
}

func (n *notifierSpy) DataChanged(key string) { n.keys = append(n.keys, key) }

func TestSQLiteRepository_NotifierIsPoked(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	spy := &notifierSpy{}
	repo.SetNotifier(spy)

	require.NoError(t, repo.SaveTeam(ctx, makeTeam("ALPHA")))
	require.NoError(t, repo.SaveAllTeams(ctx, map[string]domain.Team{"BETA": makeTeam("BETA")}))
	require.NoError(t, repo.SaveTeamCodes(ctx, []string{"ALPHA", "BETA"}))

	assert.Equal(t, []string{"team:ALPHA", "teams", "team_codes"}, spy.keys)
}
