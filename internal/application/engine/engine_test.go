package engine_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aantao/marksim/internal/application/engine"
	"github.com/aantao/marksim/internal/domain"
	"github.com/aantao/marksim/internal/ports"
)

// --- mock repository ---

// mockRepo guarda todo en memoria y devuelve copias profundas, igual que
// el adaptador SQLite: mutar lo cargado nunca toca lo persistido.
type mockRepo struct {
	state *domain.SimulationState
	teams map[string]domain.Team
	codes []string
	subs  []ports.SubmissionEntry
}

func newMockRepo() *mockRepo {
	return &mockRepo{teams: make(map[string]domain.Team)}
}

func (m *mockRepo) GetSimulationState(_ context.Context) (*domain.SimulationState, error) {
	if m.state == nil {
		return nil, nil
	}
	s := *m.state
	return &s, nil
}

func (m *mockRepo) SaveSimulationState(_ context.Context, state domain.SimulationState) error {
	m.state = &state
	return nil
}

func (m *mockRepo) GetTeam(_ context.Context, code string) (*domain.Team, error) {
	team, ok := m.teams[code]
	if !ok {
		return nil, nil
	}
	clone := team.Clone()
	return &clone, nil
}

func (m *mockRepo) SaveTeam(_ context.Context, team domain.Team) error {
	m.teams[team.Code] = team.Clone()
	return nil
}

func (m *mockRepo) GetAllTeams(_ context.Context) (map[string]domain.Team, error) {
	out := make(map[string]domain.Team, len(m.teams))
	for code, team := range m.teams {
		out[code] = team.Clone()
	}
	return out, nil
}

func (m *mockRepo) SaveAllTeams(_ context.Context, teams map[string]domain.Team) error {
	for code, team := range teams {
		m.teams[code] = team.Clone()
	}
	return nil
}

func (m *mockRepo) GetTeamCodes(_ context.Context) ([]string, error) {
	return append([]string(nil), m.codes...), nil
}

func (m *mockRepo) SaveTeamCodes(_ context.Context, codes []string) error {
	m.codes = append([]string(nil), codes...)
	return nil
}

func (m *mockRepo) RecordSubmission(_ context.Context, entry ports.SubmissionEntry) error {
	m.subs = append(m.subs, entry)
	return nil
}

func (m *mockRepo) GetSubmissions(_ context.Context, period int) ([]ports.SubmissionEntry, error) {
	var out []ports.SubmissionEntry
	for _, s := range m.subs {
		if s.Period == period {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockRepo) Reset(_ context.Context) error {
	m.state = nil
	m.teams = make(map[string]domain.Team)
	m.codes = nil
	m.subs = nil
	return nil
}

func (m *mockRepo) Close() error { return nil }

// --- helpers ---

func newEngine(t *testing.T, codes ...string) (*engine.Engine, *mockRepo) {
	t.Helper()
	repo := newMockRepo()
	eng := engine.New(engine.DefaultConfig(), domain.DefaultTables(), repo)
	if len(codes) > 0 {
		require.NoError(t, eng.Initialize(context.Background(), codes))
	}
	return eng, repo
}

// fullDecisions construye un set válido para los tres productos.
func fullDecisions(price, marketing float64) map[domain.ProductID]domain.Decisions {
	d := domain.Decisions{
		Price:               price,
		Discount:            2,
		MarketingInvestment: marketing,
		QualityInvestment:   5000,
		SalesCommission:     5,
		AdChannels: map[domain.AdChannelID]float64{
			domain.AdGoogle: 40, domain.AdFacebook: 30, domain.AdInstagram: 30,
		},
		DistChannels: map[domain.DistChannelID]float64{
			domain.DistOwnStores: 30, domain.DistRetailers: 40,
			domain.DistEcommerce: 20, domain.DistWholesalers: 10,
		},
	}
	return map[domain.ProductID]domain.Decisions{
		domain.ProductA: d.Clone(),
		domain.ProductB: d.Clone(),
		domain.ProductC: d.Clone(),
	}
}

var testGlobal = domain.GlobalDecisions{
	RetentionInvestment: 10000,
	BrandInvestment:     8000,
	CustomerService:     5000,
	CreditDays:          30,
	ProcessImprovement:  3000,
}

// --- GenerateHistory ---

func TestGenerateHistory_Deterministic(t *testing.T) {
	cfg := engine.DefaultConfig()
	tbl := domain.DefaultTables()

	a := engine.GenerateHistory(cfg, tbl)
	b := engine.GenerateHistory(cfg, tbl)
	assert.Equal(t, a, b, "two runs must produce identical history, timestamps included")
}

func TestGenerateHistory_FiveSimulatedPeriodsPerProduct(t *testing.T) {
	history := engine.GenerateHistory(engine.DefaultConfig(), domain.DefaultTables())

	require.Len(t, history, 3)
	for id, records := range history {
		require.Len(t, records, 5, "product %s", id)
		for i, rec := range records {
			assert.Equal(t, i+1, rec.Period)
			assert.Equal(t, domain.StatusSimulated, rec.Status)
			require.NotNil(t, rec.Result, "product %s period %d", id, rec.Period)
			assert.Positive(t, rec.Result.CustomerBase)
			assert.Positive(t, rec.Result.Revenue)
		}
	}
}

// --- Initialize ---

func TestInitialize_SeedsIdenticalHistoryPerTeam(t *testing.T) {
	_, repo := newEngine(t, "ALPHA", "BETA")

	require.Len(t, repo.teams, 2)
	alpha, beta := repo.teams["ALPHA"], repo.teams["BETA"]
	assert.Equal(t, alpha.Products, beta.Products)

	// El balance de apertura es el mismo para todos
	assert.InDelta(t, 300000.0, alpha.Balance.Equity, 0.001)
	assert.InDelta(t, 500000.0, alpha.Balance.TotalAssets, 0.001)

	require.NotNil(t, repo.state)
	assert.True(t, repo.state.Initialized)
	assert.Equal(t, 6, repo.state.CurrentPeriod)
	assert.Equal(t, 10, repo.state.TotalPeriods)
}

func TestInitialize_RejectsBadCodes(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	err := eng.Initialize(ctx, []string{"ALPHA", ""})
	assert.ErrorIs(t, err, engine.ErrEmptyTeamCode)

	err = eng.Initialize(ctx, []string{"ALPHA", "ALPHA"})
	assert.ErrorIs(t, err, engine.ErrDuplicateTeamCode)
}

func TestInitialize_RefusesSecondInit(t *testing.T) {
	eng, _ := newEngine(t, "ALPHA")
	err := eng.Initialize(context.Background(), []string{"GAMMA"})
	assert.ErrorIs(t, err, engine.ErrAlreadyInitialized)
}

func TestEngine_NotInitialized(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	_, err := eng.RunSimulation(ctx, false)
	assert.ErrorIs(t, err, engine.ErrNotInitialized)
	_, err = eng.SubmissionStatus(ctx)
	assert.ErrorIs(t, err, engine.ErrNotInitialized)
}

// --- GenerateTeamCodes ---

func TestGenerateTeamCodes_UniqueAndReadable(t *testing.T) {
	codes := engine.GenerateTeamCodes(50)
	require.Len(t, codes, 50)

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.Len(t, code, 10)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
		// Sin caracteres ambiguos
		assert.NotContains(t, code, "0")
		assert.NotContains(t, code, "O")
		assert.NotContains(t, code, "I")
		assert.NotContains(t, code, "1")
		assert.Equal(t, strings.ToUpper(code), code)
	}
}
