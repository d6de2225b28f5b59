package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/aantao/marksim/internal/domain"
)

// bootstrapStrategy is the fixed decision stance of one historical period.
type bootstrapStrategy struct {
	name       string
	marketing  float64
	discount   float64
	quality    float64
	commission float64
}

// One stance per bootstrap period, chosen to demonstrate different levers.
var bootstrapStrategies = map[int]bootstrapStrategy{
	1: {name: "conservative", marketing: 0.8, discount: 0.3, quality: 0.7, commission: 0.6},
	2: {name: "marketing push", marketing: 1.5, discount: 0.4, quality: 0.8, commission: 0.7},
	3: {name: "promo discount", marketing: 1.0, discount: 1.8, quality: 0.6, commission: 0.9},
	4: {name: "quality focus", marketing: 1.0, discount: 0.2, quality: 1.6, commission: 0.5},
	5: {name: "balanced", marketing: 1.2, discount: 0.8, quality: 1.0, commission: 0.7},
}

// baseDecisions are the per-type anchors the strategies multiply.
var bootstrapBase = map[domain.ProductType]struct {
	marketing, discount, quality, commission float64
}{
	domain.ProductPremium:  {marketing: 18000, discount: 2, quality: 8000, commission: 8},
	domain.ProductMidrange: {marketing: 12000, discount: 5, quality: 4000, commission: 5},
	domain.ProductEconomic: {marketing: 10000, discount: 10, quality: 2000, commission: 3},
}

var bootstrapAdAllocations = map[int]map[domain.AdChannelID]float64{
	1: {domain.AdGoogle: 25, domain.AdFacebook: 30, domain.AdInstagram: 20, domain.AdEmail: 15, domain.AdRadio: 10},
	2: {domain.AdGoogle: 30, domain.AdFacebook: 35, domain.AdInstagram: 15, domain.AdEmail: 10, domain.AdRadio: 10},
	3: {domain.AdGoogle: 20, domain.AdFacebook: 25, domain.AdInstagram: 30, domain.AdEmail: 15, domain.AdRadio: 10},
	4: {domain.AdGoogle: 25, domain.AdFacebook: 20, domain.AdInstagram: 25, domain.AdEmail: 20, domain.AdRadio: 10},
	5: {domain.AdGoogle: 28, domain.AdFacebook: 27, domain.AdInstagram: 22, domain.AdEmail: 13, domain.AdRadio: 10},
}

var bootstrapDistAllocations = map[int]map[domain.DistChannelID]float64{
	1: {domain.DistOwnStores: 30, domain.DistRetailers: 40, domain.DistEcommerce: 20, domain.DistWholesalers: 10},
	2: {domain.DistOwnStores: 25, domain.DistRetailers: 35, domain.DistEcommerce: 30, domain.DistWholesalers: 10},
	3: {domain.DistOwnStores: 35, domain.DistRetailers: 30, domain.DistEcommerce: 25, domain.DistWholesalers: 10},
	4: {domain.DistOwnStores: 28, domain.DistRetailers: 37, domain.DistEcommerce: 25, domain.DistWholesalers: 10},
	5: {domain.DistOwnStores: 30, domain.DistRetailers: 35, domain.DistEcommerce: 25, domain.DistWholesalers: 10},
}

var bootstrapGlobals = map[int]domain.GlobalDecisions{
	1: {RetentionInvestment: 15000, BrandInvestment: 8000, CustomerService: 5000, CreditDays: 30, ProcessImprovement: 3000},
	2: {RetentionInvestment: 18000, BrandInvestment: 10000, CustomerService: 6000, CreditDays: 45, ProcessImprovement: 4000},
	3: {RetentionInvestment: 12000, BrandInvestment: 6000, CustomerService: 4000, CreditDays: 30, ProcessImprovement: 2000},
	4: {RetentionInvestment: 20000, BrandInvestment: 12000, CustomerService: 7000, CreditDays: 60, ProcessImprovement: 5000},
	5: {RetentionInvestment: 16000, BrandInvestment: 9000, CustomerService: 5500, CreditDays: 45, ProcessImprovement: 3500},
}

// bootstrap acquisition/churn constants (single-team formulas, no
// competitive multipliers; these seed the pre-competition history).
const (
	bootstrapQualityAdThreshold = 80000
	bootstrapQualityAdWeight    = 0.15
	bootstrapMomentumPerPeriod  = 0.08
	bootstrapQualityChurnCap    = 50000
	bootstrapQualityChurnWeight = 0.06
	bootstrapChurnFloor         = 0.04
	bootstrapQualitySalesWeight = 0.15
	bootstrapQualitySalesThr    = 40000
)

// GenerateHistory produces the deterministic, competition-free historical
// periods every team is seeded with. Two calls over the same config and
// tables produce identical data, timestamps included: record timestamps
// are derived from the start-year quarter grid, never from the clock.
func GenerateHistory(cfg Config, tbl domain.Tables) map[domain.ProductID][]domain.PeriodRecord {
	history := make(map[domain.ProductID][]domain.PeriodRecord, len(tbl.Products))

	for _, spec := range tbl.Products {
		profile := tbl.Profiles[spec.Type]
		base := bootstrapBase[spec.Type]
		prevCustomers := profile.BaseCustomers

		records := make([]domain.PeriodRecord, 0, cfg.HistoricalPeriods)
		for p := 1; p <= cfg.HistoricalPeriods; p++ {
			strategy := bootstrapStrategies[((p-1)%5)+1]
			season := tbl.Season(p, spec.Type)

			decisions := domain.Decisions{
				Price:               profile.BasePrice,
				Discount:            round1(base.discount * strategy.discount),
				MarketingInvestment: math.Round(base.marketing * strategy.marketing),
				QualityInvestment:   math.Round(base.quality * strategy.quality),
				SalesCommission:     round1(base.commission * strategy.commission),
				AdChannels:          cloneAdAllocation(bootstrapAdAllocations[((p-1)%5)+1]),
				DistChannels:        cloneDistAllocation(bootstrapDistAllocations[((p-1)%5)+1]),
			}
			global := bootstrapGlobals[((p-1)%5)+1]

			result := simulateBootstrapPeriod(tbl, spec.Type, p, prevCustomers, decisions, global, season)

			records = append(records, domain.PeriodRecord{
				Period:      p,
				Decisions:   decisions,
				Global:      global,
				Result:      result,
				Status:      domain.StatusSimulated,
				SubmittedAt: quarterTimestamp(cfg.StartYear, p),
			})
			prevCustomers = result.CustomerBase
		}
		history[spec.ID] = records
	}
	return history
}

// simulateBootstrapPeriod is the simplified single-team pipeline: no
// market metrics, no competitive multipliers, and an early-growth
// momentum factor so the seeded history trends upward.
func simulateBootstrapPeriod(
	tbl domain.Tables,
	pt domain.ProductType,
	period int,
	prevCustomers int,
	d domain.Decisions,
	g domain.GlobalDecisions,
	season domain.SeasonFactors,
) *domain.PeriodResult {
	profile := tbl.Profiles[pt]

	// Acquisition per ad channel.
	adPerf := make(map[domain.AdChannelID]domain.AdChannelResult, len(domain.AdChannelIDs))
	newCustomers := 0
	qualityBonus := 1 + (d.QualityInvestment/bootstrapQualityAdThreshold)*bootstrapQualityAdWeight
	momentum := 1 + float64(period)*bootstrapMomentumPerPeriod

	for _, id := range domain.AdChannelIDs {
		channel := tbl.AdChannels[id]
		investment := d.MarketingInvestment * d.AdAllocation(id) / 100
		acquired := int(math.Round(investment * channel.Efficiency[pt] * qualityBonus * season.Demand * momentum))
		cac := 0.0
		if acquired > 0 {
			cac = math.Round(investment/float64(acquired)*100) / 100
		}
		adPerf[id] = domain.AdChannelResult{
			Investment:        math.Round(investment*100) / 100,
			CustomersAcquired: acquired,
			CAC:               cac,
		}
		newCustomers += acquired
	}

	// Churn without competition: quality investment is the only brake.
	qualityImpact := math.Min(d.QualityInvestment/bootstrapQualityChurnCap, 1)
	churnRate := math.Max(bootstrapChurnFloor, (profile.BaseChurn-qualityImpact*bootstrapQualityChurnWeight)*season.Churn)
	lostCustomers := int(math.Round(float64(prevCustomers) * churnRate))

	customerBase := prevCustomers + newCustomers - lostCustomers
	retained := prevCustomers - lostCustomers

	customers := domain.CustomerOutcome{
		NewCustomers:      newCustomers,
		LostCustomers:     lostCustomers,
		CustomerBase:      customerBase,
		PreviousCustomers: prevCustomers,
		RetainedCustomers: retained,
		ChurnRate:         churnRate,
		AdPerformance:     adPerf,
	}

	// Sales: neutral competitive stance, quality uplift only (brand
	// investment does not feed the pre-competition history).
	sales := domain.AllocateChannels(tbl, pt, customerBase, d, domain.GlobalDecisions{}, season, domain.NeutralEffects())

	profit := domain.ComputeProfit(tbl, pt, sales, d, domain.GlobalDecisions{})
	// Bootstrap periods charge only the product's own investments.
	profit.GlobalInvestmentShare = 0
	profit.TotalInvestments = d.MarketingInvestment + d.QualityInvestment
	profit.Profit = math.Round((sales.Revenue-
		profit.VariableCosts-profit.FixedCosts-sales.DistributionCosts-
		profit.Commissions-profit.TotalInvestments)*100) / 100

	return domain.BuildResult(d, customers, sales, profit)
}

// quarterTimestamp anchors a period to the first day of its quarter, 09:00 UTC.
func quarterTimestamp(startYear, period int) time.Time {
	year := startYear + (period-1)/4
	month := time.Month((domain.Quarter(period)-1)*3 + 1)
	return time.Date(year, month, 1, 9, 0, 0, 0, time.UTC)
}

// Initialize seeds the whole cohort: identical bootstrap history cloned
// into every team, opening balance sheets, roster and state. Codes must
// be non-empty and unique. Re-initializing an already-initialized
// simulation is refused; Reset first.
func (e *Engine) Initialize(ctx context.Context, codes []string) error {
	state, err := e.repo.GetSimulationState(ctx)
	if err != nil {
		return fmt.Errorf("engine.Initialize: load state: %w", err)
	}
	if state != nil && state.Initialized {
		return ErrAlreadyInitialized
	}

	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		if code == "" {
			return ErrEmptyTeamCode
		}
		if seen[code] {
			return fmt.Errorf("%w: %q", ErrDuplicateTeamCode, code)
		}
		seen[code] = true
	}

	history := GenerateHistory(e.cfg, e.tbl)

	teams := make(map[string]domain.Team, len(codes))
	for i, code := range codes {
		team := domain.Team{
			Code: code,
			Name: fmt.Sprintf("Team %d", i+1),
			Balance: domain.BalanceSheet{
				TotalAssets:      e.tbl.InitialAssets,
				Equity:           e.tbl.InitialEquity,
				TotalLiabilities: e.tbl.InitialLiabilities,
			},
		}
		for _, spec := range e.tbl.Products {
			line := domain.ProductLine{ID: spec.ID, Name: spec.Name, Type: spec.Type}
			for _, rec := range history[spec.ID] {
				line.Periods = append(line.Periods, rec.Clone())
			}
			team.Products = append(team.Products, line)
		}
		teams[code] = team
	}

	if err := e.repo.SaveTeamCodes(ctx, codes); err != nil {
		return fmt.Errorf("engine.Initialize: save codes: %w", err)
	}
	if err := e.repo.SaveAllTeams(ctx, teams); err != nil {
		return fmt.Errorf("engine.Initialize: save teams: %w", err)
	}

	newState := domain.SimulationState{
		Initialized:   true,
		CurrentPeriod: e.cfg.HistoricalPeriods + 1,
		TotalPeriods:  e.cfg.TotalPeriods,
		StartedAt:     time.Now().UTC(),
	}
	if err := e.repo.SaveSimulationState(ctx, newState); err != nil {
		return fmt.Errorf("engine.Initialize: save state: %w", err)
	}

	slog.Info("simulation initialized",
		"teams", len(codes),
		"bootstrap_periods", e.cfg.HistoricalPeriods,
		"current_period", newState.CurrentPeriod,
	)
	return nil
}

// codeAlphabet omits 0, O, I and 1 so codes survive being read aloud.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateTeamCodes returns n unique random 10-character team codes.
func GenerateTeamCodes(n int) []string {
	seen := make(map[string]bool, n)
	codes := make([]string, 0, n)
	for len(codes) < n {
		b := make([]byte, 10)
		for i := range b {
			b[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
		}
		code := string(b)
		if seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func cloneAdAllocation(src map[domain.AdChannelID]float64) map[domain.AdChannelID]float64 {
	out := make(map[domain.AdChannelID]float64, len(src))
	for _, id := range domain.AdChannelIDs {
		if v, ok := src[id]; ok {
			out[id] = v
		}
	}
	return out
}

func cloneDistAllocation(src map[domain.DistChannelID]float64) map[domain.DistChannelID]float64 {
	out := make(map[domain.DistChannelID]float64, len(src))
	for _, id := range domain.DistChannelIDs {
		if v, ok := src[id]; ok {
			out[id] = v
		}
	}
	return out
}
