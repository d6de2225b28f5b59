package domain

import "math"

// CustomerOutcome is the customer-dynamics result for one product/period.
type CustomerOutcome struct {
	NewCustomers      int
	LostCustomers     int
	CustomerBase      int
	PreviousCustomers int
	RetainedCustomers int
	ChurnRate         float64
	AdPerformance     map[AdChannelID]AdChannelResult
}

// SimulateCustomers computes acquisition and churn for one product line.
//
// Acquisition, per advertising channel:
//
//	investment   = marketingInvestment × allocation%
//	newCustomers = round(investment × efficiency(type) × seasonalDemand
//	               × priceAdvantage × sqrt(marketingAdvantage))
//
// The square root damps share of voice: doubling relative spend does not
// double acquisition. CAC is investment / acquired, 0 when nothing was
// acquired.
//
// Churn:
//
//	rate = max(floor, base × seasonalChurn
//	       − retentionBonus − serviceBonus − qualityBonus
//	       + max(0, −priceCompetitiveness) × competitiveWeight)
//
// where each bonus is min(investment/threshold, 1) × weight. Being more
// expensive than the market therefore accelerates churn.
//
// No zero floor is applied to the resulting customer base; with extreme
// inputs it can go negative. Documented limitation, preserved as is.
func SimulateCustomers(
	tbl Tables,
	pt ProductType,
	prevCustomers int,
	d Decisions,
	g GlobalDecisions,
	season SeasonFactors,
	ce CompetitiveEffects,
) CustomerOutcome {
	out := CustomerOutcome{
		PreviousCustomers: prevCustomers,
		AdPerformance:     make(map[AdChannelID]AdChannelResult, len(AdChannelIDs)),
	}

	for _, id := range AdChannelIDs {
		channel := tbl.AdChannels[id]
		investment := d.MarketingInvestment * d.AdAllocation(id) / 100

		acquired := int(math.Round(
			investment * channel.Efficiency[pt] * season.Demand *
				ce.PriceAdvantage * math.Sqrt(ce.MarketingAdvantage)))

		cac := 0.0
		if acquired > 0 {
			cac = round2(investment / float64(acquired))
		}

		out.AdPerformance[id] = AdChannelResult{
			Investment:        round2(investment),
			CustomersAcquired: acquired,
			CAC:               cac,
		}
		out.NewCustomers += acquired
	}

	retentionBonus := math.Min(g.RetentionInvestment/tbl.RetentionThreshold, 1) * tbl.RetentionWeight
	serviceBonus := math.Min(g.CustomerService/tbl.ServiceThreshold, 1) * tbl.ServiceWeight
	qualityBonus := math.Min(d.QualityInvestment/tbl.QualityChurnThreshold, 1) * tbl.QualityChurnWeight
	competitivePenalty := math.Max(0, -ce.PriceCompetitiveness) * tbl.CompetitiveChurnWeight

	out.ChurnRate = math.Max(tbl.ChurnFloor,
		tbl.BaseChurn*season.Churn-retentionBonus-serviceBonus-qualityBonus+competitivePenalty)

	out.LostCustomers = int(math.Round(float64(prevCustomers) * out.ChurnRate))
	out.CustomerBase = prevCustomers + out.NewCustomers - out.LostCustomers
	out.RetainedCustomers = prevCustomers - out.LostCustomers
	return out
}
