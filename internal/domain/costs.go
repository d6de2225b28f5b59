package domain

import "math"

// ProfitOutcome aggregates every cost and investment of a product/period
// into the final profit figure.
type ProfitOutcome struct {
	UnitVariableCost      float64
	VariableCosts         float64
	FixedCosts            float64
	Commissions           float64
	GlobalInvestmentShare float64
	TotalInvestments      float64
	WeightedMargin        float64
	Profit                float64
}

// ComputeProfit folds variable, fixed and distribution costs, commissions
// and investments into profit.
//
//	unitVariableCost = baseCost(type) × (1 − processEfficiency × reduction)
//	processEfficiency = min(processImprovement/threshold, 1)
//
// The four company-wide investments (retention, brand, service, process)
// are shared: each product carries a third of their sum. Weighted margin
// is the unit margin averaged over channels by units placed.
func ComputeProfit(tbl Tables, pt ProductType, sales SalesOutcome, d Decisions, g GlobalDecisions) ProfitOutcome {
	profile := tbl.Profiles[pt]

	processEfficiency := math.Min(g.ProcessImprovement/tbl.ProcessThreshold, 1)
	unitVariableCost := profile.BaseUnitCost * (1 - processEfficiency*tbl.ProcessCostReduction)

	out := ProfitOutcome{
		UnitVariableCost: round2(unitVariableCost),
		VariableCosts:    round2(sales.UnitsSold * unitVariableCost),
		FixedCosts:       profile.FixedCosts,
		Commissions:      round2(sales.Revenue * d.SalesCommission / 100),
	}

	out.GlobalInvestmentShare = round2(
		(g.RetentionInvestment + g.BrandInvestment + g.CustomerService + g.ProcessImprovement) / 3)
	out.TotalInvestments = d.MarketingInvestment + d.QualityInvestment + out.GlobalInvestmentShare

	if sales.UnitsSold > 0 {
		for _, id := range DistChannelIDs {
			ch := sales.DistPerformance[id]
			out.WeightedMargin += ch.Margin * (ch.Units / sales.UnitsSold)
		}
		out.WeightedMargin = round2(out.WeightedMargin)
	}

	out.Profit = round2(sales.Revenue -
		out.VariableCosts - out.FixedCosts - sales.DistributionCosts -
		out.Commissions - out.TotalInvestments)
	return out
}

// BuildResult assembles the persisted PeriodResult from the three
// component outcomes.
func BuildResult(d Decisions, customers CustomerOutcome, sales SalesOutcome, profit ProfitOutcome) *PeriodResult {
	return &PeriodResult{
		CustomerBase:      customers.CustomerBase,
		NewCustomers:      customers.NewCustomers,
		LostCustomers:     customers.LostCustomers,
		PreviousCustomers: customers.PreviousCustomers,
		RetainedCustomers: customers.RetainedCustomers,

		Revenue:         sales.Revenue,
		UnitsSold:       sales.UnitsSold,
		UnitPrice:       sales.BasePrice,
		AppliedDiscount: d.Discount,

		VariableCosts:     profit.VariableCosts,
		UnitVariableCost:  profit.UnitVariableCost,
		FixedCosts:        profit.FixedCosts,
		DistributionCosts: sales.DistributionCosts,

		MarketingCost:    d.MarketingInvestment,
		QualityCost:      d.QualityInvestment,
		SalesCommissions: profit.Commissions,

		WeightedMargin: profit.WeightedMargin,
		Profit:         profit.Profit,

		AdPerformance:   customers.AdPerformance,
		DistPerformance: sales.DistPerformance,
	}
}
