package domain

// CompetitiveEffects are the dimensionless multipliers a team earns (or
// suffers) from its position relative to the rest of the market. They make
// the engine symmetric: every team's outcome depends on every other team's
// decisions for the same period, through the shared MarketMetrics.
type CompetitiveEffects struct {
	// PriceCompetitiveness is (avgPrice − myPrice) / avgPrice.
	// Positive means I am cheaper than the market.
	PriceCompetitiveness float64

	// PriceAdvantage = 1 + PriceCompetitiveness × priceWeight.
	// No explicit clamp; realistic price ranges bound it in practice.
	PriceAdvantage float64

	// MarketingShare is my fraction of total market ad spend.
	MarketingShare float64
	// ExpectedShare is the equal-split baseline 1/teamCount.
	ExpectedShare float64
	// MarketingAdvantage is share of voice relative to the equal split:
	// MarketingShare / ExpectedShare.
	MarketingAdvantage float64

	// QualityAdvantage = 1 + ((myQuality − avgQuality) / avgQuality) × qualityWeight.
	QualityAdvantage float64
}

// NeutralEffects is the "no competition" stance: every multiplier 1.
func NeutralEffects() CompetitiveEffects {
	return CompetitiveEffects{
		PriceAdvantage:     1,
		MarketingAdvantage: 1,
		QualityAdvantage:   1,
	}
}

// ComputeCompetitiveEffects derives one team's advantage multipliers from
// its decisions and the market aggregates. Metrics with no teams, or with
// zero averages, degrade to the neutral stance rather than dividing by zero.
func ComputeCompetitiveEffects(tbl Tables, d Decisions, m MarketMetrics) CompetitiveEffects {
	if m.TeamCount == 0 {
		return NeutralEffects()
	}

	ce := NeutralEffects()

	if m.AvgPrice > 0 {
		ce.PriceCompetitiveness = (m.AvgPrice - d.Price) / m.AvgPrice
		ce.PriceAdvantage = 1 + ce.PriceCompetitiveness*tbl.PriceAdvantageWeight
	}

	ce.ExpectedShare = 1 / float64(m.TeamCount)
	if m.TotalMarketing > 0 {
		ce.MarketingShare = d.MarketingInvestment / m.TotalMarketing
		ce.MarketingAdvantage = ce.MarketingShare / ce.ExpectedShare
	} else {
		ce.MarketingShare = ce.ExpectedShare
	}

	if m.AvgQuality > 0 {
		ce.QualityAdvantage = 1 + ((d.QualityInvestment-m.AvgQuality)/m.AvgQuality)*tbl.QualityAdvantageWeight
	}

	return ce
}
