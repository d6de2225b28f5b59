package domain

// Range is a min/max pair over the cohort's decisions.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// MarketMetrics collapses every team's decisions for one product and one
// period into the market-wide aggregates the competitive model needs.
// It is derived state: computed fresh each period, never persisted.
//
// A TeamCount of 0 means "no competition": the competitive model treats
// such metrics as neutral (all advantage multipliers 1).
type MarketMetrics struct {
	AvgPrice       float64 `json:"avgPrice"`
	AvgMarketing   float64 `json:"avgMarketing"`
	AvgQuality     float64 `json:"avgQuality"`
	AvgDiscount    float64 `json:"avgDiscount"`
	TotalMarketing float64 `json:"totalMarketing"`
	TeamCount      int     `json:"teamCount"`
	PriceRange     Range   `json:"priceRange"`
	MarketingRange Range   `json:"marketingRange"`
}

// AggregateMarket computes the market metrics for one product from the
// whole cohort's decisions. This is the synchronization barrier of the
// engine: no team's result may be computed before the full set of
// decisions has been collapsed here.
func AggregateMarket(decisions []Decisions) MarketMetrics {
	m := MarketMetrics{TeamCount: len(decisions)}
	if m.TeamCount == 0 {
		return m
	}

	m.PriceRange = Range{Min: decisions[0].Price, Max: decisions[0].Price}
	m.MarketingRange = Range{Min: decisions[0].MarketingInvestment, Max: decisions[0].MarketingInvestment}

	var sumPrice, sumMarketing, sumQuality, sumDiscount float64
	for _, d := range decisions {
		sumPrice += d.Price
		sumMarketing += d.MarketingInvestment
		sumQuality += d.QualityInvestment
		sumDiscount += d.Discount

		if d.Price < m.PriceRange.Min {
			m.PriceRange.Min = d.Price
		}
		if d.Price > m.PriceRange.Max {
			m.PriceRange.Max = d.Price
		}
		if d.MarketingInvestment < m.MarketingRange.Min {
			m.MarketingRange.Min = d.MarketingInvestment
		}
		if d.MarketingInvestment > m.MarketingRange.Max {
			m.MarketingRange.Max = d.MarketingInvestment
		}
	}

	n := float64(m.TeamCount)
	m.AvgPrice = sumPrice / n
	m.AvgMarketing = sumMarketing / n
	m.AvgQuality = sumQuality / n
	m.AvgDiscount = sumDiscount / n
	m.TotalMarketing = sumMarketing
	return m
}
