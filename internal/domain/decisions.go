package domain

// Decisions are one team's per-product choices for a single period.
// Allocation percentages are expected to sum to 100 but are deliberately
// not enforced: under-allocation leaves units unsold, over-allocation is
// clamped by channel capacity. Both behaviors are covered by tests.
type Decisions struct {
	Price               float64                   `json:"price"`
	Discount            float64                   `json:"discount"`        // percent
	MarketingInvestment float64                   `json:"marketing"`       // euros per period
	QualityInvestment   float64                   `json:"quality"`         // euros per period
	SalesCommission     float64                   `json:"salesCommission"` // percent of revenue
	AdChannels          map[AdChannelID]float64   `json:"adChannels"`      // percent of marketing budget
	DistChannels        map[DistChannelID]float64 `json:"distChannels"`    // percent of base units
}

// Clone returns a copy sharing no mutable state with the receiver.
func (d Decisions) Clone() Decisions {
	out := d
	out.AdChannels = make(map[AdChannelID]float64, len(d.AdChannels))
	for _, id := range AdChannelIDs {
		if v, ok := d.AdChannels[id]; ok {
			out.AdChannels[id] = v
		}
	}
	out.DistChannels = make(map[DistChannelID]float64, len(d.DistChannels))
	for _, id := range DistChannelIDs {
		if v, ok := d.DistChannels[id]; ok {
			out.DistChannels[id] = v
		}
	}
	return out
}

// AdAllocation returns the percentage assigned to an ad channel (0 if unset).
func (d Decisions) AdAllocation(id AdChannelID) float64 {
	return d.AdChannels[id]
}

// DistAllocation returns the percentage assigned to a distribution channel.
func (d Decisions) DistAllocation(id DistChannelID) float64 {
	return d.DistChannels[id]
}

// GlobalDecisions are company-wide choices shared across a team's three
// products for one period.
type GlobalDecisions struct {
	RetentionInvestment float64 `json:"retentionInvestment"`
	BrandInvestment     float64 `json:"brandInvestment"`
	CustomerService     float64 `json:"customerService"`
	CreditDays          int     `json:"creditDays"`
	ProcessImprovement  float64 `json:"processImprovement"`
}
