package domain

import "time"

// BalanceSheet is a team's company-wide financial position.
// Invariant after every update: TotalAssets == Equity + TotalLiabilities.
type BalanceSheet struct {
	TotalAssets      float64 `json:"totalAssets"`
	Equity           float64 `json:"equity"`
	TotalLiabilities float64 `json:"totalLiabilities"`
}

// ProductLine is one of a team's three products with its full period history.
// Periods are append-only with strictly increasing period numbers.
type ProductLine struct {
	ID      ProductID      `json:"id"`
	Name    string         `json:"name"`
	Type    ProductType    `json:"type"`
	Periods []PeriodRecord `json:"periods"`
}

// Record returns the record for the given period number, or nil.
func (p *ProductLine) Record(period int) *PeriodRecord {
	for i := range p.Periods {
		if p.Periods[i].Period == period {
			return &p.Periods[i]
		}
	}
	return nil
}

// Latest returns the most recent record, or nil when the line is empty.
func (p *ProductLine) Latest() *PeriodRecord {
	if len(p.Periods) == 0 {
		return nil
	}
	return &p.Periods[len(p.Periods)-1]
}

// LatestSimulated returns the most recent record that carries a result.
func (p *ProductLine) LatestSimulated() *PeriodRecord {
	for i := len(p.Periods) - 1; i >= 0; i-- {
		if p.Periods[i].Status == StatusSimulated {
			return &p.Periods[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the product line.
func (p ProductLine) Clone() ProductLine {
	out := p
	out.Periods = make([]PeriodRecord, len(p.Periods))
	for i, rec := range p.Periods {
		out.Periods[i] = rec.Clone()
	}
	return out
}

// Team is one competing company: an immutable code, three product lines
// and a balance sheet.
type Team struct {
	Code     string        `json:"code"`
	Name     string        `json:"name"`
	Products []ProductLine `json:"products"`
	Balance  BalanceSheet  `json:"balanceSheet"`
}

// Product returns the team's line with the given id, or nil.
func (t *Team) Product(id ProductID) *ProductLine {
	for i := range t.Products {
		if t.Products[i].ID == id {
			return &t.Products[i]
		}
	}
	return nil
}

// Clone returns a deep copy sharing no mutable state with the receiver.
// Seeding identical histories across teams depends on this contract.
func (t Team) Clone() Team {
	out := t
	out.Products = make([]ProductLine, len(t.Products))
	for i, p := range t.Products {
		out.Products[i] = p.Clone()
	}
	return out
}

// SimulationState tracks where the whole cohort is in the ten-period run.
type SimulationState struct {
	Initialized   bool      `json:"initialized"`
	CurrentPeriod int       `json:"currentPeriod"`
	TotalPeriods  int       `json:"totalPeriods"`
	StartedAt     time.Time `json:"startedAt"`
}
