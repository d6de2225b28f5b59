package domain

import "time"

// PeriodStatus is the lifecycle state of a period record.
type PeriodStatus string

const (
	// StatusPending means decisions exist but the period has not been simulated.
	StatusPending PeriodStatus = "pending"
	// StatusSimulated means the record carries a result. Simulated records are
	// only ever overwritten by an operator-confirmed recalculation.
	StatusSimulated PeriodStatus = "simulated"
)

// AdChannelResult is the per-advertising-channel outcome of a period.
type AdChannelResult struct {
	Investment        float64 `json:"investment"`
	CustomersAcquired int     `json:"customersAcquired"`
	CAC               float64 `json:"cac"` // 0 when no customers were acquired
}

// DistChannelResult is the per-distribution-channel outcome of a period.
type DistChannelResult struct {
	Percentage     float64 `json:"percentage"` // allocation actually requested
	Units          float64 `json:"units"`      // capacity-clamped units sold
	Revenue        float64 `json:"revenue"`
	Margin         float64 `json:"margin"` // per-unit margin in this channel
	OperatingCosts float64 `json:"operatingCosts"`
}

// PeriodResult is the simulated outcome of one product line for one period.
type PeriodResult struct {
	// Customers.
	CustomerBase      int `json:"customerBase"`
	NewCustomers      int `json:"newCustomers"`
	LostCustomers     int `json:"lostCustomers"`
	PreviousCustomers int `json:"previousCustomers"`
	RetainedCustomers int `json:"retainedCustomers"`

	// Sales.
	Revenue         float64 `json:"revenue"`
	UnitsSold       float64 `json:"unitsSold"`
	UnitPrice       float64 `json:"unitPrice"`
	AppliedDiscount float64 `json:"appliedDiscount"`

	// Costs.
	VariableCosts     float64 `json:"variableCosts"`
	UnitVariableCost  float64 `json:"unitVariableCost"`
	FixedCosts        float64 `json:"fixedCosts"`
	DistributionCosts float64 `json:"distributionCosts"`

	// Investments.
	MarketingCost    float64 `json:"marketingCost"`
	QualityCost      float64 `json:"qualityCost"`
	SalesCommissions float64 `json:"salesCommissions"`

	// Outcome.
	WeightedMargin float64 `json:"weightedMargin"`
	Profit         float64 `json:"profit"`

	// Per-channel performance.
	AdPerformance   map[AdChannelID]AdChannelResult     `json:"adPerformance"`
	DistPerformance map[DistChannelID]DistChannelResult `json:"distPerformance"`
}

// Clone returns a deep copy of the result.
func (r *PeriodResult) Clone() *PeriodResult {
	if r == nil {
		return nil
	}
	out := *r
	out.AdPerformance = make(map[AdChannelID]AdChannelResult, len(r.AdPerformance))
	for id, v := range r.AdPerformance {
		out.AdPerformance[id] = v
	}
	out.DistPerformance = make(map[DistChannelID]DistChannelResult, len(r.DistPerformance))
	for id, v := range r.DistPerformance {
		out.DistPerformance[id] = v
	}
	return &out
}

// PeriodRecord binds one period's decisions to its (eventual) result.
// Invariant: Result != nil exactly when Status == StatusSimulated.
type PeriodRecord struct {
	Period        int             `json:"period"`
	Decisions     Decisions       `json:"decisions"`
	Global        GlobalDecisions `json:"globalDecisions"`
	Result        *PeriodResult   `json:"result,omitempty"`
	Status        PeriodStatus    `json:"status"`
	SubmittedAt   time.Time       `json:"submittedAt"`
	AutoSubmitted bool            `json:"autoSubmitted"`
	SubmissionID  string          `json:"submissionId"`
}

// Clone returns a deep copy of the record.
func (p PeriodRecord) Clone() PeriodRecord {
	out := p
	out.Decisions = p.Decisions.Clone()
	out.Result = p.Result.Clone()
	return out
}
