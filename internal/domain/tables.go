// Package domain contains the pure model of the marketing simulation:
// the immutable economic tables, the team/period records, and the formula
// components that turn one period of decisions into customers, sales,
// costs and profit. Nothing in this package performs I/O; every function
// is deterministic over its inputs.
package domain

import "math"

// ProductType classifies a product line's market segment.
type ProductType string

const (
	ProductPremium  ProductType = "premium"
	ProductMidrange ProductType = "midrange"
	ProductEconomic ProductType = "economic"
)

// ProductID identifies one of a team's three product lines.
type ProductID string

const (
	ProductA ProductID = "productA"
	ProductB ProductID = "productB"
	ProductC ProductID = "productC"
)

// AdChannelID identifies an advertising channel.
type AdChannelID string

const (
	AdGoogle    AdChannelID = "googleAds"
	AdFacebook  AdChannelID = "facebook"
	AdInstagram AdChannelID = "instagram"
	AdEmail     AdChannelID = "email"
	AdRadio     AdChannelID = "radio"
)

// AdChannelIDs is the canonical channel order. Iteration over allocation
// maps must go through this slice, never over the map itself.
var AdChannelIDs = []AdChannelID{AdGoogle, AdFacebook, AdInstagram, AdEmail, AdRadio}

// DistChannelID identifies a distribution channel.
type DistChannelID string

const (
	DistOwnStores   DistChannelID = "ownStores"
	DistRetailers   DistChannelID = "retailers"
	DistEcommerce   DistChannelID = "ecommerce"
	DistWholesalers DistChannelID = "wholesalers"
)

// DistChannelIDs is the canonical distribution channel order.
var DistChannelIDs = []DistChannelID{DistOwnStores, DistRetailers, DistEcommerce, DistWholesalers}

// ProductSpec names one of the three product lines every team manages.
type ProductSpec struct {
	ID   ProductID
	Name string
	Type ProductType
}

// SeasonFactors are the quarter multipliers applied to demand, price and churn.
type SeasonFactors struct {
	Demand float64
	Price  float64
	Churn  float64
}

// AdChannel describes an advertising channel's efficiency per product type
// (customers acquired per euro invested).
type AdChannel struct {
	Name       string
	Efficiency map[ProductType]float64
}

// DistChannel describes a distribution channel's economics.
type DistChannel struct {
	Name             string
	MarginMultiplier float64 // fraction of the base price the channel realizes
	VolumeCapacity   float64 // hard ceiling as fraction of base units
	CostRate         float64 // operating costs as fraction of channel revenue
}

// ProductProfile holds the fixed economics of a product type.
type ProductProfile struct {
	BasePrice     float64
	BaseCustomers int
	BaseUnitCost  float64
	FixedCosts    float64
	BaseChurn     float64 // competition-free churn used by the bootstrap
}

// Tables is the immutable configuration of the simulation economy.
// It is built once (DefaultTables) and passed by value into every
// component, so tests can run against alternate tables.
type Tables struct {
	Products []ProductSpec

	Seasonality  map[int]map[ProductType]SeasonFactors // quarter (1..4) → type → factors
	AdChannels   map[AdChannelID]AdChannel
	DistChannels map[DistChannelID]DistChannel
	Profiles     map[ProductType]ProductProfile

	// Customer dynamics.
	BaseChurn              float64 // market-wide base churn per period
	ChurnFloor             float64
	RetentionThreshold     float64 // retention investment for full bonus
	RetentionWeight        float64
	ServiceThreshold       float64
	ServiceWeight          float64
	QualityChurnThreshold  float64
	QualityChurnWeight     float64
	CompetitiveChurnWeight float64 // churn added per point of price disadvantage

	// Competitive effects.
	PriceAdvantageWeight   float64
	QualityAdvantageWeight float64

	// Unit sales.
	DiscountImpactWeight  float64
	DiscountImpactFloor   float64
	QualitySalesThreshold float64
	QualitySalesWeight    float64
	BrandThreshold        float64
	BrandWeight           float64

	// Costs.
	ProcessThreshold     float64
	ProcessCostReduction float64

	// Opening balance sheet, identical for every team.
	InitialAssets      float64
	InitialEquity      float64
	InitialLiabilities float64
}

// DefaultTables returns the standard classroom economy.
func DefaultTables() Tables {
	return Tables{
		Products: []ProductSpec{
			{ID: ProductA, Name: "Product A (Premium)", Type: ProductPremium},
			{ID: ProductB, Name: "Product B (Mid-Range)", Type: ProductMidrange},
			{ID: ProductC, Name: "Product C (Economic)", Type: ProductEconomic},
		},
		Seasonality: map[int]map[ProductType]SeasonFactors{
			1: { // Q1: post-holidays slump
				ProductPremium:  {Demand: 0.95, Price: 1.00, Churn: 0.95},
				ProductMidrange: {Demand: 0.85, Price: 0.98, Churn: 1.10},
				ProductEconomic: {Demand: 0.80, Price: 0.95, Churn: 1.15},
			},
			2: { // Q2: spring, baseline
				ProductPremium:  {Demand: 1.00, Price: 1.00, Churn: 1.00},
				ProductMidrange: {Demand: 1.00, Price: 1.00, Churn: 1.00},
				ProductEconomic: {Demand: 1.00, Price: 1.00, Churn: 1.00},
			},
			3: { // Q3: summer holidays
				ProductPremium:  {Demand: 0.98, Price: 1.02, Churn: 0.90},
				ProductMidrange: {Demand: 0.90, Price: 0.97, Churn: 1.05},
				ProductEconomic: {Demand: 0.85, Price: 0.95, Churn: 1.12},
			},
			4: { // Q4: Christmas peak
				ProductPremium:  {Demand: 1.15, Price: 1.05, Churn: 0.85},
				ProductMidrange: {Demand: 1.25, Price: 1.00, Churn: 0.90},
				ProductEconomic: {Demand: 1.30, Price: 0.98, Churn: 0.95},
			},
		},
		AdChannels: map[AdChannelID]AdChannel{
			AdGoogle: {Name: "Google Ads", Efficiency: map[ProductType]float64{
				ProductPremium: 0.045, ProductMidrange: 0.065, ProductEconomic: 0.085,
			}},
			AdFacebook: {Name: "Facebook Ads", Efficiency: map[ProductType]float64{
				ProductPremium: 0.055, ProductMidrange: 0.075, ProductEconomic: 0.095,
			}},
			AdInstagram: {Name: "Instagram Ads", Efficiency: map[ProductType]float64{
				ProductPremium: 0.065, ProductMidrange: 0.070, ProductEconomic: 0.060,
			}},
			AdEmail: {Name: "Email Marketing", Efficiency: map[ProductType]float64{
				ProductPremium: 0.040, ProductMidrange: 0.050, ProductEconomic: 0.055,
			}},
			AdRadio: {Name: "Radio/TV", Efficiency: map[ProductType]float64{
				ProductPremium: 0.035, ProductMidrange: 0.045, ProductEconomic: 0.050,
			}},
		},
		DistChannels: map[DistChannelID]DistChannel{
			DistOwnStores:   {Name: "Own Stores", MarginMultiplier: 1.00, VolumeCapacity: 0.35, CostRate: 0.08},
			DistRetailers:   {Name: "Retailers", MarginMultiplier: 0.75, VolumeCapacity: 0.45, CostRate: 0.03},
			DistEcommerce:   {Name: "E-commerce", MarginMultiplier: 0.90, VolumeCapacity: 0.30, CostRate: 0.05},
			DistWholesalers: {Name: "Wholesalers", MarginMultiplier: 0.60, VolumeCapacity: 0.50, CostRate: 0.02},
		},
		Profiles: map[ProductType]ProductProfile{
			ProductPremium:  {BasePrice: 150, BaseCustomers: 5000, BaseUnitCost: 45, FixedCosts: 50000, BaseChurn: 0.08},
			ProductMidrange: {BasePrice: 100, BaseCustomers: 8000, BaseUnitCost: 35, FixedCosts: 45000, BaseChurn: 0.12},
			ProductEconomic: {BasePrice: 60, BaseCustomers: 12000, BaseUnitCost: 25, FixedCosts: 40000, BaseChurn: 0.15},
		},

		BaseChurn:              0.06,
		ChurnFloor:             0.02,
		RetentionThreshold:     60000,
		RetentionWeight:        0.05,
		ServiceThreshold:       40000,
		ServiceWeight:          0.04,
		QualityChurnThreshold:  50000,
		QualityChurnWeight:     0.15,
		CompetitiveChurnWeight: 0.02,

		PriceAdvantageWeight:   0.3,
		QualityAdvantageWeight: 0.2,

		DiscountImpactWeight:  0.5,
		DiscountImpactFloor:   0.7,
		QualitySalesThreshold: 40000,
		QualitySalesWeight:    0.15,
		BrandThreshold:        50000,
		BrandWeight:           0.1,

		ProcessThreshold:     30000,
		ProcessCostReduction: 0.25,

		InitialAssets:      500000,
		InitialEquity:      300000,
		InitialLiabilities: 200000,
	}
}

// Quarter maps a period number onto its calendar quarter (1..4).
func Quarter(period int) int {
	return ((period - 1) % 4) + 1
}

// Season returns the seasonality factors for a period and product type.
func (t Tables) Season(period int, pt ProductType) SeasonFactors {
	return t.Seasonality[Quarter(period)][pt]
}

// Product returns the ProductSpec whose id matches, or false.
func (t Tables) Product(id ProductID) (ProductSpec, bool) {
	for _, p := range t.Products {
		if p.ID == id {
			return p, true
		}
	}
	return ProductSpec{}, false
}

// round2 rounds money values to cents.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
