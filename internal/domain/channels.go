package domain

import "math"

// SalesOutcome is the distribution-channel allocation result for one
// product/period.
type SalesOutcome struct {
	BasePrice         float64 // discounted, seasonally adjusted unit price
	BaseUnits         int     // demand before channel capacity clamping
	UnitsSold         float64 // total actually placed across channels
	Revenue           float64
	DistributionCosts float64
	DistPerformance   map[DistChannelID]DistChannelResult
}

// AllocateChannels distributes base unit sales across the distribution
// channels under their capacity ceilings.
//
//	basePrice = price × (1 − discount%) × seasonalPrice
//	baseUnits = round(customerBase × priceImpact × qualityImpact
//	            × brandImpact × seasonalDemand × priceAdv × qualityAdv)
//	priceImpact = max(floor, 1 − discount% × weight)
//
// Per channel, the requested allocation is clamped by the channel's
// volume capacity, independently of the other channels:
//
//	units          = min(baseUnits × allocation%, baseUnits × capacity)
//	effectivePrice = basePrice × marginMultiplier
//	revenue        = units × effectivePrice
//	margin/unit    = (effectivePrice − unitBaseCost) × marginMultiplier
//	operatingCosts = revenue × costRate
//
// Units lost to capacity clamping are silently dropped, never
// redistributed: total units can legitimately fall short of baseUnits.
func AllocateChannels(
	tbl Tables,
	pt ProductType,
	customerBase int,
	d Decisions,
	g GlobalDecisions,
	season SeasonFactors,
	ce CompetitiveEffects,
) SalesOutcome {
	profile := tbl.Profiles[pt]

	basePrice := d.Price * (1 - d.Discount/100) * season.Price
	priceImpact := math.Max(tbl.DiscountImpactFloor, 1-(d.Discount/100)*tbl.DiscountImpactWeight)
	qualityImpact := 1 + (d.QualityInvestment/tbl.QualitySalesThreshold)*tbl.QualitySalesWeight
	brandImpact := 1 + (g.BrandInvestment/tbl.BrandThreshold)*tbl.BrandWeight

	baseUnits := int(math.Round(float64(customerBase) * priceImpact * qualityImpact * brandImpact *
		season.Demand * ce.PriceAdvantage * ce.QualityAdvantage))

	out := SalesOutcome{
		BasePrice:       round2(basePrice),
		BaseUnits:       baseUnits,
		DistPerformance: make(map[DistChannelID]DistChannelResult, len(DistChannelIDs)),
	}

	for _, id := range DistChannelIDs {
		channel := tbl.DistChannels[id]
		allocation := d.DistAllocation(id) / 100

		targetUnits := float64(baseUnits) * allocation
		maxUnits := float64(baseUnits) * channel.VolumeCapacity
		units := math.Min(targetUnits, maxUnits)

		effectivePrice := basePrice * channel.MarginMultiplier
		revenue := units * effectivePrice
		margin := (effectivePrice - profile.BaseUnitCost) * channel.MarginMultiplier
		costs := revenue * channel.CostRate

		out.DistPerformance[id] = DistChannelResult{
			Percentage:     round2(allocation * 100),
			Units:          units,
			Revenue:        round2(revenue),
			Margin:         round2(margin),
			OperatingCosts: round2(costs),
		}

		out.UnitsSold += units
		out.Revenue += revenue
		out.DistributionCosts += costs
	}

	out.Revenue = round2(out.Revenue)
	out.DistributionCosts = round2(out.DistributionCosts)
	return out
}
