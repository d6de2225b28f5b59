package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Escenario de referencia: 1000 clientes, precio 100, sin descuento ni
// inversiones → baseUnits = 1000 y todos los impactos quedan en 1.
func referenceSales(tbl Tables, dist map[DistChannelID]float64) SalesOutcome {
	d := Decisions{Price: 100, DistChannels: dist}
	return AllocateChannels(tbl, ProductPremium, 1000, d, GlobalDecisions{}, SeasonFactors{Demand: 1, Price: 1, Churn: 1}, NeutralEffects())
}

func TestAllocateChannels_CapacityClamp(t *testing.T) {
	tbl := DefaultTables()

	// ownStores pide 50% pero su capacidad es 35% → 350 unidades
	// retailers pide 50% con capacidad 45% → 450 unidades
	out := referenceSales(tbl, map[DistChannelID]float64{DistOwnStores: 50, DistRetailers: 50})

	assert.Equal(t, 1000, out.BaseUnits)
	assert.InDelta(t, 350.0, out.DistPerformance[DistOwnStores].Units, 0.001)
	assert.InDelta(t, 450.0, out.DistPerformance[DistRetailers].Units, 0.001)
	assert.InDelta(t, 800.0, out.UnitsSold, 0.001)

	// El exceso recortado se pierde, nunca se redistribuye
	assert.Less(t, out.UnitsSold, float64(out.BaseUnits))
}

func TestAllocateChannels_ChannelEconomics(t *testing.T) {
	tbl := DefaultTables()
	out := referenceSales(tbl, map[DistChannelID]float64{DistOwnStores: 50, DistRetailers: 50})

	// ownStores: 350 × (100×1.00) = 35000, costes 8% = 2800
	// margen/unidad = (100 − 45) × 1.00 = 55
	own := out.DistPerformance[DistOwnStores]
	assert.InDelta(t, 35000.0, own.Revenue, 0.001)
	assert.InDelta(t, 2800.0, own.OperatingCosts, 0.001)
	assert.InDelta(t, 55.0, own.Margin, 0.001)

	// retailers: 450 × (100×0.75) = 33750, costes 3% = 1012.50
	// margen/unidad = (75 − 45) × 0.75 = 22.50
	ret := out.DistPerformance[DistRetailers]
	assert.InDelta(t, 33750.0, ret.Revenue, 0.001)
	assert.InDelta(t, 1012.50, ret.OperatingCosts, 0.001)
	assert.InDelta(t, 22.50, ret.Margin, 0.001)

	assert.InDelta(t, 68750.0, out.Revenue, 0.001)
	assert.InDelta(t, 3812.50, out.DistributionCosts, 0.001)
}

func TestAllocateChannels_UnderAllocationLeavesUnitsUnsold(t *testing.T) {
	tbl := DefaultTables()

	// Solo 40% asignado (ecommerce cap 30% → 300): el resto no se vende
	out := referenceSales(tbl, map[DistChannelID]float64{DistEcommerce: 40})
	assert.InDelta(t, 300.0, out.UnitsSold, 0.001)
}

func TestAllocateChannels_NoUnitExceedsItsChannelCapacity(t *testing.T) {
	tbl := DefaultTables()

	// Sobre-asignación deliberada (suma 200%): cada canal queda en su tope
	out := referenceSales(tbl, map[DistChannelID]float64{
		DistOwnStores: 50, DistRetailers: 50, DistEcommerce: 50, DistWholesalers: 50,
	})

	var total float64
	for _, id := range DistChannelIDs {
		ch := out.DistPerformance[id]
		cap := float64(out.BaseUnits) * tbl.DistChannels[id].VolumeCapacity
		assert.LessOrEqual(t, ch.Units, cap+0.001, "channel %s over capacity", id)
		total += ch.Units
	}
	assert.InDelta(t, total, out.UnitsSold, 0.001)
}

func TestAllocateChannels_DiscountLowersPriceAndDemand(t *testing.T) {
	tbl := DefaultTables()

	d := Decisions{Price: 100, Discount: 20, DistChannels: map[DistChannelID]float64{DistOwnStores: 30}}
	out := AllocateChannels(tbl, ProductPremium, 1000, d, GlobalDecisions{}, SeasonFactors{Demand: 1, Price: 1, Churn: 1}, NeutralEffects())

	// precio base 100×0.80 = 80; priceImpact = 1 − 0.20×0.5 = 0.9 → 900 unidades base
	assert.InDelta(t, 80.0, out.BasePrice, 0.001)
	assert.Equal(t, 900, out.BaseUnits)
}

func TestAllocateChannels_DiscountImpactFloor(t *testing.T) {
	tbl := DefaultTables()

	// Descuento extremo: 1 − 0.80×0.5 = 0.6 queda acotado al floor 0.7
	d := Decisions{Price: 100, Discount: 80, DistChannels: map[DistChannelID]float64{DistOwnStores: 30}}
	out := AllocateChannels(tbl, ProductPremium, 1000, d, GlobalDecisions{}, SeasonFactors{Demand: 1, Price: 1, Churn: 1}, NeutralEffects())

	assert.Equal(t, 700, out.BaseUnits)
}

func TestAllocateChannels_SeasonalPeakLiftsDemand(t *testing.T) {
	tbl := DefaultTables()

	// Q4 económico: demanda ×1.30, precio ×0.98
	d := Decisions{Price: 60, DistChannels: map[DistChannelID]float64{DistWholesalers: 50}}
	out := AllocateChannels(tbl, ProductEconomic, 1000, d, GlobalDecisions{}, tbl.Season(4, ProductEconomic), NeutralEffects())

	assert.Equal(t, 1300, out.BaseUnits)
	assert.InDelta(t, 58.8, out.BasePrice, 0.001)
}
