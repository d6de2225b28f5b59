package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeCompetitiveEffects_ShareOfVoice(t *testing.T) {
	tbl := DefaultTables()
	m := AggregateMarket([]Decisions{
		{Price: 100, MarketingInvestment: 10000, QualityInvestment: 10000},
		{Price: 100, MarketingInvestment: 30000, QualityInvestment: 10000},
	})

	// 10000 de 40000 totales: share 0.25 vs expected 0.5 → ventaja 0.5
	low := ComputeCompetitiveEffects(tbl, Decisions{Price: 100, MarketingInvestment: 10000, QualityInvestment: 10000}, m)
	assert.InDelta(t, 0.25, low.MarketingShare, 0.0001)
	assert.InDelta(t, 0.5, low.ExpectedShare, 0.0001)
	assert.InDelta(t, 0.5, low.MarketingAdvantage, 0.0001)

	high := ComputeCompetitiveEffects(tbl, Decisions{Price: 100, MarketingInvestment: 30000, QualityInvestment: 10000}, m)
	assert.InDelta(t, 1.5, high.MarketingAdvantage, 0.0001)

	// Con precios y calidad idénticos, esas ventajas quedan neutras
	assert.InDelta(t, 1.0, low.PriceAdvantage, 0.0001)
	assert.InDelta(t, 1.0, low.QualityAdvantage, 0.0001)
}

func TestComputeCompetitiveEffects_PriceAdvantage(t *testing.T) {
	tbl := DefaultTables()
	m := AggregateMarket([]Decisions{
		{Price: 90, MarketingInvestment: 1000},
		{Price: 110, MarketingInvestment: 1000},
	})

	// avg 100; precio 90 → competitividad +0.1 → ventaja 1 + 0.1×0.3 = 1.03
	cheap := ComputeCompetitiveEffects(tbl, Decisions{Price: 90, MarketingInvestment: 1000}, m)
	assert.InDelta(t, 0.1, cheap.PriceCompetitiveness, 0.0001)
	assert.InDelta(t, 1.03, cheap.PriceAdvantage, 0.0001)

	expensive := ComputeCompetitiveEffects(tbl, Decisions{Price: 110, MarketingInvestment: 1000}, m)
	assert.InDelta(t, -0.1, expensive.PriceCompetitiveness, 0.0001)
	assert.InDelta(t, 0.97, expensive.PriceAdvantage, 0.0001)
}

func TestComputeCompetitiveEffects_QualityAdvantage(t *testing.T) {
	tbl := DefaultTables()
	m := AggregateMarket([]Decisions{
		{Price: 100, QualityInvestment: 5000},
		{Price: 100, QualityInvestment: 15000},
	})

	// avg 10000; 5000 → 1 + (−0.5)×0.2 = 0.9
	low := ComputeCompetitiveEffects(tbl, Decisions{Price: 100, QualityInvestment: 5000}, m)
	assert.InDelta(t, 0.9, low.QualityAdvantage, 0.0001)

	high := ComputeCompetitiveEffects(tbl, Decisions{Price: 100, QualityInvestment: 15000}, m)
	assert.InDelta(t, 1.1, high.QualityAdvantage, 0.0001)
}

func TestComputeCompetitiveEffects_EmptyMarketIsNeutral(t *testing.T) {
	tbl := DefaultTables()
	ce := ComputeCompetitiveEffects(tbl, Decisions{Price: 100}, MarketMetrics{})
	assert.Equal(t, NeutralEffects(), ce)
}

func TestComputeCompetitiveEffects_ZeroMarketingStaysNeutral(t *testing.T) {
	tbl := DefaultTables()
	m := AggregateMarket([]Decisions{{Price: 100}, {Price: 100}})

	// Nadie invierte: share = expected, ventaja 1, sin división por cero
	ce := ComputeCompetitiveEffects(tbl, Decisions{Price: 100}, m)
	assert.InDelta(t, 0.5, ce.MarketingShare, 0.0001)
	assert.InDelta(t, 1.0, ce.MarketingAdvantage, 0.0001)
}

func TestAggregateMarket_AveragesAndRanges(t *testing.T) {
	m := AggregateMarket([]Decisions{
		{Price: 90, MarketingInvestment: 10000, QualityInvestment: 3000, Discount: 5},
		{Price: 100, MarketingInvestment: 20000, QualityInvestment: 6000, Discount: 10},
		{Price: 110, MarketingInvestment: 30000, QualityInvestment: 9000, Discount: 15},
	})

	assert.Equal(t, 3, m.TeamCount)
	assert.InDelta(t, 100.0, m.AvgPrice, 0.0001)
	assert.InDelta(t, 20000.0, m.AvgMarketing, 0.0001)
	assert.InDelta(t, 6000.0, m.AvgQuality, 0.0001)
	assert.InDelta(t, 10.0, m.AvgDiscount, 0.0001)
	assert.InDelta(t, 60000.0, m.TotalMarketing, 0.0001)
	assert.Equal(t, Range{Min: 90, Max: 110}, m.PriceRange)
	assert.Equal(t, Range{Min: 10000, Max: 30000}, m.MarketingRange)
}

func TestAggregateMarket_Empty(t *testing.T) {
	m := AggregateMarket(nil)
	assert.Equal(t, 0, m.TeamCount)
	assert.Equal(t, 0.0, m.TotalMarketing)
}
