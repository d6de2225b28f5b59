package domain

// ApplyPeriodProfit rolls one period's company-wide profit (the sum over
// the team's three products) into the balance sheet.
//
// Liabilities are recomputed from the fixed baseline each period, not
// carried forward: while equity stays non-negative they sit at the
// baseline, and when equity goes negative debt grows to absorb the loss
// so that assets never go below zero from the identity side. Whether the
// baseline reset is intentional is an open product question; the behavior
// is kept as is.
func ApplyPeriodProfit(tbl Tables, b BalanceSheet, periodProfit float64) BalanceSheet {
	b.Equity = round2(b.Equity + periodProfit)
	if b.Equity < 0 {
		b.TotalLiabilities = round2(tbl.InitialLiabilities - b.Equity)
	} else {
		b.TotalLiabilities = tbl.InitialLiabilities
	}
	b.TotalAssets = round2(b.Equity + b.TotalLiabilities)
	return b
}

// RecomputeBalance rebuilds a balance sheet from scratch:
// equity = initial equity + the given cumulative profit. Used after a
// confirmed recalculation, where every non-bootstrap period's profit is
// summed again under the current formulas.
func RecomputeBalance(tbl Tables, cumulativeProfit float64) BalanceSheet {
	return ApplyPeriodProfit(tbl, BalanceSheet{Equity: tbl.InitialEquity}, cumulativeProfit)
}
