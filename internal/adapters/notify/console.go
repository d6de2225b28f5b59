package notify

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/time/rate"

	"github.com/aantao/marksim/internal/application/engine"
	"github.com/aantao/marksim/internal/domain"
)

// Console renders engine reports for the operator and implements
// ports.ChangeNotifier for the storage refresh side-channel. Refresh
// notices are coalesced through a rate limiter so a burst of writes
// (a whole cohort committing) produces a single line, and DataChanged
// never blocks the writer.
type Console struct {
	out     io.Writer
	limiter *rate.Limiter
}

// NewConsole creates a reporter writing to stdout.
func NewConsole() *Console {
	return NewConsoleWriter(os.Stdout)
}

// NewConsoleWriter creates a reporter for tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{
		out:     w,
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

// DataChanged prints a throttled refresh notice. Non-blocking: bursts
// beyond the limiter are dropped, not queued.
func (c *Console) DataChanged(key string) {
	if !c.limiter.Allow() {
		return
	}
	fmt.Fprintf(c.out, "[%s] data updated (%s)\n", time.Now().Format("15:04:05"), key)
}

// RunReport prints the per-team outcome of a simulation step or preview.
func (c *Console) RunReport(rep *engine.RunReport) {
	mode := "SIMULATED"
	if rep.Preview {
		mode = "PREVIEW"
	}
	fmt.Fprintf(c.out, "\n=== %s — period %d (%s) — run %s ===\n",
		mode, rep.Period, rep.Quarter, rep.RunID)

	if len(rep.AutoFilled) > 0 {
		fmt.Fprintf(c.out, "auto-filled from previous decisions: %d team(s)\n", len(rep.AutoFilled))
		for _, code := range rep.AutoFilled {
			fmt.Fprintf(c.out, "  - %s\n", code)
		}
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Team", "Product", "Customers", "New", "Lost", "Units", "Revenue", "Profit")
	for _, team := range rep.Teams {
		for _, p := range team.Products {
			r := p.Result
			table.Append(
				team.Code,
				p.Name,
				fmt.Sprintf("%d", r.CustomerBase),
				fmt.Sprintf("%d", r.NewCustomers),
				fmt.Sprintf("%d", r.LostCustomers),
				fmt.Sprintf("%.0f", r.UnitsSold),
				fmt.Sprintf("€%.2f", r.Revenue),
				fmt.Sprintf("€%.2f", r.Profit),
			)
		}
	}
	table.Render()

	for _, team := range rep.Teams {
		fmt.Fprintf(c.out, "  %-12s period profit €%.2f | equity €%.2f  liabilities €%.2f  assets €%.2f\n",
			team.Code, team.PeriodProfit,
			team.Balance.Equity, team.Balance.TotalLiabilities, team.Balance.TotalAssets)
	}

	for _, f := range rep.Skipped {
		fmt.Fprintf(c.out, "  ⚠ skipped %s: %s\n", f.Code, f.Reason)
	}
	fmt.Fprintln(c.out)
}

// RecalcReport prints the old-vs-new diff the operator must confirm.
func (c *Console) RecalcReport(rep *engine.RecalcReport) {
	fmt.Fprintf(c.out, "\n=== RECALCULATION PREVIEW — %d period(s), %d change(s) ===\n",
		len(rep.Periods), len(rep.Changes))

	table := tablewriter.NewWriter(c.out)
	table.Header("Team", "Product", "Period", "Revenue old", "Revenue new", "Profit old", "Profit new")
	for _, ch := range rep.Changes {
		table.Append(
			ch.TeamCode,
			string(ch.ProductID),
			fmt.Sprintf("%d", ch.Period),
			fmt.Sprintf("€%.2f", ch.OldRevenue),
			fmt.Sprintf("€%.2f", ch.NewRevenue),
			fmt.Sprintf("€%.2f", ch.OldProfit),
			fmt.Sprintf("€%.2f", ch.NewProfit),
		)
	}
	table.Render()
	fmt.Fprintln(c.out, "  Nothing has been written. Confirm to apply and rebuild balance sheets.")
}

// Status prints the submission state of the current period.
func (c *Console) Status(rep *engine.StatusReport) {
	fmt.Fprintf(c.out, "\n=== Period %d of %d (%s) — %d/%d submitted ===\n",
		rep.Period, rep.TotalPeriods, rep.Quarter, rep.SubmittedCount, len(rep.Teams))

	table := tablewriter.NewWriter(c.out)
	table.Header("Team", "Name", "Status", "Submitted at")
	for _, t := range rep.Teams {
		status, at := "pending", "-"
		if t.Submitted {
			status = "submitted"
			if t.AutoSubmitted {
				status = "auto-filled"
			}
			at = t.SubmittedAt.Format("2006-01-02 15:04")
		}
		table.Append(t.Code, t.Name, status, at)
	}
	table.Render()
}

// Standings prints the cohort ranking.
func (c *Console) Standings(standings []engine.Standing) {
	fmt.Fprintf(c.out, "\n=== STANDINGS (by latest-period revenue) ===\n")

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Team", "Revenue", "Profit", "Cum. profit", "Customers", "Equity")
	for _, s := range standings {
		table.Append(
			fmt.Sprintf("%d", s.Rank),
			s.Code,
			fmt.Sprintf("€%.2f", s.Revenue),
			fmt.Sprintf("€%.2f", s.Profit),
			fmt.Sprintf("€%.2f", s.CumulativeProfit),
			fmt.Sprintf("%d", s.Customers),
			fmt.Sprintf("€%.2f", s.Equity),
		)
	}
	table.Render()
}

// History prints one team's full period history for one product.
func (c *Console) History(teamCode string, line domain.ProductLine, quarterLabel func(int) string) {
	fmt.Fprintf(c.out, "\n=== %s — %s ===\n", teamCode, line.Name)

	table := tablewriter.NewWriter(c.out)
	table.Header("Period", "Quarter", "Status", "Customers", "Revenue", "Profit", "Price", "Marketing")
	for _, rec := range line.Periods {
		customers, revenue, profit := "-", "-", "-"
		if rec.Result != nil {
			customers = fmt.Sprintf("%d", rec.Result.CustomerBase)
			revenue = fmt.Sprintf("€%.2f", rec.Result.Revenue)
			profit = fmt.Sprintf("€%.2f", rec.Result.Profit)
		}
		table.Append(
			fmt.Sprintf("%d", rec.Period),
			quarterLabel(rec.Period),
			string(rec.Status),
			customers,
			revenue,
			profit,
			fmt.Sprintf("€%.2f", rec.Decisions.Price),
			fmt.Sprintf("€%.0f", rec.Decisions.MarketingInvestment),
		)
	}
	table.Render()
}
