package dashboard

import (
	"fmt"
	"io"

	"github.com/dyike/WealthGo/internal/display"
	"github.com/dyike/WealthGo/internal/models"
)

type FinancialOptions struct {
	AllHistory bool
	Quote      *models.Quote
}

func RenderSymbols(w io.Writer, symbols []string) {
	if len(symbols) == 0 {
		fmt.Fprintln(w, "No financial data found")
		return
	}
	writeTitle(w, "Stored financials", fmt.Sprintf("%d symbol(s)", len(symbols)))
	rows := make([][]string, 0, len(symbols))
	for _, s := range symbols {
		rows = append(rows, []string{s})
	}
	fmt.Fprintln(w, newTable([]string{"Symbol"}, rows, nil).String())
}

// RenderFinancials prints the statement tables. A nil statement is the
// "not found" state.
func RenderFinancials(w io.Writer, stmt *models.FinancialStatement, opts FinancialOptions) {
	if stmt == nil {
		fmt.Fprintln(w, "No financial data found")
		return
	}
	writeTitle(w, "Financials: "+stmt.Symbol, "")
	if q := opts.Quote; q != nil {
		fmt.Fprintln(w, subtitleStyle.Render(formatQuote(*q)))
	}

	is := stmt.IncomeStatement
	writeStatement(w, "Income Statement", [][2]string{
		{"fiscal_date", is.FiscalDate.String()},
		{"EBITDA", amount(is.EBITDA)},
		{"totalRevenue", amount(is.TotalRevenue)},
		{"grossProfit", amount(is.GrossProfit)},
		{"netIncome", amount(is.NetIncome)},
		{"eps", is.EPS.String()},
	})
	bs := stmt.BalanceSheet
	writeStatement(w, "Balance Sheet", [][2]string{
		{"totalAssets", amount(bs.TotalAssets)},
		{"totalLiabilities", amount(bs.TotalLiabilities)},
		{"totalEquity", amount(bs.TotalEquity)},
	})
	cf := stmt.CashFlow
	writeStatement(w, "Cash Flow", [][2]string{
		{"operatingCashFlow", amount(cf.OperatingCashFlow)},
		{"capitalExpenditures", amount(cf.CapitalExpenditures)},
		{"freeCashFlow", amount(cf.FreeCashFlow)},
	})

	history := stmt.EarningsEstimates.History
	shown := history
	if !opts.AllHistory && len(shown) > EarningsPreview {
		shown = shown[:EarningsPreview]
	}
	fmt.Fprintln(w, titleStyle.Render("Earnings History"))
	rows := make([][]string, 0, len(shown))
	for _, h := range shown {
		rows = append(rows, []string{orNA(h.FiscalDateEnding.String()), orNA(h.ReportedEPS.String())})
	}
	fmt.Fprintln(w, newTable([]string{"Fiscal Date", "Reported EPS"}, rows, nil).String())
	if len(history) > len(shown) {
		fmt.Fprintln(w, subtitleStyle.Render(fmt.Sprintf("Showing %d of %d; pass --all-history to show all", len(shown), len(history))))
	}
}

func writeStatement(w io.Writer, title string, rows [][2]string) {
	fmt.Fprintln(w, titleStyle.Render(title))
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{r[0], orNA(r[1])})
	}
	fmt.Fprintln(w, newTable([]string{"Item", "Value"}, out, nil).String())
}

// amount shows the raw figure with a compact form alongside.
func amount(v models.FlexString) string {
	d, ok := v.Decimal()
	if !ok {
		return v.String()
	}
	return fmt.Sprintf("%s (%s)", v.String(), display.CompactAmount(d, "USD"))
}

func formatQuote(q models.Quote) string {
	s := fmt.Sprintf("Live: %.2f %s (%+.2f, %+.2f%%)", q.Price, q.Currency, q.Change, q.ChangePercent)
	if q.MarketState != "" {
		s += " · " + q.MarketState
	}
	if !q.Time.IsZero() {
		s += " · " + q.Time.Format("2 Jan 15:04 MST")
	}
	return s
}
