package models

import "time"

// FinancialData is the metrics card payload of a financial_lookup reply.
type FinancialData struct {
	Symbol     string           `json:"symbol"`
	FiscalYear FlexString       `json:"fiscal_year"`
	Financials FinancialFigures `json:"financials"`
	Formatted  FinancialFigures `json:"formatted"`
	Meta       FinancialMeta    `json:"meta"`
}

type FinancialFigures struct {
	Revenue     FlexString `json:"revenue"`
	NetIncome   FlexString `json:"net_income"`
	TotalAssets FlexString `json:"total_assets"`
}

type FinancialMeta struct {
	Timestamp FlexString `json:"timestamp"`
	Currency  string     `json:"currency"`
}

// FinancialStatement is financial_data.results[0].data of /db/financials/{symbol}.
type FinancialStatement struct {
	Symbol            string            `json:"symbol"`
	IncomeStatement   IncomeStatement   `json:"income_statement"`
	BalanceSheet      BalanceSheet      `json:"balance_sheet"`
	CashFlow          CashFlow          `json:"cash_flow"`
	EarningsEstimates EarningsEstimates `json:"earnings_estimates"`
}

type IncomeStatement struct {
	FiscalDate   FlexString `json:"fiscal_date"`
	EBITDA       FlexString `json:"EBITDA"`
	TotalRevenue FlexString `json:"totalRevenue"`
	GrossProfit  FlexString `json:"grossProfit"`
	NetIncome    FlexString `json:"netIncome"`
	EPS          FlexString `json:"eps"`
}

type BalanceSheet struct {
	TotalAssets      FlexString `json:"totalAssets"`
	TotalLiabilities FlexString `json:"totalLiabilities"`
	TotalEquity      FlexString `json:"totalEquity"`
}

type CashFlow struct {
	OperatingCashFlow   FlexString `json:"operatingCashFlow"`
	CapitalExpenditures FlexString `json:"capitalExpenditures"`
	FreeCashFlow        FlexString `json:"freeCashFlow"`
}

type EarningsEstimates struct {
	History []EarningsHistoryItem `json:"history"`
}

type EarningsHistoryItem struct {
	FiscalDateEnding FlexString `json:"fiscalDateEnding"`
	ReportedEPS      FlexString `json:"reportedEPS"`
}

// Quote is a live market price shown next to stored financials.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Currency      string    `json:"currency"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	MarketState   string    `json:"market_state"`
	Time          time.Time `json:"time"`
}
