// Package metrics computes derived portfolio and cashflow figures. Every
// function here is pure: no I/O, no clock access, results independent of
// input order unless a sort is part of the contract.
package metrics

import (
	"fmt"
	"sort"
	"time"

	"finance_navigator/internal/models"
)

// Buffett's recommended allocation target used for the comparison report.
const (
	BuffettTargetETF  = 0.9
	BuffettTargetCash = 0.1
)

// ProcessAccounts fills the derived TWD fields on every asset in place.
// TWD assets convert at 1, everything else at the effective USD/TWD rate.
// Stored raw fields are never touched, so calling this again with a new
// rate yields fresh values.
func ProcessAccounts(accounts []*models.AssetAccount, rate float64) {
	for _, account := range accounts {
		for _, asset := range account.Assets {
			r := 1.0
			if asset.Currency != models.CurrencyTWD {
				r = rate
			}
			asset.CurrentValueTWD = asset.Units * asset.CurrentValue * r
			asset.CostTWD = asset.Units * asset.Cost * r
			asset.ProfitLossTWD = asset.CurrentValueTWD - asset.CostTWD
		}
	}
}

// TypeValue is one slice of the per-type breakdown.
type TypeValue struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// Summary aggregates a processed portfolio.
type Summary struct {
	Total        float64     `json:"total"`
	Breakdown    []TypeValue `json:"breakdown"`
	USDAssetsTWD float64     `json:"usdAssetsTWD"`
}

// Summarize totals a processed portfolio. Zero-value types are dropped from
// the breakdown but still counted in the total, matching the dashboard chart.
func Summarize(accounts []*models.AssetAccount) Summary {
	byType := make(map[string]float64)
	var total, usdTotal float64
	for _, account := range accounts {
		for _, asset := range account.Assets {
			total += asset.CurrentValueTWD
			byType[asset.AccountType] += asset.CurrentValueTWD
			if asset.Currency == models.CurrencyUSD {
				usdTotal += asset.CurrentValueTWD
			}
		}
	}

	breakdown := make([]TypeValue, 0, len(byType))
	for _, t := range models.AssetTypes {
		if v := byType[t]; v != 0 {
			breakdown = append(breakdown, TypeValue{Type: t, Value: v})
		}
	}
	return Summary{Total: total, Breakdown: breakdown, USDAssetsTWD: usdTotal}
}

// breakdownValue returns the breakdown entry for a type, or 0.
func (s Summary) breakdownValue(assetType string) float64 {
	for _, tv := range s.Breakdown {
		if tv.Type == assetType {
			return tv.Value
		}
	}
	return 0
}

// ConcentrationMetrics describes how clustered the investable holdings are.
// Only 股票 and ETF positions count as investable.
type ConcentrationMetrics struct {
	NumberOfAssets int     `json:"numberOfAssets"`
	Concentration  float64 `json:"concentration"` // top holding % of investable value
}

// Concentration computes the investable-holdings concentration over a
// processed portfolio.
func Concentration(accounts []*models.AssetAccount) ConcentrationMetrics {
	var investable []*models.Asset
	for _, account := range accounts {
		for _, asset := range account.Assets {
			if asset.AccountType == models.AssetTypeEquity || asset.AccountType == models.AssetTypeETF {
				investable = append(investable, asset)
			}
		}
	}

	m := ConcentrationMetrics{NumberOfAssets: len(investable)}
	if len(investable) == 0 {
		return m
	}

	var total, top float64
	for _, asset := range investable {
		total += asset.CurrentValueTWD
		if asset.CurrentValueTWD > top {
			top = asset.CurrentValueTWD
		}
	}
	if total > 0 {
		m.Concentration = top / total * 100
	}
	return m
}

// MonthCashflow is one month's income and expense totals.
type MonthCashflow struct {
	Month       string  `json:"month"` // YYYY-MM
	Income      float64 `json:"income"`
	Expense     float64 `json:"expense"`
	Net         float64 `json:"net"`
	SavingsRate float64 `json:"savingsRate"` // percent, 0 when income is 0
}

// MonthlyCashflow sums a single month's records. Records outside the month
// are ignored so callers may pass an unfiltered slice.
func MonthlyCashflow(records []*models.CashflowRecord, month string) MonthCashflow {
	m := MonthCashflow{Month: month}
	for _, rec := range records {
		if rec.Month() != month {
			continue
		}
		switch rec.Type {
		case models.CashflowIncome:
			m.Income += rec.Amount
		case models.CashflowExpense:
			m.Expense += rec.Amount
		}
	}
	m.Net = m.Income - m.Expense
	if m.Income > 0 {
		m.SavingsRate = m.Net / m.Income * 100
	}
	return m
}

// PrevMonth returns the month key of the calendar month before ref's.
// Anchoring to the first of the month keeps AddDate from normalizing a
// nonexistent day (Mar 31 minus one month) back into the current month.
func PrevMonth(ref time.Time) string {
	year, month, _ := ref.Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0).Format("2006-01")
}

// MonthRange returns the last n month keys ending at the month of ref,
// ascending.
func MonthRange(ref time.Time, n int) []string {
	months := make([]string, 0, n)
	year, month, _ := ref.Date()
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(n - 1), 0)
	for i := 0; i < n; i++ {
		months = append(months, start.AddDate(0, i, 0).Format("2006-01"))
	}
	return months
}

// CashflowTrend builds per-month totals over the last n months ending at ref.
func CashflowTrend(records []*models.CashflowRecord, ref time.Time, n int) []MonthCashflow {
	trend := make([]MonthCashflow, 0, n)
	for _, month := range MonthRange(ref, n) {
		trend = append(trend, MonthlyCashflow(records, month))
	}
	return trend
}

// MonthValue is one month's point on a trend line.
type MonthValue struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

// NetWorthTrend back-projects net worth over the last n months: the newest
// point is today's total, and each earlier month unwinds that month's net
// cashflow plus a flat twelfth of total P/L. A visualization aid, not an
// accounting statement.
func NetWorthTrend(accounts []*models.AssetAccount, records []*models.CashflowRecord, ref time.Time, n int) []MonthValue {
	trend := CashflowTrend(records, ref, n)
	var totalPNL float64
	for _, account := range accounts {
		for _, asset := range account.Assets {
			totalPNL += asset.ProfitLossTWD
		}
	}
	monthlyPNL := totalPNL / 12

	value := Summarize(accounts).Total
	points := make([]MonthValue, n)
	for i := n - 1; i >= 0; i-- {
		points[i] = MonthValue{Month: trend[i].Month, Value: value}
		value -= trend[i].Net + monthlyPNL
	}
	return points
}

// AverageMonthlyExpense averages monthly expense totals over every month that
// has at least one expense record.
func AverageMonthlyExpense(records []*models.CashflowRecord) float64 {
	byMonth := make(map[string]float64)
	for _, rec := range records {
		if rec.Type == models.CashflowExpense {
			byMonth[rec.Month()] += rec.Amount
		}
	}
	if len(byMonth) == 0 {
		return 0
	}
	var total float64
	for _, v := range byMonth {
		total += v
	}
	return total / float64(len(byMonth))
}

// CategoryAmount is one category's total.
type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// ExpenseBreakdown sums a month's expenses per category, largest first.
func ExpenseBreakdown(records []*models.CashflowRecord, month string) []CategoryAmount {
	byCategory := make(map[string]float64)
	for _, rec := range records {
		if rec.Type == models.CashflowExpense && rec.Month() == month {
			byCategory[rec.Category] += rec.Amount
		}
	}

	breakdown := make([]CategoryAmount, 0, len(byCategory))
	for category, amount := range byCategory {
		breakdown = append(breakdown, CategoryAmount{Category: category, Amount: amount})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Amount != breakdown[j].Amount {
			return breakdown[i].Amount > breakdown[j].Amount
		}
		return breakdown[i].Category < breakdown[j].Category
	})
	return breakdown
}

// PNLRow is one asset's profit and loss line.
type PNLRow struct {
	AccountName   string  `json:"accountName"`
	Code          string  `json:"code"`
	AccountType   string  `json:"accountType"`
	CostTWD       float64 `json:"costTWD"`
	ValueTWD      float64 `json:"valueTWD"`
	ProfitLossTWD float64 `json:"profitLossTWD"`
	ReturnPct     float64 `json:"returnPct"` // 0 when cost is 0
}

// PNLRows builds per-asset profit and loss rows from a processed portfolio,
// biggest position first.
func PNLRows(accounts []*models.AssetAccount) []PNLRow {
	rows := make([]PNLRow, 0)
	for _, account := range accounts {
		for _, asset := range account.Assets {
			row := PNLRow{
				AccountName:   account.Name,
				Code:          asset.Code,
				AccountType:   asset.AccountType,
				CostTWD:       asset.CostTWD,
				ValueTWD:      asset.CurrentValueTWD,
				ProfitLossTWD: asset.ProfitLossTWD,
			}
			if asset.CostTWD > 0 {
				row.ReturnPct = asset.ProfitLossTWD / asset.CostTWD * 100
			}
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ValueTWD > rows[j].ValueTWD })
	return rows
}

// HealthLight is the dashboard's traffic-light classification.
type HealthLight struct {
	Label    string `json:"label"`
	Subtitle string `json:"subtitle"`
}

// Health light labels.
const (
	HealthNoData = "無數據"
	HealthRed    = "紅燈"
	HealthYellow = "黃燈"
	HealthGreen  = "綠燈"
)

// ClassifyHealth applies the dashboard's risk rules in severity order.
// avgMonthlyExpense feeds the cash-runway checks; a zero average skips them.
func ClassifyHealth(summary Summary, conc ConcentrationMetrics, avgMonthlyExpense float64) HealthLight {
	if summary.Total == 0 {
		return HealthLight{Label: HealthNoData, Subtitle: "請先新增資產"}
	}

	stockPct := summary.breakdownValue(models.AssetTypeEquity) / summary.Total * 100
	totalCash := summary.breakdownValue(models.AssetTypeCash)
	var cashMonths float64
	if avgMonthlyExpense > 0 {
		cashMonths = totalCash / avgMonthlyExpense
	}

	switch {
	case conc.Concentration > 50:
		return HealthLight{Label: HealthRed, Subtitle: "風險過度集中"}
	case stockPct > 60:
		return HealthLight{Label: HealthRed, Subtitle: "個股佔比極高"}
	case avgMonthlyExpense > 0 && cashMonths < 1:
		return HealthLight{Label: HealthRed, Subtitle: "緊急備用金嚴重不足"}
	case conc.Concentration > 30:
		return HealthLight{Label: HealthYellow, Subtitle: "單一資產佔比較高"}
	case stockPct > 35:
		return HealthLight{Label: HealthYellow, Subtitle: "個股佔比偏高"}
	case conc.NumberOfAssets > 0 && conc.NumberOfAssets < 4:
		return HealthLight{Label: HealthYellow, Subtitle: "投資標的較少"}
	case avgMonthlyExpense > 0 && cashMonths < 3:
		return HealthLight{Label: HealthYellow, Subtitle: "緊急備用金可能不足"}
	case cashMonths > 12:
		return HealthLight{Label: HealthYellow, Subtitle: "現金持有過多，可考慮投資"}
	case summary.Total < 500000:
		return HealthLight{Label: HealthYellow, Subtitle: "總資產規模較小"}
	}
	return HealthLight{Label: HealthGreen, Subtitle: "資產配置穩健"}
}

// BuffettComparison compares the current allocation against the 90% ETF /
// 10% cash target and returns advisory text.
func BuffettComparison(summary Summary) string {
	if summary.Total == 0 {
		return "無數據可進行比對。"
	}
	etfShare := summary.breakdownValue(models.AssetTypeETF) / summary.Total
	cashShare := summary.breakdownValue(models.AssetTypeCash) / summary.Total

	etfDiff := etfShare - BuffettTargetETF
	cashDiff := cashShare - BuffettTargetCash

	if etfDiff > -0.1 && etfDiff < 0.1 && cashDiff > -0.05 && cashDiff < 0.05 {
		return "您的資產配置與巴菲特「90% ETF + 10% 現金」模型非常接近，表現出色！"
	}
	advice := "您的資產配置與巴菲特模型存在偏差。"
	if etfDiff < 0 {
		advice += fmt.Sprintf(" 建議增加 ETF 約 %.1f%%。", -etfDiff*100)
	}
	if cashDiff > 0.1 {
		advice += " 您的現金比重過高，可考慮投入投資。"
	}
	return advice
}
