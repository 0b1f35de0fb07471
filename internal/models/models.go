// Package models contains the domain models for the finance navigator.
package models

import "time"

// Currency codes handled by the app. TWD is the home reporting currency.
const (
	CurrencyTWD = "TWD"
	CurrencyUSD = "USD"
)

// Asset types. The labels double as chart keys in the SPA, so they are
// stored verbatim.
const (
	AssetTypeCash       = "現金"
	AssetTypeETF        = "ETF"
	AssetTypeEquity     = "股票"
	AssetTypeRealEstate = "不動產"
	AssetTypeUSDAsset   = "美元資產"
)

// AssetTypes lists all valid asset types in display order.
var AssetTypes = []string{
	AssetTypeCash,
	AssetTypeETF,
	AssetTypeEquity,
	AssetTypeRealEstate,
	AssetTypeUSDAsset,
}

// ValidAssetType reports whether t is a known asset type.
func ValidAssetType(t string) bool {
	for _, at := range AssetTypes {
		if at == t {
			return true
		}
	}
	return false
}

// Cashflow directions.
const (
	CashflowIncome  = "income"
	CashflowExpense = "expense"
)

// User represents a registered user.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AssetAccount groups assets under a named account (e.g. a brokerage or bank).
type AssetAccount struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	Assets    []*Asset  `json:"assets"`
	CreatedAt time.Time `json:"created_at"`
}

// Asset is a single position inside an AssetAccount.
//
// CurrentValueTWD, CostTWD and ProfitLossTWD are derived from the stored
// fields plus the effective USD/TWD rate. They are recomputed on every read
// and never persisted: a stored copy would go stale the moment the rate moves.
type Asset struct {
	ID           string  `json:"id"`
	AccountID    string  `json:"-"`
	Code         string  `json:"code"`
	AccountType  string  `json:"accountType"` // one of AssetTypes
	Units        float64 `json:"units"`
	Cost         float64 `json:"cost"`         // per-unit acquisition cost
	CurrentValue float64 `json:"currentValue"` // per-unit current value
	Currency     string  `json:"currency"`
	SortOrder    int     `json:"-"`

	CurrentValueTWD float64 `json:"currentValueTWD"`
	CostTWD         float64 `json:"costTWD"`
	ProfitLossTWD   float64 `json:"profitLossTWD"`
}

// CashflowRecord is a single income or expense event. Records flagged with
// IsRecurring act as monthly templates for the recurring generator; generated
// instances always carry IsRecurring=false.
type CashflowRecord struct {
	ID            string    `json:"id"`
	UserID        string    `json:"-"`
	Date          string    `json:"date"` // YYYY-MM-DD
	Type          string    `json:"type"` // income | expense
	Category      string    `json:"category"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Description   string    `json:"description,omitempty"`
	AccountID     string    `json:"accountId"`
	AccountName   string    `json:"accountName,omitempty"`
	IsRecurring   bool      `json:"isRecurring"`
	RecurrenceDay *int      `json:"recurrenceDay,omitempty"` // 1-31, templates only
	CreatedAt     time.Time `json:"created_at"`
}

// Month returns the record's YYYY-MM key.
func (r *CashflowRecord) Month() string {
	if len(r.Date) < 7 {
		return r.Date
	}
	return r.Date[:7]
}

// Budget allocates an amount to a category for one month. At most one budget
// may exist per (month, category) pair; the writer enforces this, not the
// storage layer.
type Budget struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Month     string    `json:"month"` // YYYY-MM
	Category  string    `json:"category"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// Goal is a savings target, optionally tied to an asset account.
type Goal struct {
	ID            string    `json:"id"`
	UserID        string    `json:"-"`
	Name          string    `json:"name"`
	TargetAmount  float64   `json:"targetAmount"`
	CurrentAmount float64   `json:"currentAmount"`
	TargetDate    string    `json:"targetDate"` // YYYY-MM-DD
	AccountID     string    `json:"accountId,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Progress returns the goal completion percentage, capped at 100.
func (g *Goal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	p := (g.CurrentAmount / g.TargetAmount) * 100
	if p > 100 {
		p = 100
	}
	return p
}

// Settings is the per-user singleton holding category allow-lists, the
// optional manual FX override and the recurring-generator marker.
type Settings struct {
	UserID             string     `json:"-"`
	CustomIncome       []string   `json:"customIncome"`
	CustomExpense      []string   `json:"customExpense"`
	ManualRate         *float64   `json:"manualRate"`
	LastRecurringCheck *time.Time `json:"lastRecurringCheck"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// DefaultIncomeCategories are the built-in income categories.
var DefaultIncomeCategories = []string{"薪水", "獎金", "投資收益", "副業收入", "其他收入"}

// DefaultExpenseCategories are the built-in expense categories.
var DefaultExpenseCategories = []string{"餐飲", "交通", "居住", "娛樂", "教育", "醫療", "購物", "通訊", "保險", "其他支出"}

// IncomeCategories returns the built-in income categories plus the user's
// custom ones.
func (s *Settings) IncomeCategories() []string {
	return append(append([]string{}, DefaultIncomeCategories...), s.CustomIncome...)
}

// ExpenseCategories returns the built-in expense categories plus the user's
// custom ones.
func (s *Settings) ExpenseCategories() []string {
	return append(append([]string{}, DefaultExpenseCategories...), s.CustomExpense...)
}

// AllowsCategory reports whether the category is valid for the given
// cashflow direction.
func (s *Settings) AllowsCategory(cashflowType, category string) bool {
	var allowed []string
	switch cashflowType {
	case CashflowIncome:
		allowed = s.IncomeCategories()
	case CashflowExpense:
		allowed = s.ExpenseCategories()
	default:
		return false
	}
	for _, c := range allowed {
		if c == category {
			return true
		}
	}
	return false
}

// Session represents a user session for authentication.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// CurrencyRate represents a cached exchange rate between two currencies.
type CurrencyRate struct {
	ID           int64     `json:"id"`
	FromCurrency string    `json:"from_currency"`
	ToCurrency   string    `json:"to_currency"`
	Rate         float64   `json:"rate"`
	FetchedAt    time.Time `json:"fetched_at"`
}
