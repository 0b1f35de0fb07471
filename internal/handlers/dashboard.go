package handlers

import (
	"net/http"
	"time"

	apperrors "finance_navigator/internal/errors"
	"finance_navigator/internal/metrics"
	"finance_navigator/internal/middleware"
	"finance_navigator/internal/repository"
	"finance_navigator/internal/services"
)

// DashboardHandler assembles the main dashboard payload.
type DashboardHandler struct {
	accountRepo  *repository.AccountRepository
	cashflowRepo *repository.CashflowRepository
	settingsRepo *repository.SettingsRepository
	fx           *services.FXService
	now          func() time.Time // tests pin this
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(
	accountRepo *repository.AccountRepository,
	cashflowRepo *repository.CashflowRepository,
	settingsRepo *repository.SettingsRepository,
	fx *services.FXService,
) *DashboardHandler {
	return &DashboardHandler{
		accountRepo:  accountRepo,
		cashflowRepo: cashflowRepo,
		settingsRepo: settingsRepo,
		fx:           fx,
		now:          time.Now,
	}
}

// dashboardResponse is the aggregated dashboard payload.
type dashboardResponse struct {
	Summary            metrics.Summary              `json:"summary"`
	LastMonth          metrics.MonthCashflow        `json:"lastMonth"`
	InvestmentMetrics  metrics.ConcentrationMetrics `json:"investmentMetrics"`
	HealthLight        metrics.HealthLight          `json:"healthLight"`
	BuffettComparison  string                       `json:"buffettComparison"`
	AvgMonthlyExpense  float64                      `json:"avgMonthlyExpense"`
	EffectiveRate      float64                      `json:"effectiveRate"`
	ManualRateOverride bool                         `json:"manualRateOverride"`
}

// Get computes and returns the dashboard.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	settings, err := h.settingsRepo.GetOrCreate(user.ID)
	if err != nil {
		writeError(w, apperrors.Internal("loading settings", err))
		return
	}
	accounts, err := h.accountRepo.GetByUserID(user.ID)
	if err != nil {
		writeError(w, apperrors.Internal("loading accounts", err))
		return
	}
	records, err := h.cashflowRepo.GetByUserID(user.ID)
	if err != nil {
		writeError(w, apperrors.Internal("loading cashflow records", err))
		return
	}

	rate := h.fx.EffectiveRate(settings)
	metrics.ProcessAccounts(accounts, rate)

	summary := metrics.Summarize(accounts)
	conc := metrics.Concentration(accounts)
	avgExpense := metrics.AverageMonthlyExpense(records)

	writeJSON(w, http.StatusOK, dashboardResponse{
		Summary:            summary,
		LastMonth:          metrics.MonthlyCashflow(records, metrics.PrevMonth(h.now())),
		InvestmentMetrics:  conc,
		HealthLight:        metrics.ClassifyHealth(summary, conc, avgExpense),
		BuffettComparison:  metrics.BuffettComparison(summary),
		AvgMonthlyExpense:  avgExpense,
		EffectiveRate:      rate,
		ManualRateOverride: settings.ManualRate != nil && *settings.ManualRate > 0,
	})
}
