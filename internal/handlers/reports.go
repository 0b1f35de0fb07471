package handlers

import (
	"net/http"
	"time"

	apperrors "finance_navigator/internal/errors"
	"finance_navigator/internal/metrics"
	"finance_navigator/internal/middleware"
	"finance_navigator/internal/models"
	"finance_navigator/internal/repository"
	"finance_navigator/internal/services"
)

// trendMonths is the window shared by the cashflow and net worth trends.
const trendMonths = 12

// ReportsHandler serves the analysis endpoints.
type ReportsHandler struct {
	accountRepo  *repository.AccountRepository
	cashflowRepo *repository.CashflowRepository
	settingsRepo *repository.SettingsRepository
	fx           *services.FXService
	now          func() time.Time // tests pin this
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(
	accountRepo *repository.AccountRepository,
	cashflowRepo *repository.CashflowRepository,
	settingsRepo *repository.SettingsRepository,
	fx *services.FXService,
) *ReportsHandler {
	return &ReportsHandler{
		accountRepo:  accountRepo,
		cashflowRepo: cashflowRepo,
		settingsRepo: settingsRepo,
		fx:           fx,
		now:          time.Now,
	}
}

// Trend returns income and expense totals for the last 12 months.
func (h *ReportsHandler) Trend(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	records, err := h.cashflowRepo.GetByUserID(user.ID)
	if err != nil {
		writeError(w, apperrors.Internal("loading cashflow records", err))
		return
	}
	writeJSON(w, http.StatusOK, metrics.CashflowTrend(records, h.now(), trendMonths))
}

// Expenses returns a month's per-category expense totals. Defaults to the
// current month.
func (h *ReportsHandler) Expenses(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	month := r.URL.Query().Get("month")
	if month == "" {
		month = h.now().Format("2006-01")
	} else if !validMonth(month) {
		writeError(w, apperrors.Validation("month must be YYYY-MM"))
		return
	}

	records, err := h.cashflowRepo.GetByUserID(user.ID)
	if err != nil {
		writeError(w, apperrors.Internal("loading cashflow records", err))
		return
	}
	writeJSON(w, http.StatusOK, metrics.ExpenseBreakdown(records, month))
}

// PNL returns per-asset profit and loss rows at the effective rate.
func (h *ReportsHandler) PNL(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	accounts, err := h.processedAccounts(user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics.PNLRows(accounts))
}

// NetWorthTrend returns the back-projected net worth line.
func (h *ReportsHandler) NetWorthTrend(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	accounts, err := h.processedAccounts(user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	records, err := h.cashflowRepo.GetByUserID(user.ID)
	if err != nil {
		writeError(w, apperrors.Internal("loading cashflow records", err))
		return
	}
	writeJSON(w, http.StatusOK, metrics.NetWorthTrend(accounts, records, h.now(), trendMonths))
}

func (h *ReportsHandler) processedAccounts(userID string) ([]*models.AssetAccount, error) {
	accounts, err := h.accountRepo.GetByUserID(userID)
	if err != nil {
		return nil, apperrors.Internal("loading accounts", err)
	}
	settings, err := h.settingsRepo.GetOrCreate(userID)
	if err != nil {
		return nil, apperrors.Internal("loading settings", err)
	}
	metrics.ProcessAccounts(accounts, h.fx.EffectiveRate(settings))
	return accounts, nil
}
