package handlers

import (
	"fmt"
	"net/http"
	"time"

	apperrors "finance_navigator/internal/errors"
	"finance_navigator/internal/metrics"
	"finance_navigator/internal/middleware"
	"finance_navigator/internal/mirror"
	"finance_navigator/internal/models"
	"finance_navigator/internal/repository"
	"finance_navigator/internal/services"
)

// ExportHandler serves the full-data backup download and the GitHub mirror
// endpoint.
type ExportHandler struct {
	accountRepo  *repository.AccountRepository
	cashflowRepo *repository.CashflowRepository
	budgetRepo   *repository.BudgetRepository
	goalRepo     *repository.GoalRepository
	settingsRepo *repository.SettingsRepository
	fx           *services.FXService
	mirror       *mirror.GitHubMirror // nil when not configured
}

// NewExportHandler creates a new ExportHandler. ghMirror may be nil.
func NewExportHandler(
	accountRepo *repository.AccountRepository,
	cashflowRepo *repository.CashflowRepository,
	budgetRepo *repository.BudgetRepository,
	goalRepo *repository.GoalRepository,
	settingsRepo *repository.SettingsRepository,
	fx *services.FXService,
	ghMirror *mirror.GitHubMirror,
) *ExportHandler {
	return &ExportHandler{
		accountRepo:  accountRepo,
		cashflowRepo: cashflowRepo,
		budgetRepo:   budgetRepo,
		goalRepo:     goalRepo,
		settingsRepo: settingsRepo,
		fx:           fx,
		mirror:       ghMirror,
	}
}

// exportPayload is the complete backup document.
type exportPayload struct {
	ExportedAt    time.Time                `json:"exportedAt"`
	AssetAccounts []*models.AssetAccount   `json:"assetAccounts"`
	Cashflow      []*models.CashflowRecord `json:"cashflowRecords"`
	Budgets       []*models.Budget         `json:"budgets"`
	Goals         []*models.Goal           `json:"goals"`
	Settings      *models.Settings         `json:"settings"`
}

// Export returns the user's full data as a downloadable JSON document.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
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
	budgets, err := h.budgetRepo.GetByUserID(user.ID)
	if err != nil {
		writeError(w, apperrors.Internal("loading budgets", err))
		return
	}
	goals, err := h.goalRepo.GetByUserID(user.ID)
	if err != nil {
		writeError(w, apperrors.Internal("loading goals", err))
		return
	}

	metrics.ProcessAccounts(accounts, h.fx.EffectiveRate(settings))

	filename := fmt.Sprintf("finance-navigator-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	writeJSON(w, http.StatusOK, exportPayload{
		ExportedAt:    time.Now(),
		AssetAccounts: accounts,
		Cashflow:      records,
		Budgets:       budgets,
		Goals:         goals,
		Settings:      settings,
	})
}

// Mirror appends an arbitrary record to the configured GitHub JSON mirror.
func (h *ExportHandler) Mirror(w http.ResponseWriter, r *http.Request) {
	if h.mirror == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "mirror is not configured"})
		return
	}

	var record map[string]interface{}
	if err := readJSON(r, &record); err != nil {
		writeError(w, err)
		return
	}
	if len(record) == 0 {
		writeError(w, apperrors.Validation("record must not be empty"))
		return
	}

	if err := h.mirror.Append(r.Context(), record); err != nil {
		writeError(w, apperrors.Internal("mirroring record", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
