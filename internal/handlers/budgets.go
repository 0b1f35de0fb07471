package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "finance_navigator/internal/errors"
	"finance_navigator/internal/events"
	"finance_navigator/internal/middleware"
	"finance_navigator/internal/models"
	"finance_navigator/internal/repository"
)

// BudgetsHandler manages monthly category budgets. The (month, category)
// pair is unique per user; Upsert enforces it by updating in place, since
// the table has no unique constraint of its own.
type BudgetsHandler struct {
	budgetRepo   *repository.BudgetRepository
	settingsRepo *repository.SettingsRepository
	hub          *events.Hub
}

// NewBudgetsHandler creates a new BudgetsHandler.
func NewBudgetsHandler(budgetRepo *repository.BudgetRepository, settingsRepo *repository.SettingsRepository, hub *events.Hub) *BudgetsHandler {
	return &BudgetsHandler{
		budgetRepo:   budgetRepo,
		settingsRepo: settingsRepo,
		hub:          hub,
	}
}

// List returns the user's budgets, optionally filtered by ?month=.
func (h *BudgetsHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var budgets []*models.Budget
	var err error
	if month := r.URL.Query().Get("month"); month != "" {
		if !validMonth(month) {
			writeError(w, apperrors.Validation("month must be YYYY-MM"))
			return
		}
		budgets, err = h.budgetRepo.GetByMonth(user.ID, month)
	} else {
		budgets, err = h.budgetRepo.GetByUserID(user.ID)
	}
	if err != nil {
		writeError(w, apperrors.Internal("loading budgets", err))
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

type budgetRequest struct {
	Month    string  `json:"month"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// Upsert creates or updates the budget for a (month, category) pair.
func (h *BudgetsHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req budgetRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if !validMonth(req.Month) {
		writeError(w, apperrors.Validation("month must be YYYY-MM"))
		return
	}
	if req.Amount <= 0 {
		writeError(w, apperrors.Validation("amount must be positive"))
		return
	}
	settings, err := h.settingsRepo.GetOrCreate(user.ID)
	if err != nil {
		writeError(w, apperrors.Internal("loading settings", err))
		return
	}
	if !settings.AllowsCategory(models.CashflowExpense, req.Category) {
		writeError(w, apperrors.Validation("unknown expense category"))
		return
	}

	existing, err := h.budgetRepo.GetByMonthAndCategory(user.ID, req.Month, req.Category)
	if err != nil {
		writeError(w, apperrors.Internal("checking existing budget", err))
		return
	}

	var budget *models.Budget
	status := http.StatusOK
	if existing != nil {
		existing.Amount = req.Amount
		if err := h.budgetRepo.Update(existing); err != nil {
			writeError(w, apperrors.Internal("updating budget", err))
			return
		}
		budget = existing
	} else {
		budget = &models.Budget{
			UserID:   user.ID,
			Month:    req.Month,
			Category: req.Category,
			Amount:   req.Amount,
		}
		if _, err := h.budgetRepo.Create(budget); err != nil {
			writeError(w, apperrors.Internal("creating budget", err))
			return
		}
		status = http.StatusCreated
	}

	h.hub.Notify(user.ID, events.CollectionBudgets)
	writeJSON(w, status, budget)
}

// Delete removes a budget.
func (h *BudgetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	budget, err := h.budgetRepo.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperrors.Internal("loading budget", err))
		return
	}
	if budget == nil || budget.UserID != user.ID {
		writeError(w, apperrors.NotFound("budget"))
		return
	}

	if err := h.budgetRepo.Delete(budget.ID); err != nil {
		writeError(w, apperrors.Internal("deleting budget", err))
		return
	}

	h.hub.Notify(user.ID, events.CollectionBudgets)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
