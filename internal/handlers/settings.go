package handlers

import (
	"net/http"
	"strings"

	apperrors "finance_navigator/internal/errors"
	"finance_navigator/internal/events"
	"finance_navigator/internal/middleware"
	"finance_navigator/internal/models"
	"finance_navigator/internal/repository"
)

// SettingsHandler manages the per-user settings singleton.
type SettingsHandler struct {
	settingsRepo *repository.SettingsRepository
	hub          *events.Hub
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsRepo *repository.SettingsRepository, hub *events.Hub) *SettingsHandler {
	return &SettingsHandler{settingsRepo: settingsRepo, hub: hub}
}

// settingsResponse includes the resolved category lists so the client does
// not have to merge defaults itself.
type settingsResponse struct {
	*models.Settings
	IncomeCategories  []string `json:"incomeCategories"`
	ExpenseCategories []string `json:"expenseCategories"`
}

func toSettingsResponse(s *models.Settings) settingsResponse {
	return settingsResponse{
		Settings:          s,
		IncomeCategories:  s.IncomeCategories(),
		ExpenseCategories: s.ExpenseCategories(),
	}
}

// Get returns the user's settings, creating defaults on first read.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	settings, err := h.settingsRepo.GetOrCreate(user.ID)
	if err != nil {
		writeError(w, apperrors.Internal("loading settings", err))
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(settings))
}

type settingsRequest struct {
	CustomIncome  []string `json:"customIncome"`
	CustomExpense []string `json:"customExpense"`
	ManualRate    *float64 `json:"manualRate"`
}

// Update replaces the custom category lists and the manual rate override.
// The recurring marker is owned by the generator and cannot be set here.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req settingsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ManualRate != nil && *req.ManualRate <= 0 {
		writeError(w, apperrors.Validation("manual rate must be positive"))
		return
	}

	settings, err := h.settingsRepo.GetOrCreate(user.ID)
	if err != nil {
		writeError(w, apperrors.Internal("loading settings", err))
		return
	}

	settings.CustomIncome = cleanCategories(req.CustomIncome)
	settings.CustomExpense = cleanCategories(req.CustomExpense)
	settings.ManualRate = req.ManualRate
	if err := h.settingsRepo.Update(settings); err != nil {
		writeError(w, apperrors.Internal("updating settings", err))
		return
	}

	h.hub.Notify(user.ID, events.CollectionSettings)
	writeJSON(w, http.StatusOK, toSettingsResponse(settings))
}

// cleanCategories trims entries and drops blanks and duplicates, keeping
// order.
func cleanCategories(categories []string) []string {
	seen := make(map[string]struct{}, len(categories))
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
