package handlers

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "finance_navigator/internal/errors"
	"finance_navigator/internal/events"
	"finance_navigator/internal/middleware"
	"finance_navigator/internal/models"
	"finance_navigator/internal/repository"
	"finance_navigator/internal/services"
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// CashflowHandler manages income and expense records, including recurring
// templates and the monthly generation check.
type CashflowHandler struct {
	cashflowRepo *repository.CashflowRepository
	settingsRepo *repository.SettingsRepository
	accountRepo  *repository.AccountRepository
	recurring    *services.RecurringService
	hub          *events.Hub
	now          func() time.Time // tests pin this
}

// NewCashflowHandler creates a new CashflowHandler.
func NewCashflowHandler(
	cashflowRepo *repository.CashflowRepository,
	settingsRepo *repository.SettingsRepository,
	accountRepo *repository.AccountRepository,
	recurring *services.RecurringService,
	hub *events.Hub,
) *CashflowHandler {
	return &CashflowHandler{
		cashflowRepo: cashflowRepo,
		settingsRepo: settingsRepo,
		accountRepo:  accountRepo,
		recurring:    recurring,
		hub:          hub,
		now:          time.Now,
	}
}

// List returns the user's cashflow records, optionally filtered by ?month=.
func (h *CashflowHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var records []*models.CashflowRecord
	var err error
	if month := r.URL.Query().Get("month"); month != "" {
		if !validMonth(month) {
			writeError(w, apperrors.Validation("month must be YYYY-MM"))
			return
		}
		records, err = h.cashflowRepo.GetByMonth(user.ID, month)
	} else {
		records, err = h.cashflowRepo.GetByUserID(user.ID)
	}
	if err != nil {
		writeError(w, apperrors.Internal("loading cashflow records", err))
		return
	}
	writeJSON(w, http.StatusOK, records)
}

type cashflowRequest struct {
	Date          string  `json:"date"`
	Type          string  `json:"type"`
	Category      string  `json:"category"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Description   string  `json:"description"`
	AccountID     string  `json:"accountId"`
	IsRecurring   bool    `json:"isRecurring"`
	RecurrenceDay *int    `json:"recurrenceDay"`
}

// validate checks the request against the user's category allow-lists.
func (req *cashflowRequest) validate(settings *models.Settings) error {
	if !dateRe.MatchString(req.Date) {
		return apperrors.Validation("date must be YYYY-MM-DD")
	}
	if req.Type != models.CashflowIncome && req.Type != models.CashflowExpense {
		return apperrors.Validation("type must be income or expense")
	}
	if req.Category == "" {
		return apperrors.Validation("category is required")
	}
	if !settings.AllowsCategory(req.Type, req.Category) {
		return apperrors.Validation("unknown category for this type")
	}
	if req.Amount <= 0 {
		return apperrors.Validation("amount must be positive")
	}
	if req.Currency == "" {
		req.Currency = models.CurrencyTWD
	}
	if req.IsRecurring {
		if req.RecurrenceDay == nil || *req.RecurrenceDay < 1 || *req.RecurrenceDay > 31 {
			return apperrors.Validation("recurrence day must be between 1 and 31")
		}
	} else {
		req.RecurrenceDay = nil
	}
	return nil
}

// Create adds a cashflow record or recurring template.
func (h *CashflowHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req cashflowRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	settings, err := h.settingsRepo.GetOrCreate(user.ID)
	if err != nil {
		writeError(w, apperrors.Internal("loading settings", err))
		return
	}
	if err := req.validate(settings); err != nil {
		writeError(w, err)
		return
	}

	rec := &models.CashflowRecord{
		UserID:        user.ID,
		Date:          req.Date,
		Type:          req.Type,
		Category:      req.Category,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Description:   strings.TrimSpace(req.Description),
		AccountID:     req.AccountID,
		AccountName:   h.accountName(user.ID, req.AccountID),
		IsRecurring:   req.IsRecurring,
		RecurrenceDay: req.RecurrenceDay,
	}
	if _, err := h.cashflowRepo.Create(rec); err != nil {
		writeError(w, apperrors.Internal("creating cashflow record", err))
		return
	}

	h.hub.Notify(user.ID, events.CollectionCashflow)
	writeJSON(w, http.StatusCreated, rec)
}

// Update replaces an existing record's fields.
func (h *CashflowHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	rec, err := h.owned(user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req cashflowRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	settings, err := h.settingsRepo.GetOrCreate(user.ID)
	if err != nil {
		writeError(w, apperrors.Internal("loading settings", err))
		return
	}
	if err := req.validate(settings); err != nil {
		writeError(w, err)
		return
	}

	rec.Date = req.Date
	rec.Type = req.Type
	rec.Category = req.Category
	rec.Amount = req.Amount
	rec.Currency = req.Currency
	rec.Description = strings.TrimSpace(req.Description)
	rec.AccountID = req.AccountID
	rec.AccountName = h.accountName(user.ID, req.AccountID)
	rec.IsRecurring = req.IsRecurring
	rec.RecurrenceDay = req.RecurrenceDay
	if err := h.cashflowRepo.Update(rec); err != nil {
		writeError(w, apperrors.Internal("updating cashflow record", err))
		return
	}

	h.hub.Notify(user.ID, events.CollectionCashflow)
	writeJSON(w, http.StatusOK, rec)
}

// Delete removes a cashflow record.
func (h *CashflowHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	rec, err := h.owned(user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.cashflowRepo.Delete(rec.ID); err != nil {
		writeError(w, apperrors.Internal("deleting cashflow record", err))
		return
	}

	h.hub.Notify(user.ID, events.CollectionCashflow)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// RecurringCheck runs this month's recurring generation if it has not run
// yet. Returns whether any records were created.
func (h *CashflowHandler) RecurringCheck(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	created, err := h.recurring.Run(r.Context(), user.ID, h.now())
	if err != nil {
		writeError(w, apperrors.Internal("running recurring check", err))
		return
	}
	if created {
		h.hub.Notify(user.ID, events.CollectionCashflow)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"created": created})
}

func (h *CashflowHandler) owned(userID, id string) (*models.CashflowRecord, error) {
	rec, err := h.cashflowRepo.GetByID(id)
	if err != nil {
		return nil, apperrors.Internal("loading cashflow record", err)
	}
	if rec == nil || rec.UserID != userID {
		return nil, apperrors.NotFound("cashflow record")
	}
	return rec, nil
}

// accountName resolves the display name for a linked account. Best effort;
// a dangling reference just leaves the name blank.
func (h *CashflowHandler) accountName(userID, accountID string) string {
	if accountID == "" {
		return ""
	}
	account, err := h.accountRepo.GetByID(accountID)
	if err != nil || account == nil || account.UserID != userID {
		return ""
	}
	return account.Name
}

var monthRe = regexp.MustCompile(`^\d{4}-\d{2}$`)

func validMonth(month string) bool {
	return monthRe.MatchString(month)
}
