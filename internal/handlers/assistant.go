package handlers

import (
	"net/http"
	"strings"
	"time"

	"finance_navigator/internal/assistant"
	apperrors "finance_navigator/internal/errors"
	"finance_navigator/internal/metrics"
	"finance_navigator/internal/middleware"
	"finance_navigator/internal/repository"
	"finance_navigator/internal/services"
)

// AssistantHandler serves the chat assistant endpoint.
type AssistantHandler struct {
	service      *assistant.Service
	accountRepo  *repository.AccountRepository
	cashflowRepo *repository.CashflowRepository
	goalRepo     *repository.GoalRepository
	settingsRepo *repository.SettingsRepository
	fx           *services.FXService
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(
	service *assistant.Service,
	accountRepo *repository.AccountRepository,
	cashflowRepo *repository.CashflowRepository,
	goalRepo *repository.GoalRepository,
	settingsRepo *repository.SettingsRepository,
	fx *services.FXService,
) *AssistantHandler {
	return &AssistantHandler{
		service:      service,
		accountRepo:  accountRepo,
		cashflowRepo: cashflowRepo,
		goalRepo:     goalRepo,
		settingsRepo: settingsRepo,
		fx:           fx,
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

// Chat answers one user message with the financial summary as context.
// Upstream model failures come back as a canned apology with status 200;
// only our own failures produce error statuses.
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req chatRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, apperrors.Validation("message is required"))
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
	goals, err := h.goalRepo.GetByUserID(user.ID)
	if err != nil {
		writeError(w, apperrors.Internal("loading goals", err))
		return
	}
	settings, err := h.settingsRepo.GetOrCreate(user.ID)
	if err != nil {
		writeError(w, apperrors.Internal("loading settings", err))
		return
	}

	metrics.ProcessAccounts(accounts, h.fx.EffectiveRate(settings))

	summary, err := assistant.Summarize(accounts, records, goals, time.Now())
	if err != nil {
		writeError(w, apperrors.Internal("building financial summary", err))
		return
	}

	reply := h.service.Chat(r.Context(), req.Message, summary)
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
