package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "finance_navigator/internal/errors"
	"finance_navigator/internal/events"
	"finance_navigator/internal/middleware"
	"finance_navigator/internal/models"
	"finance_navigator/internal/repository"
)

// GoalsHandler manages savings goals.
type GoalsHandler struct {
	goalRepo *repository.GoalRepository
	hub      *events.Hub
}

// NewGoalsHandler creates a new GoalsHandler.
func NewGoalsHandler(goalRepo *repository.GoalRepository, hub *events.Hub) *GoalsHandler {
	return &GoalsHandler{goalRepo: goalRepo, hub: hub}
}

// goalResponse decorates a goal with its progress percentage.
type goalResponse struct {
	*models.Goal
	Progress float64 `json:"progress"`
}

func toGoalResponse(g *models.Goal) goalResponse {
	return goalResponse{Goal: g, Progress: g.Progress()}
}

// List returns the user's goals with progress.
func (h *GoalsHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	goals, err := h.goalRepo.GetByUserID(user.ID)
	if err != nil {
		writeError(w, apperrors.Internal("loading goals", err))
		return
	}

	resp := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		resp = append(resp, toGoalResponse(g))
	}
	writeJSON(w, http.StatusOK, resp)
}

type goalRequest struct {
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"targetAmount"`
	CurrentAmount float64 `json:"currentAmount"`
	TargetDate    string  `json:"targetDate"`
	AccountID     string  `json:"accountId"`
}

func (req *goalRequest) validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.Validation("goal name is required")
	}
	if req.TargetAmount <= 0 {
		return apperrors.Validation("target amount must be positive")
	}
	if req.CurrentAmount < 0 {
		return apperrors.Validation("current amount must not be negative")
	}
	if !dateRe.MatchString(req.TargetDate) {
		return apperrors.Validation("target date must be YYYY-MM-DD")
	}
	return nil
}

// Create adds a new goal.
func (h *GoalsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req goalRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	goal := &models.Goal{
		UserID:        user.ID,
		Name:          strings.TrimSpace(req.Name),
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		TargetDate:    req.TargetDate,
		AccountID:     req.AccountID,
	}
	if _, err := h.goalRepo.Create(goal); err != nil {
		writeError(w, apperrors.Internal("creating goal", err))
		return
	}

	h.hub.Notify(user.ID, events.CollectionGoals)
	writeJSON(w, http.StatusCreated, toGoalResponse(goal))
}

// Update replaces a goal's fields.
func (h *GoalsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	goal, err := h.owned(user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req goalRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	goal.Name = strings.TrimSpace(req.Name)
	goal.TargetAmount = req.TargetAmount
	goal.CurrentAmount = req.CurrentAmount
	goal.TargetDate = req.TargetDate
	goal.AccountID = req.AccountID
	if err := h.goalRepo.Update(goal); err != nil {
		writeError(w, apperrors.Internal("updating goal", err))
		return
	}

	h.hub.Notify(user.ID, events.CollectionGoals)
	writeJSON(w, http.StatusOK, toGoalResponse(goal))
}

// Delete removes a goal.
func (h *GoalsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	goal, err := h.owned(user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.goalRepo.Delete(goal.ID); err != nil {
		writeError(w, apperrors.Internal("deleting goal", err))
		return
	}

	h.hub.Notify(user.ID, events.CollectionGoals)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *GoalsHandler) owned(userID, id string) (*models.Goal, error) {
	goal, err := h.goalRepo.GetByID(id)
	if err != nil {
		return nil, apperrors.Internal("loading goal", err)
	}
	if goal == nil || goal.UserID != userID {
		return nil, apperrors.NotFound("goal")
	}
	return goal, nil
}
