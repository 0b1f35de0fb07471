package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"finance_navigator/internal/models"
	"finance_navigator/internal/repository"
)

// RecurringSuffix marks generated records so users can tell them from
// manual entries.
const RecurringSuffix = " (定額)"

// RecurringService materializes monthly records from recurring templates.
// It is not safe against concurrent invocation for the same user; the HTTP
// layer serializes calls per session, which is enough for a single-browser
// app.
type RecurringService struct {
	cashflowRepo *repository.CashflowRepository
	settingsRepo *repository.SettingsRepository
}

// NewRecurringService creates a new RecurringService.
func NewRecurringService(cashflowRepo *repository.CashflowRepository, settingsRepo *repository.SettingsRepository) *RecurringService {
	return &RecurringService{
		cashflowRepo: cashflowRepo,
		settingsRepo: settingsRepo,
	}
}

// Run generates this month's records from the user's recurring templates.
// It returns whether at least one record was created.
//
// The check runs at most once per calendar month: if the last check already
// happened in now's month, nothing is written. On any create failure the
// rest of the batch is abandoned and the marker stays put, so the next
// invocation retries the whole month.
func (s *RecurringService) Run(ctx context.Context, userID string, now time.Time) (bool, error) {
	settings, err := s.settingsRepo.GetOrCreate(userID)
	if err != nil {
		return false, fmt.Errorf("loading settings: %w", err)
	}

	if settings.LastRecurringCheck != nil && sameMonth(*settings.LastRecurringCheck, now) {
		return false, nil
	}

	records, err := s.cashflowRepo.GetByUserID(userID)
	if err != nil {
		return false, fmt.Errorf("loading cashflow records: %w", err)
	}

	var templates []*models.CashflowRecord
	for _, rec := range records {
		if rec.IsRecurring && rec.RecurrenceDay != nil && *rec.RecurrenceDay >= 1 && *rec.RecurrenceDay <= 31 {
			templates = append(templates, rec)
		}
	}

	if len(templates) == 0 {
		// Advance the marker anyway so the scan does not repeat this month.
		if err := s.settingsRepo.UpdateLastRecurringCheck(userID, now); err != nil {
			return false, fmt.Errorf("advancing recurring marker: %w", err)
		}
		return false, nil
	}

	month := now.Format("2006-01")
	lastDay := daysInMonth(now)
	created := false

	for _, tmpl := range templates {
		if err := ctx.Err(); err != nil {
			return created, err
		}

		executionDay := *tmpl.RecurrenceDay
		if executionDay > lastDay {
			executionDay = lastDay
		}
		date := fmt.Sprintf("%s-%02d", month, executionDay)

		if hasGeneratedTwin(records, tmpl, month) {
			continue
		}

		description := RecurringSuffix[1:] // "(定額)"
		if tmpl.Description != "" {
			description = tmpl.Description + RecurringSuffix
		}
		instance := &models.CashflowRecord{
			UserID:      userID,
			Date:        date,
			Type:        tmpl.Type,
			Category:    tmpl.Category,
			Amount:      tmpl.Amount,
			Currency:    tmpl.Currency,
			Description: description,
			AccountID:   tmpl.AccountID,
			AccountName: tmpl.AccountName,
			IsRecurring: false,
		}
		if _, err := s.cashflowRepo.Create(instance); err != nil {
			// Marker untouched: the whole month is retried next time.
			return created, fmt.Errorf("creating recurring instance for %q: %w", tmpl.Description, err)
		}
		created = true
		log.Printf("Generated recurring record %s / %s on %s for user %s", tmpl.Category, tmpl.Description, date, userID)
	}

	if err := s.settingsRepo.UpdateLastRecurringCheck(userID, now); err != nil {
		return created, fmt.Errorf("advancing recurring marker: %w", err)
	}
	return created, nil
}

// hasGeneratedTwin reports whether a record in the month already looks like
// an instance of the template. The match is a substring heuristic on the
// description plus exact amount and category; near-identical templates can
// suppress each other, and a template dated in the current month suppresses
// its own instance.
func hasGeneratedTwin(records []*models.CashflowRecord, tmpl *models.CashflowRecord, month string) bool {
	for _, rec := range records {
		if rec.Month() == month &&
			strings.Contains(rec.Description, tmpl.Description) &&
			rec.Amount == tmpl.Amount &&
			rec.Category == tmpl.Category {
			return true
		}
	}
	return false
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// daysInMonth returns the number of days in t's month.
func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
