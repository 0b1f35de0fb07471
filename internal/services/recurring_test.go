package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"finance_navigator/internal/database"
	"finance_navigator/internal/models"
	"finance_navigator/internal/repository"
)

func setupRecurringTest(t *testing.T) (*RecurringService, *repository.CashflowRepository, *repository.SettingsRepository, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := database.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	userRepo := repository.NewUserRepository(db)
	userID, err := userRepo.Create(&models.User{
		Email:        "test@example.com",
		PasswordHash: "hash",
		Name:         "Test User",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	cashflowRepo := repository.NewCashflowRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	return NewRecurringService(cashflowRepo, settingsRepo), cashflowRepo, settingsRepo, userID
}

func createTemplate(t *testing.T, repo *repository.CashflowRepository, userID, description string, day int) *models.CashflowRecord {
	t.Helper()
	tmpl := &models.CashflowRecord{
		UserID:        userID,
		Date:          "2026-01-01",
		Type:          models.CashflowExpense,
		Category:      "居住",
		Amount:        18000,
		Currency:      models.CurrencyTWD,
		Description:   description,
		IsRecurring:   true,
		RecurrenceDay: &day,
	}
	if _, err := repo.Create(tmpl); err != nil {
		t.Fatalf("failed to create template: %v", err)
	}
	return tmpl
}

func TestRecurringService_Run_CreatesSuffixedInstance(t *testing.T) {
	svc, cashflowRepo, _, userID := setupRecurringTest(t)
	createTemplate(t, cashflowRepo, userID, "房租", 5)

	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	created, err := svc.Run(context.Background(), userID, now)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !created {
		t.Fatal("expected a record to be created")
	}

	records, _ := cashflowRepo.GetByUserID(userID)
	var instance *models.CashflowRecord
	for _, rec := range records {
		if !rec.IsRecurring {
			instance = rec
		}
	}
	if instance == nil {
		t.Fatal("no generated instance found")
	}
	if instance.Date != "2026-03-05" {
		t.Errorf("expected date 2026-03-05, got %s", instance.Date)
	}
	if instance.Description != "房租 (定額)" {
		t.Errorf("expected suffixed description, got %q", instance.Description)
	}
	if instance.RecurrenceDay != nil {
		t.Errorf("generated instance should not carry a recurrence day")
	}
}

func TestRecurringService_Run_Day31ClampedToMonthEnd(t *testing.T) {
	svc, cashflowRepo, _, userID := setupRecurringTest(t)
	createTemplate(t, cashflowRepo, userID, "Rent", 31)

	// February 2026 has 28 days.
	now := time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC)
	created, err := svc.Run(context.Background(), userID, now)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !created {
		t.Fatal("expected a record to be created")
	}

	records, _ := cashflowRepo.GetByUserID(userID)
	found := false
	for _, rec := range records {
		if rec.Date == "2026-02-28" && strings.HasSuffix(rec.Description, " (定額)") {
			found = true
		}
	}
	if !found {
		t.Error("expected a generated record on 2026-02-28")
	}
}

func TestRecurringService_Run_SameMonthGuard(t *testing.T) {
	svc, cashflowRepo, _, userID := setupRecurringTest(t)
	createTemplate(t, cashflowRepo, userID, "房租", 5)

	now := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	if _, err := svc.Run(context.Background(), userID, now); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	later := time.Date(2026, time.March, 25, 0, 0, 0, 0, time.UTC)
	created, err := svc.Run(context.Background(), userID, later)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if created {
		t.Error("second run in the same month must not create records")
	}

	records, _ := cashflowRepo.GetByUserID(userID)
	instances := 0
	for _, rec := range records {
		if !rec.IsRecurring {
			instances++
		}
	}
	if instances != 1 {
		t.Errorf("expected exactly 1 generated instance, got %d", instances)
	}
}

func TestRecurringService_Run_NextMonthGeneratesAgain(t *testing.T) {
	svc, cashflowRepo, _, userID := setupRecurringTest(t)
	createTemplate(t, cashflowRepo, userID, "房租", 5)

	march := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	if _, err := svc.Run(context.Background(), userID, march); err != nil {
		t.Fatalf("march run failed: %v", err)
	}

	april := time.Date(2026, time.April, 3, 0, 0, 0, 0, time.UTC)
	created, err := svc.Run(context.Background(), userID, april)
	if err != nil {
		t.Fatalf("april run failed: %v", err)
	}
	if !created {
		t.Error("expected a new record in the next month")
	}
}

func TestRecurringService_Run_DuplicateSuppressedBySubstringMatch(t *testing.T) {
	svc, cashflowRepo, _, userID := setupRecurringTest(t)
	tmpl := createTemplate(t, cashflowRepo, userID, "房租", 5)

	// A manual record this month that embeds the template description with
	// the same amount and category counts as an existing instance.
	manual := &models.CashflowRecord{
		UserID:      userID,
		Date:        "2026-03-02",
		Type:        models.CashflowExpense,
		Category:    tmpl.Category,
		Amount:      tmpl.Amount,
		Currency:    models.CurrencyTWD,
		Description: "三月房租已繳",
	}
	if _, err := cashflowRepo.Create(manual); err != nil {
		t.Fatalf("failed to create manual record: %v", err)
	}

	now := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	created, err := svc.Run(context.Background(), userID, now)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if created {
		t.Error("expected the duplicate heuristic to suppress generation")
	}
}

func TestRecurringService_Run_NoTemplates_AdvancesMarker(t *testing.T) {
	svc, _, settingsRepo, userID := setupRecurringTest(t)

	now := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	created, err := svc.Run(context.Background(), userID, now)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if created {
		t.Error("no templates means nothing to create")
	}

	settings, err := settingsRepo.GetOrCreate(userID)
	if err != nil {
		t.Fatalf("failed to load settings: %v", err)
	}
	if settings.LastRecurringCheck == nil {
		t.Fatal("expected the marker to advance even without templates")
	}
	if !sameMonth(*settings.LastRecurringCheck, now) {
		t.Errorf("expected marker in %v, got %v", now.Month(), settings.LastRecurringCheck)
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2026, time.February, 28},
		{2028, time.February, 29},
		{2026, time.April, 30},
		{2026, time.January, 31},
	}
	for _, tt := range tests {
		got := daysInMonth(time.Date(tt.year, tt.month, 1, 0, 0, 0, 0, time.UTC))
		if got != tt.want {
			t.Errorf("daysInMonth(%d-%d) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}
