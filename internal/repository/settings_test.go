package repository

import (
	"testing"
	"time"

	"finance_navigator/internal/models"
)

func TestSettingsRepository_GetOrCreate_FirstRead_CreatesDefaults(t *testing.T) {
	db, userID := setupTestDB(t)
	repo := NewSettingsRepository(db)

	settings, err := repo.GetOrCreate(userID)
	if err != nil {
		t.Fatalf("get or create failed: %v", err)
	}
	if settings == nil {
		t.Fatal("expected settings")
	}
	if len(settings.CustomIncome) != 0 || len(settings.CustomExpense) != 0 {
		t.Errorf("expected empty custom lists, got %+v", settings)
	}
	if settings.ManualRate != nil {
		t.Errorf("expected no manual rate, got %v", *settings.ManualRate)
	}
	if settings.LastRecurringCheck != nil {
		t.Errorf("expected no recurring marker, got %v", settings.LastRecurringCheck)
	}
}

func TestSettingsRepository_Update_RoundTripsCategoriesAndRate(t *testing.T) {
	db, userID := setupTestDB(t)
	repo := NewSettingsRepository(db)

	settings, err := repo.GetOrCreate(userID)
	if err != nil {
		t.Fatalf("get or create failed: %v", err)
	}

	rate := 31.2
	settings.CustomIncome = []string{"股息"}
	settings.CustomExpense = []string{"寵物", "訂閱"}
	settings.ManualRate = &rate
	if err := repo.Update(settings); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := repo.GetOrCreate(userID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if len(got.CustomIncome) != 1 || got.CustomIncome[0] != "股息" {
		t.Errorf("custom income did not round-trip: %v", got.CustomIncome)
	}
	if len(got.CustomExpense) != 2 {
		t.Errorf("custom expense did not round-trip: %v", got.CustomExpense)
	}
	if got.ManualRate == nil || *got.ManualRate != 31.2 {
		t.Errorf("manual rate did not round-trip: %v", got.ManualRate)
	}
}

func TestSettingsRepository_UpdateLastRecurringCheck_SetsMarker(t *testing.T) {
	db, userID := setupTestDB(t)
	repo := NewSettingsRepository(db)

	if _, err := repo.GetOrCreate(userID); err != nil {
		t.Fatalf("get or create failed: %v", err)
	}

	marker := time.Date(2026, time.August, 28, 10, 0, 0, 0, time.UTC)
	if err := repo.UpdateLastRecurringCheck(userID, marker); err != nil {
		t.Fatalf("marker update failed: %v", err)
	}

	got, err := repo.GetOrCreate(userID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.LastRecurringCheck == nil {
		t.Fatal("expected marker to be set")
	}
	if got.LastRecurringCheck.Year() != 2026 || got.LastRecurringCheck.Month() != time.August {
		t.Errorf("unexpected marker %v", got.LastRecurringCheck)
	}
}

func TestSettings_AllowsCategory_DefaultsAndCustom(t *testing.T) {
	s := &models.Settings{CustomExpense: []string{"寵物"}}

	if !s.AllowsCategory(models.CashflowExpense, "餐飲") {
		t.Error("default expense category should be allowed")
	}
	if !s.AllowsCategory(models.CashflowExpense, "寵物") {
		t.Error("custom expense category should be allowed")
	}
	if s.AllowsCategory(models.CashflowIncome, "餐飲") {
		t.Error("expense category must not validate as income")
	}
	if s.AllowsCategory("transfer", "餐飲") {
		t.Error("unknown cashflow type must not validate")
	}
}
