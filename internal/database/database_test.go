package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestNew_CreatesConnection(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v, want nil", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	if err := db.Ping(); err != nil {
		t.Errorf("Ping() error = %v, want nil", err)
	}
}

func TestNew_InvalidPath_ReturnsError(t *testing.T) {
	_, err := New("/nonexistent/path/that/cannot/be/created/test.db")
	if err == nil {
		t.Error("New() with invalid path should return error")
	}
}

func TestRunMigrations_CreatesAllTables(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations() error = %v, want nil", err)
	}

	expectedTables := []string{
		"users",
		"sessions",
		"asset_accounts",
		"assets",
		"cashflow_records",
		"budgets",
		"goals",
		"settings",
		"currency_rates",
	}

	for _, table := range expectedTables {
		var exists int
		query := `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`
		if err := db.QueryRow(query, table).Scan(&exists); err != nil {
			t.Errorf("checking table %s: %v", table, err)
			continue
		}
		if exists != 1 {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestRunMigrations_CreatesIndexes(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	expectedIndexes := []string{
		"idx_sessions_user",
		"idx_asset_accounts_user",
		"idx_assets_account",
		"idx_cashflow_user_date",
		"idx_budgets_user_month",
		"idx_goals_user",
	}

	for _, index := range expectedIndexes {
		var exists int
		query := `SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?`
		if err := db.QueryRow(query, index).Scan(&exists); err != nil {
			t.Errorf("checking index %s: %v", index, err)
			continue
		}
		if exists != 1 {
			t.Errorf("index %s does not exist", index)
		}
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()

	for i := 0; i < 3; i++ {
		if err := db.RunMigrations(); err != nil {
			t.Fatalf("RunMigrations() iteration %d error = %v, want nil", i+1, err)
		}
	}

	var tableCount int
	query := `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'`
	if err := db.QueryRow(query).Scan(&tableCount); err != nil {
		t.Fatalf("counting tables: %v", err)
	}

	expectedCount := 9 // users, sessions, asset_accounts, assets, cashflow_records, budgets, goals, settings, currency_rates
	if tableCount != expectedCount {
		t.Errorf("table count = %d, want %d", tableCount, expectedCount)
	}
}

func TestDB_Close(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}

	if err := db.Ping(); err == nil {
		t.Error("Ping() after Close() should return error")
	}
}

func TestDB_ForeignKeyConstraints(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	_, err = db.Exec(
		`INSERT INTO asset_accounts (id, user_id, name) VALUES (?, ?, ?)`,
		uuid.NewString(),
		"no-such-user",
		"台新銀行",
	)
	if err == nil {
		t.Error("inserting account with invalid user_id should fail")
	}
}

func TestDB_CascadeDelete(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	userID := uuid.NewString()
	if _, err := db.Exec(
		`INSERT INTO users (id, email, password_hash, name) VALUES (?, ?, ?, ?)`,
		userID, "test@example.com", "hashedpassword", "Test User",
	); err != nil {
		t.Fatalf("insert user error = %v", err)
	}

	accountID := uuid.NewString()
	if _, err := db.Exec(
		`INSERT INTO asset_accounts (id, user_id, name) VALUES (?, ?, ?)`,
		accountID, userID, "富邦證券",
	); err != nil {
		t.Fatalf("insert account error = %v", err)
	}

	assetID := uuid.NewString()
	if _, err := db.Exec(
		`INSERT INTO assets (id, account_id, code, account_type, units, cost, current_value, currency)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		assetID, accountID, "0050", "ETF", 1000, 130, 180, "TWD",
	); err != nil {
		t.Fatalf("insert asset error = %v", err)
	}

	if _, err := db.Exec(`DELETE FROM users WHERE id = ?`, userID); err != nil {
		t.Fatalf("delete user error = %v", err)
	}

	var accountCount int
	db.QueryRow(`SELECT COUNT(*) FROM asset_accounts WHERE id = ?`, accountID).Scan(&accountCount)
	if accountCount != 0 {
		t.Error("account should be deleted after user delete")
	}

	var assetCount int
	db.QueryRow(`SELECT COUNT(*) FROM assets WHERE id = ?`, assetID).Scan(&assetCount)
	if assetCount != 0 {
		t.Error("asset should be deleted after account delete")
	}
}
