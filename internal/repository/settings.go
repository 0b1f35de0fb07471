package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"finance_navigator/internal/database"
	"finance_navigator/internal/models"
)

// SettingsRepository handles the per-user settings singleton. Category lists
// are stored as JSON arrays in TEXT columns.
type SettingsRepository struct {
	db *database.DB
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetOrCreate retrieves the user's settings, creating an empty row first if
// none exists. Every caller goes through here so reads never see a missing
// singleton.
func (r *SettingsRepository) GetOrCreate(userID string) (*models.Settings, error) {
	settings, err := r.get(userID)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}

	_, err = r.db.Exec(`
		INSERT INTO settings (user_id, custom_income, custom_expense, updated_at)
		VALUES (?, '[]', '[]', ?)
	`, userID, time.Now())
	if err != nil {
		return nil, err
	}
	return r.get(userID)
}

func (r *SettingsRepository) get(userID string) (*models.Settings, error) {
	var customIncome, customExpense string
	var manualRate sql.NullFloat64
	var lastCheck sql.NullTime
	settings := &models.Settings{UserID: userID}

	err := r.db.QueryRow(`
		SELECT custom_income, custom_expense, manual_rate, last_recurring_check, updated_at
		FROM settings
		WHERE user_id = ?
	`, userID).Scan(&customIncome, &customExpense, &manualRate, &lastCheck, &settings.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(customIncome), &settings.CustomIncome); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(customExpense), &settings.CustomExpense); err != nil {
		return nil, err
	}
	if manualRate.Valid {
		rate := manualRate.Float64
		settings.ManualRate = &rate
	}
	if lastCheck.Valid {
		t := lastCheck.Time
		settings.LastRecurringCheck = &t
	}
	return settings, nil
}

// Update persists the user's settings.
func (r *SettingsRepository) Update(settings *models.Settings) error {
	customIncome, err := json.Marshal(emptyIfNil(settings.CustomIncome))
	if err != nil {
		return err
	}
	customExpense, err := json.Marshal(emptyIfNil(settings.CustomExpense))
	if err != nil {
		return err
	}

	var manualRate sql.NullFloat64
	if settings.ManualRate != nil {
		manualRate = sql.NullFloat64{Float64: *settings.ManualRate, Valid: true}
	}
	var lastCheck sql.NullTime
	if settings.LastRecurringCheck != nil {
		lastCheck = sql.NullTime{Time: *settings.LastRecurringCheck, Valid: true}
	}

	_, err = r.db.Exec(`
		UPDATE settings
		SET custom_income = ?, custom_expense = ?, manual_rate = ?, last_recurring_check = ?, updated_at = ?
		WHERE user_id = ?
	`, string(customIncome), string(customExpense), manualRate, lastCheck, time.Now(), settings.UserID)
	return err
}

// UpdateLastRecurringCheck advances only the recurring-generator marker.
func (r *SettingsRepository) UpdateLastRecurringCheck(userID string, t time.Time) error {
	_, err := r.db.Exec(`
		UPDATE settings SET last_recurring_check = ?, updated_at = ? WHERE user_id = ?
	`, t, time.Now(), userID)
	return err
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
