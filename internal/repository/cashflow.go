package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"finance_navigator/internal/database"
	"finance_navigator/internal/models"
)

// CashflowRepository handles cashflow record database operations.
type CashflowRepository struct {
	db *database.DB
}

// NewCashflowRepository creates a new CashflowRepository.
func NewCashflowRepository(db *database.DB) *CashflowRepository {
	return &CashflowRepository{db: db}
}

// Create inserts a new cashflow record and returns its ID.
func (r *CashflowRepository) Create(rec *models.CashflowRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	var recurrenceDay sql.NullInt64
	if rec.RecurrenceDay != nil {
		recurrenceDay = sql.NullInt64{Int64: int64(*rec.RecurrenceDay), Valid: true}
	}
	_, err := r.db.Exec(`
		INSERT INTO cashflow_records
			(id, user_id, date, type, category, amount, currency, description,
			 account_id, account_name, is_recurring, recurrence_day, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.UserID, rec.Date, rec.Type, rec.Category, rec.Amount,
		rec.Currency, rec.Description, rec.AccountID, rec.AccountName,
		boolToInt(rec.IsRecurring), recurrenceDay, time.Now())
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// GetByID retrieves a cashflow record by ID. Returns nil if not found.
func (r *CashflowRepository) GetByID(id string) (*models.CashflowRecord, error) {
	rec, err := scanCashflow(r.db.QueryRow(`
		SELECT id, user_id, date, type, category, amount, currency, description,
		       account_id, account_name, is_recurring, recurrence_day, created_at
		FROM cashflow_records
		WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetByUserID retrieves all cashflow records for a user, newest first.
func (r *CashflowRepository) GetByUserID(userID string) ([]*models.CashflowRecord, error) {
	return r.queryRecords(`
		SELECT id, user_id, date, type, category, amount, currency, description,
		       account_id, account_name, is_recurring, recurrence_day, created_at
		FROM cashflow_records
		WHERE user_id = ?
		ORDER BY date DESC, created_at DESC
	`, userID)
}

// GetByMonth retrieves a user's records whose date falls in the YYYY-MM month.
func (r *CashflowRepository) GetByMonth(userID, month string) ([]*models.CashflowRecord, error) {
	return r.queryRecords(`
		SELECT id, user_id, date, type, category, amount, currency, description,
		       account_id, account_name, is_recurring, recurrence_day, created_at
		FROM cashflow_records
		WHERE user_id = ? AND substr(date, 1, 7) = ?
		ORDER BY date DESC, created_at DESC
	`, userID, month)
}

// GetRecurringTemplates retrieves the user's recurring templates.
func (r *CashflowRepository) GetRecurringTemplates(userID string) ([]*models.CashflowRecord, error) {
	return r.queryRecords(`
		SELECT id, user_id, date, type, category, amount, currency, description,
		       account_id, account_name, is_recurring, recurrence_day, created_at
		FROM cashflow_records
		WHERE user_id = ? AND is_recurring = 1
		ORDER BY date ASC
	`, userID)
}

func (r *CashflowRepository) queryRecords(query string, args ...interface{}) ([]*models.CashflowRecord, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*models.CashflowRecord, 0)
	for rows.Next() {
		rec, err := scanCashflow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// scanner abstracts sql.Row and sql.Rows for shared scan code.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCashflow(s scanner) (*models.CashflowRecord, error) {
	rec := &models.CashflowRecord{}
	var description, accountName sql.NullString
	var isRecurring int
	var recurrenceDay sql.NullInt64
	err := s.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Date,
		&rec.Type,
		&rec.Category,
		&rec.Amount,
		&rec.Currency,
		&description,
		&rec.AccountID,
		&accountName,
		&isRecurring,
		&recurrenceDay,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Description = description.String
	rec.AccountName = accountName.String
	rec.IsRecurring = isRecurring != 0
	if recurrenceDay.Valid {
		day := int(recurrenceDay.Int64)
		rec.RecurrenceDay = &day
	}
	return rec, nil
}

// Update updates an existing cashflow record.
func (r *CashflowRepository) Update(rec *models.CashflowRecord) error {
	var recurrenceDay sql.NullInt64
	if rec.RecurrenceDay != nil {
		recurrenceDay = sql.NullInt64{Int64: int64(*rec.RecurrenceDay), Valid: true}
	}
	result, err := r.db.Exec(`
		UPDATE cashflow_records
		SET date = ?, type = ?, category = ?, amount = ?, currency = ?,
		    description = ?, account_id = ?, account_name = ?,
		    is_recurring = ?, recurrence_day = ?
		WHERE id = ?
	`, rec.Date, rec.Type, rec.Category, rec.Amount, rec.Currency,
		rec.Description, rec.AccountID, rec.AccountName,
		boolToInt(rec.IsRecurring), recurrenceDay, rec.ID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New("cashflow record not found")
	}
	return nil
}

// Delete removes a cashflow record by ID.
func (r *CashflowRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM cashflow_records WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New("cashflow record not found")
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
