package repository

import (
	"database/sql"
	"time"

	"finance_navigator/internal/database"
	"finance_navigator/internal/models"
)

// RateRepository caches fetched exchange rates so the app survives upstream
// outages with the last known value.
type RateRepository struct {
	db *database.DB
}

// NewRateRepository creates a new RateRepository.
func NewRateRepository(db *database.DB) *RateRepository {
	return &RateRepository{db: db}
}

// Get retrieves the cached rate for a currency pair. Returns nil if none.
func (r *RateRepository) Get(from, to string) (*models.CurrencyRate, error) {
	rate := &models.CurrencyRate{}
	err := r.db.QueryRow(`
		SELECT id, from_currency, to_currency, rate, fetched_at
		FROM currency_rates
		WHERE from_currency = ? AND to_currency = ?
	`, from, to).Scan(&rate.ID, &rate.FromCurrency, &rate.ToCurrency, &rate.Rate, &rate.FetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rate, nil
}

// Upsert stores or refreshes the rate for a currency pair.
func (r *RateRepository) Upsert(from, to string, rate float64) error {
	_, err := r.db.Exec(`
		INSERT INTO currency_rates (from_currency, to_currency, rate, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(from_currency, to_currency)
		DO UPDATE SET rate = excluded.rate, fetched_at = excluded.fetched_at
	`, from, to, rate, time.Now())
	return err
}
