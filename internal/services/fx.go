// Package services provides business logic services.
package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"finance_navigator/internal/models"
	"finance_navigator/internal/repository"
)

// FXService resolves the effective USD/TWD rate. A manual override in the
// user's settings always wins; otherwise the service serves a fetched rate
// through a memory and database cache, falling back to the configured
// default when everything else fails.
type FXService struct {
	rateRepo *repository.RateRepository
	baseURL  string
	fallback float64
	maxAge   time.Duration

	mu     sync.RWMutex
	cached models.CurrencyRate
}

// NewFXService creates a new FXService. fallback is the USD/TWD rate used
// when no fetched or cached rate is available.
func NewFXService(rateRepo *repository.RateRepository, fallback float64) *FXService {
	return &FXService{
		rateRepo: rateRepo,
		baseURL:  "https://api.exchangerate-api.com/v4/latest",
		fallback: fallback,
		maxAge:   24 * time.Hour, // Rates are cached for 24 hours
	}
}

// SetBaseURL overrides the rate API endpoint. Tests point this at a fake.
func (s *FXService) SetBaseURL(url string) {
	s.baseURL = url
}

// EffectiveRate returns the USD/TWD rate that valuations should use: the
// manual override when set, otherwise the cached or fetched market rate.
func (s *FXService) EffectiveRate(settings *models.Settings) float64 {
	if settings != nil && settings.ManualRate != nil && *settings.ManualRate > 0 {
		return *settings.ManualRate
	}
	return s.MarketRate()
}

// MarketRate returns the USD/TWD rate, never failing: memory cache, then
// database cache, then a fresh fetch, then a stale database row, then the
// configured fallback.
func (s *FXService) MarketRate() float64 {
	s.mu.RLock()
	if s.cached.Rate > 0 && time.Since(s.cached.FetchedAt) < s.maxAge {
		rate := s.cached.Rate
		s.mu.RUnlock()
		return rate
	}
	s.mu.RUnlock()

	stored, err := s.rateRepo.Get(models.CurrencyUSD, models.CurrencyTWD)
	if err != nil {
		log.Printf("Failed to read cached rate: %v", err)
	}
	if stored != nil && time.Since(stored.FetchedAt) < s.maxAge {
		s.remember(stored.Rate, stored.FetchedAt)
		return stored.Rate
	}

	fresh, err := s.fetchRate(models.CurrencyUSD, models.CurrencyTWD)
	if err != nil {
		// Prefer a stale stored rate over the hard-coded fallback.
		if stored != nil && stored.Rate > 0 {
			log.Printf("Using stale USD/TWD rate due to API error: %v", err)
			return stored.Rate
		}
		log.Printf("Using fallback USD/TWD rate %.2f due to API error: %v", s.fallback, err)
		return s.fallback
	}

	if err := s.rateRepo.Upsert(models.CurrencyUSD, models.CurrencyTWD, fresh); err != nil {
		log.Printf("Failed to save rate to DB: %v", err)
	}
	s.remember(fresh, time.Now())
	return fresh
}

func (s *FXService) remember(rate float64, fetchedAt time.Time) {
	s.mu.Lock()
	s.cached = models.CurrencyRate{
		FromCurrency: models.CurrencyUSD,
		ToCurrency:   models.CurrencyTWD,
		Rate:         rate,
		FetchedAt:    fetchedAt,
	}
	s.mu.Unlock()
}

// fetchRate fetches a rate from the free exchangerate-api.com service.
func (s *FXService) fetchRate(from, to string) (float64, error) {
	url := fmt.Sprintf("%s/%s", s.baseURL, from)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return 0, fmt.Errorf("fetching exchange rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("exchange rate API returned %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("parsing exchange rate response: %w", err)
	}

	rate, ok := result.Rates[to]
	if !ok {
		return 0, fmt.Errorf("no rate found for %s/%s", from, to)
	}
	return rate, nil
}
