// Package demo provides demo data seeding for demonstration deployments.
package demo

import (
	"fmt"
	"log"
	"time"

	"finance_navigator/internal/auth"
	"finance_navigator/internal/database"
	"finance_navigator/internal/models"
	"finance_navigator/internal/repository"
)

// Seeder seeds the database with demo data.
type Seeder struct {
	db           *database.DB
	userRepo     *repository.UserRepository
	accountRepo  *repository.AccountRepository
	cashflowRepo *repository.CashflowRepository
	budgetRepo   *repository.BudgetRepository
	goalRepo     *repository.GoalRepository
	settingsRepo *repository.SettingsRepository
}

// NewSeeder creates a new demo data seeder.
func NewSeeder(db *database.DB) *Seeder {
	return &Seeder{
		db:           db,
		userRepo:     repository.NewUserRepository(db),
		accountRepo:  repository.NewAccountRepository(db),
		cashflowRepo: repository.NewCashflowRepository(db),
		budgetRepo:   repository.NewBudgetRepository(db),
		goalRepo:     repository.NewGoalRepository(db),
		settingsRepo: repository.NewSettingsRepository(db),
	}
}

// SeedIfEmpty seeds demo data if the database is empty.
func (s *Seeder) SeedIfEmpty() error {
	count, err := s.userRepo.CountAll()
	if err != nil {
		return err
	}
	if count > 0 {
		log.Println("Database already has users, skipping demo seed")
		return nil
	}

	log.Println("Seeding demo data...")
	return s.Seed()
}

// Seed creates a demo user with a sample portfolio, cashflow history, budgets
// and goals.
func (s *Seeder) Seed() error {
	passwordHash, err := auth.HashPassword("demo1234")
	if err != nil {
		return err
	}

	demoUser := &models.User{
		Email:        "demo@example.com",
		PasswordHash: passwordHash,
		Name:         "Demo User",
	}
	userID, err := s.userRepo.Create(demoUser)
	if err != nil {
		return err
	}
	log.Printf("Created demo user (ID: %s)", userID)

	if _, err := s.settingsRepo.GetOrCreate(userID); err != nil {
		return err
	}

	// Accounts and assets
	bank := &models.AssetAccount{UserID: userID, Name: "台新銀行"}
	if _, err := s.accountRepo.Create(bank); err != nil {
		return err
	}
	broker := &models.AssetAccount{UserID: userID, Name: "富邦證券"}
	if _, err := s.accountRepo.Create(broker); err != nil {
		return err
	}
	usBroker := &models.AssetAccount{UserID: userID, Name: "Firstrade"}
	if _, err := s.accountRepo.Create(usBroker); err != nil {
		return err
	}

	assets := []*models.Asset{
		{AccountID: bank.ID, Code: "活存", AccountType: models.AssetTypeCash, Units: 1, Cost: 350000, CurrentValue: 350000, Currency: models.CurrencyTWD, SortOrder: 1},
		{AccountID: broker.ID, Code: "0050", AccountType: models.AssetTypeETF, Units: 3000, Cost: 130, CurrentValue: 182, Currency: models.CurrencyTWD, SortOrder: 1},
		{AccountID: broker.ID, Code: "2330", AccountType: models.AssetTypeEquity, Units: 1000, Cost: 540, CurrentValue: 980, Currency: models.CurrencyTWD, SortOrder: 2},
		{AccountID: usBroker.ID, Code: "VT", AccountType: models.AssetTypeUSDAsset, Units: 50, Cost: 95, CurrentValue: 118, Currency: models.CurrencyUSD, SortOrder: 1},
	}
	for _, asset := range assets {
		if _, err := s.accountRepo.CreateAsset(asset); err != nil {
			return err
		}
	}

	// Six months of cashflow history plus a recurring rent template.
	now := time.Now()
	for i := 5; i >= 0; i-- {
		month := now.AddDate(0, -i, 0)
		records := []*models.CashflowRecord{
			{UserID: userID, Date: month.Format("2006-01") + "-05", Type: models.CashflowIncome, Category: "薪水", Amount: 62000, Currency: models.CurrencyTWD, Description: "月薪", AccountID: bank.ID, AccountName: bank.Name},
			{UserID: userID, Date: month.Format("2006-01") + "-10", Type: models.CashflowExpense, Category: "餐飲", Amount: 9500, Currency: models.CurrencyTWD, AccountID: bank.ID, AccountName: bank.Name},
			{UserID: userID, Date: month.Format("2006-01") + "-15", Type: models.CashflowExpense, Category: "交通", Amount: 1800, Currency: models.CurrencyTWD, AccountID: bank.ID, AccountName: bank.Name},
		}
		for _, rec := range records {
			if _, err := s.cashflowRepo.Create(rec); err != nil {
				return err
			}
		}
	}

	rentDay := 1
	rentTemplate := &models.CashflowRecord{
		UserID:        userID,
		Date:          now.AddDate(0, -6, 0).Format("2006-01") + "-01",
		Type:          models.CashflowExpense,
		Category:      "居住",
		Amount:        18000,
		Currency:      models.CurrencyTWD,
		Description:   "房租",
		AccountID:     bank.ID,
		AccountName:   bank.Name,
		IsRecurring:   true,
		RecurrenceDay: &rentDay,
	}
	if _, err := s.cashflowRepo.Create(rentTemplate); err != nil {
		return err
	}

	// Current month budgets
	month := now.Format("2006-01")
	budgets := []*models.Budget{
		{UserID: userID, Month: month, Category: "餐飲", Amount: 12000},
		{UserID: userID, Month: month, Category: "交通", Amount: 3000},
		{UserID: userID, Month: month, Category: "娛樂", Amount: 5000},
	}
	for _, budget := range budgets {
		if _, err := s.budgetRepo.Create(budget); err != nil {
			return err
		}
	}

	// Goals
	goals := []*models.Goal{
		{UserID: userID, Name: "緊急備用金", TargetAmount: 300000, CurrentAmount: 210000, TargetDate: now.AddDate(1, 0, 0).Format("2006-01-02"), AccountID: bank.ID},
		{UserID: userID, Name: "日本旅遊基金", TargetAmount: 80000, CurrentAmount: 25000, TargetDate: now.AddDate(0, 8, 0).Format("2006-01-02")},
	}
	for _, goal := range goals {
		if _, err := s.goalRepo.Create(goal); err != nil {
			return err
		}
	}

	fmt.Println("Demo data seeded: login with demo@example.com / demo1234")
	return nil
}
