package repository

import (
	"testing"

	"finance_navigator/internal/models"
)

func TestAccountRepository_Create_ValidAccount_ReturnsID(t *testing.T) {
	db, userID := setupTestDB(t)
	repo := NewAccountRepository(db)

	id, err := repo.Create(&models.AssetAccount{UserID: userID, Name: "台新銀行"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if id == "" {
		t.Error("expected a generated ID")
	}
}

func TestAccountRepository_Create_DuplicateName_ReturnsError(t *testing.T) {
	db, userID := setupTestDB(t)
	repo := NewAccountRepository(db)

	if _, err := repo.Create(&models.AssetAccount{UserID: userID, Name: "台新銀行"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := repo.Create(&models.AssetAccount{UserID: userID, Name: "台新銀行"}); err == nil {
		t.Error("expected unique constraint error for duplicate account name")
	}
}

func TestAccountRepository_GetByUserID_IncludesAssets(t *testing.T) {
	db, userID := setupTestDB(t)
	repo := NewAccountRepository(db)

	account := &models.AssetAccount{UserID: userID, Name: "富邦證券"}
	if _, err := repo.Create(account); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	asset := &models.Asset{
		AccountID:    account.ID,
		Code:         "0050",
		AccountType:  models.AssetTypeETF,
		Units:        1000,
		Cost:         130,
		CurrentValue: 180,
		Currency:     models.CurrencyTWD,
	}
	if _, err := repo.CreateAsset(asset); err != nil {
		t.Fatalf("create asset failed: %v", err)
	}

	accounts, err := repo.GetByUserID(userID)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(accounts))
	}
	if len(accounts[0].Assets) != 1 {
		t.Fatalf("expected 1 asset, got %d", len(accounts[0].Assets))
	}
	if accounts[0].Assets[0].Code != "0050" {
		t.Errorf("unexpected asset %+v", accounts[0].Assets[0])
	}
}

func TestAccountRepository_Delete_CascadesToAssets(t *testing.T) {
	db, userID := setupTestDB(t)
	repo := NewAccountRepository(db)

	account := &models.AssetAccount{UserID: userID, Name: "富邦證券"}
	if _, err := repo.Create(account); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	asset := &models.Asset{AccountID: account.ID, Code: "2330", AccountType: models.AssetTypeEquity, Units: 100, Cost: 540, CurrentValue: 980, Currency: models.CurrencyTWD}
	if _, err := repo.CreateAsset(asset); err != nil {
		t.Fatalf("create asset failed: %v", err)
	}

	if err := repo.Delete(account.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	got, err := repo.GetAssetByID(asset.ID)
	if err != nil {
		t.Fatalf("asset lookup failed: %v", err)
	}
	if got != nil {
		t.Error("expected asset to be deleted with its account")
	}
}

func TestAccountRepository_UpdateAsset_PersistsStoredFields(t *testing.T) {
	db, userID := setupTestDB(t)
	repo := NewAccountRepository(db)

	account := &models.AssetAccount{UserID: userID, Name: "Firstrade"}
	if _, err := repo.Create(account); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	asset := &models.Asset{AccountID: account.ID, Code: "VT", AccountType: models.AssetTypeUSDAsset, Units: 50, Cost: 95, CurrentValue: 110, Currency: models.CurrencyUSD}
	if _, err := repo.CreateAsset(asset); err != nil {
		t.Fatalf("create asset failed: %v", err)
	}

	asset.CurrentValue = 118
	if err := repo.UpdateAsset(asset); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, _ := repo.GetAssetByID(asset.ID)
	if got.CurrentValue != 118 {
		t.Errorf("expected current value 118, got %f", got.CurrentValue)
	}
}
