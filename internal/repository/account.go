package repository

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"finance_navigator/internal/database"
	"finance_navigator/internal/models"
)

// AccountRepository handles asset-account and asset database operations.
type AccountRepository struct {
	db *database.DB
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new asset account and returns its ID.
func (r *AccountRepository) Create(account *models.AssetAccount) (string, error) {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	_, err := r.db.Exec(`
		INSERT INTO asset_accounts (id, user_id, name)
		VALUES (?, ?, ?)
	`, account.ID, account.UserID, account.Name)
	if err != nil {
		return "", err
	}
	return account.ID, nil
}

// GetByID retrieves an asset account with its assets. Returns nil if not found.
func (r *AccountRepository) GetByID(id string) (*models.AssetAccount, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, name, created_at
		FROM asset_accounts
		WHERE id = ?
	`, id)

	account := &models.AssetAccount{}
	err := row.Scan(&account.ID, &account.UserID, &account.Name, &account.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	assets, err := r.getAssets(account.ID)
	if err != nil {
		return nil, err
	}
	account.Assets = assets
	return account, nil
}

// GetByUserID retrieves all asset accounts for a user, with assets, sorted by name.
func (r *AccountRepository) GetByUserID(userID string) ([]*models.AssetAccount, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, name, created_at
		FROM asset_accounts
		WHERE user_id = ?
		ORDER BY name ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]*models.AssetAccount, 0)
	for rows.Next() {
		account := &models.AssetAccount{}
		if err := rows.Scan(&account.ID, &account.UserID, &account.Name, &account.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, account := range accounts {
		assets, err := r.getAssets(account.ID)
		if err != nil {
			return nil, err
		}
		account.Assets = assets
	}
	return accounts, nil
}

// getAssets loads an account's assets in sort order.
func (r *AccountRepository) getAssets(accountID string) ([]*models.Asset, error) {
	rows, err := r.db.Query(`
		SELECT id, account_id, code, account_type, units, cost, current_value, currency, sort_order
		FROM assets
		WHERE account_id = ?
		ORDER BY sort_order ASC, code ASC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assets := make([]*models.Asset, 0)
	for rows.Next() {
		asset := &models.Asset{}
		err := rows.Scan(
			&asset.ID,
			&asset.AccountID,
			&asset.Code,
			&asset.AccountType,
			&asset.Units,
			&asset.Cost,
			&asset.CurrentValue,
			&asset.Currency,
			&asset.SortOrder,
		)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

// Update renames an asset account.
func (r *AccountRepository) Update(account *models.AssetAccount) error {
	result, err := r.db.Exec(`
		UPDATE asset_accounts SET name = ? WHERE id = ?
	`, account.Name, account.ID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New("asset account not found")
	}
	return nil
}

// Delete removes an asset account and, via cascade, its assets.
func (r *AccountRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM asset_accounts WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New("asset account not found")
	}
	return nil
}

// CreateAsset inserts a new asset under an account and returns its ID.
func (r *AccountRepository) CreateAsset(asset *models.Asset) (string, error) {
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	_, err := r.db.Exec(`
		INSERT INTO assets (id, account_id, code, account_type, units, cost, current_value, currency, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, asset.ID, asset.AccountID, asset.Code, asset.AccountType,
		asset.Units, asset.Cost, asset.CurrentValue, asset.Currency, asset.SortOrder)
	if err != nil {
		return "", err
	}
	return asset.ID, nil
}

// GetAssetByID retrieves an asset by ID. Returns nil if not found.
func (r *AccountRepository) GetAssetByID(id string) (*models.Asset, error) {
	row := r.db.QueryRow(`
		SELECT id, account_id, code, account_type, units, cost, current_value, currency, sort_order
		FROM assets
		WHERE id = ?
	`, id)

	asset := &models.Asset{}
	err := row.Scan(
		&asset.ID,
		&asset.AccountID,
		&asset.Code,
		&asset.AccountType,
		&asset.Units,
		&asset.Cost,
		&asset.CurrentValue,
		&asset.Currency,
		&asset.SortOrder,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// UpdateAsset updates an existing asset's stored fields. Derived TWD values
// are never written here.
func (r *AccountRepository) UpdateAsset(asset *models.Asset) error {
	result, err := r.db.Exec(`
		UPDATE assets
		SET code = ?, account_type = ?, units = ?, cost = ?, current_value = ?, currency = ?, sort_order = ?
		WHERE id = ?
	`, asset.Code, asset.AccountType, asset.Units, asset.Cost,
		asset.CurrentValue, asset.Currency, asset.SortOrder, asset.ID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New("asset not found")
	}
	return nil
}

// DeleteAsset removes an asset by ID.
func (r *AccountRepository) DeleteAsset(id string) error {
	result, err := r.db.Exec(`DELETE FROM assets WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New("asset not found")
	}
	return nil
}

// CountByUserID returns the number of asset accounts for a user.
func (r *AccountRepository) CountByUserID(userID string) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM asset_accounts WHERE user_id = ?
	`, userID).Scan(&count)
	return count, err
}
