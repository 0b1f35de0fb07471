package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "finance_navigator/internal/errors"
	"finance_navigator/internal/events"
	"finance_navigator/internal/metrics"
	"finance_navigator/internal/middleware"
	"finance_navigator/internal/models"
	"finance_navigator/internal/repository"
	"finance_navigator/internal/services"
)

// AccountsHandler manages asset accounts and their assets. Responses carry
// the derived TWD fields computed at the effective rate.
type AccountsHandler struct {
	accountRepo  *repository.AccountRepository
	settingsRepo *repository.SettingsRepository
	fx           *services.FXService
	hub          *events.Hub
}

// NewAccountsHandler creates a new AccountsHandler.
func NewAccountsHandler(accountRepo *repository.AccountRepository, settingsRepo *repository.SettingsRepository, fx *services.FXService, hub *events.Hub) *AccountsHandler {
	return &AccountsHandler{
		accountRepo:  accountRepo,
		settingsRepo: settingsRepo,
		fx:           fx,
		hub:          hub,
	}
}

// loadProcessed loads the user's accounts with derived TWD fields filled in.
func (h *AccountsHandler) loadProcessed(userID string) ([]*models.AssetAccount, error) {
	accounts, err := h.accountRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	settings, err := h.settingsRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	metrics.ProcessAccounts(accounts, h.fx.EffectiveRate(settings))
	return accounts, nil
}

// List returns the user's asset accounts with assets.
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	accounts, err := h.loadProcessed(user.ID)
	if err != nil {
		writeError(w, apperrors.Internal("loading accounts", err))
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

type accountRequest struct {
	Name string `json:"name"`
}

// Create adds a new asset account.
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req accountRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, apperrors.Validation("account name is required"))
		return
	}

	account := &models.AssetAccount{UserID: user.ID, Name: req.Name, Assets: []*models.Asset{}}
	if _, err := h.accountRepo.Create(account); err != nil {
		writeError(w, apperrors.Internal("creating account", err))
		return
	}

	h.hub.Notify(user.ID, events.CollectionAccounts)
	writeJSON(w, http.StatusCreated, account)
}

// Update renames an asset account.
func (h *AccountsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	account, err := h.ownedAccount(user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req accountRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, apperrors.Validation("account name is required"))
		return
	}

	account.Name = req.Name
	if err := h.accountRepo.Update(account); err != nil {
		writeError(w, apperrors.Internal("updating account", err))
		return
	}

	h.hub.Notify(user.ID, events.CollectionAccounts)
	writeJSON(w, http.StatusOK, account)
}

// Delete removes an asset account and its assets.
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	account, err := h.ownedAccount(user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.accountRepo.Delete(account.ID); err != nil {
		writeError(w, apperrors.Internal("deleting account", err))
		return
	}

	h.hub.Notify(user.ID, events.CollectionAccounts)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type assetRequest struct {
	Code         string  `json:"code"`
	AccountType  string  `json:"accountType"`
	Units        float64 `json:"units"`
	Cost         float64 `json:"cost"`
	CurrentValue float64 `json:"currentValue"`
	Currency     string  `json:"currency"`
	SortOrder    int     `json:"sortOrder"`
}

func (req *assetRequest) validate() error {
	if strings.TrimSpace(req.Code) == "" {
		return apperrors.Validation("asset code is required")
	}
	if !models.ValidAssetType(req.AccountType) {
		return apperrors.Validation("unknown asset type")
	}
	if req.Currency != models.CurrencyTWD && req.Currency != models.CurrencyUSD {
		return apperrors.Validation("currency must be TWD or USD")
	}
	if req.Units < 0 || req.Cost < 0 || req.CurrentValue < 0 {
		return apperrors.Validation("units, cost and current value must not be negative")
	}
	return nil
}

// CreateAsset adds an asset to an account.
func (h *AccountsHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	account, err := h.ownedAccount(user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req assetRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	asset := &models.Asset{
		AccountID:    account.ID,
		Code:         strings.TrimSpace(req.Code),
		AccountType:  req.AccountType,
		Units:        req.Units,
		Cost:         req.Cost,
		CurrentValue: req.CurrentValue,
		Currency:     req.Currency,
		SortOrder:    req.SortOrder,
	}
	if _, err := h.accountRepo.CreateAsset(asset); err != nil {
		writeError(w, apperrors.Internal("creating asset", err))
		return
	}

	h.hub.Notify(user.ID, events.CollectionAccounts)
	writeJSON(w, http.StatusCreated, asset)
}

// UpdateAsset updates an asset's stored fields.
func (h *AccountsHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	asset, err := h.ownedAsset(user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req assetRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	asset.Code = strings.TrimSpace(req.Code)
	asset.AccountType = req.AccountType
	asset.Units = req.Units
	asset.Cost = req.Cost
	asset.CurrentValue = req.CurrentValue
	asset.Currency = req.Currency
	asset.SortOrder = req.SortOrder
	if err := h.accountRepo.UpdateAsset(asset); err != nil {
		writeError(w, apperrors.Internal("updating asset", err))
		return
	}

	h.hub.Notify(user.ID, events.CollectionAccounts)
	writeJSON(w, http.StatusOK, asset)
}

// DeleteAsset removes an asset.
func (h *AccountsHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	asset, err := h.ownedAsset(user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.accountRepo.DeleteAsset(asset.ID); err != nil {
		writeError(w, apperrors.Internal("deleting asset", err))
		return
	}

	h.hub.Notify(user.ID, events.CollectionAccounts)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ownedAccount loads an account and checks ownership. Foreign accounts look
// like missing ones to avoid leaking their existence.
func (h *AccountsHandler) ownedAccount(userID, id string) (*models.AssetAccount, error) {
	account, err := h.accountRepo.GetByID(id)
	if err != nil {
		return nil, apperrors.Internal("loading account", err)
	}
	if account == nil || account.UserID != userID {
		return nil, apperrors.NotFound("account")
	}
	return account, nil
}

// ownedAsset loads an asset and checks ownership through its account.
func (h *AccountsHandler) ownedAsset(userID, id string) (*models.Asset, error) {
	asset, err := h.accountRepo.GetAssetByID(id)
	if err != nil {
		return nil, apperrors.Internal("loading asset", err)
	}
	if asset == nil {
		return nil, apperrors.NotFound("asset")
	}
	if _, err := h.ownedAccount(userID, asset.AccountID); err != nil {
		return nil, apperrors.NotFound("asset")
	}
	return asset, nil
}
