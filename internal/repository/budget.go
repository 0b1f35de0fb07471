package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"finance_navigator/internal/database"
	"finance_navigator/internal/models"
)

// BudgetRepository handles budget database operations. Uniqueness of the
// (month, category) pair is enforced by the service layer before writes, so
// the table itself carries no unique constraint.
type BudgetRepository struct {
	db *database.DB
}

// NewBudgetRepository creates a new BudgetRepository.
func NewBudgetRepository(db *database.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// Create inserts a new budget and returns its ID.
func (r *BudgetRepository) Create(budget *models.Budget) (string, error) {
	if budget.ID == "" {
		budget.ID = uuid.NewString()
	}
	_, err := r.db.Exec(`
		INSERT INTO budgets (id, user_id, month, category, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, budget.ID, budget.UserID, budget.Month, budget.Category, budget.Amount, time.Now())
	if err != nil {
		return "", err
	}
	return budget.ID, nil
}

// GetByID retrieves a budget by ID. Returns nil if not found.
func (r *BudgetRepository) GetByID(id string) (*models.Budget, error) {
	return r.scanBudget(r.db.QueryRow(`
		SELECT id, user_id, month, category, amount, created_at
		FROM budgets
		WHERE id = ?
	`, id))
}

// GetByUserID retrieves all budgets for a user, newest month first.
func (r *BudgetRepository) GetByUserID(userID string) ([]*models.Budget, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, month, category, amount, created_at
		FROM budgets
		WHERE user_id = ?
		ORDER BY month DESC, category ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := make([]*models.Budget, 0)
	for rows.Next() {
		budget := &models.Budget{}
		err := rows.Scan(&budget.ID, &budget.UserID, &budget.Month,
			&budget.Category, &budget.Amount, &budget.CreatedAt)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}

// GetByMonth retrieves a user's budgets for a YYYY-MM month.
func (r *BudgetRepository) GetByMonth(userID, month string) ([]*models.Budget, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, month, category, amount, created_at
		FROM budgets
		WHERE user_id = ? AND month = ?
		ORDER BY category ASC
	`, userID, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := make([]*models.Budget, 0)
	for rows.Next() {
		budget := &models.Budget{}
		err := rows.Scan(&budget.ID, &budget.UserID, &budget.Month,
			&budget.Category, &budget.Amount, &budget.CreatedAt)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}

// GetByMonthAndCategory retrieves the budget for a (month, category) pair.
// Returns nil if none exists.
func (r *BudgetRepository) GetByMonthAndCategory(userID, month, category string) (*models.Budget, error) {
	return r.scanBudget(r.db.QueryRow(`
		SELECT id, user_id, month, category, amount, created_at
		FROM budgets
		WHERE user_id = ? AND month = ? AND category = ?
	`, userID, month, category))
}

func (r *BudgetRepository) scanBudget(row *sql.Row) (*models.Budget, error) {
	budget := &models.Budget{}
	err := row.Scan(&budget.ID, &budget.UserID, &budget.Month,
		&budget.Category, &budget.Amount, &budget.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return budget, nil
}

// Update updates an existing budget's amount.
func (r *BudgetRepository) Update(budget *models.Budget) error {
	result, err := r.db.Exec(`
		UPDATE budgets SET month = ?, category = ?, amount = ? WHERE id = ?
	`, budget.Month, budget.Category, budget.Amount, budget.ID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New("budget not found")
	}
	return nil
}

// Delete removes a budget by ID.
func (r *BudgetRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New("budget not found")
	}
	return nil
}
