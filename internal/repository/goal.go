package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"finance_navigator/internal/database"
	"finance_navigator/internal/models"
)

// GoalRepository handles savings goal database operations.
type GoalRepository struct {
	db *database.DB
}

// NewGoalRepository creates a new GoalRepository.
func NewGoalRepository(db *database.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// Create inserts a new goal and returns its ID.
func (r *GoalRepository) Create(goal *models.Goal) (string, error) {
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	_, err := r.db.Exec(`
		INSERT INTO goals (id, user_id, name, target_amount, current_amount, target_date, account_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, goal.ID, goal.UserID, goal.Name, goal.TargetAmount, goal.CurrentAmount,
		goal.TargetDate, goal.AccountID, time.Now())
	if err != nil {
		return "", err
	}
	return goal.ID, nil
}

// GetByID retrieves a goal by ID. Returns nil if not found.
func (r *GoalRepository) GetByID(id string) (*models.Goal, error) {
	goal := &models.Goal{}
	err := r.db.QueryRow(`
		SELECT id, user_id, name, target_amount, current_amount, target_date, account_id, created_at
		FROM goals
		WHERE id = ?
	`, id).Scan(&goal.ID, &goal.UserID, &goal.Name, &goal.TargetAmount,
		&goal.CurrentAmount, &goal.TargetDate, &goal.AccountID, &goal.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return goal, nil
}

// GetByUserID retrieves all goals for a user, nearest target date first.
func (r *GoalRepository) GetByUserID(userID string) ([]*models.Goal, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, name, target_amount, current_amount, target_date, account_id, created_at
		FROM goals
		WHERE user_id = ?
		ORDER BY target_date ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := make([]*models.Goal, 0)
	for rows.Next() {
		goal := &models.Goal{}
		err := rows.Scan(&goal.ID, &goal.UserID, &goal.Name, &goal.TargetAmount,
			&goal.CurrentAmount, &goal.TargetDate, &goal.AccountID, &goal.CreatedAt)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

// Update updates an existing goal.
func (r *GoalRepository) Update(goal *models.Goal) error {
	result, err := r.db.Exec(`
		UPDATE goals
		SET name = ?, target_amount = ?, current_amount = ?, target_date = ?, account_id = ?
		WHERE id = ?
	`, goal.Name, goal.TargetAmount, goal.CurrentAmount, goal.TargetDate, goal.AccountID, goal.ID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New("goal not found")
	}
	return nil
}

// Delete removes a goal by ID.
func (r *GoalRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New("goal not found")
	}
	return nil
}
