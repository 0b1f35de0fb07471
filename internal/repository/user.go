// Package repository provides raw-SQL data access for the finance navigator.
package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"finance_navigator/internal/database"
	"finance_navigator/internal/models"
)

// UserRepository handles user database operations.
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and returns its ID.
func (r *UserRepository) Create(user *models.User) (string, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	_, err := r.db.Exec(`
		INSERT INTO users (id, email, password_hash, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.ID, user.Email, user.PasswordHash, user.Name, now, now)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// GetByID retrieves a user by ID. Returns nil if not found.
func (r *UserRepository) GetByID(id string) (*models.User, error) {
	return r.scanUser(r.db.QueryRow(`
		SELECT id, email, password_hash, name, created_at, updated_at
		FROM users
		WHERE id = ?
	`, id))
}

// GetByEmail retrieves a user by email. Returns nil if not found.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	return r.scanUser(r.db.QueryRow(`
		SELECT id, email, password_hash, name, created_at, updated_at
		FROM users
		WHERE email = ?
	`, email))
}

// scanUser scans a single user row.
func (r *UserRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Update updates an existing user.
func (r *UserRepository) Update(user *models.User) error {
	result, err := r.db.Exec(`
		UPDATE users
		SET email = ?, password_hash = ?, name = ?, updated_at = ?
		WHERE id = ?
	`, user.Email, user.PasswordHash, user.Name, time.Now(), user.ID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New("user not found")
	}
	return nil
}

// Delete removes a user by ID.
func (r *UserRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New("user not found")
	}
	return nil
}

// CountAll returns the total number of users.
func (r *UserRepository) CountAll() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
