package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"finance_navigator/internal/database"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := database.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestUser creates a test user and returns the user ID
func createTestUser(t *testing.T, db *database.DB) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO users (id, email, password_hash, name)
		VALUES (?, ?, ?, ?)
	`, id, "test@example.com", "hashedpassword", "Test User")
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return id
}

// Password hashing tests

func TestHashPassword_ValidPassword_ReturnsHash(t *testing.T) {
	password := "securepassword123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v, want nil", err)
	}
	if hash == "" {
		t.Error("HashPassword() returned empty hash")
	}
	if hash == password {
		t.Error("HashPassword() returned plaintext password")
	}
}

func TestHashPassword_SamePassword_DifferentHashes(t *testing.T) {
	// Due to salting, same password should produce different hashes
	hash1, _ := HashPassword("samepassword")
	hash2, _ := HashPassword("samepassword")

	if hash1 == hash2 {
		t.Error("HashPassword() should return different hashes even for same password (due to salting)")
	}
}

func TestCheckPassword_CorrectPassword_ReturnsTrue(t *testing.T) {
	password := "mypassword"
	hash, _ := HashPassword(password)

	if !CheckPassword(password, hash) {
		t.Error("CheckPassword() should return true for correct password")
	}
}

func TestCheckPassword_WrongPassword_ReturnsFalse(t *testing.T) {
	hash, _ := HashPassword("rightpassword")

	if CheckPassword("wrongpassword", hash) {
		t.Error("CheckPassword() should return false for wrong password")
	}
}

// Session manager tests

func TestSessionManager_Create_ValidUser_ReturnsSession(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db)
	sm := NewSessionManager(db)

	session, err := sm.Create(userID)
	if err != nil {
		t.Fatalf("Create() error = %v, want nil", err)
	}
	if session.ID == "" {
		t.Error("Create() returned session with empty ID")
	}
	if session.UserID != userID {
		t.Errorf("Create() session user = %s, want %s", session.UserID, userID)
	}
	if !session.ExpiresAt.After(time.Now()) {
		t.Error("Create() session already expired")
	}
}

func TestSessionManager_Validate_ValidSession_ReturnsUserID(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db)
	sm := NewSessionManager(db)

	session, _ := sm.Create(userID)

	got, err := sm.Validate(session.ID)
	if err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
	if got != userID {
		t.Errorf("Validate() = %s, want %s", got, userID)
	}
}

func TestSessionManager_Validate_UnknownSession_ReturnsError(t *testing.T) {
	db := setupTestDB(t)
	sm := NewSessionManager(db)

	if _, err := sm.Validate("no-such-session"); err == nil {
		t.Error("Validate() should fail for an unknown session")
	}
}

func TestSessionManager_Validate_ExpiredSession_ReturnsError(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db)
	sm := NewSessionManager(db).WithDuration(-time.Hour)

	session, _ := sm.Create(userID)

	if _, err := sm.Validate(session.ID); err == nil {
		t.Error("Validate() should fail for an expired session")
	}
}

func TestSessionManager_Delete_RemovesSession(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db)
	sm := NewSessionManager(db)

	session, _ := sm.Create(userID)
	if err := sm.Delete(session.ID); err != nil {
		t.Fatalf("Delete() error = %v, want nil", err)
	}

	if _, err := sm.Validate(session.ID); err == nil {
		t.Error("Validate() should fail after Delete()")
	}
}

func TestSessionManager_CleanExpired_RemovesOnlyExpired(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db)

	expired := NewSessionManager(db).WithDuration(-time.Hour)
	expiredSession, _ := expired.Create(userID)

	active := NewSessionManager(db)
	activeSession, _ := active.Create(userID)

	n, err := active.CleanExpired()
	if err != nil {
		t.Fatalf("CleanExpired() error = %v, want nil", err)
	}
	if n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}

	if _, err := active.Validate(activeSession.ID); err != nil {
		t.Errorf("active session should survive cleanup: %v", err)
	}
	if session, _ := active.Get(expiredSession.ID); session != nil {
		t.Error("expired session should be gone")
	}
}
