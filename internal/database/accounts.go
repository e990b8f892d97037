package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/porchlightgames/titandawn/internal/logger"
)

// bcrypt cost factor (12 is a good balance of security and performance)
const bcryptCost = 12

// ErrAccountNotFound is returned when an account lookup fails.
var ErrAccountNotFound = errors.New("account not found")

// ErrAccountExists is returned when trying to create a duplicate account.
var ErrAccountExists = errors.New("account already exists")

// ErrInvalidCredentials is returned when login credentials are incorrect.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Account represents a player account. Usernames are unique
// case-insensitively, so "Bob" and "bob" are the same account.
type Account struct {
	Username            string
	PasswordHash        string
	Email               string
	ControllingObjectID int64
	CreatedAt           time.Time
	LastLogin           *time.Time
}

// CreateAccount creates a new account with the given username and password.
// The password is hashed with bcrypt before storage.
func (d *Database) CreateAccount(username, password, email string) (*Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("username cannot be empty")
	}
	if len(password) < 4 {
		return nil, errors.New("password must be at least 4 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := rebind(d.dialect, "INSERT INTO accounts (username, password_hash, email) VALUES (?, ?, ?)")
	if _, err := d.db.Exec(query, username, string(hash), email); err != nil {
		if d.dialect.IsDuplicateKeyError(err) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return &Account{
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
		CreatedAt:    time.Now(),
	}, nil
}

// ValidateLogin checks if the username and password are correct.
// Returns the account if valid, or ErrInvalidCredentials if not.
func (d *Database) ValidateLogin(username, password string) (*Account, error) {
	account, err := d.GetAccount(username)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := d.UpdateLastLogin(account.Username); err != nil {
		// Log but don't fail the login
		logger.Warning("Failed to update last login", "username", account.Username, "error", err)
	}

	return account, nil
}

// GetAccount retrieves an account by username (case-insensitive).
func (d *Database) GetAccount(username string) (*Account, error) {
	var account Account
	var lastLogin sql.NullTime
	var controlling sql.NullInt64

	query := rebind(d.dialect,
		"SELECT username, password_hash, email, controlling_object_id, created_at, last_login FROM accounts WHERE username = ?")
	err := d.db.QueryRow(query, username).Scan(
		&account.Username, &account.PasswordHash, &account.Email,
		&controlling, &account.CreatedAt, &lastLogin)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if controlling.Valid {
		account.ControllingObjectID = controlling.Int64
	}
	if lastLogin.Valid {
		account.LastLogin = &lastLogin.Time
	}

	return &account, nil
}

// AllAccounts retrieves every account, ordered by username.
func (d *Database) AllAccounts() ([]*Account, error) {
	rows, err := d.db.Query(
		"SELECT username, password_hash, email, controlling_object_id, created_at, last_login FROM accounts ORDER BY username")
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*Account
	for rows.Next() {
		var account Account
		var lastLogin sql.NullTime
		var controlling sql.NullInt64
		if err := rows.Scan(
			&account.Username, &account.PasswordHash, &account.Email,
			&controlling, &account.CreatedAt, &lastLogin); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		if controlling.Valid {
			account.ControllingObjectID = controlling.Int64
		}
		if lastLogin.Valid {
			account.LastLogin = &lastLogin.Time
		}
		accounts = append(accounts, &account)
	}
	return accounts, rows.Err()
}

// ImportAccount writes a fully formed account row, preserving its
// password hash and timestamps. Migration tooling uses this; the game
// itself goes through CreateAccount.
func (d *Database) ImportAccount(account *Account) error {
	var controlling sql.NullInt64
	if account.ControllingObjectID != 0 {
		controlling = sql.NullInt64{Int64: account.ControllingObjectID, Valid: true}
	}
	var lastLogin sql.NullTime
	if account.LastLogin != nil {
		lastLogin = sql.NullTime{Time: *account.LastLogin, Valid: true}
	}

	query := rebind(d.dialect, `
		INSERT INTO accounts (username, password_hash, email, controlling_object_id, created_at, last_login)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (username) DO UPDATE SET
			password_hash = excluded.password_hash,
			email = excluded.email,
			controlling_object_id = excluded.controlling_object_id,
			created_at = excluded.created_at,
			last_login = excluded.last_login`)
	if _, err := d.db.Exec(query, account.Username, account.PasswordHash, account.Email,
		controlling, account.CreatedAt, lastLogin); err != nil {
		return fmt.Errorf("failed to import account: %w", err)
	}
	return nil
}

// AccountExists checks if an account with the given username exists.
func (d *Database) AccountExists(username string) (bool, error) {
	query := rebind(d.dialect, "SELECT COUNT(*) FROM accounts WHERE username = ?")
	var count int
	if err := d.db.QueryRow(query, username).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}
	return count > 0, nil
}

// SetControllingObject records which world object the account logs in as.
func (d *Database) SetControllingObject(username string, objectID int64) error {
	query := rebind(d.dialect, "UPDATE accounts SET controlling_object_id = ? WHERE username = ?")
	result, err := d.db.Exec(query, objectID, username)
	if err != nil {
		return fmt.Errorf("failed to set controlling object: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// UpdateLastLogin updates the last_login timestamp for an account.
func (d *Database) UpdateLastLogin(username string) error {
	query := rebind(d.dialect, "UPDATE accounts SET last_login = CURRENT_TIMESTAMP WHERE username = ?")
	if _, err := d.db.Exec(query, username); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// ChangePassword updates the password for an account.
func (d *Database) ChangePassword(username, newPassword string) error {
	if len(newPassword) < 4 {
		return errors.New("password must be at least 4 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	query := rebind(d.dialect, "UPDATE accounts SET password_hash = ? WHERE username = ?")
	result, err := d.db.Exec(query, string(hash), username)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// TotalAccounts returns the total number of accounts.
func (d *Database) TotalAccounts() (int, error) {
	var count int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM accounts").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}
