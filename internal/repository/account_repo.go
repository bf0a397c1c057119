package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/portfolio-review-api/internal/database"
	"github.com/portfolio-review-api/internal/models"
)

// accountRepo is the concrete implementation of AccountRepository
type accountRepo struct {
	db *database.DB
}

// NewAccountRepo creates a new account repository
func NewAccountRepo(db *database.DB) AccountRepository {
	return &accountRepo{db: db}
}

// Create inserts a new account
func (r *accountRepo) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (email, safe_email, first_name, last_name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		account.Email, account.SafeEmail, account.FirstName, account.LastName,
		account.Role, account.CreatedAt, time.Now(),
	)
	return err
}

// GetByEmail retrieves an account by its email address
func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `
		SELECT email, safe_email, first_name, last_name, role, created_at, updated_at
		FROM accounts WHERE email = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

// GetBySafeEmail retrieves an account by its URL-safe email form
func (r *accountRepo) GetBySafeEmail(ctx context.Context, safeEmail string) (*models.Account, error) {
	query := `
		SELECT email, safe_email, first_name, last_name, role, created_at, updated_at
		FROM accounts WHERE safe_email = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, safeEmail))
}

func (r *accountRepo) scanOne(row *sql.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.Email, &account.SafeEmail, &account.FirstName, &account.LastName,
		&account.Role, &account.CreatedAt, &account.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateRole sets the role of the account with the given email
func (r *accountRepo) UpdateRole(ctx context.Context, email string, role models.Role) error {
	query := `UPDATE accounts SET role = $1, updated_at = $2 WHERE email = $3`
	_, err := r.db.ExecContext(ctx, query, role, time.Now(), email)
	return err
}

// List retrieves all accounts sorted by last name, then first name
func (r *accountRepo) List(ctx context.Context) ([]*models.Account, error) {
	query := `
		SELECT email, safe_email, first_name, last_name, role, created_at, updated_at
		FROM accounts ORDER BY last_name, first_name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		var account models.Account
		err := rows.Scan(
			&account.Email, &account.SafeEmail, &account.FirstName, &account.LastName,
			&account.Role, &account.CreatedAt, &account.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, &account)
	}
	return accounts, rows.Err()
}

// Count returns the total number of accounts
func (r *accountRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts").Scan(&count)
	return count, err
}
