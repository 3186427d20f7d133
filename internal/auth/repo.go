package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/askhub/askhub/internal/platform/db"
	"github.com/askhub/askhub/internal/shared"
)

// Repository defines persistence operations for accounts.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	Insert(ctx context.Context, account *Account) error
	Update(ctx context.Context, account *Account) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, search string, limit, offset int) ([]Account, int, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const accountColumns = `id, username, email, password_hash, birth_date, gender, is_superuser, is_verified, created_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var account Account
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.BirthDate,
		&account.Gender,
		&account.IsSuperuser,
		&account.IsVerified,
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindByEmail fetches an account by its normalized email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	return scanAccount(row)
}

// FindByID fetches an account by identifier.
func (r *PGRepository) FindByID(ctx context.Context, id string) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// Insert persists a new account. The unique index on email is authoritative:
// a concurrent duplicate that survives the service pre-check still fails here
// with shared.ErrEmailTaken.
func (r *PGRepository) Insert(ctx context.Context, account *Account) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (id, username, email, password_hash, birth_date, gender, is_superuser, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		account.ID,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.BirthDate,
		account.Gender,
		account.IsSuperuser,
		account.IsVerified,
	).Scan(&account.CreatedAt)
	return mapUniqueViolation(err)
}

// Update persists mutable account fields.
func (r *PGRepository) Update(ctx context.Context, account *Account) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET username = $2, email = $3, password_hash = $4, birth_date = $5, gender = $6,
		    is_superuser = $7, is_verified = $8
		WHERE id = $1`,
		account.ID,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.BirthDate,
		account.Gender,
		account.IsSuperuser,
		account.IsVerified,
	)
	return mapUniqueViolation(err)
}

// Delete removes the account. Questions and answers owned by it go with it
// through the ON DELETE CASCADE foreign keys.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// List returns a page of accounts, optionally filtered by a username/email
// substring, along with the unfiltered-per-search total. Page and total come
// from one transaction so they describe the same snapshot.
func (r *PGRepository) List(ctx context.Context, search string, limit, offset int) ([]Account, int, error) {
	pattern := "%" + search + "%"
	var accounts []Account
	var total int
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT `+accountColumns+`
			FROM accounts
			WHERE $1 = '' OR username ILIKE $2 OR email ILIKE $2
			ORDER BY created_at DESC
			LIMIT $3 OFFSET $4`,
			search, pattern, limit, offset,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			account, err := scanAccount(rows)
			if err != nil {
				return err
			}
			accounts = append(accounts, *account)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		return tx.QueryRow(ctx, `
			SELECT count(*) FROM accounts WHERE $1 = '' OR username ILIKE $2 OR email ILIKE $2`,
			search, pattern,
		).Scan(&total)
	})
	if err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

func mapUniqueViolation(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrEmailTaken
	}
	return err
}

var _ Repository = (*PGRepository)(nil)
