package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Behnamfe76/contacts-directory/internal/domain"
)

// UserRepository defines persistence access for directory users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	Deactivate(ctx context.Context, id int64) error
}

// UserFilter defines query params for user listing.
type UserFilter struct {
	Active *bool
	Limit  int
	Offset int
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, username, password, active, role, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (username, password, active, role)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Username,
		user.Password,
		user.Active,
		int16(user.Role),
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET username=$1, password=$2, active=$3, role=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Username,
		user.Password,
		user.Active,
		int16(user.Role),
		user.ID,
	).Scan(&user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetByUsername matches the username exactly, including case.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username=$1`
	return scanUser(r.pool.QueryRow(ctx, query, username))
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	args := []any{}

	if filter.Active != nil {
		args = append(args, *filter.Active)
		query += fmt.Sprintf(" WHERE active=$%d", len(args))
	}

	query += " ORDER BY id"
	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

// Deactivate clears the active flag; users are never deleted.
func (r *userRepository) Deactivate(ctx context.Context, id int64) error {
	const query = `UPDATE users SET active=FALSE, updated_at=NOW() WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user domain.User
		role int16
	)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Password,
		&user.Active,
		&role,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	user.Role = domain.Role(role)
	return &user, nil
}
