package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Behnamfe76/contacts-directory/internal/domain"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// ContactRepository manages contact persistence.
type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) error
	Update(ctx context.Context, contact *domain.Contact) error
	GetByID(ctx context.Context, id int64) (*domain.Contact, error)
	List(ctx context.Context, filter ContactFilter) ([]domain.Contact, error)
	Delete(ctx context.Context, id int64) error
}

// ContactFilter defines query params for contact listing.
type ContactFilter struct {
	DDD    *string
	Limit  int
	Offset int
}

type contactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository builds the repository.
func NewContactRepository(pool *pgxpool.Pool) ContactRepository {
	return &contactRepository{pool: pool}
}

const contactColumns = `id, name, ddd, phone, email, created_at, updated_at`

func (r *contactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	const query = `
        INSERT INTO contacts (name, ddd, phone, email)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		contact.Name,
		contact.DDD,
		contact.Phone,
		contact.Email,
	).Scan(&contact.ID, &contact.CreatedAt, &contact.UpdatedAt)
}

func (r *contactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	const query = `
        UPDATE contacts SET name=$1, ddd=$2, phone=$3, email=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		contact.Name,
		contact.DDD,
		contact.Phone,
		contact.Email,
		contact.ID,
	).Scan(&contact.CreatedAt, &contact.UpdatedAt)
}

func (r *contactRepository) GetByID(ctx context.Context, id int64) (*domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id=$1`
	return scanContact(r.pool.QueryRow(ctx, query, id))
}

func (r *contactRepository) List(ctx context.Context, filter ContactFilter) ([]domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts`
	args := []any{}

	if filter.DDD != nil && *filter.DDD != "" {
		args = append(args, *filter.DDD)
		query += fmt.Sprintf(" WHERE ddd=$%d", len(args))
	}

	query += " ORDER BY id"
	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Contact{}
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *contact)
	}
	return result, rows.Err()
}

func (r *contactRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanContact(row pgx.Row) (*domain.Contact, error) {
	var contact domain.Contact
	if err := row.Scan(
		&contact.ID,
		&contact.Name,
		&contact.DDD,
		&contact.Phone,
		&contact.Email,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &contact, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
