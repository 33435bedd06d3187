package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/entity"
	"storefront/internal/repository"
)

type addressRepository struct {
	db *sql.DB
}

// NewAddressRepository creates a new AddressRepository backed by Postgres.
func NewAddressRepository(db *sql.DB) repository.AddressRepository {
	return &addressRepository{db: db}
}

// FindPrimaryByCustomer prefers the address flagged primary and falls back
// to the most recent one.
func (r *addressRepository) FindPrimaryByCustomer(ctx context.Context, customerID int64) (*entity.Address, error) {
	var a entity.Address
	err := r.db.QueryRowContext(ctx,
		`SELECT id, customer_id, street, city, province, postal_code, is_primary, created_at
		 FROM addresses WHERE customer_id = $1
		 ORDER BY is_primary DESC, created_at DESC
		 LIMIT 1`, customerID,
	).Scan(&a.ID, &a.CustomerID, &a.Street, &a.City, &a.Province,
		&a.PostalCode, &a.Primary, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query address: %w", err)
	}
	return &a, nil
}

func (r *addressRepository) Create(ctx context.Context, a *entity.Address) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO addresses (customer_id, street, city, province, postal_code, is_primary)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		a.CustomerID, a.Street, a.City, a.Province, a.PostalCode, a.Primary,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert address: %w", err)
	}
	return nil
}
