package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"storefront/internal/entity"
	"storefront/internal/repository"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new ProductRepository backed by Postgres.
func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `p.id, p.seller_id, s.name, p.name, p.description, p.price, p.image_url, p.category, p.stock, p.created_at, p.updated_at`

func scanProduct(row interface{ Scan(...any) error }, p *entity.Product) error {
	return row.Scan(&p.ID, &p.SellerID, &p.SellerName, &p.Name, &p.Description,
		&p.Price, &p.ImageURL, &p.Category, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
}

func (r *productRepository) FindByID(ctx context.Context, id int64) (*entity.Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products p
		 JOIN sellers s ON s.id = p.seller_id
		 WHERE p.id = $1 AND p.deleted = FALSE`, id)

	var p entity.Product
	if err := scanProduct(row, &p); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return &p, nil
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []int64) ([]entity.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products p
		 JOIN sellers s ON s.id = p.seller_id
		 WHERE p.id = ANY($1) AND p.deleted = FALSE`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		var p entity.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *productRepository) List(ctx context.Context, offset, limit int) ([]entity.Product, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM products WHERE deleted = FALSE").Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products p
		 JOIN sellers s ON s.id = p.seller_id
		 WHERE p.deleted = FALSE
		 ORDER BY p.id
		 OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		var p entity.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *productRepository) Create(ctx context.Context, p *entity.Product) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO products (seller_id, name, description, price, image_url, category, stock)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		p.SellerID, p.Name, p.Description, p.Price, p.ImageURL, p.Category, p.Stock,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}
