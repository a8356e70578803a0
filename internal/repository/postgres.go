package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"vlxd/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const productColumns = `
	id, name, description, brand, price, unit, usage, specifications,
	is_active, created_at, updated_at`

// PostgresRepository reads the product catalog
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// NewPostgresRepositoryFromDB wraps an existing handle
func NewPostgresRepositoryFromDB(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Ping checks the connection
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// FindActiveProductsByNameContains returns active products whose name contains
// any of the fragments (case-insensitive), cheapest first.
func (r *PostgresRepository) FindActiveProductsByNameContains(ctx context.Context, fragments []string, limit int) ([]model.Product, error) {
	patterns := make([]string, 0, len(fragments))
	for _, f := range fragments {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		patterns = append(patterns, "%"+escapeLike(f)+"%")
	}
	if len(patterns) == 0 {
		return nil, nil
	}

	query := `SELECT` + productColumns + `
		FROM products
		WHERE is_active = true AND name ILIKE ANY($1)
		ORDER BY price ASC
		LIMIT $2`

	var products []model.Product
	if err := r.db.SelectContext(ctx, &products, query, pq.Array(patterns), normalizeLimit(limit)); err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	return products, nil
}

// FindActiveProductsByNormalizedName matches an accent-stripped, lowercased
// term against the unaccented product name. Requires the unaccent extension.
func (r *PostgresRepository) FindActiveProductsByNormalizedName(ctx context.Context, term string, limit int) ([]model.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}

	query := `SELECT` + productColumns + `
		FROM products
		WHERE is_active = true
		  AND replace(unaccent(lower(name)), 'đ', 'd') LIKE '%' || $1 || '%'
		ORDER BY price ASC
		LIMIT $2`

	var products []model.Product
	if err := r.db.SelectContext(ctx, &products, query, escapeLike(term), normalizeLimit(limit)); err != nil {
		return nil, fmt.Errorf("failed to find products by normalized name: %w", err)
	}
	return products, nil
}

// GetProductByID retrieves a single active product, nil when absent
func (r *PostgresRepository) GetProductByID(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	query := `SELECT` + productColumns + `
		FROM products
		WHERE id = $1 AND is_active = true`
	err := r.db.GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > 100 {
		return 100
	}
	return limit
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
