package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cloudmart/catalog-service/internal/models"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStockOutOfRange   = errors.New("stock quantity out of range")
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	ListProducts(ctx context.Context, q models.ProductQuery) ([]*models.Product, int, error)
	AdjustStock(ctx context.Context, id int64, delta int64) (*models.StockAdjustment, error)
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

const productColumns = `p.id, p.name, p.description, p.price, p.stock_quantity, p.category_id,
		p.image_url, p.is_active, p.created_at, p.updated_at,
		c.id, c.name, c.description, c.parent_id, c.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {

	product := &models.Product{}

	var (
		description, imageURL sql.NullString
		categoryID            sql.NullInt64
		updatedAt             sql.NullTime

		catID          sql.NullInt64
		catName        sql.NullString
		catDescription sql.NullString
		catParentID    sql.NullInt64
		catCreatedAt   sql.NullTime
	)

	err := row.Scan(&product.ID, &product.Name, &description, &product.Price, &product.StockQuantity, &categoryID,
		&imageURL, &product.IsActive, &product.CreatedAt, &updatedAt,
		&catID, &catName, &catDescription, &catParentID, &catCreatedAt)
	if err != nil {
		return nil, err
	}

	product.Description = nullString(description)
	product.ImageURL = nullString(imageURL)
	product.CategoryID = nullInt64(categoryID)
	if updatedAt.Valid {
		product.UpdatedAt = &updatedAt.Time
	}

	if catID.Valid {
		product.Category = &models.Category{
			ID:          catID.Int64,
			Name:        catName.String,
			Description: nullString(catDescription),
			ParentID:    nullInt64(catParentID),
			CreatedAt:   catCreatedAt.Time,
		}
	}

	return product, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := withDBTimeout(ctx)
	defer cancel()

	query := `INSERT INTO products (name, description, price, stock_quantity, category_id, image_url, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id, created_at
	`

	return r.DB.QueryRowContext(dbCtx, query, product.Name, product.Description, product.Price, product.StockQuantity, product.CategoryID, product.ImageURL, product.IsActive).Scan(&product.ID, &product.CreatedAt)
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	dbCtx, cancel := withDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE p.id = $1`

	product, err := scanProduct(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		return nil, fmt.Errorf("querying database: %w", err)
	}

	return product, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := withDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products SET name = $1, description = $2, price = $3, stock_quantity = $4, category_id = $5,
		image_url = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`

	var updatedAt sql.NullTime

	err := r.DB.QueryRowContext(dbCtx, query, product.Name, product.Description, product.Price, product.StockQuantity, product.CategoryID, product.ImageURL, product.IsActive, product.ID).Scan(&updatedAt)
	if err != nil {
		return err
	}

	if updatedAt.Valid {
		product.UpdatedAt = &updatedAt.Time
	}

	return nil
}

// DeleteProduct returns sql.ErrNoRows when nothing was deleted.
func (r *productRepository) DeleteProduct(ctx context.Context, id int64) error {
	dbCtx, cancel := withDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return requireAffected(result)
}

// ListProducts returns one page of active products in id order together with
// the number of rows matching the filters.
func (r *productRepository) ListProducts(ctx context.Context, q models.ProductQuery) ([]*models.Product, int, error) {
	dbCtx, cancel := withDBTimeout(ctx)
	defer cancel()

	conditions := []string{"p.is_active = TRUE"}
	var args []any

	if q.HasCategory() {
		args = append(args, *q.CategoryID)
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", len(args)))
	}

	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d)", len(args), len(args)))
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int

	countQuery := `SELECT COUNT(*) FROM products p` + where

	err := r.DB.QueryRowContext(dbCtx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id` + where + fmt.Sprintf(`
		ORDER BY p.id
		LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)

	args = append(args, q.Size, models.Offset(q.Page, q.Size))

	rows, err := r.DB.QueryContext(dbCtx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	var products []*models.Product

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// AdjustStock applies delta under a row lock. A result below zero rolls the
// transaction back and returns ErrInsufficientStock; one past MaxInt64
// returns ErrStockOutOfRange.
func (r *productRepository) AdjustStock(ctx context.Context, id int64, delta int64) (*models.StockAdjustment, error) {
	dbCtx, cancel := withDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	var current int64

	err = tx.QueryRowContext(dbCtx, `SELECT stock_quantity FROM products WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		return nil, err
	}

	if delta > 0 && current > math.MaxInt64-delta {
		return nil, ErrStockOutOfRange
	}

	newStock := current + delta
	if newStock < 0 {
		return nil, ErrInsufficientStock
	}

	_, err = tx.ExecContext(dbCtx, `UPDATE products SET stock_quantity = $1, updated_at = NOW() WHERE id = $2`, newStock, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit stock adjustment: %w", err)
	}

	return &models.StockAdjustment{
		ProductID:     id,
		PreviousStock: current,
		Change:        delta,
		NewStock:      newStock,
	}, nil
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}

	return &v.String
}

func nullInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}

	return &v.Int64
}
