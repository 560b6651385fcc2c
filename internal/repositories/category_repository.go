package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cloudmart/catalog-service/internal/models"
)

type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategoryByID(ctx context.Context, id int64) (*models.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id int64) error
	// CountDependents counts products and child categories pointing at id.
	CountDependents(ctx context.Context, id int64) (int, error)
}

type categoryRepository struct {
	DB *sql.DB
}

func NewCategoryRepo(db *sql.DB) CategoryRepository {
	return &categoryRepository{DB: db}
}

func scanCategory(row rowScanner) (*models.Category, error) {

	category := &models.Category{}

	var description sql.NullString
	var parentID sql.NullInt64

	if err := row.Scan(&category.ID, &category.Name, &description, &parentID, &category.CreatedAt); err != nil {
		return nil, err
	}

	category.Description = nullString(description)
	category.ParentID = nullInt64(parentID)

	return category, nil
}

func (r *categoryRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	dbCtx, cancel := withDBTimeout(ctx)
	defer cancel()

	query := `INSERT INTO categories (name, description, parent_id)
			  VALUES ($1, $2, $3)
			  RETURNING id, created_at
	`

	return r.DB.QueryRowContext(dbCtx, query, category.Name, category.Description, category.ParentID).Scan(&category.ID, &category.CreatedAt)
}

func (r *categoryRepository) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	dbCtx, cancel := withDBTimeout(ctx)
	defer cancel()

	query := `SELECT id, name, description, parent_id, created_at FROM categories WHERE id = $1`

	category, err := scanCategory(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		return nil, fmt.Errorf("querying database: %w", err)
	}

	return category, nil
}

func (r *categoryRepository) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	dbCtx, cancel := withDBTimeout(ctx)
	defer cancel()

	query := `SELECT id, name, description, parent_id, created_at FROM categories WHERE name = $1`

	category, err := scanCategory(r.DB.QueryRowContext(dbCtx, query, name))
	if err != nil {
		return nil, fmt.Errorf("querying database: %w", err)
	}

	return category, nil
}

func (r *categoryRepository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	dbCtx, cancel := withDBTimeout(ctx)
	defer cancel()

	rows, err := r.DB.QueryContext(dbCtx, `SELECT id, name, description, parent_id, created_at FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	categories := []*models.Category{}

	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}

		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *categoryRepository) UpdateCategory(ctx context.Context, category *models.Category) error {
	dbCtx, cancel := withDBTimeout(ctx)
	defer cancel()

	query := `UPDATE categories SET name = $1, description = $2, parent_id = $3 WHERE id = $4`

	result, err := r.DB.ExecContext(dbCtx, query, category.Name, category.Description, category.ParentID, category.ID)
	if err != nil {
		return err
	}

	return requireAffected(result)
}

func (r *categoryRepository) DeleteCategory(ctx context.Context, id int64) error {
	dbCtx, cancel := withDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return requireAffected(result)
}

func (r *categoryRepository) CountDependents(ctx context.Context, id int64) (int, error) {
	dbCtx, cancel := withDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT (SELECT COUNT(*) FROM products WHERE category_id = $1)
		     + (SELECT COUNT(*) FROM categories WHERE parent_id = $1)`

	var count int

	if err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}
