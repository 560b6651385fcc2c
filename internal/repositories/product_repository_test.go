package repository_test

import (
	"database/sql"
	"errors"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cloudmart/catalog-service/internal/models"
	repository "github.com/cloudmart/catalog-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productRowColumns = []string{
	"p.id", "p.name", "p.description", "p.price", "p.stock_quantity", "p.category_id",
	"p.image_url", "p.is_active", "p.created_at", "p.updated_at",
	"c.id", "c.name", "c.description", "c.parent_id", "c.created_at",
}

func strPtr(v string) *string { return &v }

func int64Ptr(v int64) *int64 { return &v }

func setupProductRepo(t *testing.T) (repository.ProductRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return repository.NewProductRepo(db), mock
}

func TestNewProductRepo(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewProductRepo(db)
	assert.NotNil(t, repo, "NewProductRepo should return a non-nil repository")
}

func TestCreateProduct(t *testing.T) {
	ctx := t.Context()
	expectedSQL := regexp.QuoteMeta(`INSERT INTO products (name, description, price, stock_quantity, category_id, image_url, is_active) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`)

	t.Run("Success", func(t *testing.T) {
		// Arrange
		repo, mock := setupProductRepo(t)
		product := &models.Product{
			Name:          "Desk Lamp",
			Description:   strPtr("LED"),
			Price:         29.99,
			StockQuantity: 5,
			CategoryID:    int64Ptr(3),
			IsActive:      true,
		}
		now := time.Now()

		mock.ExpectQuery(expectedSQL).
			WithArgs(product.Name, product.Description, product.Price, product.StockQuantity, product.CategoryID, product.ImageURL, product.IsActive).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), now))

		// Act
		err := repo.CreateProduct(ctx, product)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(11), product.ID)
		assert.WithinDuration(t, now, product.CreatedAt, time.Second)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error", func(t *testing.T) {
		// Arrange
		repo, mock := setupProductRepo(t)
		dbError := errors.New("database insertion error")

		mock.ExpectQuery(expectedSQL).WillReturnError(dbError)

		// Act
		err := repo.CreateProduct(ctx, &models.Product{Name: "x", Price: 1})

		// Assert
		assert.ErrorIs(t, err, dbError)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetProductByID(t *testing.T) {
	ctx := t.Context()
	expectedSQL := regexp.QuoteMeta(`FROM products p LEFT JOIN categories c ON p.category_id = c.id WHERE p.id = $1`)
	now := time.Now()

	t.Run("With category", func(t *testing.T) {
		// Arrange
		repo, mock := setupProductRepo(t)

		rows := sqlmock.NewRows(productRowColumns).AddRow(
			int64(7), "Desk Lamp", "LED", 29.99, int64(5), int64(3),
			nil, true, now, now,
			int64(3), "Lighting", nil, nil, now,
		)
		mock.ExpectQuery(expectedSQL).WithArgs(int64(7)).WillReturnRows(rows)

		// Act
		product, err := repo.GetProductByID(ctx, 7)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(7), product.ID)
		assert.Equal(t, "LED", *product.Description)
		assert.Nil(t, product.ImageURL)
		assert.Equal(t, int64(3), *product.CategoryID)
		require.NotNil(t, product.UpdatedAt)
		require.NotNil(t, product.Category)
		assert.Equal(t, "Lighting", product.Category.Name)
		assert.Nil(t, product.Category.ParentID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Without category", func(t *testing.T) {
		// Arrange
		repo, mock := setupProductRepo(t)

		rows := sqlmock.NewRows(productRowColumns).AddRow(
			int64(8), "Mug", nil, 4.5, int64(0), nil,
			nil, true, now, nil,
			nil, nil, nil, nil, nil,
		)
		mock.ExpectQuery(expectedSQL).WithArgs(int64(8)).WillReturnRows(rows)

		// Act
		product, err := repo.GetProductByID(ctx, 8)

		// Assert
		require.NoError(t, err)
		assert.Nil(t, product.CategoryID)
		assert.Nil(t, product.Category)
		assert.Nil(t, product.UpdatedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		// Arrange
		repo, mock := setupProductRepo(t)

		mock.ExpectQuery(expectedSQL).WithArgs(int64(9)).WillReturnError(sql.ErrNoRows)

		// Act
		product, err := repo.GetProductByID(ctx, 9)

		// Assert
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, product)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateProduct(t *testing.T) {
	ctx := t.Context()
	expectedSQL := regexp.QuoteMeta(`UPDATE products SET name = $1, description = $2, price = $3, stock_quantity = $4, category_id = $5, image_url = $6, is_active = $7, updated_at = NOW() WHERE id = $8 RETURNING updated_at`)

	t.Run("Success", func(t *testing.T) {
		// Arrange
		repo, mock := setupProductRepo(t)
		product := &models.Product{ID: 7, Name: "Desk Lamp", Price: 19.99, StockQuantity: 2, IsActive: true}
		now := time.Now()

		mock.ExpectQuery(expectedSQL).
			WithArgs(product.Name, product.Description, product.Price, product.StockQuantity, product.CategoryID, product.ImageURL, product.IsActive, product.ID).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

		// Act
		err := repo.UpdateProduct(ctx, product)

		// Assert
		require.NoError(t, err)
		require.NotNil(t, product.UpdatedAt)
		assert.WithinDuration(t, now, *product.UpdatedAt, time.Second)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		// Arrange
		repo, mock := setupProductRepo(t)

		mock.ExpectQuery(expectedSQL).WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

		// Act
		err := repo.UpdateProduct(ctx, &models.Product{ID: 99, Name: "x", Price: 1})

		// Assert
		assert.ErrorIs(t, err, sql.ErrNoRows)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteProduct(t *testing.T) {
	ctx := t.Context()
	expectedSQL := regexp.QuoteMeta(`DELETE FROM products WHERE id = $1`)

	t.Run("Success", func(t *testing.T) {
		repo, mock := setupProductRepo(t)
		mock.ExpectExec(expectedSQL).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.DeleteProduct(ctx, 7))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mock := setupProductRepo(t)
		mock.ExpectExec(expectedSQL).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.DeleteProduct(ctx, 7), sql.ErrNoRows)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListProducts(t *testing.T) {
	ctx := t.Context()
	now := time.Now()

	t.Run("No filters, last page", func(t *testing.T) {
		// Arrange
		repo, mock := setupProductRepo(t)
		query := models.ProductQuery{Page: 3, Size: 10}

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products p WHERE p.is_active = TRUE`)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

		rows := sqlmock.NewRows(productRowColumns)
		for id := int64(21); id <= 25; id++ {
			rows.AddRow(id, "Item", nil, 1.0, int64(1), nil, nil, true, now, nil, nil, nil, nil, nil, nil)
		}

		mock.ExpectQuery(regexp.QuoteMeta(`WHERE p.is_active = TRUE ORDER BY p.id LIMIT $1 OFFSET $2`)).
			WithArgs(10, 20).
			WillReturnRows(rows)

		// Act
		products, total, err := repo.ListProducts(ctx, query)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 25, total)
		assert.Len(t, products, 5)
		assert.Equal(t, int64(21), products[0].ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Category and search filters", func(t *testing.T) {
		// Arrange
		repo, mock := setupProductRepo(t)
		query := models.ProductQuery{Page: 1, Size: 10, CategoryID: int64Ptr(3), Search: "lamp"}

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products p WHERE p.is_active = TRUE AND p.category_id = $1 AND (p.name ILIKE $2 OR p.description ILIKE $2)`)).
			WithArgs(int64(3), "%lamp%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY p.id LIMIT $3 OFFSET $4`)).
			WithArgs(int64(3), "%lamp%", 10, 0).
			WillReturnRows(sqlmock.NewRows(productRowColumns).AddRow(
				int64(7), "Desk Lamp", nil, 29.99, int64(5), int64(3), nil, true, now, nil,
				int64(3), "Lighting", nil, nil, now,
			))

		// Act
		products, total, err := repo.ListProducts(ctx, query)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, products, 1)
		assert.Equal(t, "Lighting", products[0].Category.Name)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Count error", func(t *testing.T) {
		// Arrange
		repo, mock := setupProductRepo(t)
		dbError := errors.New("count failed")

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products p`)).WillReturnError(dbError)

		// Act
		products, total, err := repo.ListProducts(ctx, models.ProductQuery{Page: 1, Size: 10})

		// Assert
		assert.ErrorIs(t, err, dbError)
		assert.Nil(t, products)
		assert.Zero(t, total)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAdjustStock(t *testing.T) {
	ctx := t.Context()
	lockSQL := regexp.QuoteMeta(`SELECT stock_quantity FROM products WHERE id = $1 FOR UPDATE`)
	updateSQL := regexp.QuoteMeta(`UPDATE products SET stock_quantity = $1, updated_at = NOW() WHERE id = $2`)

	t.Run("Decrease to zero", func(t *testing.T) {
		// Arrange
		repo, mock := setupProductRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockSQL).WithArgs(int64(7)).WillReturnRows(sqlmock.NewRows([]string{"stock_quantity"}).AddRow(int64(5)))
		mock.ExpectExec(updateSQL).WithArgs(int64(0), int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		// Act
		adjustment, err := repo.AdjustStock(ctx, 7, -5)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, &models.StockAdjustment{ProductID: 7, PreviousStock: 5, Change: -5, NewStock: 0}, adjustment)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Insufficient stock rolls back", func(t *testing.T) {
		// Arrange
		repo, mock := setupProductRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockSQL).WithArgs(int64(7)).WillReturnRows(sqlmock.NewRows([]string{"stock_quantity"}).AddRow(int64(5)))
		mock.ExpectRollback()

		// Act
		adjustment, err := repo.AdjustStock(ctx, 7, -10)

		// Assert
		assert.ErrorIs(t, err, repository.ErrInsufficientStock)
		assert.Nil(t, adjustment)
		require.NoError(t, mock.ExpectationsWereMet(), "no UPDATE may be issued")
	})

	t.Run("Missing product", func(t *testing.T) {
		// Arrange
		repo, mock := setupProductRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockSQL).WithArgs(int64(99)).WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		// Act
		_, err := repo.AdjustStock(ctx, 99, 1)

		// Assert
		assert.ErrorIs(t, err, sql.ErrNoRows)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Overflow is rejected before any update", func(t *testing.T) {
		// Arrange
		repo, mock := setupProductRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockSQL).WithArgs(int64(7)).WillReturnRows(sqlmock.NewRows([]string{"stock_quantity"}).AddRow(int64(5)))
		mock.ExpectRollback()

		// Act
		adjustment, err := repo.AdjustStock(ctx, 7, math.MaxInt64)

		// Assert
		assert.ErrorIs(t, err, repository.ErrStockOutOfRange)
		assert.NotErrorIs(t, err, repository.ErrInsufficientStock)
		assert.Nil(t, adjustment)
		require.NoError(t, mock.ExpectationsWereMet(), "no UPDATE may be issued")
	})

	t.Run("Increase up to the maximum", func(t *testing.T) {
		repo, mock := setupProductRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockSQL).WithArgs(int64(7)).WillReturnRows(sqlmock.NewRows([]string{"stock_quantity"}).AddRow(int64(5)))
		mock.ExpectExec(updateSQL).WithArgs(int64(math.MaxInt64), int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		adjustment, err := repo.AdjustStock(ctx, 7, math.MaxInt64-5)

		require.NoError(t, err)
		assert.Equal(t, int64(math.MaxInt64), adjustment.NewStock)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
