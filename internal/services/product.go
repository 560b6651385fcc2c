package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cloudmart/catalog-service/internal/cache"
	"github.com/cloudmart/catalog-service/internal/config"
	appErrors "github.com/cloudmart/catalog-service/internal/errors"
	"github.com/cloudmart/catalog-service/internal/models"
	repository "github.com/cloudmart/catalog-service/internal/repositories"
	"github.com/cloudmart/catalog-service/internal/utils"
)

type ProductService interface {
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListProducts(ctx context.Context, q models.ProductQuery) (*models.ProductPage, error)
	AdjustStock(ctx context.Context, id int64, quantity int64) (*models.StockAdjustment, error)
}

type productService struct {
	repo        repository.ProductRepository
	categories  repository.CategoryRepository
	loader      *cache.Loader
	invalidator *cache.Invalidator
	cfg         *config.CacheConfig
}

func NewProductService(repo repository.ProductRepository, categories repository.CategoryRepository, store cache.Cache, cfg *config.CacheConfig) ProductService {
	return &productService{
		repo:        repo,
		categories:  categories,
		loader:      cache.NewLoader(store),
		invalidator: cache.NewInvalidator(store),
		cfg:         cfg,
	}
}

func (s *productService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {

	product := &models.Product{
		Name:          utils.SanitizeText(req.Name),
		Description:   utils.SanitizeOptional(req.Description),
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		CategoryID:    req.CategoryID,
		ImageURL:      req.ImageURL,
		IsActive:      true,
	}

	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if product.CategoryID != nil {
		category, err := requireCategory(ctx, s.categories, *product.CategoryID, "Category not found")
		if err != nil {
			return nil, err
		}
		product.Category = category
	}

	err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, appErrors.ValidationError("Category not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to create product").WithError(err)
	}

	s.invalidator.Invalidate(ctx, cache.ProductCreated, product.ID)

	return product, nil
}

func (s *productService) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {

	product, err := cache.ReadThrough(ctx, s.loader, cache.ProductKey(id), s.cfg.DefaultTTL, func(ctx context.Context) (*models.Product, error) {
		return s.repo.GetProductByID(ctx, id)
	})
	if err != nil {
		return nil, lookupError(err, "Product not found", "Failed to fetch product")
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error) {

	// writes always start from the data layer, never from a cached copy
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Product not found", "Failed to fetch product")
	}

	if req.Name != nil {
		product.Name = utils.SanitizeText(*req.Name)
	}
	if req.Description != nil {
		product.Description = utils.SanitizeOptional(req.Description)
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}
	if req.ImageURL != nil {
		product.ImageURL = req.ImageURL
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		category, err := requireCategory(ctx, s.categories, *req.CategoryID, "Category not found")
		if err != nil {
			return nil, err
		}
		product.CategoryID = req.CategoryID
		product.Category = category
	}

	err = s.repo.UpdateProduct(ctx, product)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.NotFoundError("Product not found").WithError(err)
		case repository.IsForeignKeyViolation(err):
			return nil, appErrors.ValidationError("Category not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to update product").WithError(err)
	}

	s.invalidator.Invalidate(ctx, cache.ProductUpdated, id)

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id int64) error {

	err := s.repo.DeleteProduct(ctx, id)
	if err != nil {
		return lookupError(err, "Product not found", "Failed to delete product")
	}

	s.invalidator.Invalidate(ctx, cache.ProductDeleted, id)

	return nil
}

// page means "page number requested"
// size means "number of products to be displayed per page"
func (s *productService) ListProducts(ctx context.Context, q models.ProductQuery) (*models.ProductPage, error) {

	if q.Page < 1 {
		return nil, appErrors.AddValidationError("page", "must be at least 1")
	}
	if q.Size < 1 || q.Size > models.MaxPageSize {
		return nil, appErrors.AddValidationError("size", "must be between 1 and 100")
	}

	page, err := cache.ReadThrough(ctx, s.loader, cache.ProductListKey(q), s.cfg.DefaultTTL, func(ctx context.Context) (*models.ProductPage, error) {
		products, total, err := s.repo.ListProducts(ctx, q)
		if err != nil {
			return nil, err
		}

		return models.NewProductPage(products, total, q), nil
	})
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch products").WithError(err)
	}

	return page, nil
}

// AdjustStock adds quantity (negative to remove) to the product's stock.
func (s *productService) AdjustStock(ctx context.Context, id int64, quantity int64) (*models.StockAdjustment, error) {

	adjustment, err := s.repo.AdjustStock(ctx, id, quantity)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientStock):
			return nil, appErrors.ValidationError("Insufficient stock").WithError(err)
		case errors.Is(err, repository.ErrStockOutOfRange):
			return nil, appErrors.AddValidationError("quantity", "would push stock past its maximum").WithError(err)
		}
		return nil, lookupError(err, "Product not found", "Failed to adjust stock")
	}

	s.invalidator.Invalidate(ctx, cache.StockAdjusted, id)

	return adjustment, nil
}

func validateProduct(product *models.Product) error {
	if product.Name == "" {
		return appErrors.AddValidationError("name", "cannot be empty")
	}
	if product.Price <= 0 {
		return appErrors.AddValidationError("price", "must be greater than 0")
	}
	if product.StockQuantity < 0 {
		return appErrors.AddValidationError("stock_quantity", "cannot be negative")
	}

	return nil
}
