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

type CategoryService interface {
	CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*models.Category, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	UpdateCategory(ctx context.Context, id int64, req *models.UpdateCategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type categoryService struct {
	repo        repository.CategoryRepository
	loader      *cache.Loader
	invalidator *cache.Invalidator
	cfg         *config.CacheConfig
}

func NewCategoryService(repo repository.CategoryRepository, store cache.Cache, cfg *config.CacheConfig) CategoryService {
	return &categoryService{
		repo:        repo,
		loader:      cache.NewLoader(store),
		invalidator: cache.NewInvalidator(store),
		cfg:         cfg,
	}
}

func (s *categoryService) CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error) {

	category := &models.Category{
		Name:        utils.SanitizeText(req.Name),
		Description: utils.SanitizeOptional(req.Description),
		ParentID:    req.ParentID,
	}

	if category.Name == "" {
		return nil, appErrors.AddValidationError("name", "cannot be empty")
	}

	if err := s.requireUniqueName(ctx, category.Name, 0); err != nil {
		return nil, err
	}

	if category.ParentID != nil {
		if _, err := requireCategory(ctx, s.repo, *category.ParentID, "Parent category not found"); err != nil {
			return nil, err
		}
	}

	err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		return nil, writeError(err, "Failed to create category")
	}

	s.invalidator.Invalidate(ctx, cache.CategoryCreated, category.ID)

	return category, nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {

	category, err := cache.ReadThrough(ctx, s.loader, cache.CategoryKey(id), s.cfg.CategoryTTL, func(ctx context.Context) (*models.Category, error) {
		return s.repo.GetCategoryByID(ctx, id)
	})
	if err != nil {
		return nil, lookupError(err, "Category not found", "Failed to fetch category")
	}

	return category, nil
}

func (s *categoryService) ListCategories(ctx context.Context) ([]*models.Category, error) {

	categories, err := cache.ReadThrough(ctx, s.loader, cache.CategoryListKey, s.cfg.CategoryTTL, s.repo.ListCategories)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch categories").WithError(err)
	}

	return categories, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id int64, req *models.UpdateCategoryRequest) (*models.Category, error) {

	category, err := s.repo.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Category not found", "Failed to fetch category")
	}

	if req.Name != nil {
		name := utils.SanitizeText(*req.Name)
		if name == "" {
			return nil, appErrors.AddValidationError("name", "cannot be empty")
		}

		if name != category.Name {
			if err := s.requireUniqueName(ctx, name, id); err != nil {
				return nil, err
			}
		}
		category.Name = name
	}

	if req.Description != nil {
		category.Description = utils.SanitizeOptional(req.Description)
	}

	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, appErrors.ValidationError("Category cannot be its own parent")
		}
		if _, err := requireCategory(ctx, s.repo, *req.ParentID, "Parent category not found"); err != nil {
			return nil, err
		}
		category.ParentID = req.ParentID
	}

	err = s.repo.UpdateCategory(ctx, category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Category not found").WithError(err)
		}
		return nil, writeError(err, "Failed to update category")
	}

	s.invalidator.Invalidate(ctx, cache.CategoryUpdated, id)

	return category, nil
}

// DeleteCategory refuses to remove a category that products or child
// categories still reference.
func (s *categoryService) DeleteCategory(ctx context.Context, id int64) error {

	dependents, err := s.repo.CountDependents(ctx, id)
	if err != nil {
		return appErrors.DatabaseError("Failed to check category usage").WithError(err)
	}

	if dependents > 0 {
		return appErrors.ValidationError("Category is still in use")
	}

	err = s.repo.DeleteCategory(ctx, id)
	if err != nil {
		if repository.IsForeignKeyViolation(err) {
			return appErrors.ValidationError("Category is still in use").WithError(err)
		}
		return lookupError(err, "Category not found", "Failed to delete category")
	}

	s.invalidator.Invalidate(ctx, cache.CategoryDeleted, id)

	return nil
}

// requireUniqueName fails when another category (not selfID) has name.
func (s *categoryService) requireUniqueName(ctx context.Context, name string, selfID int64) error {

	existing, err := s.repo.GetCategoryByName(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.DatabaseError("Failed to fetch category").WithError(err)
	}

	if existing.ID != selfID {
		return appErrors.ValidationError("Category already exists")
	}

	return nil
}

func writeError(err error, failed string) error {
	switch {
	case repository.IsUniqueViolation(err):
		return appErrors.ValidationError("Category already exists").WithError(err)
	case repository.IsForeignKeyViolation(err):
		return appErrors.ValidationError("Parent category not found").WithError(err)
	}

	return appErrors.DatabaseError(failed).WithError(err)
}
