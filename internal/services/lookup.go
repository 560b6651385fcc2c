package service

import (
	"context"
	"database/sql"
	"errors"

	appErrors "github.com/cloudmart/catalog-service/internal/errors"
	"github.com/cloudmart/catalog-service/internal/models"
	repository "github.com/cloudmart/catalog-service/internal/repositories"
)

// lookupError maps sql.ErrNoRows to NotFound and anything else to a
// database error carrying the cause.
func lookupError(err error, notFound, failed string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.NotFoundError(notFound).WithError(err)
	}

	return appErrors.DatabaseError(failed).WithError(err)
}

// requireCategory loads a referenced category. A missing one is a validation
// failure of the request, not a 404.
func requireCategory(ctx context.Context, categories repository.CategoryRepository, id int64, message string) (*models.Category, error) {

	category, err := categories.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ValidationError(message).WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to fetch category").WithError(err)
	}

	return category, nil
}
