package handlers

import (
	"log/slog"
	"net/http"

	"github.com/cloudmart/catalog-service/internal/api/middleware"
	"github.com/cloudmart/catalog-service/internal/models"
	service "github.com/cloudmart/catalog-service/internal/services"
	"github.com/cloudmart/catalog-service/internal/utils"
	"github.com/cloudmart/catalog-service/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type CategoryHandler struct {
	categoryService service.CategoryService
	validator       *validator.Validate
}

func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, validator: validator.New()}
}

// CreateCategory godoc
//	@Summary		Create a new category
//	@Tags			Categories
//	@Accept			json
//	@Produce		json
//	@Param			category	body		models.CreateCategoryRequest	true	"Category details"
//	@Success		201			{object}	models.Category					"Successfully created category"
//	@Failure		400			{object}	response.ErrorResponse			"Validation error, duplicate name or unknown parent"
//	@Failure		401			{object}	response.ErrorResponse			"Authentication required"
//	@Failure		500			{object}	response.ErrorResponse			"Internal server error"
//	@Security		BearerAuth
//	@Router			/categories [post]
func (h *CategoryHandler) CreateCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.CreateCategoryRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid create category input")
			return
		}

		category, err := h.categoryService.CreateCategory(r.Context(), &req)
		if err != nil {
			logger.Error("Failed to create category", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Category created successfully", slog.Int64("categoryId", category.ID))
		response.Success(w, http.StatusCreated, category)
	}
}

// ListCategories godoc
//	@Summary		List all categories
//	@Tags			Categories
//	@Produce		json
//	@Success		200	{array}		models.Category			"Successfully retrieved categories"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Router			/categories [get]
func (h *CategoryHandler) ListCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		categories, err := h.categoryService.ListCategories(r.Context())
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to list categories", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, categories)
	}
}

// GetCategory godoc
//	@Summary		Get a category by ID
//	@Tags			Categories
//	@Produce		json
//	@Param			id	path		int						true	"Category ID"
//	@Success		200	{object}	models.Category			"Successfully retrieved category"
//	@Failure		400	{object}	response.ErrorResponse	"Invalid category ID format"
//	@Failure		404	{object}	response.ErrorResponse	"Category not found"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Router			/categories/{id} [get]
func (h *CategoryHandler) GetCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid category id", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		category, err := h.categoryService.GetCategoryByID(r.Context(), id)
		if err != nil {
			logger.Error("Failed to get category", slog.Int64("categoryId", id), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, category)
	}
}

// UpdateCategory godoc
//	@Summary		Update a category
//	@Tags			Categories
//	@Accept			json
//	@Produce		json
//	@Param			id			path		int								true	"Category ID"
//	@Param			category	body		models.UpdateCategoryRequest	true	"Fields to update"
//	@Success		200			{object}	models.Category					"Successfully updated category"
//	@Failure		400			{object}	response.ErrorResponse			"Validation error, duplicate name or unknown parent"
//	@Failure		401			{object}	response.ErrorResponse			"Authentication required"
//	@Failure		404			{object}	response.ErrorResponse			"Category not found"
//	@Failure		500			{object}	response.ErrorResponse			"Internal server error"
//	@Security		BearerAuth
//	@Router			/categories/{id} [put]
func (h *CategoryHandler) UpdateCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid category id", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		var req models.UpdateCategoryRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid update category input", slog.Int64("categoryId", id))
			return
		}

		category, err := h.categoryService.UpdateCategory(r.Context(), id, &req)
		if err != nil {
			logger.Error("Failed to update category", slog.Int64("categoryId", id), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Category updated successfully", slog.Int64("categoryId", id))
		response.Success(w, http.StatusOK, category)
	}
}

// DeleteCategory godoc
//	@Summary		Delete a category
//	@Description	Refused while products or child categories still reference it.
//	@Tags			Categories
//	@Param			id	path	int	true	"Category ID"
//	@Success		204	"Category deleted"
//	@Failure		400	{object}	response.ErrorResponse	"Invalid ID or category still in use"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404	{object}	response.ErrorResponse	"Category not found"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid category id", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		if err := h.categoryService.DeleteCategory(r.Context(), id); err != nil {
			logger.Error("Failed to delete category", slog.Int64("categoryId", id), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Category deleted successfully", slog.Int64("categoryId", id))
		response.NoContent(w)
	}
}
