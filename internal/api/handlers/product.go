package handlers

import (
	"log/slog"
	"net/http"

	"github.com/cloudmart/catalog-service/internal/api/middleware"
	"github.com/cloudmart/catalog-service/internal/errors"
	"github.com/cloudmart/catalog-service/internal/models"
	service "github.com/cloudmart/catalog-service/internal/services"
	"github.com/cloudmart/catalog-service/internal/utils"
	"github.com/cloudmart/catalog-service/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type ProductHandler struct {
	productService service.ProductService
	validator      *validator.Validate
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService, validator: validator.New()}
}

// CreateProduct godoc
//	@Summary		Create a new product
//	@Description	Adds a product to the catalog. The referenced category must exist.
//	@Tags			Products
//	@Accept			json
//	@Produce		json
//	@Param			product	body		models.CreateProductRequest	true	"Product details"
//	@Success		201		{object}	models.Product				"Successfully created product"
//	@Failure		400		{object}	response.ErrorResponse		"Validation error or unknown category"
//	@Failure		401		{object}	response.ErrorResponse		"Authentication required"
//	@Failure		500		{object}	response.ErrorResponse		"Internal server error"
//	@Security		BearerAuth
//	@Router			/products [post]
func (h *ProductHandler) CreateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.CreateProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid create product input")
			return
		}

		product, err := h.productService.CreateProduct(r.Context(), &req)
		if err != nil {
			logger.Error("Failed to create product", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Product created successfully", slog.Int64("productId", product.ID))
		response.Success(w, http.StatusCreated, product)
	}
}

// GetProduct godoc
//	@Summary		Get a product by ID
//	@Description	Retrieves a product with its category. Served from cache when possible.
//	@Tags			Products
//	@Produce		json
//	@Param			id	path		int						true	"Product ID"
//	@Success		200	{object}	models.Product			"Successfully retrieved product"
//	@Failure		400	{object}	response.ErrorResponse	"Invalid product ID format"
//	@Failure		404	{object}	response.ErrorResponse	"Product not found"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Router			/products/{id} [get]
func (h *ProductHandler) GetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid product id", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		product, err := h.productService.GetProductByID(r.Context(), id)
		if err != nil {
			logger.Error("Failed to get product", slog.Int64("productId", id), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

// UpdateProduct godoc
//	@Summary		Update a product
//	@Description	Updates the supplied fields of a product.
//	@Tags			Products
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Product ID"
//	@Param			product	body		models.UpdateProductRequest	true	"Fields to update"
//	@Success		200		{object}	models.Product				"Successfully updated product"
//	@Failure		400		{object}	response.ErrorResponse		"Validation error or unknown category"
//	@Failure		401		{object}	response.ErrorResponse		"Authentication required"
//	@Failure		404		{object}	response.ErrorResponse		"Product not found"
//	@Failure		500		{object}	response.ErrorResponse		"Internal server error"
//	@Security		BearerAuth
//	@Router			/products/{id} [put]
func (h *ProductHandler) UpdateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid product id", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger = logger.With(slog.Int64("productId", id))

		var req models.UpdateProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid update product input")
			return
		}

		product, err := h.productService.UpdateProduct(r.Context(), id, &req)
		if err != nil {
			logger.Error("Failed to update product", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Product updated successfully")
		response.Success(w, http.StatusOK, product)
	}
}

// DeleteProduct godoc
//	@Summary		Delete a product
//	@Tags			Products
//	@Param			id	path	int	true	"Product ID"
//	@Success		204	"Product deleted"
//	@Failure		400	{object}	response.ErrorResponse	"Invalid product ID format"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404	{object}	response.ErrorResponse	"Product not found"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/products/{id} [delete]
func (h *ProductHandler) DeleteProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid product id", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		if err := h.productService.DeleteProduct(r.Context(), id); err != nil {
			logger.Error("Failed to delete product", slog.Int64("productId", id), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Product deleted successfully", slog.Int64("productId", id))
		response.NoContent(w)
	}
}

// ListProducts godoc
//	@Summary		List active products with pagination
//	@Description	Lists active products in id order, optionally filtered by category and a search term matched against name and description.
//	@Tags			Products
//	@Produce		json
//	@Param			page		query		int					false	"Page number (default: 1)"							minimum(1)
//	@Param			size		query		int					false	"Number of items per page (default: 10, max: 100)"	minimum(1)	maximum(100)
//	@Param			category_id	query		int					false	"Only products of this category"
//	@Param			search		query		string				false	"Case-insensitive match on name or description"
//	@Success		200			{object}	models.ProductPage	"Successfully retrieved products"
//	@Failure		400			{object}	response.ErrorResponse	"Invalid paging or filter parameters"
//	@Failure		500			{object}	response.ErrorResponse	"Internal server error"
//	@Router			/products [get]
func (h *ProductHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		query, err := parseProductQuery(r)
		if err != nil {
			logger.Warn("Invalid list products parameters", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		if err := h.validator.Struct(query); err != nil {
			logger.Warn("Invalid list products parameters", slog.String("error", err.Error()))
			response.Error(w, errors.ValidationError("Invalid paging or filter parameters").WithDetail(err.Error()))
			return
		}

		page, err := h.productService.ListProducts(r.Context(), query)
		if err != nil {
			logger.Error("Failed to list products", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, page)
	}
}

// AdjustStock godoc
//	@Summary		Adjust product stock
//	@Description	Adds quantity to the stock level; use a negative quantity to remove stock. Stock never drops below zero.
//	@Tags			Products
//	@Produce		json
//	@Param			id			path		int						true	"Product ID"
//	@Param			quantity	query		int						true	"Signed stock change"
//	@Success		200			{object}	models.StockAdjustment	"Stock adjusted"
//	@Failure		400			{object}	response.ErrorResponse	"Missing quantity or insufficient stock"
//	@Failure		401			{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404			{object}	response.ErrorResponse	"Product not found"
//	@Failure		500			{object}	response.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/products/{id}/stock [patch]
func (h *ProductHandler) AdjustStock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid product id", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger = logger.With(slog.Int64("productId", id))

		quantity, err := utils.QueryInt64Ptr(r, "quantity")
		if err != nil {
			response.Error(w, err)
			return
		}
		if quantity == nil {
			response.Error(w, errors.AddValidationError("quantity", "is required"))
			return
		}

		adjustment, err := h.productService.AdjustStock(r.Context(), id, *quantity)
		if err != nil {
			logger.Warn("Failed to adjust stock", slog.Int64("quantity", *quantity), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Stock adjusted",
			slog.Int64("previousStock", adjustment.PreviousStock),
			slog.Int64("newStock", adjustment.NewStock))
		response.Success(w, http.StatusOK, adjustment)
	}
}

func parseProductQuery(r *http.Request) (models.ProductQuery, error) {

	page, err := utils.QueryInt(r, "page", models.DefaultPage)
	if err != nil {
		return models.ProductQuery{}, err
	}

	size, err := utils.QueryInt(r, "size", models.DefaultPageSize)
	if err != nil {
		return models.ProductQuery{}, err
	}

	categoryID, err := utils.QueryInt64Ptr(r, "category_id")
	if err != nil {
		return models.ProductQuery{}, err
	}

	return models.ProductQuery{
		Page:       page,
		Size:       size,
		CategoryID: categoryID,
		Search:     r.URL.Query().Get("search"),
	}, nil
}
