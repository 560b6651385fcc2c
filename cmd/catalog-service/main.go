package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudmart/catalog-service/docs"
	"github.com/cloudmart/catalog-service/internal/api/handlers"
	"github.com/cloudmart/catalog-service/internal/api/middleware"
	"github.com/cloudmart/catalog-service/internal/cache"
	"github.com/cloudmart/catalog-service/internal/config"
	"github.com/cloudmart/catalog-service/internal/health"
	"github.com/cloudmart/catalog-service/internal/metrics"
	repository "github.com/cloudmart/catalog-service/internal/repositories"
	service "github.com/cloudmart/catalog-service/internal/services"
	"github.com/cloudmart/catalog-service/internal/tracing"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

//	@title						Catalog Service API
//	@version					1.0
//	@description				Product catalog with a Redis read-through cache.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	shutdownTracing, err := tracing.Init(startupCtx, cfg.Env, cfg.Otel)
	if err != nil {
		slog.Error("❌ Error initializing tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Database setup
	db, err := repository.New(startupCtx, cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	if err := repository.EnsureSchema(startupCtx, db); err != nil {
		slog.Error("❌ Error preparing the database schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Cache setup, never fatal
	store := cache.Connect(startupCtx, cfg)
	defer store.Close()

	productRepo := repository.NewProductRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)

	productService := service.NewProductService(productRepo, categoryRepo, store, &cfg.Cache)
	productHandler := handlers.NewProductHandler(productService)
	categoryService := service.NewCategoryService(categoryRepo, store, &cfg.Cache)
	categoryHandler := handlers.NewCategoryHandler(categoryService)

	authMiddleware := middleware.NewAuthMiddleware([]byte(cfg.Security.JWTKey))
	if !authMiddleware.Enabled() {
		slog.Warn("JWT_KEY is not set, catalog mutations are unauthenticated")
	}

	healthHandler, err := health.NewHealthHandler(cfg, store)
	if err != nil {
		slog.Error("❌ Error creating health handler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("version", health.ComponentVersion), slog.Bool("cache", store.Enabled()))

	// Setup router
	routerMux := http.NewServeMux()

	public := func(pattern string, h http.Handler) {
		routerMux.Handle(pattern, metrics.Instrument(pattern, h))
	}
	protected := func(pattern string, h http.Handler) {
		routerMux.Handle(pattern, metrics.Instrument(pattern, authMiddleware.Authenticate(h)))
	}

	public("GET /api/v1/products", productHandler.ListProducts())
	public("GET /api/v1/products/{id}", productHandler.GetProduct())
	protected("POST /api/v1/products", productHandler.CreateProduct())
	protected("PUT /api/v1/products/{id}", productHandler.UpdateProduct())
	protected("DELETE /api/v1/products/{id}", productHandler.DeleteProduct())
	protected("PATCH /api/v1/products/{id}/stock", productHandler.AdjustStock())

	public("GET /api/v1/categories", categoryHandler.ListCategories())
	public("GET /api/v1/categories/{id}", categoryHandler.GetCategory())
	protected("POST /api/v1/categories", categoryHandler.CreateCategory())
	protected("PUT /api/v1/categories/{id}", categoryHandler.UpdateCategory())
	protected("DELETE /api/v1/categories/{id}", categoryHandler.DeleteCategory())

	routerMux.Handle("GET /health", healthHandler.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())

	docs.SwaggerInfo.Host = cfg.Addr
	routerMux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, "catalog-service")

	// Setup http server
	server := http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
			done <- syscall.SIGTERM
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("⚠️ Tracer shutdown encountered an issue", slog.String("error", err.Error()))
	}
}
