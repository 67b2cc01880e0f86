package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/inkwell-erp/inkwell/internal/app"
	"github.com/inkwell-erp/inkwell/internal/ar"
	"github.com/inkwell-erp/inkwell/internal/inventory"
	"github.com/inkwell-erp/inkwell/internal/masterdata/books"
	"github.com/inkwell-erp/inkwell/internal/masterdata/customers"
	"github.com/inkwell-erp/inkwell/internal/masterdata/departments"
	"github.com/inkwell-erp/inkwell/internal/masterdata/publishers"
	"github.com/inkwell-erp/inkwell/internal/masterdata/suppliers"
	"github.com/inkwell-erp/inkwell/internal/observability"
	"github.com/inkwell-erp/inkwell/internal/platform/cache"
	"github.com/inkwell-erp/inkwell/internal/platform/db"
	"github.com/inkwell-erp/inkwell/internal/procurement"
	"github.com/inkwell-erp/inkwell/internal/rbac"
	"github.com/inkwell-erp/inkwell/internal/reports"
	"github.com/inkwell-erp/inkwell/internal/shared"
	"github.com/inkwell-erp/inkwell/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	rbacService := rbac.NewService(rbac.NewRepository(pool))
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}
	rbacHandler := rbac.NewHandler(logger, rbacService, rbacMiddleware)

	booksHandler := books.NewHandler(logger, books.NewService(books.NewRepository(pool)), rbacMiddleware)
	customersHandler := customers.NewHandler(logger, customers.NewService(customers.NewRepository(pool)), rbacMiddleware)
	suppliersHandler := suppliers.NewHandler(logger, suppliers.NewService(suppliers.NewRepository(pool)), rbacMiddleware)
	publishersHandler := publishers.NewHandler(logger, publishers.NewService(publishers.NewRepository(pool)), rbacMiddleware)
	departmentsHandler := departments.NewHandler(logger, departments.NewService(departments.NewRepository(pool)), rbacMiddleware)

	inventoryService := inventory.NewService(inventory.NewRepository(pool), auditLogger, idempotencyStore, inventory.ServiceConfig{})
	inventoryHandler := inventory.NewHandler(logger, inventoryService, rbacMiddleware)

	procurementService := procurement.NewService(procurement.NewRepository(pool), inventoryService, auditLogger, idempotencyStore)
	procurementHandler := procurement.NewHandler(logger, procurementService, rbacMiddleware)

	arService := ar.NewService(ar.NewRepository(pool), auditLogger)
	arHandler := ar.NewHandler(logger, arService, rbacMiddleware)

	reportsCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportsService := reports.NewService(reports.NewRepository(pool), reportsCache)
	reportsHandler := reports.NewHandler(logger, reportsService, rbacMiddleware)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		RBACHandler:        rbacHandler,
		BooksHandler:       booksHandler,
		CustomersHandler:   customersHandler,
		SuppliersHandler:   suppliersHandler,
		PublishersHandler:  publishersHandler,
		DepartmentsHandler: departmentsHandler,
		InventoryHandler:   inventoryHandler,
		ProcurementHandler: procurementHandler,
		ARHandler:          arHandler,
		ReportsHandler:     reportsHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
