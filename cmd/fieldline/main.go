package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/fieldline-hq/fieldline/internal/app"
	"github.com/fieldline-hq/fieldline/internal/billing/invoices"
	"github.com/fieldline-hq/fieldline/internal/documents"
	"github.com/fieldline-hq/fieldline/internal/masterdata"
	"github.com/fieldline-hq/fieldline/internal/observability"
	"github.com/fieldline-hq/fieldline/internal/platform/cache"
	"github.com/fieldline-hq/fieldline/internal/platform/db"
	"github.com/fieldline-hq/fieldline/internal/sales/quotes"
	"github.com/fieldline-hq/fieldline/jobs"
	"github.com/fieldline-hq/fieldline/web"
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
		logger.Warn("redis unavailable", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	templateFS, err := templateSource(cfg)
	if err != nil {
		logger.Error("resolve template dir", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	session := documents.NewBrowserSession(cfg.ChromePath)
	docService := documents.NewService(
		logger,
		documents.NewStore(templateFS),
		documents.NewRenderer(),
		documents.NewPDFRenderer(session),
		session,
	).WithMetrics(metrics)
	defer docService.Cleanup()

	taskClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init task client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Warn("task client close", slog.Any("error", err))
		}
	}()

	var masterRepo masterdata.Repository = masterdata.NewRepository(pool)
	if redisClient != nil {
		masterRepo = masterdata.NewCachedRepository(masterRepo, redisClient, 5*time.Minute)
	}
	masterService := masterdata.NewService(masterRepo, cfg.DefaultCurrencySymbol)
	masterHandler := masterdata.NewHandler(logger, masterService)

	quoteRepo := quotes.NewRepository(pool)
	quoteService := quotes.NewService(logger, quoteRepo, masterService, docService, taskClient)
	quoteHandler := quotes.NewHandler(logger, quoteService)

	invoiceRepo := invoices.NewRepository(pool)
	invoiceService := invoices.NewService(logger, invoiceRepo, masterService, docService, taskClient)
	invoiceHandler := invoices.NewHandler(logger, invoiceService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		QuotesHandler:     quoteHandler,
		InvoicesHandler:   invoiceHandler,
		MasterdataHandler: masterHandler,
		JobsHandler:       jobHandler,
		Metrics:           metrics,
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

// templateSource picks the on-disk template directory when configured,
// falling back to the embedded templates.
func templateSource(cfg *app.Config) (fs.FS, error) {
	if cfg.TemplateDir != "" {
		return os.DirFS(cfg.TemplateDir), nil
	}
	return fs.Sub(web.Templates, "templates/documents")
}
