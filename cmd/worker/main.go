package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/fieldline-hq/fieldline/internal/app"
	"github.com/fieldline-hq/fieldline/internal/billing/invoices"
	"github.com/fieldline-hq/fieldline/internal/documents"
	jobmetrics "github.com/fieldline-hq/fieldline/internal/jobs"
	"github.com/fieldline-hq/fieldline/internal/masterdata"
	"github.com/fieldline-hq/fieldline/internal/platform/db"
	"github.com/fieldline-hq/fieldline/internal/platform/mail"
	"github.com/fieldline-hq/fieldline/internal/sales/quotes"
	"github.com/fieldline-hq/fieldline/jobs"
	"github.com/fieldline-hq/fieldline/web"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	templateFS, err := templateSource(cfg)
	if err != nil {
		logger.Error("resolve template dir", slog.Any("error", err))
		os.Exit(1)
	}

	session := documents.NewBrowserSession(cfg.ChromePath)
	docService := documents.NewService(
		logger,
		documents.NewStore(templateFS),
		documents.NewRenderer(),
		documents.NewPDFRenderer(session),
		session,
	)
	defer docService.Cleanup()

	masterService := masterdata.NewService(masterdata.NewRepository(pool), cfg.DefaultCurrencySymbol)
	quoteService := quotes.NewService(logger, quotes.NewRepository(pool), masterService, docService, nil)
	invoiceService := invoices.NewService(logger, invoices.NewRepository(pool), masterService, docService, nil)

	sender := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	emailJob := jobs.NewEmailDocumentJob(quoteService, invoiceService, sender, logger, jobmetrics.NewMetrics(nil))

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeEmailDocument, Handler: emailJob.Handle},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started")
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

func templateSource(cfg *app.Config) (fs.FS, error) {
	if cfg.TemplateDir != "" {
		return os.DirFS(cfg.TemplateDir), nil
	}
	return fs.Sub(web.Templates, "templates/documents")
}
