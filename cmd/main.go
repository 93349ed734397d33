package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Vovarama1992/pdf_vision/internal/ai"
	"github.com/Vovarama1992/pdf_vision/internal/config"
	"github.com/Vovarama1992/pdf_vision/internal/delivery"
	"github.com/Vovarama1992/pdf_vision/internal/domain"
	"github.com/Vovarama1992/pdf_vision/internal/error_notificator"
	"github.com/Vovarama1992/pdf_vision/internal/infra"
	"github.com/Vovarama1992/pdf_vision/internal/pdf"
	"github.com/Vovarama1992/pdf_vision/internal/ports"
	"github.com/Vovarama1992/pdf_vision/internal/telegram"
)

const serviceName = "pdf_vision"

func main() {

	// =========================================================================
	// ENV / LOGGER
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	errInfra := error_notificator.NewTelegramInfra(nil, cfg.AdminChatID)
	errService := error_notificator.NewService(errInfra, baseLogger)

	// =========================================================================
	// INFRASTRUCTURE (optional DB / S3)
	// =========================================================================

	var recordService ports.RecordService
	if cfg.DatabaseURL != "" {
		dbCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		db, err := infra.OpenDB(dbCtx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer db.Close()

		recordRepo := infra.NewRecordRepo(db)
		if err := recordRepo.EnsureSchema(ctx); err != nil {
			log.Fatalf("db schema: %v", err)
		}
		recordService = domain.NewRecordService(recordRepo, errService)
		baseLogger.Info("request log enabled", zap.Stringer("dialect", db.Dialect))
	}

	var archiveService ports.ArchiveService
	if cfg.S3.Enabled() {
		s3Client, err := infra.NewS3Client(ctx, infra.S3Options{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Secure:    cfg.S3.Secure,
		})
		if err != nil {
			log.Fatalf("failed to init s3: %v", err)
		}
		archiveService = domain.NewArchiveService(s3Client)
		baseLogger.Info("image archive enabled", zap.String("bucket", cfg.S3.Bucket))
	}

	// =========================================================================
	// CLIENTS (vision model)
	// =========================================================================

	var model ai.VisionModel
	switch cfg.Backend {
	case config.BackendLlama:
		model = ai.NewLlamaClient(ai.LlamaConfig{
			Server:      cfg.LlamaServer,
			Seed:        cfg.LlamaSeed,
			MaxTokens:   cfg.MaxNewTokens,
			Temperature: cfg.Temperature,
		})
	default:
		model = ai.NewOpenAIClient(ai.OpenAIConfig{
			APIKey:      cfg.OpenAIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.ModelName,
			MaxTokens:   cfg.MaxNewTokens,
			Temperature: cfg.Temperature,
		})
	}

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	pdfService := pdf.NewPDFService(pdf.NewPdfcpuExtractor(baseLogger.Named("pdf")), cfg.MaxUploadBytes)

	aiService := ai.NewAiService(model, ai.Options{
		DefaultPrompt:     cfg.DefaultPrompt,
		Timeout:           cfg.ModelTimeout,
		RequestsPerMinute: cfg.ModelRPM,
		MaxImageSide:      cfg.MaxImageSide,
	}, errService, baseLogger.Named("ai"))

	describeService := domain.NewDescribeService(
		pdfService,
		aiService,
		archiveService,
		recordService,
		baseLogger.Named("describe"),
	)

	// =========================================================================
	// TELEGRAM BOT
	// =========================================================================

	var botApp *telegram.BotApp
	if cfg.TelegramToken != "" {
		botApp, err = telegram.NewBotApp(cfg.TelegramToken, describeService, errService, cfg.MaxUploadBytes, baseLogger)
		if err != nil {
			log.Fatalf("failed to init telegram bot: %v", err)
		}
		errInfra.SetBot(botApp.Bot())
	}

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	// HANDLERS
	pdfHandler := delivery.NewPDFHandler(describeService, cfg.MaxUploadBytes, zl)
	healthHandler := delivery.NewHealthHandler(aiService)
	var recordHandler *delivery.RecordHandler
	if recordService != nil {
		recordHandler = delivery.NewRecordHandler(recordService, zl)
	}

	// ROUTES
	delivery.RegisterRoutes(r, pdfHandler, healthHandler, recordHandler, delivery.RouteOptions{
		APIToken:          cfg.APIToken,
		RequestsPerMinute: cfg.RateLimitPerMinute,
	})

	// =========================================================================
	// START SERVER
	// =========================================================================

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zl.Log(logger.LogEntry{
			Level:   "info",
			Message: "listening at " + srv.Addr + " with " + aiService.ModelName() + " backend",
			Service: serviceName,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if botApp != nil {
		g.Go(func() error {
			botApp.Run(gctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zl.Log(logger.LogEntry{
			Level:   "error",
			Message: "server stopped",
			Error:   err,
			Service: serviceName,
		})
		os.Exit(1)
	}
}
