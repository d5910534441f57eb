package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/bryanwahyu/maturity-report/internal/application/reports"
	"github.com/bryanwahyu/maturity-report/internal/config"
	"github.com/bryanwahyu/maturity-report/internal/domain/report"
	aiclient "github.com/bryanwahyu/maturity-report/internal/infra/ai/openai"
	"github.com/bryanwahyu/maturity-report/internal/infra/httpserver"
	pdfextract "github.com/bryanwahyu/maturity-report/internal/infra/pdf"
	"github.com/bryanwahyu/maturity-report/internal/infra/render"
	minioStore "github.com/bryanwahyu/maturity-report/internal/infra/storage"
	"github.com/bryanwahyu/maturity-report/internal/middleware"
)

func main() {
	// .env is optional; real deployments inject environment directly
	_ = godotenv.Load()

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	ctx := context.Background()

	// schema validator
	validator, err := report.NewValidator(cfg.Report.MaxPlanHours)
	if err != nil {
		logger.Fatal().Err(err).Msg("validator init error")
	}

	// renderers
	htmlRenderer, err := render.NewHTMLRenderer()
	if err != nil {
		logger.Fatal().Err(err).Msg("html renderer init error")
	}
	wordRenderer := render.NewWordRenderer()

	// object storage
	store, err := minioStore.New(ctx,
		cfg.Storage.Endpoint,
		cfg.Storage.Region,
		cfg.Storage.Bucket,
		cfg.Storage.AccessKey,
		cfg.Storage.SecretKey,
		cfg.Storage.UseSSL,
		time.Duration(cfg.Storage.PresignExpiryMinutes)*time.Minute,
		logger,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("storage init error")
	}

	// analyzer
	analyzer := aiclient.NewClient(aiclient.Options{
		Endpoint:        cfg.OpenAI.Endpoint,
		APIKey:          cfg.OpenAI.APIKey,
		Deployment:      cfg.OpenAI.Deployment,
		Temperature:     cfg.OpenAI.Temperature,
		MaxOutputTokens: cfg.OpenAI.MaxOutputTokens,
	})

	// orchestrator
	svc := &reports.Service{
		Extractor:     pdfextract.NewExtractor(),
		Analyzer:      analyzer,
		Validator:     validator,
		HTML:          htmlRenderer,
		Word:          wordRenderer,
		Artifacts:     store,
		Clock:         report.SystemClock{},
		Logger:        logger,
		MaxFileSizeMB: cfg.Upload.MaxFileSizeMB,
		MaxInputChars: cfg.MaxInputChars(),
		Timeouts: reports.Timeouts{
			Extract: time.Duration(cfg.Timeouts.ExtractSeconds) * time.Second,
			Analyze: time.Duration(cfg.Timeouts.AnalyzeSeconds) * time.Second,
			Render:  time.Duration(cfg.Timeouts.RenderSeconds) * time.Second,
			Upload:  time.Duration(cfg.Timeouts.UploadSeconds) * time.Second,
		},
	}

	// router with middleware chain
	mux := chi.NewRouter()
	mux.Use(middleware.RequestLogger(logger))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   middleware.ParseAllowedOrigins(cfg.Server.AllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	mux.Use(middleware.APIKeyAuth(cfg.Server.APIKey))
	mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	mux.Mount("/", httpserver.NewRouter(svc, httpserver.Options{
		MaxFileSizeMB: cfg.Upload.MaxFileSizeMB,
		Version:       cfg.Server.Version,
	}, logger))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second, // analysis stage dominates response time
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Str("version", cfg.Server.Version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info().Msg("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
}
