package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"inkflow/internal/app"
	"inkflow/internal/auth"
	"inkflow/internal/config"
	"inkflow/internal/convert"
	"inkflow/internal/ghost"
	"inkflow/internal/handler"
	"inkflow/internal/middleware"
	"inkflow/internal/repository/localstore"
	"inkflow/internal/repository/postgres"
	"inkflow/internal/suggest"
	anthropicprovider "inkflow/internal/suggest/providers/anthropic"
	loremprovider "inkflow/internal/suggest/providers/lorem"
)

// maxLogFiles bounds how many timestamped log files are kept around.
const maxLogFiles = 10

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}
	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, maxLogFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"provider", cfg.Provider,
	)

	// Suggestion backend
	var provider suggest.Provider
	switch cfg.Provider {
	case "anthropic":
		provider = anthropicprovider.New(cfg.AnthropicAPIKey, cfg.Model, logger)
	default:
		provider = loremprovider.New()
		logger.Warn("using keyless lorem provider, suggestions are placeholder text")
	}
	suggestService := suggest.NewService(provider, logger)

	// Guest-mode blob storage
	local, err := localstore.New(cfg.LocalStoreDir, logger)
	if err != nil {
		log.Fatalf("Failed to create local store: %v", err)
	}

	// Remote backend is optional; without it the server runs guest-only.
	var remote *app.RemoteBackend
	if cfg.DatabaseURL != "" {
		ctx := context.Background()
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		}
		remote = &app.RemoteBackend{
			Documents: postgres.NewDocumentRepository(repoConfig),
			Folders:   postgres.NewFolderRepository(repoConfig),
			Versions:  postgres.NewVersionRepository(repoConfig),
			Settings:  postgres.NewSettingsRepository(repoConfig),
			Tx:        postgres.NewTransactionManager(pool, logger),
		}
		logger.Info("database connected", "table_prefix", cfg.TablePrefix)
	} else {
		logger.Warn("no DATABASE_URL configured, running guest-only")
	}

	// Token verification
	var verifier auth.TokenVerifier = auth.DisabledVerifier{}
	if cfg.JWKSURL != "" {
		jwksVerifier, err := auth.NewJWKSVerifier(cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create token verifier: %v", err)
		}
		defer jwksVerifier.Close()
		verifier = jwksVerifier
	}

	ghostCfg := ghost.Config{
		DebounceDelay: cfg.Ghost.DebounceDelay(),
		MinTextLength: cfg.Ghost.MinTextLength,
		AcceptHold:    cfg.Ghost.AcceptHold(),
	}

	controller := app.NewController(suggestService, local, remote, ghostCfg, logger)
	defer controller.Close()

	importer := convert.NewExternalImporter(nil, logger)

	h := handler.NewHandler(controller, suggestService, importer, logger)

	mux := http.NewServeMux()
	h.Routes(mux)

	// Middleware chain: CORS → Recovery → Identity → Routes
	var httpHandler http.Handler = mux
	httpHandler = middleware.Identity(verifier, logger)(httpHandler)
	httpHandler = middleware.Recovery(logger)(httpHandler)
	httpHandler = cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}).Handler(httpHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
