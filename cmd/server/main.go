package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"legalassist-backend/config"
	"legalassist-backend/handlers"
	"legalassist-backend/logging"
	"legalassist-backend/repository"
	"legalassist-backend/service"
	"legalassist-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	sessionJanitorInterval = 15 * time.Minute
	shutdownTimeout        = 10 * time.Second
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFilePath string

	cmd := &cobra.Command{
		Use:          "server",
		Short:        "Run the legal research assistant HTTP server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configFilePath)
		},
	}

	cmd.Flags().StringVarP(&configFilePath, "config", "c", "", "optional config file (yaml, json or toml)")
	return cmd
}

func run(configFilePath string) error {
	// Load .env file from project root (relative to cmd/server/)
	config.LoadDotEnv()

	cfg, err := config.Load(configFilePath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if errs := cfg.Validate(); len(errs) > 0 {
		logger.Error("invalid configuration", zap.Error(errors.Join(errs...)))
		return errors.Join(errs...)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := initPostgres(ctx, cfg.Database.URL, logger)
	if err != nil {
		logger.Error("failed to initialize postgres", zap.Error(err))
		return err
	}
	defer db.Close()

	// Initialize storage
	archive, err := storage.NewStorage(ctx, cfg.Storage)
	if err != nil {
		logger.Error("failed to initialize storage", zap.Error(err))
		return err
	}
	logger.Info("storage initialized", zap.String("type", cfg.Storage.Type))

	// Initialize repositories
	caseRepo := repository.NewSavedCaseRepository(db)
	historyRepo := repository.NewSearchHistoryRepository(db)
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	// Initialize the analysis backend
	analyzer, err := service.NewAnalyzer(ctx, cfg.Analyzer, logger)
	if err != nil {
		logger.Error("failed to initialize analyzer", zap.Error(err))
		return err
	}
	if closer, ok := analyzer.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Warn("failed to close analyzer", zap.Error(err))
			}
		}()
	}
	logger.Info("analyzer initialized", zap.String("provider", cfg.Analyzer.Provider))

	// Initialize services
	searchService := service.NewSearchService(
		service.WithAnalyzer(analyzer),
		service.WithHistoryStore(historyRepo),
		service.WithAnalysisTimeout(cfg.Analyzer.Timeout),
		service.WithSearchLogger(logger),
	)

	caseService := service.NewCaseService(
		service.WithCaseStore(caseRepo),
		service.WithArchiveStorage(archive),
		service.WithCaseLogger(logger),
	)

	authService := service.NewAuthService(
		service.WithUserStore(userRepo),
		service.WithSessionStore(sessionRepo),
		service.WithSessionTTL(cfg.Auth.SessionTTL),
		service.WithAuthLogger(logger),
	)

	gin.SetMode(ginMode(cfg.Server.Mode))
	router, err := handlers.NewRouter(handlers.RouterDeps{
		SearchService: searchService,
		CaseService:   caseService,
		AuthService:   authService,
		Auth:          cfg.Auth,
		Logger:        logger,
	})
	if err != nil {
		logger.Error("failed to build router", zap.Error(err))
		return err
	}

	srv := handlers.NewHTTPServer(":"+cfg.Server.Port, router, authService.Events())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		authService.RunSessionJanitor(gctx, sessionJanitorInterval)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return err
	}
	return nil
}

func initPostgres(ctx context.Context, connString string, logger *zap.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("postgres connection established")
	return pool, nil
}

func ginMode(mode string) string {
	switch strings.ToLower(mode) {
	case gin.DebugMode, gin.TestMode:
		return strings.ToLower(mode)
	default:
		return gin.ReleaseMode
	}
}
