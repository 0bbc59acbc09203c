package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-registration-console/api/swagger"
	"github.com/noah-isme/sma-registration-console/internal/client"
	"github.com/noah-isme/sma-registration-console/internal/handler"
	"github.com/noah-isme/sma-registration-console/internal/middleware"
	"github.com/noah-isme/sma-registration-console/internal/models"
	"github.com/noah-isme/sma-registration-console/internal/repository"
	"github.com/noah-isme/sma-registration-console/internal/service"
	"github.com/noah-isme/sma-registration-console/pkg/cache"
	"github.com/noah-isme/sma-registration-console/pkg/config"
	"github.com/noah-isme/sma-registration-console/pkg/database"
	"github.com/noah-isme/sma-registration-console/pkg/i18n"
	"github.com/noah-isme/sma-registration-console/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-registration-console/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-registration-console/pkg/middleware/requestid"
)

// @title Registration Review Console API
// @version 1.0.0
// @description Review, approve and reject school registration requests.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type layoutStore interface {
	service.ColumnLayoutStore
	Ping(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := issueToken(cfg, os.Args[2:]); err != nil {
			log.Fatalf("token: %v", err)
		}
		return
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	store, cleanup, err := openLayoutStore(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer cleanup()

	catalog, err := i18n.Default(cfg.Console.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}

	validate := validator.New()
	metrics := service.NewMetricsService()
	authService := service.NewAuthService(validate, logr, service.AuthConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
	registrationClient := client.NewRegistrationClient(client.Config{
		BaseURL: cfg.RegistrationAPI.BaseURL,
		APIKey:  cfg.RegistrationAPI.APIKey,
		Timeout: cfg.RegistrationAPI.Timeout,
	}, logr.Named("registration_api"), metrics)

	columnService := service.NewColumnService(store, catalog, metrics, logr.Named("columns"))
	sessions := service.NewConsoleSessionService(registrationClient, columnService, catalog, metrics, logr.Named("sessions"), service.SessionConfig{
		TableKey:        cfg.Console.ColumnTableKey,
		DefaultLanguage: cfg.Console.DefaultLanguage,
		BulkConcurrency: cfg.Console.BulkConcurrency,
		IdleTTL:         cfg.Console.SessionIdleTTL,
	})
	go sessions.Run(ctx, time.Minute)

	consoleHandler := handler.NewConsoleHandler(sessions, service.NewExportService(logr.Named("export")), validate, logr.Named("audit"))
	metricsHandler := handler.NewMetricsHandler(metrics, map[string]handler.ReadinessCheck{
		"column_store": store.Ping,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/health", "/ready", "/metrics"))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(
		middleware.JWT(authService),
		middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin),
		middleware.WithResponseMeta(),
	)
	handler.RegisterConsoleRoutes(api, consoleHandler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("column_store", cfg.Console.ColumnStore),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openLayoutStore(ctx context.Context, cfg *config.Config, logr *zap.Logger) (layoutStore, func(), error) {
	switch cfg.Console.ColumnStore {
	case config.ColumnStoreRedis:
		rdb, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewRedisColumnLayoutRepository(rdb, "registration-console:", 0, logr.Named("layout_store"))
		return repo, func() { _ = repo.Close() }, nil
	case config.ColumnStorePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewColumnLayoutRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repo, func() { _ = db.Close() }, nil
	default:
		logr.Warn("column layouts kept in memory; they are lost on restart")
		return repository.NewMemoryColumnLayoutRepository(), func() {}, nil
	}
}

// issueToken prints a signed operator token for local development.
func issueToken(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	userID := fs.String("user", "", "operator user id")
	role := fs.String("role", string(models.RoleAdmin), "SUPERADMIN, ADMIN or TEACHER")
	email := fs.String("email", "", "operator email")
	lang := fs.String("lang", "", "preferred language")
	ttl := fs.Duration("ttl", 8*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.Env == config.EnvProduction {
		return errors.New("refusing to mint tokens in production")
	}

	auth := service.NewAuthService(nil, nil, service.AuthConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer, TokenTTL: *ttl})
	token, expiresAt, err := auth.IssueToken(service.TokenRequest{
		UserID:   *userID,
		Role:     models.UserRole(*role),
		Email:    *email,
		Language: *lang,
	})
	if err != nil {
		return err
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.Format(time.RFC3339))
	return nil
}
