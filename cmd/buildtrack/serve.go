package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/auth"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/config"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/httpmw"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/tracing"
	dashboardhandlers "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/dashboard/handlers"
	dashboardservice "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/dashboard/service"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/db"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/events"
	gateway "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/gateway/websocket"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/i18n"
	i18nhandlers "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/i18n/handlers"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/persistence"
	projectcontroller "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/controller"
	projecthandlers "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/handlers"
	projectservice "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/service"
	projectstore "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/project/store"
	taskcontroller "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/task/controller"
	taskhandlers "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/task/handlers"
	taskservice "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/task/service"
	taskstore "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/task/store"
	usercontroller "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/user/controller"
	userhandlers "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/user/handlers"
	userservice "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/user/service"
	userstore "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/user/store"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/widget/catalog"
	widgethandlers "github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/widget/handlers"
)

const serverName = "buildtrack"

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServer(ctx, cfg, log)
	},
}

func runServer(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	log.Info("Starting BuildTrack", zap.String("version", version), zap.String("addr", cfg.Server.Addr()))

	if err := tracing.Init(ctx, cfg.Tracing); err != nil {
		log.Warn("Tracing disabled", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracing.Shutdown(shutdownCtx)
	}()

	// Storage
	pool, closeDB, err := persistence.Provide(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeDB(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	// Event bus
	provided, closeBus, err := events.Provide(cfg.NATS, log)
	if err != nil {
		return err
	}
	defer func() { _ = closeBus() }()
	eventBus := provided.Bus

	// Services
	userRepo := userstore.NewSQLRepository(pool)
	userSvc := userservice.NewService(userRepo, eventBus, log)
	dashboardSvc := dashboardservice.NewService(userRepo, eventBus, log)
	projectSvc := projectservice.NewService(projectstore.NewSQLRepository(pool), userRepo, eventBus, log)
	taskSvc := taskservice.NewService(taskstore.NewSQLRepository(pool), projectSvc, eventBus, log)

	widgets, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("failed to load widget catalog: %w", err)
	}

	// Translations
	loader := i18n.NewLoader(
		translationSource(cfg.I18n, log),
		i18n.NewCache(cfg.I18n.CacheTTL, time.Now),
		cfg.I18n.DefaultLocale,
		log,
	)

	// Push gateway
	hub := gateway.NewHub(log)
	broadcaster := gateway.NewUserEventBroadcaster(hub, eventBus, log)
	if err := broadcaster.Start(); err != nil {
		return err
	}
	defer broadcaster.Close()

	verifier := auth.NewVerifier(cfg.Auth, &http.Client{Timeout: 10 * time.Second})
	if verifier == nil {
		if cfg.Auth.DevUserID == "" {
			log.Warn("No session verifier configured; every API request will be rejected")
		} else {
			log.Warn("No session verifier configured; authenticating every request as the dev user",
				zap.String("dev_user_id", cfg.Auth.DevUserID))
		}
	}
	authMiddleware := auth.NewMiddleware(verifier, userSvc, cfg.Auth.CookieName, cfg.Auth.DevUserID, log)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		httpmw.RequestID(),
		httpmw.CORS(cfg.Server.AllowedOrigins),
		httpmw.OtelTracing(serverName, "/health", "/api/ws"),
		httpmw.RequestLogger(log, serverName),
	)
	router.GET("/health", healthHandler(pool))

	public := router.Group("/api")
	i18nhandlers.RegisterRoutes(public, loader, log)

	api := router.Group("/api", authMiddleware.RequireSession())
	userhandlers.RegisterRoutes(api, usercontroller.NewController(userSvc), log)
	dashboardhandlers.RegisterRoutes(api, dashboardSvc, log)
	widgethandlers.RegisterRoutes(api, widgets)
	projecthandlers.RegisterRoutes(api, projectcontroller.NewController(projectSvc), log)
	taskhandlers.RegisterRoutes(api, taskcontroller.NewController(taskSvc), log)
	gateway.RegisterRoutes(api, gateway.NewHandler(hub, cfg.Server.AllowedOrigins, log))

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	if cfg.I18n.MessagesDir != "" && cfg.I18n.Watch {
		watcher, err := i18n.NewWatcher(cfg.I18n.MessagesDir, loader, log)
		if err != nil {
			log.Warn("Translation watcher disabled", zap.Error(err))
		} else {
			g.Go(func() error {
				defer func() { _ = watcher.Close() }()
				return watcher.Run(gctx)
			})
		}
	}
	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info("BuildTrack stopped")
	return err
}

// translationSource stacks the remote service (when configured), the bundle
// directory (when set) and the embedded bundles, in that order.
func translationSource(cfg config.I18nConfig, log *logger.Logger) i18n.Source {
	var sources []i18n.Source
	if cfg.RemoteEnabled() {
		sources = append(sources, i18n.NewRemoteSource(
			cfg.ServiceURL, cfg.ServiceAPIKey, cfg.ServiceProjectID,
			&http.Client{Timeout: 10 * time.Second},
		))
	}
	if cfg.MessagesDir != "" {
		sources = append(sources, i18n.NewDiskSource(cfg.MessagesDir))
	}
	sources = append(sources, i18n.Embedded())

	onError := func(err error) {
		log.Warn("Translation source failed, trying next", zap.Error(err))
	}
	return i18n.NewChainSource(onError, sources...)
}

func healthHandler(pool *db.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Reader().PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version})
	}
}
