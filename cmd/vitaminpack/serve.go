package main

import (
	"context"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/vitaminpack/internal/api"
	"github.com/terraincognita07/vitaminpack/internal/fulfillment"
	"github.com/terraincognita07/vitaminpack/internal/gate"
	"github.com/terraincognita07/vitaminpack/internal/mailer"
	"github.com/terraincognita07/vitaminpack/internal/metrics"
	"github.com/terraincognita07/vitaminpack/internal/services"
	"go.uber.org/zap"
)

const expiredPruneInterval = 6 * time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	opened, err := openStores(sigCtx)
	if err != nil {
		return err
	}
	defer opened.Close()

	repos := opened.Repositories()
	sessions, err := services.NewSessionService(repos.RefreshTokens, repos.CallbackCodes, services.SessionConfig{
		SecretKey:    []byte(cfg.SecretKey),
		CookieSecure: cfg.CookieSecure,
	})
	if err != nil {
		return err
	}
	profiles := services.NewProfileService(repos.Profiles)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder, err := metrics.NewGateRecorder(registry)
	if err != nil {
		return err
	}

	handler, err := api.NewHandler(api.Dependencies{
		Gate: gate.New(sessions, profiles, gate.Options{
			Timeout:       cfg.GateTimeout,
			RefererMode:   cfg.GateRefererMode,
			SecureCookies: cfg.CookieSecure,
			Logger:        logger.Named("gate"),
			Recorder:      recorder,
		}),
		Auth:     services.NewAuthService(repos.Users),
		Sessions: sessions,
		Profiles: profiles,
		Fulfillment: fulfillment.NewClient(fulfillment.Config{
			URL:     cfg.FulfillmentURL,
			APIKey:  cfg.FulfillmentAPIKey,
			Timeout: cfg.FulfillmentTimeout,
		}, logger.Named("fulfillment")),
		MagicLinks:   mailer.NewLogSender(logger.Named("mailer")),
		Metrics:      registry,
		Logger:       logger,
		PublicURL:    cfg.PublicURL,
		CookieSecure: cfg.CookieSecure,
	})
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		AppName:               "VitaminPack",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(compress.New())
	app.Use(csrf.New(csrfMiddlewareConfig(cfg.CookieSecure)))
	app.Static("/static", filepath.Join("web", "static"))
	api.RegisterRoutes(app, handler)

	lifecycleCtx, cancelLifecycle := context.WithCancel(sigCtx)
	defer cancelLifecycle()
	go pruneExpired(lifecycleCtx, []expiringStore{repos.RefreshTokens, repos.CallbackCodes}, expiredPruneInterval)

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Warn("server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("vitaminpack listening",
		zap.String("addr", "0.0.0.0:"+cfg.Port),
		zap.String("db", cfg.DBPath),
		zap.String("profile_store", cfg.ProfileStore),
		zap.Duration("gate_timeout", cfg.GateTimeout),
	)
	return app.Listen(":" + cfg.Port)
}

// csrfMiddlewareConfig checks the form token on form posts. JSON requests
// cannot be sent cross-site without a preflight and skip the check.
func csrfMiddlewareConfig(cookieSecure bool) csrf.Config {
	return csrf.Config{
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON)
		},
		KeyLookup:      "form:csrf_token",
		CookieName:     "vp_csrf",
		CookieSameSite: "Lax",
		CookieHTTPOnly: false,
		CookieSecure:   cookieSecure,
		ContextKey:     "csrf",
	}
}

// expiringStore is a table of rows that are useless once expired: refresh
// tokens and sign-in codes.
type expiringStore interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

func pruneExpired(ctx context.Context, tables []expiringStore, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, table := range tables {
				deleted, err := table.DeleteExpired(ctx, time.Now().UTC())
				if err != nil {
					logger.Warn("expired row prune failed", zap.Error(err))
					continue
				}
				if deleted > 0 {
					logger.Info("pruned expired rows", zap.Int64("deleted", deleted))
				}
			}
		}
	}
}
