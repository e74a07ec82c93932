// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/aininjas/internal/api"
	"github.com/starford/aininjas/internal/auth"
	"github.com/starford/aininjas/internal/content"
	"github.com/starford/aininjas/internal/prefs"
	"github.com/starford/aininjas/internal/sse"
	"github.com/starford/aininjas/internal/storage"
)

// services are the domain objects shared by the HTTP surface.
type services struct {
	slots    storage.Slots
	store    *content.Store
	themes   *prefs.Themes
	sessions *auth.Sessions
}

func newServices(cfg *Config, slots storage.Slots, logger *slog.Logger) (*services, error) {
	store, err := content.NewStore(content.NewSlotRepository(slots), content.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("init content store: %w", err)
	}
	svc := &services{
		slots:  slots,
		store:  store,
		themes: prefs.NewThemes(slots),
	}
	if cfg.Auth.Mode == AuthModeCredentials {
		svc.sessions = auth.NewSessions(slots, auth.BcryptVerifier{
			Username: cfg.Auth.Username,
			Hash:     []byte(cfg.Auth.PasswordHash),
		})
	}
	return svc, nil
}

// NewContentStore opens the content store over the configured backend. The
// caller must close the returned Storage.
func NewContentStore(cfg *Config, logger *slog.Logger) (*content.Store, *Storage, error) {
	st, err := OpenStorage(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	store, err := content.NewStore(content.NewSlotRepository(st.Slots), content.WithLogger(logger))
	if err != nil {
		_ = st.Close()
		return nil, nil, fmt.Errorf("init content store: %w", err)
	}
	return store, st, nil
}

// apiBasePath is where the API router is mounted on the root router.
const apiBasePath = "/api"

func newRootRouter(cfg *Config, svc *services, broker *sse.Broker, version string) http.Handler {
	apiRouter := api.NewRouter(api.Deps{
		Store:          svc.store,
		Themes:         svc.themes,
		Sessions:       svc.sessions,
		Events:         broker,
		AuthMode:       cfg.Auth.Mode,
		AuthToken:      cfg.Auth.Token,
		MediaDir:       cfg.Media.Dir,
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
		BasePath:       apiBasePath,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","version":%q}`, version)
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := svc.slots.Keys(); err != nil {
			slog.Warn("readiness check failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount(apiBasePath, apiRouter)
	return r
}

// warnOpenAuthoring flags a deployment whose authoring routes need no
// credentials.
func warnOpenAuthoring(logger *slog.Logger, cfg AuthConfig) {
	if cfg.AuthEnabled() {
		return
	}
	logger.Warn("Authentication is disabled: /api/admin routes are open to anyone",
		slog.String("auth_mode", cfg.Mode),
		slog.String("hint", "set AUTH_MODE=token or AUTH_MODE=credentials outside local development"))
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{version: "dev"}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_backend", cfg.Storage.Backend),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("media_dir", cfg.Media.Dir),
		slog.String("log_level", cfg.App.LogLevel.String()))
	warnOpenAuthoring(logger, cfg.Auth)

	st := &Storage{Slots: app.slots}
	if app.slots == nil {
		var err error
		if st, err = OpenStorage(cfg.Storage); err != nil {
			return err
		}
	}
	defer st.Close()

	svc, err := newServices(cfg, st.Slots, logger)
	if err != nil {
		return err
	}

	broker := sse.NewBroker()
	defer broker.Close()

	unsubscribe := svc.store.Subscribe(func(c content.Change) {
		broker.PublishChange(string(c.Kind), c.ID)
	})
	defer unsubscribe()

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newRootRouter(cfg, svc, broker, app.version),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gCtx := errgroup.WithContext(runCtx)

	if st.FS != nil && cfg.Storage.Watch {
		g.Go(func() error {
			return storage.Watch(gCtx, st.FS, logger, func(key string) {
				if key == storage.KeyArticles {
					svc.store.NotifyExternal()
				}
			})
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")
		stop()

		// SSE streams only end when the broker closes.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
