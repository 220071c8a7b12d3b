// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/dosebell/internal/api"
	"github.com/starford/dosebell/internal/dispatch"
	"github.com/starford/dosebell/internal/mcpserver"
	"github.com/starford/dosebell/internal/notify"
	"github.com/starford/dosebell/internal/reminders"
	"github.com/starford/dosebell/internal/report"
	"github.com/starford/dosebell/internal/scheduler"
)

// ErrAllFailed marks an SMS run in which every attempted send failed.
var ErrAllFailed = errors.New("every send failed")

func newApplication(opts []Option) (*application, error) {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logOutput == nil {
		app.logOutput = os.Stdout
	}
	return app, nil
}

// bootstrap installs the logger and builds the dispatch service shared by
// every entry point.
func (a *application) bootstrap() (*dispatch.Service, *slog.Logger, error) {
	cfg := a.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	clock, err := cfg.App.Clock()
	if err != nil {
		return nil, nil, fmt.Errorf("init clock: %w", err)
	}

	repo, err := reminders.Open(cfg.Data.Path, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init reminders: %w", err)
	}

	sms := a.sms
	if sms == nil {
		sms = notify.NewTwilioSMS(cfg.SMS, logger)
	}
	mailer := a.mailer
	if mailer == nil {
		mailer = notify.NewSMTPMailer(cfg.Email, logger)
	}

	logger.Debug("Configuration loaded",
		slog.String("data_path", repo.Path()),
		slog.Bool("legacy", repo.Legacy()),
		slog.String("timezone", clock.Location().String()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc := dispatch.New(dispatch.Deps{
		Repo:        repo,
		Clock:       clock,
		SMS:         sms,
		Mailer:      mailer,
		SMSConfig:   cfg.SMS,
		EmailConfig: cfg.Email,
		Logger:      logger,
	})
	return svc, logger, nil
}

// RunChannel performs one dispatch on channel and returns its summary.
func RunChannel(ctx context.Context, svc *dispatch.Service, channel string) (any, error) {
	switch channel {
	case ChannelSMS:
		sum, err := svc.SMS(ctx)
		if err != nil {
			return nil, fmt.Errorf("sms: %w", err)
		}
		if sum.AllFailed() {
			return sum, fmt.Errorf("sms: %w", ErrAllFailed)
		}
		return sum, nil
	case ChannelEmail:
		sum, err := svc.Email(ctx)
		if err != nil {
			if sum == nil {
				return nil, fmt.Errorf("email: %w", err)
			}
			return sum, fmt.Errorf("email: %w", err)
		}
		return sum, nil
	default:
		return nil, fmt.Errorf("unknown channel %q", channel)
	}
}

// Send runs each channel once and writes the summaries to w as JSON. Every
// channel runs even when an earlier one fails.
func Send(ctx context.Context, channels []string, w io.Writer, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	svc, _, err := app.bootstrap()
	if err != nil {
		return err
	}

	out := make(map[string]any, len(channels))
	var errs []error
	for _, ch := range channels {
		sum, err := RunChannel(ctx, svc, ch)
		if sum != nil {
			out[ch] = sum
		}
		if err != nil {
			errs = append(errs, err)
			if sum == nil {
				out[ch] = map[string]string{"error": err.Error()}
			}
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return errors.Join(errs...)
}

// Check prints the diagnostic report for today to w.
func Check(_ context.Context, w io.Writer, colored bool, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	svc, _, err := app.bootstrap()
	if err != nil {
		return err
	}
	rep, err := report.Build(svc, reminders.DefaultUpcomingLimit)
	if err != nil {
		return err
	}
	return report.NewPrinter(colored).Print(w, rep)
}

// ServeMCP serves the read-only MCP tools over stdio until stdin closes.
func ServeMCP(_ context.Context, version string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	svc, logger, err := app.bootstrap()
	if err != nil {
		return err
	}
	logger.Info("MCP server starting", slog.String("version", version))
	return mcpserver.New(svc, version).ServeStdio()
}

// NewHTTPHandler builds the root router: health, index and the /api triggers.
func NewHTTPHandler(svc *dispatch.Service, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(api.Recoverer(logger))

	r.Get("/", api.Index)
	r.Get("/health/live", api.Health)
	r.Get("/health/ready", api.Health)

	r.Mount("/api", api.NewRouter(svc, logger))
	return r
}

// Run starts the HTTP trigger server, plus the scheduler and the data watcher
// when configured, and blocks until a signal or ctx ends it.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	svc, logger, err := app.bootstrap()
	if err != nil {
		return err
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_path", svc.Repo().Path()),
		slog.String("schedule", cfg.Schedule.Cron),
		slog.Bool("watch", cfg.Data.Watch),
		slog.String("log_level", cfg.App.LogLevel.String()))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           NewHTTPHandler(svc, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var sched *scheduler.Scheduler
	if cfg.Schedule.Enabled() {
		sched, err = scheduler.New(cfg.Schedule.Cron, svc.Clock().Location(), logger)
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		for _, ch := range cfg.Schedule.Channels {
			if err := sched.Add(ch, func(ctx context.Context) error {
				_, err := RunChannel(ctx, svc, ch)
				return err
			}); err != nil {
				return err
			}
		}
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	// stop ends the watcher and scheduler once the server has shut down.
	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gCtx := errgroup.WithContext(runCtx)

	// Validate reminder files as they change.
	if cfg.Data.Watch {
		g.Go(func() error {
			err := svc.Repo().Watch(gCtx, func(kind, name string, err error) {
				if err != nil {
					logger.Warn("reminder file invalid",
						slog.String("path", name),
						slog.String("error", err.Error()))
					return
				}
				logger.Info("reminder file changed",
					slog.String("path", name),
					slog.String("kind", kind))
			})
			if err != nil {
				logger.Warn("watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	if sched != nil {
		g.Go(func() error {
			return sched.Run(gCtx)
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		stop()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
