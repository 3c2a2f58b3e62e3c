package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	prom "github.com/prometheus/client_golang/prometheus"
	"golang.org/x/text/message"

	sleepinadapter "sleeptrack/internal/modules/sleep/adapter/in"
	sleepoutadapter "sleeptrack/internal/modules/sleep/adapter/out"
	sleepservice "sleeptrack/internal/modules/sleep/service"
	sleepusecase "sleeptrack/internal/modules/sleep/usecase"
	"sleeptrack/internal/platform/clock"
	"sleeptrack/internal/platform/config"
	"sleeptrack/internal/platform/i18n"
	"sleeptrack/internal/platform/logging"
	"sleeptrack/internal/platform/metrics"
	uiapp "sleeptrack/internal/ui/app"
)

type App struct {
	Config    config.Config
	Logger    *slog.Logger
	Registry  *prom.Registry
	Printer   *message.Printer
	Tracker   *sleepusecase.Tracker
	Qualities sleepusecase.QualityFactory
	CLI       sleepinadapter.CLIHandler

	store *sleepoutadapter.SQLiteSessionStore
}

func New(cfg config.Config) (*App, error) {
	return NewWithClock(cfg, clock.SystemClock{})
}

// NewWithClock wires the application around clk. The data directory is
// created when missing.
func NewWithClock(cfg config.Config, clk clock.Clock) (*App, error) {
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	store, err := sleepoutadapter.NewSQLiteSessionStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	bundle, err := i18n.LoadEmbedded()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load locales: %w", err)
	}
	printer := bundle.Printer(cfg.Locale)

	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	svc := sleepservice.NewSessionService(clk, store)
	opts := []sleepusecase.Option{
		sleepusecase.WithLogger(logger),
		sleepusecase.WithMetrics(recorder),
	}
	tracker := sleepusecase.NewTracker(svc, sleepoutadapter.NewTextHistoryFormatter(printer, time.Local), opts...)
	qualities := sleepusecase.NewQualityFactory(svc, opts...)

	logger.Debug("application wired",
		slog.String("data_dir", cfg.DataDir),
		slog.String("db_path", cfg.DBPath),
		slog.String("locale", bundle.Match(cfg.Locale).String()),
	)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Registry:  registry,
		Printer:   printer,
		Tracker:   tracker,
		Qualities: qualities,
		CLI:       sleepinadapter.NewCLIHandler(tracker, qualities),
		store:     store,
	}, nil
}

// Close stops the tracker, lets its initial load unwind and then releases the
// store.
func (a *App) Close() error {
	a.Tracker.Close()
	_ = a.Tracker.Wait(context.Background())
	return a.store.Close()
}

// ServeMetrics exposes the registry on addr until ctx is done.
func (a *App) ServeMetrics(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen metrics %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(a.Registry))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error("metrics server stopped", logging.Err(err))
		}
	}()
	a.Logger.Info("serving metrics", slog.String("addr", ln.Addr().String()))
	return nil
}

func RunTUI(ctx context.Context, app *App) error {
	feed := uiapp.NewFeed()
	unsubscribe := app.Tracker.Subscribe(feed.Push)
	defer unsubscribe()

	model := uiapp.NewModel(ctx, app.Tracker, app.Qualities, app.Printer, feed)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
