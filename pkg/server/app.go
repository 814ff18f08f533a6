package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"FinSight/internal/domain/repository"
	"FinSight/internal/provider/stream"
	"FinSight/pkg/config"
	xhttp "FinSight/pkg/http"
	applogger "FinSight/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	stream     *stream.Stream
	archive    repository.BarArchive
	audit      repository.AuditSink
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, handler xhttp.Handler) *App {
	return &App{cfg: cfg, log: l, handler: handler}
}

// SetStream attaches the optional intraday trade stream.
func (a *App) SetStream(s *stream.Stream) { a.stream = s }

// SetArchive attaches the optional bar archive for lifecycle management.
func (a *App) SetArchive(ar repository.BarArchive) { a.archive = ar }

// SetAuditSink attaches the audit sink for lifecycle management.
func (a *App) SetAuditSink(s repository.AuditSink) { a.audit = s }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.archive != nil {
		if err := a.archive.Init(ctx); err != nil {
			a.log.Error("archive init error", applogger.Error(err))
			return err
		}
	}

	serverOpts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithServerLogger(a.log),
	}
	if !a.cfg.Metrics.Enabled {
		serverOpts = append(serverOpts, xhttp.WithMetricsPath(""))
	} else if a.cfg.Metrics.Path != "" {
		serverOpts = append(serverOpts, xhttp.WithMetricsPath(a.cfg.Metrics.Path))
	}
	a.httpServer = xhttp.NewServer(a.handler, serverOpts...)

	if a.stream != nil {
		go func() {
			if err := a.stream.Connect(ctx); err != nil {
				a.log.Warn("stream connect error", applogger.Error(err))
			} else if err := a.stream.Subscribe(ctx); err != nil {
				a.log.Warn("stream subscribe error", applogger.Error(err))
			}
			a.stream.Run(ctx)
		}()
		a.log.Info("intraday stream started", applogger.Strings("symbols", a.cfg.Stream.Symbols))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.stream != nil {
		if err := a.stream.Close(); err != nil {
			a.log.Warn("stream close error", applogger.Error(err))
		}
	}
	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			a.log.Warn("audit close error", applogger.Error(err))
		}
	}
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			a.log.Warn("archive close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
