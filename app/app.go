package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"bitbucket.org/kleinnic74/mapview/config"
	"bitbucket.org/kleinnic74/mapview/consts"
	"bitbucket.org/kleinnic74/mapview/events"
	"bitbucket.org/kleinnic74/mapview/logging"
	"bitbucket.org/kleinnic74/mapview/metrics"
	"bitbucket.org/kleinnic74/mapview/rest"
	"bitbucket.org/kleinnic74/mapview/session"
	"bitbucket.org/kleinnic74/mapview/store/boltstore"
	"github.com/gorilla/mux"
	"github.com/kleinnic74/fflags"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// Feature flags
const (
	FlagPersistViews = "viewport.persist"
	FlagDebugSVG     = "debug.svg"
)

type App struct {
	db       *bolt.DB
	bus      *events.Stream
	sessions *session.Manager
	views    *boltstore.ViewStore
	registry *prometheus.Registry
	router   *mux.Router

	addr string

	shutdownHandlers shutdownHandlers
}

type shutdownHandler func(context.Context, *App)

const (
	dbName = "mapview.db"
)

type shutdownHandlers struct {
	h []shutdownHandler
}

func (hdls *shutdownHandlers) Add(h shutdownHandler) {
	hdls.h = append(hdls.h, h)
}

func (hdls shutdownHandlers) Execute(ctx context.Context, a *App) {
	for i := len(hdls.h) - 1; i >= 0; i-- {
		hdls.h[i](ctx, a)
	}
}

var (
	persistViews = fflags.Define(FlagPersistViews)
	debugSVG     = fflags.Define(FlagDebugSVG)
)

type gate func(f func() error) error

// ifEnabled runs f if the feature flag is listed in the configuration, or
// else if the gate of the fflags flag opens
func ifEnabled(name string, configured []string, flag gate, f func() error) error {
	if slices.Contains(configured, name) {
		return f()
	}
	return flag(f)
}

func persistViewsFlag(f func() error) error {
	return fflags.IfEnabled(persistViews, f)
}

func debugSVGFlag(f func() error) error {
	return fflags.IfEnabled(debugSVG, f)
}

func NewApp(ctx context.Context, cfg *config.Config) (a *App, err error) {
	logger, ctx := logging.SubFrom(ctx, "app")

	logger.Info("Data directory", zap.String("dir", cfg.Server.DataDir))
	if err = os.MkdirAll(cfg.Server.DataDir, os.ModePerm); err != nil {
		return nil, err
	}

	a = &App{
		addr:     fmt.Sprintf(":%d", cfg.Server.Port),
		router:   mux.NewRouter(),
		registry: prometheus.NewRegistry(),
	}
	defer func() {
		if err != nil {
			a.shutdownHandlers.Execute(ctx, a)
		}
	}()

	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	stats := metrics.New(a.registry)
	a.bus = events.NewObservedStream(stats)

	a.db, err = bolt.Open(filepath.Join(cfg.Server.DataDir, dbName), 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("Failed to initialize data store: %w", err)
	}
	a.shutdownHandlers.Add(func(ctx context.Context, a *App) {
		a.db.Close()
		logging.From(ctx).Info("Closed data store")
	})

	options := []session.Option{
		session.WithMetrics(stats),
		session.WithFrameRate(cfg.Server.FPS),
		session.WithLogger(logger.Named("sessions")),
	}
	if err = ifEnabled(FlagPersistViews, cfg.Flags, persistViewsFlag, func() error {
		if a.views, err = boltstore.NewViewStore(a.db); err != nil {
			return err
		}
		options = append(options, session.WithStore(a.views))
		logger.Info("Persisting map views")
		return nil
	}); err != nil {
		return nil, fmt.Errorf("Failed to initialize view store: %w", err)
	}
	a.sessions = session.NewManager(ctx, cfg.Map, a.bus, options...)

	// REST Handlers

	metricsHandler := rest.NewMetricsHandler(a.registry)
	metricsHandler.InitRoutes(a.router)

	if consts.IsDevMode() {
		logs := rest.NewLogsHandler(logging.Dump)
		logs.InitRoutes(a.router)
		debugService := DebugHandler{}
		debugService.InitRoutes(a.router)
	}

	sse := rest.NewSSEHandler(a.bus)
	sse.InitRoutes(a.router)

	withSVG := false
	_ = ifEnabled(FlagDebugSVG, cfg.Flags, debugSVGFlag, func() error {
		withSVG = true
		return nil
	})
	maps := rest.NewMapsHandler(a.sessions, withSVG)
	maps.InitRoutes(a.router)

	return a, nil
}

// Handler returns the HTTP handler of the application, with middlewares
func (a *App) Handler() http.Handler {
	return rest.WithMiddleWares(a.router, "rest")
}

func (a *App) Run(ctx context.Context) {
	logger, ctx := logging.SubFrom(ctx, "app")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		logger, ctx := logging.SubFrom(ctx, "eventbus")
		a.bus.Dispatch(ctx)
		logger.Info("DONE")
		wg.Done()
	}()
	if a.views != nil {
		wg.Add(1)
		go func() {
			logger, ctx := logging.SubFrom(ctx, "persistence")
			session.PersistViews(ctx, a.bus, a.views)
			logger.Info("DONE")
			wg.Done()
		}()
	}

	server := http.Server{
		Addr:        a.addr,
		Handler:     a.Handler(),
		BaseContext: func(l net.Listener) context.Context { return ctx },
	}
	wg.Add(1)
	go func() {
		logger, _ := logging.SubFrom(ctx, "http")
		logger.Info("Starting HTTP server...", zap.String("bindAddr", a.addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", zap.Error(err))
		}
		logger.Info("DONE")
		wg.Done()
	}()

	<-ctx.Done()

	logger.Info("Stopping...")

	ctxShutdown, cancelServerShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelServerShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}
	a.sessions.CloseAll(ctxShutdown)

	wg.Wait()
	a.shutdownHandlers.Execute(ctxShutdown, a)

	logger.Info("Terminated gracefully")
}
