package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	health "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/pribylovaa/discussion-service/internal/config"
	apihttp "github.com/pribylovaa/discussion-service/internal/http"
	"github.com/pribylovaa/discussion-service/internal/interceptors"
	"github.com/pribylovaa/discussion-service/internal/render"
	"github.com/pribylovaa/discussion-service/internal/service"
	"github.com/pribylovaa/discussion-service/internal/storage"
	dsbadger "github.com/pribylovaa/discussion-service/internal/storage/badger"
	dsmongo "github.com/pribylovaa/discussion-service/internal/storage/mongo"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"

	storagePingInterval = 10 * time.Second
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting discussion-service", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	mongoStore, err := dsmongo.New(dbCtx, cfg)
	dbCancel()
	if err != nil {
		log.Error("mongo_connect_failed", slog.String("err", err.Error()))
		rootCancel()
		os.Exit(1)
	}
	log.Info("mongo_connected")

	var hiddenCache storage.HiddenCache
	cache, err := dsbadger.Open(dsbadger.Config{
		Path:       cfg.Cache.Path,
		InMemory:   cfg.Cache.InMemory,
		Logger:     log.With("component", "badger"),
		GCInterval: 5 * time.Minute,
	})
	if err != nil {
		// Без локального кеша скрытие опирается только на удалённый список.
		log.Warn("hidden_cache_unavailable", slog.String("err", err.Error()))
	} else {
		hiddenCache = cache
		log.Info("hidden_cache_opened", "path", cfg.Cache.Path, "in_memory", cfg.Cache.InMemory)
	}

	var renderer *render.Renderer
	if !cfg.Render.PlainText {
		renderer, err = render.New(cfg.Render.CacheSize)
		if err != nil {
			log.Error("renderer_init_failed", slog.String("err", err.Error()))
			rootCancel()
			_ = mongoStore.Close(context.Background())
			os.Exit(1)
		}
	}

	svc := service.New(rootCtx, mongoStore, hiddenCache, renderer, *cfg)
	log.Info("service_initialized")

	// HTTP: API сессий + readiness/liveness/metrics.
	var ready int32 // 0 — not ready; 1 — ready
	httpAddr := cfg.HTTP.Addr()

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if atomic.LoadInt32(&ready) != 1 {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		if err := mongoStore.Ping(ctx); err != nil {
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", apihttp.NewRouter(svc, apihttp.Options{
		Logger:  log,
		Timeout: cfg.Timeouts.Service,
	}))

	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("http_listen_start", "addr", httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}()

	// gRPC: health-check и reflection.
	grpc_prometheus.EnableHandlingTimeHistogram()

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptors.Recover(log),
			interceptors.Logging(log),
			interceptors.Timeout(cfg.Timeouts.Service),
			grpc_prometheus.UnaryServerInterceptor,
		),
		grpc.ChainStreamInterceptor(
			grpc_prometheus.StreamServerInterceptor,
		),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)

	if cfg.Env == envLocal || cfg.Env == envDev {
		reflection.Register(grpcServer)
	}

	addr := cfg.GRPC.Addr()
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("grpc_listen_failed",
			slog.String("addr", addr),
			slog.String("err", err.Error()),
		)
		rootCancel()
		_ = httpSrv.Shutdown(context.Background())
		_ = mongoStore.Close(context.Background())
		os.Exit(1)
	}
	log.Info("grpc_listen_start", slog.String("addr", addr))

	grpc_prometheus.Register(grpcServer)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	atomic.StoreInt32(&ready, 1)

	// Статус health следует за доступностью Mongo: без неё сессии не загружаются.
	go watchStorage(rootCtx, log, mongoStore, hs, &ready)

	serveErrCh := make(chan error, 1)
	go func() {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("grpc_serve_failed", slog.String("err", err.Error()))
		}
	}

	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	atomic.StoreInt32(&ready, 0)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	done := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		log.Info("grpc_stopped")
	case <-shutdownCtx.Done():
		log.Warn("grpc_force_stop")
		grpcServer.Stop()
	}

	// Сессии закрываются до HTTP: websocket-потоки получают close-кадр.
	svc.Shutdown()
	_ = httpSrv.Shutdown(shutdownCtx)
	shutdownCancel()

	rootCancel()
	if cache != nil {
		_ = cache.Close()
	}
	_ = mongoStore.Close(context.Background())

	log.Info("service_stopped")
	os.Exit(0)
}

// watchStorage периодически пингует хранилище и переключает статус gRPC health.
func watchStorage(ctx context.Context, log *slog.Logger, st interface{ Ping(context.Context) error }, hs *health.Server, ready *int32) {
	ticker := time.NewTicker(storagePingInterval)
	defer ticker.Stop()

	serving := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := st.Ping(pingCtx)
		cancel()

		if ctx.Err() != nil || atomic.LoadInt32(ready) == 0 {
			return
		}

		switch {
		case err != nil && serving:
			log.Warn("storage_unreachable", slog.String("err", err.Error()))
			hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
			serving = false
		case err == nil && !serving:
			log.Info("storage_recovered")
			hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
			serving = true
		}
	}
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
