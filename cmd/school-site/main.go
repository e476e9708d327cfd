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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/school-site/internal/captcha"
	"github.com/pribylovaa/school-site/internal/config"
	"github.com/pribylovaa/school-site/internal/edge"
	sitehttp "github.com/pribylovaa/school-site/internal/http"
	"github.com/pribylovaa/school-site/internal/metrics"
	"github.com/pribylovaa/school-site/internal/service"
	"github.com/pribylovaa/school-site/internal/session"
	"github.com/pribylovaa/school-site/internal/storage/minio"
	"github.com/pribylovaa/school-site/internal/storage/postgres"
	"github.com/pribylovaa/school-site/internal/storage/redis"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const analyticsPrefix = "analytics:"

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting school-site", "env", cfg.Env)

	if err := run(cfg, log); err != nil {
		log.Error("service_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("service_stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	secret, fallback := cfg.Auth.ResolveSecret()
	if fallback {
		log.Warn("session_secret_fallback",
			slog.String("hint", "set SESSION_SECRET; tokens signed with the built-in secret can be forged"),
		)
	}

	sessions, err := session.New(secret, cfg.Auth.SessionTTL)
	if err != nil {
		return err
	}

	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	db, err := postgres.New(dbCtx, cfg.Postgres.URL)
	dbCancel()
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("postgres_connected")

	s3Ctx, s3Cancel := context.WithTimeout(rootCtx, 10*time.Second)
	blobs, err := minio.New(s3Ctx, cfg.S3)
	s3Cancel()
	if err != nil {
		return err
	}
	log.Info("minio_connected", slog.String("bucket", cfg.S3.Bucket))

	redisCtx, redisCancel := context.WithTimeout(rootCtx, 10*time.Second)
	counters, err := redis.New(redisCtx, cfg.Redis.URL, analyticsPrefix)
	redisCancel()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := counters.Close(); cerr != nil {
			log.Warn("redis_close_failed", slog.String("err", cerr.Error()))
		}
	}()
	log.Info("redis_connected")

	cc := captcha.New(cfg.Captcha.VerifyURL, cfg.Captcha.Secret, cfg.Captcha.Timeout)
	if !cc.Enabled() {
		log.Warn("captcha_disabled")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	svc := service.New(service.Deps{
		DB:       db,
		Blobs:    blobs,
		Counters: counters,
		Captcha:  cc,
		Sessions: sessions,
		Metrics:  m,
	}, cfg)
	log.Info("service_initialized", slog.Bool("env_admin", cfg.Auth.EnvAdminEnabled()))

	gate := edge.New(edge.Options{
		Signer:    edge.NewHMACSigner(secret),
		Prefixes:  cfg.Auth.GatePrefixes,
		LoginPath: cfg.Auth.LoginPath,
		MaxAge:    sessions.MaxAge(),
		Metrics:   m,
	})

	site := sitehttp.NewRouter(svc, sessions, sitehttp.Options{
		Logger:         log,
		Timeout:        cfg.Timeouts.Service,
		Metrics:        m,
		Gate:           gate,
		WebDir:         cfg.Web.Dir,
		CookieSecure:   cfg.Auth.SecureCookie,
		MaxUploadBytes: cfg.Upload.MaxSizeBytes,
	})

	var ready int32

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

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			http.Error(w, "postgres unavailable", http.StatusServiceUnavailable)
			return
		}
		if err := counters.Ping(ctx); err != nil {
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", site)

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return err
	}
	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)
	log.Info("site_ready")

	var serveErr error
	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case serveErr = <-serveErrCh:
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	return serveErr
}

// setupLogger настраивает slog по окружению.
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
