package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-platform/internal/audit"
	"clinic-platform/internal/auth"
	"clinic-platform/internal/branches"
	"clinic-platform/internal/config"
	"clinic-platform/internal/dashboard"
	"clinic-platform/internal/httpapi"
	"clinic-platform/internal/invoices"
	"clinic-platform/internal/metrics"
	"clinic-platform/internal/ratelimit"
	"clinic-platform/internal/rbac"
	"clinic-platform/internal/store"
	"clinic-platform/internal/users"
	"clinic-platform/pkg/logger"
	"clinic-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := store.EnsureSchema(rootCtx, db); err != nil {
		log.Error("schema init failed", "err", err)
		os.Exit(1)
	}

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	userSvc := users.NewService(users.NewPostgresRepo(db))
	branchSvc := branches.NewService(branches.NewPostgresRepo(db))
	invoiceSvc := invoices.NewService(invoices.NewPostgresRepo(db), branchSvc)
	auditRepo := audit.NewPostgresRepo(db)
	auditSvc := audit.NewService(auditRepo)

	if cfg.Auth.BootstrapAdminEmail != "" {
		created, err := userSvc.EnsureAdmin(rootCtx, cfg.Auth.BootstrapAdminEmail, cfg.Auth.BootstrapAdminPassword)
		if err != nil {
			log.Error("admin bootstrap failed", "err", err)
			os.Exit(1)
		}
		if created {
			log.Info("bootstrap admin created", "email", cfg.Auth.BootstrapAdminEmail)
		}
	}

	recorder := audit.NewRecorder(auditRepo, audit.RecorderConfig{
		QueueSize:  cfg.Audit.QueueSize,
		Workers:    cfg.Audit.Workers,
		MaxRetries: cfg.Audit.MaxRetries,
	}, log, m)
	auditSvc.StartCleanup(rootCtx, cfg.Audit.CleanupInterval, cfg.Audit.Retention, log)

	perIP := ratelimit.NewPerIP(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	go sweepBuckets(rootCtx, perIP, time.Minute)

	guard := rbac.NewGuard(auth.NewResolver(tokens, userSvc), rbac.DefaultPolicy(), m)
	h := &httpapi.Handlers{
		Sessions:     auth.NewSessions(tokens, userSvc, auth.NewRedisRevocations(rdb)),
		Users:        userSvc,
		Branches:     branchSvc,
		Invoices:     invoiceSvc,
		Dashboard:    dashboard.NewService(userSvc, branchSvc, invoiceSvc),
		AuditLog:     auditSvc,
		Recorder:     recorder,
		LoginLimiter: ratelimit.NewRedisLogin(rdb, cfg.RateLimit.LoginMaxAttempts, cfg.RateLimit.LoginWindow),
	}

	// Gin router. The error boundary sits outside recovery so a recovered
	// panic is still classified and written once.
	r := gin.New()
	r.Use(logger.Middleware(log))
	r.Use(m.Middleware())
	r.Use(httpapi.ErrorHandler(m))
	r.Use(httpapi.Recovery())

	// Health checks and metric scrapes stay outside the per-IP limit.
	if err := registerRoutes(r, h, guard, reg, db, perIP.Middleware()); err != nil {
		log.Error("route registration failed", "err", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
	// Handlers have returned; flush whatever audit events they queued.
	if err := recorder.Close(shutdownCtx); err != nil {
		log.Error("audit drain incomplete", "err", err)
	}
}

func sweepBuckets(ctx context.Context, p *ratelimit.PerIP, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.Sweep()
		}
	}
}
