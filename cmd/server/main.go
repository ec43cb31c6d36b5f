package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/subosito/gotenv"

	"github.com/ratatoing/ratatoing-server/internal/auth"
	"github.com/ratatoing/ratatoing-server/internal/config"
	"github.com/ratatoing/ratatoing-server/internal/domain/applications"
	"github.com/ratatoing/ratatoing-server/internal/domain/gallery"
	"github.com/ratatoing/ratatoing-server/internal/domain/ledger"
	"github.com/ratatoing/ratatoing-server/internal/domain/mail"
	"github.com/ratatoing/ratatoing-server/internal/domain/shop"
	"github.com/ratatoing/ratatoing-server/internal/domain/tasks"
	"github.com/ratatoing/ratatoing-server/internal/domain/users"
	"github.com/ratatoing/ratatoing-server/internal/httpapi"
	"github.com/ratatoing/ratatoing-server/internal/infra/db"
	httpx "github.com/ratatoing/ratatoing-server/internal/infra/http"
	"github.com/ratatoing/ratatoing-server/internal/infra/logger"
	"github.com/ratatoing/ratatoing-server/internal/infra/notify"
	"github.com/ratatoing/ratatoing-server/internal/moderation"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	adminChat, err := notify.New(cfg.Telegram.Token, cfg.Telegram.AdminChatID, log)
	if err != nil {
		log.Error("notifier init failed", "err", err)
		return
	}

	usersRepo := users.NewRepo(pool)
	appsRepo := applications.NewRepo(pool)

	if cfg.Bootstrap.AdminUsername != "" && cfg.Bootstrap.AdminPassword != "" {
		hash, err := auth.HashPassword(cfg.Bootstrap.AdminPassword)
		if err != nil {
			log.Error("bootstrap hash failed", "err", err)
			return
		}
		founder, err := usersRepo.EnsureFounder(ctx, users.NewUser{
			Username:     cfg.Bootstrap.AdminUsername,
			Email:        cfg.Bootstrap.AdminEmail,
			Squeak:       cfg.Bootstrap.AdminSqueak,
			PasswordHash: hash,
		})
		if err != nil {
			log.Error("bootstrap founder failed", "err", err)
			return
		}
		if founder != nil {
			log.Info("founding administrator created", "user_id", founder.ID, "username", founder.Username)
		}
	}

	ttl := time.Duration(cfg.Auth.TokenTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	api := httpapi.New(httpapi.Deps{
		Log:            log,
		Users:          usersRepo,
		Apps:           appsRepo,
		Mod:            moderation.NewService(log, usersRepo, appsRepo),
		Tasks:          tasks.NewRepo(pool),
		Shop:           shop.NewRepo(pool),
		Mail:           mail.NewRepo(pool),
		Gallery:        gallery.NewRepo(pool),
		Ledger:         ledger.NewRepo(pool),
		Notify:         adminChat,
		Tokens:         auth.NewTokens(cfg.Auth.JWTSecret, ttl),
		MediaDir:       cfg.Media.Dir,
		MetricsEnabled: cfg.Metrics.Enabled,
	})

	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	api.Routes(router)

	srv := httpx.New(cfg.HTTP.Addr, router)
	go func() {
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
