package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	adapthttp "growt/internal/adapter/http"
	"growt/internal/adapter/mail"
	"growt/internal/adapter/memory"
	"growt/internal/adapter/objectstore"
	"growt/internal/adapter/postgres"
	"growt/internal/app"
	"growt/internal/config"
	"growt/internal/domain"
)

// repositories is everything the services persist to.
type repositories struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	animals  domain.AnimalRepository
	devices  domain.DeviceRepository
	readings domain.ReadingRepository
	close    func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(cfg)
	if err != nil {
		logger.Fatal("open storage", zap.String("storage", cfg.Storage), zap.Error(err))
	}
	defer func() { _ = repos.close() }()

	var photos domain.PhotoStore
	if cfg.S3.Enabled() {
		photos, err = objectstore.New(objectstore.Options{
			Endpoint:      cfg.S3.Endpoint,
			AccessKey:     cfg.S3.AccessKey,
			SecretKey:     cfg.S3.SecretKey,
			Bucket:        cfg.S3.Bucket,
			Region:        cfg.S3.Region,
			PublicBaseURL: cfg.S3.PublicBaseURL,
		}, logger)
		if err != nil {
			logger.Fatal("object store", zap.Error(err))
		}
	} else {
		logger.Warn("S3_ENDPOINT not set, photo uploads disabled")
	}

	var mailer domain.Mailer = mail.NewLogMailer(logger)
	if cfg.SMTP.Enabled() {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			To:       cfg.SMTP.To,
		}, logger)
	}

	tokens := app.NewDeviceTokens(cfg.Devices.TokenSecret, cfg.Devices.TokenTTL)
	svc := adapthttp.Services{
		Auth:    app.NewAuthService(repos.users, repos.sessions),
		Animals: app.NewAnimalService(repos.animals, photos),
		Devices: app.NewDeviceService(repos.devices, tokens),
		Ingest:  app.NewIngestService(repos.devices, repos.animals, repos.readings, tokens),
		Logs:    app.NewLogService(repos.readings),
		Charts:  app.NewChartsService(repos.readings),
		Contact: app.NewContactService(mailer),
	}

	srv := adapthttp.New(svc, cfg.WebDir, logger)
	if cfg.OIDC.Enabled() {
		provider, err := oidc.NewProvider(ctx, cfg.OIDC.Issuer)
		if err != nil {
			logger.Fatal("oidc provider", zap.String("issuer", cfg.OIDC.Issuer), zap.Error(err))
		}
		srv = srv.WithOIDC(adapthttp.OIDCConfig{
			Enabled:  true,
			Provider: provider,
			OAuth2Config: oauth2.Config{
				ClientID:     cfg.OIDC.ClientID,
				ClientSecret: cfg.OIDC.ClientSecret,
				RedirectURL:  cfg.OIDC.RedirectURL,
				Endpoint:     provider.Endpoint(),
				Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
			},
		})
	}
	if cfg.Auth.ForwardAuth {
		srv = srv.WithForwardAuth()
	}
	if cfg.Auth.Disabled {
		logger.Warn("authentication disabled")
		srv = srv.WithoutAuth()
	}

	go purgeSessions(ctx, repos.sessions, logger)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", zap.String("addr", cfg.Addr), zap.String("storage", cfg.Storage))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("serve", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(strings.ToLower(level))
	if err != nil {
		return nil, err
	}
	zcfg.Level = lvl
	return zcfg.Build()
}

func openRepositories(cfg *config.Config) (*repositories, error) {
	if cfg.Storage == config.StorageMemory {
		db := memory.New()
		return &repositories{
			users: db, sessions: db.NewSessionRepo(),
			animals: db, devices: db, readings: db,
			close: func() error { return nil },
		}, nil
	}
	db, err := postgres.Open(cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	return &repositories{
		users: db, sessions: postgres.NewSessionRepo(db),
		animals: db, devices: db, readings: db,
		close: db.Close,
	}, nil
}

func purgeSessions(ctx context.Context, sessions domain.SessionRepository, logger *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sessions.DeleteExpired(ctx); err != nil {
				logger.Warn("purge expired sessions", zap.Error(err))
			}
		}
	}
}
