package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"stocksence/infrastructure/argon"
	"stocksence/infrastructure/config"
	"stocksence/infrastructure/identity"
	"stocksence/infrastructure/logger"
	"stocksence/infrastructure/metrics"
	"stocksence/infrastructure/security"
	"stocksence/infrastructure/sqlite"
	"stocksence/store"
)

// app is the wired process shared by every subcommand.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *sqlite.DB
	metrics *metrics.Metrics
	store   *store.Store
}

func openApp(ctx context.Context, migrationsDir string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.InitLogger(logger.Config{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: "stocksence",
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	for _, key := range cfg.Generated {
		if key == "SESSION_SIGNING_KEY" {
			log.Warn("secret not configured; generated an ephemeral value", zap.String("key", key))
			continue
		}
		log.Warn("secret not configured; generated and stored", zap.String("key", key), zap.String("file", cfg.Secrets.File))
	}

	db, err := sqlite.OpenDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if migrationsDir != "" {
		err = sqlite.ApplyMigrationsFromDir(ctx, db, migrationsDir)
	} else {
		err = sqlite.ApplyEmbeddedMigrations(ctx, db)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	repo, err := sqlite.NewStateRepository(db, cfg.Database.Slot)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	cipher, err := security.NewCipher(cfg.Secrets.BackupKey)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("backup cipher: %w", err)
	}
	m := metrics.New(cfg.Metrics.Prefix)

	storeCfg := store.Config{
		Hasher:  argon.NewHasher(cfg.Secrets.AppSecret, argon.DefaultParams),
		Cipher:  cipher,
		Metrics: m,
		Logger:  log.Named("store"),
	}
	verifier, err := identity.NewGoogleVerifier(ctx, cfg.Google.ClientID, nil)
	switch {
	case err == nil:
		storeCfg.Identity = verifier
	case errors.Is(err, identity.ErrUnavailable):
		log.Info("google sign-in disabled; GOOGLE_CLIENT_ID not set")
	default:
		log.Warn("google sign-in disabled", zap.Error(err))
	}

	st, err := store.New(ctx, repo, storeCfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &app{cfg: cfg, log: log, db: db, metrics: m, store: st}, nil
}

func (a *app) Close() error {
	_ = a.log.Sync()
	return a.db.Close()
}

// seedDemo provisions the demo tenant when the environment allows it.
func (a *app) seedDemo(ctx context.Context) error {
	if !a.cfg.DemoFixtureAllowed() {
		return nil
	}
	u, err := a.store.SeedDemoTenant(ctx, a.cfg.Demo.Username, a.cfg.Demo.Password)
	if err != nil {
		return err
	}
	a.log.Info("demo tenant ready", zap.String("username", u.Username), zap.String("company_id", u.CompanyID))
	return nil
}
