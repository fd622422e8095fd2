package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"jobalert-exporter/internal/config"
	"jobalert-exporter/internal/logging"
	"jobalert-exporter/internal/mailbox"
	"jobalert-exporter/internal/poll"
	"jobalert-exporter/internal/secrets"
	"jobalert-exporter/internal/store"
)

const dataDirEnv = "JOBALERT_DATA_DIR"

// app is the loaded configuration and logger a command runs with.
type app struct {
	dataDir string
	cfgPath string
	cfg     config.Config
	log     *zap.Logger
}

func loadApp(opts *rootOptions) (*app, error) {
	dataDir := opts.dataDir
	if dataDir == "" {
		dataDir = os.Getenv(dataDirEnv)
	}
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	cfgPath := opts.cfgFile
	if cfgPath == "" {
		p, err := config.EnsureUserConfig(dataDir)
		if err != nil {
			return nil, fmt.Errorf("config bootstrap failed: %w", err)
		}
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed (%s): %w", cfgPath, err)
	}
	cfg, v := config.NormalizeAndValidate(cfg)

	level := cfg.App.LogLevel
	if opts.debug {
		level = "debug"
	}
	log, err := logging.New(level, opts.debug)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	for _, w := range v.Warnings {
		log.Warn("config warning", zap.String("warning", w), zap.String("path", cfgPath))
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	return &app{dataDir: dataDir, cfgPath: cfgPath, cfg: cfg, log: log}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
}

func (a *app) connect(ctx context.Context) (*mailbox.Client, error) {
	pw, err := secrets.GetIMAPPassword(secrets.IMAPKeyringAccount(a.cfg))
	if err != nil {
		if errors.Is(err, secrets.ErrPasswordNotFound) {
			return nil, fmt.Errorf("%w; run `exporter password set`", err)
		}
		return nil, err
	}
	return mailbox.Connect(ctx, mailbox.SettingsFromConfig(a.cfg.Email, pw), a.log)
}

// openStore returns nil when the store is disabled.
func (a *app) openStore(ctx context.Context) (*store.DB, error) {
	if !a.cfg.Store.Enabled {
		return nil, nil
	}
	path := a.cfg.Store.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.dataDir, path)
	}
	return store.Open(ctx, path, a.log)
}

// withExporter connects everything an export needs, runs fn, and releases
// it all again.
func (a *app) withExporter(ctx context.Context, fn func(*poll.Exporter) (poll.Summary, error)) (poll.Summary, error) {
	box, err := a.connect(ctx)
	if err != nil {
		return poll.Summary{}, err
	}
	defer func() { _ = box.Close() }()

	db, err := a.openStore(ctx)
	if err != nil {
		return poll.Summary{}, err
	}
	if db != nil {
		defer func() { _ = db.Close() }()
	}

	return fn(&poll.Exporter{
		Box:   box,
		Cfg:   a.cfg,
		Store: db,
		Log:   a.log,
	})
}
