package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/caarlos0/env/v11"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallhouse123/biolink-analytics/service/config"
	"github.com/smallhouse123/biolink-analytics/service/event"
	"github.com/smallhouse123/biolink-analytics/service/kvstore"
	"github.com/smallhouse123/biolink-analytics/service/logger"
	"github.com/smallhouse123/biolink-analytics/service/metrics"
	"github.com/smallhouse123/biolink-analytics/service/page"
	"github.com/smallhouse123/biolink-analytics/service/summary"
	"github.com/smallhouse123/biolink-analytics/service/tracker"
)

type envConfig struct {
	Address      string `env:"BIOLINK_ADDRESS" envDefault:"127.0.0.1:8123"`
	Environment  string `env:"BIOLINK_ENV" envDefault:"production"`
	SettingsPath string `env:"BIOLINK_SETTINGS_PATH"`
	OverridePath string `env:"BIOLINK_OVERRIDE_PATH"`
	StoreBackend string `env:"BIOLINK_STORE" envDefault:"file"`
	DataDir      string `env:"BIOLINK_DATA_DIR"`
	RedisAddress string `env:"BIOLINK_REDIS_ADDRESS" envDefault:"127.0.0.1:6379"`
	RedisUser    string `env:"BIOLINK_REDIS_USERNAME"`
	RedisPass    string `env:"BIOLINK_REDIS_PASSWORD"`
	PageURL      string `env:"BIOLINK_PAGE_URL" envDefault:"https://links.example.com/"`
	Referrer     string `env:"BIOLINK_PAGE_REFERRER"`
}

func main() {
	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatal("Failed to parse environment:", err)
	}

	app := fx.New(
		fx.Supply(cfg),
		fx.Provide(
			fx.Annotated{Name: "environment", Target: func() string { return cfg.Environment }},
			fx.Annotated{Name: "settingsPath", Target: func() string { return cfg.SettingsPath }},
			fx.Annotated{Name: "overridePath", Target: func() string { return cfg.OverridePath }},
			fx.Annotated{Name: "serviceName", Target: func() string { return "biolink_analytics" }},
		),
		logger.Service,
		config.Service,
		metrics.Service,
		fx.Provide(newStore, newPageInfo, newServer),
		tracker.Service,
		page.Service,
		summary.Service,
		fx.Invoke(run),
	)
	app.Run()
}

// dataDir resolves the platform-specific application data directory.
func dataDir(cfg envConfig) (string, error) {
	if cfg.DataDir != "" {
		return cfg.DataDir, os.MkdirAll(cfg.DataDir, 0o755)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	var dir string
	switch runtime.GOOS {
	case "darwin":
		dir = filepath.Join(home, "Library", "Application Support", "BiolinkAnalytics")
	case "windows":
		dir = filepath.Join(home, "AppData", "Roaming", "BiolinkAnalytics")
	default: // linux and others
		dir = filepath.Join(home, ".local", "share", "biolink-analytics")
	}
	return dir, os.MkdirAll(dir, 0o755)
}

func newStore(cfg envConfig, sugar *zap.SugaredLogger) (kvstore.KVStore, error) {
	switch cfg.StoreBackend {
	case "memory":
		return kvstore.NewMemory(), nil
	case "redis":
		client, err := kvstore.ConnectRedis(cfg.RedisAddress, cfg.RedisUser, cfg.RedisPass, sugar)
		if err != nil {
			return nil, err
		}
		return kvstore.NewRedis(client, sugar), nil
	case "sqlite":
		dir, err := dataDir(cfg)
		if err != nil {
			return nil, err
		}
		return kvstore.NewSQLite(filepath.Join(dir, "analytics.db"))
	case "file", "":
		dir, err := dataDir(cfg)
		if err != nil {
			return nil, err
		}
		return kvstore.NewFile(filepath.Join(dir, "kv"))
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.StoreBackend)
	}
}

func newPageInfo(cfg envConfig) tracker.PageInfo {
	return tracker.PageInfo{
		URL:      cfg.PageURL,
		Referrer: cfg.Referrer,
		Device: event.Device{
			UserAgent: "biolink-analytics-agent",
			Language:  os.Getenv("LANG"),
			Platform:  runtime.GOOS,
		},
	}
}

func newServer(cfg envConfig, p *page.Page, summ summary.Summarizer, m metrics.Metrics, sugar *zap.SugaredLogger) *Server {
	return NewServer(p, summ, m, sugar, cfg.Address)
}

func run(lc fx.Lifecycle, s *Server, p *page.Page) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			err := s.Shutdown(ctx)
			// flush the terminal session_end before the process exits
			p.Close()
			return err
		},
	})
}
