// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/minispace-dev/minispace/internal/cache"
	"github.com/minispace-dev/minispace/internal/compose"
	"github.com/minispace-dev/minispace/internal/config"
	"github.com/minispace-dev/minispace/internal/content"
	"github.com/minispace-dev/minispace/internal/demo"
	"github.com/minispace-dev/minispace/internal/handler"
	"github.com/minispace-dev/minispace/internal/logging"
	"github.com/minispace-dev/minispace/internal/markdown"
	"github.com/minispace-dev/minispace/internal/navigation"
	"github.com/minispace-dev/minispace/internal/store"
	"github.com/minispace-dev/minispace/internal/theme"
	"github.com/minispace-dev/minispace/internal/themes"
	"github.com/minispace-dev/minispace/internal/version"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Minispace - personal sites on shared infrastructure\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISPACE_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISPACE_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISPACE_BASE_DOMAIN       Domain tenant subdomains hang off (default: minispace.dev)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISPACE_DEV_BASE_DOMAIN   Extra base domain in development (default: localhost)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISPACE_BACKEND_ENABLED   Read tenant content from the database (default: true)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISPACE_DEMO_MODE         Always serve demo content (default: false)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISPACE_DB_DRIVER         Database driver: sqlite|mysql (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISPACE_DB_PATH           SQLite database path (default: ./data/minispace.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISPACE_DB_DSN            MySQL DSN (required for mysql)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISPACE_THEMES_DIR        External themes directory (default: ./custom/themes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISPACE_DEFAULT_THEME     Theme for tenants without one (default: altay)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISPACE_CACHE_TTL         Tenant cache TTL in seconds, 0 disables (default: 0)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISPACE_REDIS_URL         Redis URL for distributed caching (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("minispace %s\n", version.Get())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx := context.Background()
	md := markdown.New()

	themeManager := theme.NewManager(logger)
	if err := themeManager.LoadFS(themes.FS, true); err != nil {
		return fmt.Errorf("loading embedded themes: %w", err)
	}
	if err := themeManager.LoadDir(cfg.ThemesDir); err != nil {
		slog.Warn("failed to load external themes", "path", cfg.ThemesDir, "error", err)
	}
	if !themeManager.HasTheme(cfg.DefaultTheme) {
		return fmt.Errorf("default theme %q is not loaded", cfg.DefaultTheme)
	}
	slog.Info("theme manager initialized", "themes", themeManager.Names())

	// The repository stays nil when the backend is disabled or unreachable;
	// tenant sites are then served with demo content.
	var (
		db   *sql.DB
		repo content.Repository
	)
	if cfg.BackendEnabled && !cfg.DemoMode {
		db, err = openDatabase(ctx, cfg)
		if err != nil {
			slog.Error("content backend unavailable, serving demo content", "error", err)
		} else {
			defer func() {
				if err := db.Close(); err != nil {
					slog.Error("error closing database connection", "error", err)
				}
			}()
			repo = store.NewRepository(db, themeManager, cfg.DefaultTheme, md, logger)
		}
	}

	breaker := content.NewBreaker(repo, content.BreakerSettings{
		MaxFailures: cfg.BreakerMaxFailures,
		OpenTimeout: cfg.BreakerTimeout(),
	}, logger)

	health := handler.NewHealthHandler(db, breaker, themeManager, cfg.IsDevelopment())

	var source content.Source = breaker
	if cfg.CacheEnabled() && repo != nil {
		c, backend := cache.New(ctx, cache.Config{
			RedisURL:   cfg.RedisURL,
			Prefix:     cfg.CachePrefix,
			DefaultTTL: cfg.CacheDuration(),
			MaxSize:    cfg.CacheMaxSize,
		}, logger)
		defer func() { _ = c.Close() }()
		source = content.NewCachedRepository(breaker, c, cfg.CacheDuration())
		health.SetCache(backend, c)
		slog.Info("tenant cache enabled", "backend", backend, "ttl", cfg.CacheDuration())
	}

	provider, err := demo.New(md, cfg.DefaultTheme)
	if err != nil {
		return fmt.Errorf("loading demo content: %w", err)
	}

	resolver := navigation.NewResolver(cfg.BaseDomains()...)
	composer := compose.New(compose.Config{
		Repository: source,
		Demo:       provider,
		Engine:     themeManager,
		Resolver:   resolver,
		Options: compose.Options{
			IsDev:         cfg.IsDevelopment(),
			ForceDemoMode: cfg.DemoMode,
		},
		Logger: logger,
	})

	r := handler.NewRouter(handler.RouterConfig{
		Frontend:       handler.NewFrontendHandler(composer, cfg.IsDevelopment(), logger),
		Health:         health,
		Themes:         handler.NewThemeHandler(themeManager),
		Resolver:       resolver,
		Logger:         logger,
		IsDev:          cfg.IsDevelopment(),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		AccessLog:      true,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env,
			"base_domains", cfg.BaseDomains(), "demo_mode", cfg.DemoMode, "version", version.Get().Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// openDatabase opens, migrates and optionally seeds the content database.
func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	dbCfg := store.DefaultDBConfig()
	dbCfg.Driver = cfg.DBDriver
	dbCfg.Path = cfg.DBPath
	dbCfg.DSN = cfg.DBDSN

	if dbCfg.Driver == store.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	slog.Info("initializing database", "driver", dbCfg.Driver)
	db, err := store.Open(ctx, dbCfg)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(db, dbCfg.Driver); err != nil {
		_ = db.Close()
		return nil, err
	}

	if cfg.DoSeed {
		if err := store.Seed(ctx, db, slog.Default()); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("seeding database: %w", err)
		}
	}

	slog.Info("database ready")
	return db, nil
}
