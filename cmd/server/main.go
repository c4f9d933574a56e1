package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Skufu/GoMaternal/internal/classifier"
	"github.com/Skufu/GoMaternal/internal/dataset"
	"github.com/Skufu/GoMaternal/internal/report"
	"github.com/Skufu/GoMaternal/internal/risk"
)

const (
	backendRemote = "remote"
	backendRules  = "rules"

	sourceCSV      = "csv"
	sourcePostgres = "postgres"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Port              string
	LogLevel          string
	DatabaseURL       string
	EnableDB          bool
	ClassifierBackend string
	ClassifierURL     string
	ClassifierTimeout time.Duration
	DatasetSource     string
	DatasetPath       string
	DatasetTable      string
}

func main() {
	gin.SetMode(getEnv("GIN_MODE", "release"))

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	var pool *pgxpool.Pool
	var db HealthChecker
	if cfg.EnableDB {
		pool, err = connectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("database connection failed", zap.Error(err))
		}
		defer pool.Close()
		db = pool
	}

	table, err := loadDataset(ctx, cfg, pool)
	if err != nil {
		log.Warn("dataset unavailable", zap.String("source", cfg.DatasetSource), zap.Error(err))
	} else {
		log.Info("dataset loaded", zap.Int("rows", len(table.Rows)), zap.Strings("columns", table.Columns))
	}

	router := setupRouter(&server{
		db:         db,
		classifier: newClassifier(cfg),
		backend:    cfg.ClassifierBackend,
		reports:    report.NewGenerator(),
		dataset:    table,
		log:        log,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.ClassifierTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	log.Info("server listening",
		zap.String("port", cfg.Port),
		zap.String("classifier", cfg.ClassifierBackend),
	)
	waitForShutdown(srv, log)
}

func loadConfig() (*Config, error) {
	_ = godotenv.Load()

	timeout, err := time.ParseDuration(getEnv("CLASSIFIER_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLASSIFIER_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		EnableDB:          strings.EqualFold(getEnv("ENABLE_DB", "false"), "true"),
		ClassifierBackend: strings.ToLower(getEnv("CLASSIFIER_BACKEND", backendRemote)),
		ClassifierURL:     os.Getenv("CLASSIFIER_URL"),
		ClassifierTimeout: timeout,
		DatasetSource:     strings.ToLower(getEnv("DATASET_SOURCE", sourceCSV)),
		DatasetPath:       getEnv("DATASET_PATH", "maternal_data.csv"),
		DatasetTable:      getEnv("DATASET_TABLE", "maternal_health"),
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}

	switch cfg.ClassifierBackend {
	case backendRemote:
		if cfg.ClassifierURL == "" {
			return nil, fmt.Errorf("CLASSIFIER_URL is required when CLASSIFIER_BACKEND=%s", backendRemote)
		}
	case backendRules:
	default:
		return nil, fmt.Errorf("unknown CLASSIFIER_BACKEND %q", cfg.ClassifierBackend)
	}

	switch cfg.DatasetSource {
	case sourceCSV:
	case sourcePostgres:
		if !cfg.EnableDB {
			return nil, fmt.Errorf("DATASET_SOURCE=%s requires ENABLE_DB=true", sourcePostgres)
		}
	default:
		return nil, fmt.Errorf("unknown DATASET_SOURCE %q", cfg.DatasetSource)
	}

	return cfg, nil
}

func newClassifier(cfg *Config) risk.Classifier {
	if cfg.ClassifierBackend == backendRules {
		return classifier.Rules{}
	}
	return classifier.NewHTTPClient(cfg.ClassifierURL, cfg.ClassifierTimeout)
}

func loadDataset(ctx context.Context, cfg *Config, pool *pgxpool.Pool) (*dataset.Table, error) {
	var loader dataset.Loader
	switch cfg.DatasetSource {
	case sourcePostgres:
		if pool == nil {
			return nil, errors.New("database is not connected")
		}
		loader = dataset.PostgresLoader{DB: pool, Table: cfg.DatasetTable}
	default:
		loader = dataset.CSVLoader{Path: resolveDataPath(cfg.DatasetPath)}
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return loader.Load(ctx)
}

func connectDB(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}

func waitForShutdown(srv *http.Server, log *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// resolveDataPath looks for a relative dataset path in the working directory
// and up to two parents, so the binary can run from cmd/server during development.
func resolveDataPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	startDir, err := os.Getwd()
	if err != nil {
		return path
	}

	candidates := []string{
		startDir,
		filepath.Dir(startDir),
		filepath.Dir(filepath.Dir(startDir)),
	}

	for _, dir := range candidates {
		if fileExists(filepath.Join(dir, path)) {
			return filepath.Join(dir, path)
		}
	}

	return path
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
