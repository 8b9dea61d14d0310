package main

import (
	"context"
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
	"github.com/sirupsen/logrus"

	"github.com/Skufu/diseasepredict/internal/features"
	"github.com/Skufu/diseasepredict/internal/inference"
	"github.com/Skufu/diseasepredict/internal/predict"
	"github.com/Skufu/diseasepredict/internal/refdata"
)

type Config struct {
	Port        string
	DatabaseURL string
	EnableDB    bool
	ModelDir    string
	DataDir     string
	StaticRoot  string
	CORSOrigins []string
	LogLevel    logrus.Level
	LogJSON     bool
}

func main() {
	gin.SetMode(getEnv("GIN_MODE", "release"))

	cfg, err := loadConfig()
	if err != nil {
		logrus.Fatalf("config error: %v", err)
	}
	logger := newLogger(cfg)

	ctx := context.Background()
	var (
		db   HealthChecker
		refs refdata.Querier
	)
	if cfg.EnableDB {
		pool, err := connectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("database connection failed: %v", err)
		}
		defer pool.Close()
		db, refs = pool, pool
	}

	svc, err := buildService(ctx, cfg, refs, logger)
	if err != nil {
		logger.Fatalf("startup failed: %v", err)
	}

	router := setupRouter(routerDeps{
		Service:      svc,
		DB:           db,
		Logger:       logger,
		StaticRoot:   cfg.StaticRoot,
		AllowOrigins: cfg.CORSOrigins,
	})
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	logger.Infof("server listening on :%s", cfg.Port)
	waitForShutdown(server, logger)
}

func loadConfig() (*Config, error) {
	_ = godotenv.Load()

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		EnableDB:    strings.EqualFold(getEnv("ENABLE_DB", "false"), "true"),
		ModelDir:    getEnv("MODEL_DIR", "models"),
		DataDir:     getEnv("DATA_DIR", "data"),
		StaticRoot:  getEnv("STATIC_ROOT", detectStaticRoot()),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		LogLevel:    level,
	}

	switch format := strings.ToLower(getEnv("LOG_FORMAT", "text")); format {
	case "text":
	case "json":
		cfg.LogJSON = true
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", format)
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}

	for _, origin := range cfg.CORSOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return nil, fmt.Errorf("CORS_ORIGINS entry %q must be * or start with http:// or https://", origin)
		}
	}

	return cfg, nil
}

func newLogger(cfg *Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(cfg.LogLevel)
	if cfg.LogJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
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

// buildService loads the model artifacts and reference tables once. Reference
// tables come from Postgres when refs is set, otherwise from CSV files.
func buildService(ctx context.Context, cfg *Config, refs refdata.Querier, logger *logrus.Logger) (*predict.Service, error) {
	columns, err := features.SchemaOrDefault(filepath.Join(cfg.ModelDir, inference.ColumnsFile))
	if err != nil {
		return nil, fmt.Errorf("feature schema: %w", err)
	}
	encoder, err := features.NewEncoder(columns)
	if err != nil {
		return nil, fmt.Errorf("feature schema: %w", err)
	}

	model, err := inference.Load(cfg.ModelDir)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if model.Dim() != encoder.Width() {
		// Every prediction will fail with a shape error until the artifacts
		// and schema agree.
		logger.WithFields(logrus.Fields{
			"schema_width": encoder.Width(),
			"model_width":  model.Dim(),
		}).Warn("feature schema and model artifacts disagree")
	}
	logger.WithFields(logrus.Fields{
		"dir":      cfg.ModelDir,
		"features": model.Dim(),
		"labels":   model.Labels(),
	}).Info("model artifacts loaded")

	var (
		tables refdata.Tables
		source string
	)
	if refs != nil {
		source = "postgres"
		loadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		tables, err = refdata.LoadPostgres(loadCtx, refs)
	} else {
		source = cfg.DataDir
		tables, err = refdata.LoadCSV(cfg.DataDir)
	}
	if err != nil {
		return nil, fmt.Errorf("load reference tables: %w", err)
	}
	store := refdata.NewStore(tables)

	fields := logrus.Fields{"source": source}
	for name, n := range store.Stats() {
		fields[name] = n
	}
	logger.WithFields(fields).Info("reference tables loaded")

	return predict.NewService(encoder, model, store)
}

func waitForShutdown(server *http.Server, logger *logrus.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func detectStaticRoot() string {
	startDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	candidates := []string{
		filepath.Join(startDir, "web"),
		filepath.Join(filepath.Dir(startDir), "web"),
		filepath.Join(filepath.Dir(filepath.Dir(startDir)), "web"),
	}

	for _, dir := range candidates {
		if fileExists(filepath.Join(dir, "index.html")) {
			return dir
		}
	}

	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
