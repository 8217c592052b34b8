package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/l33tlabs/leetgate/config"
	"github.com/l33tlabs/leetgate/errors"
	"github.com/l33tlabs/leetgate/server"
	"github.com/l33tlabs/leetgate/server/gemini"
	"github.com/l33tlabs/leetgate/server/handlers"
	"github.com/l33tlabs/leetgate/server/metrics"
	"github.com/l33tlabs/leetgate/server/routing"
	"github.com/l33tlabs/leetgate/server/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configFile = flag.String("config", "leetgate.yaml", "Path to configuration file")
	validate   = flag.Bool("validate", false, "Validate configuration and exit")
	version    = flag.Bool("version", false, "Print version and exit")
)

const Version = "v0.1.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("leetgate %s\n", Version)
		os.Exit(0)
	}

	// Load configuration through the watcher so edits to the file are
	// picked up at runtime.
	bootLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	watcher, err := config.NewConfigWatcher(*configFile, bootLogger)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	defer watcher.Close()

	cfg := watcher.GetCurrentConfig()

	// Just validate and exit if requested
	if *validate {
		fmt.Println("Configuration is valid")
		os.Exit(0)
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()
	errors.SetLogger(logger)

	// Log reloads; server-level settings need a restart to apply.
	go func() {
		for newCfg := range watcher.Subscribe() {
			logger.Info("Configuration reloaded",
				zap.Int("routes", len(newCfg.Routes)),
				zap.String("model", newCfg.Gemini.Model),
			)
		}
	}()

	m := metrics.NewMetrics()

	counter, err := validation.NewTokenCounter()
	if err != nil {
		logger.Fatal("Failed to initialize token counter", zap.Error(err))
	}

	client := gemini.NewClient(cfg.Gemini, logger, m)
	keys := handlers.EnvKeySource{Var: cfg.Gemini.APIKeyEnv}

	handlerMap := map[string]http.Handler{
		"translate": handlers.NewTranslateHandler(client, keys, counter, cfg.Gemini.MaxPromptTokens, logger, m),
		"english":   handlers.NewEnglishHandler(client, keys, counter, cfg.Gemini.MaxPromptTokens, logger, m),
		"health":    handlers.HealthHandler(),
		"metrics":   m.Handler(),
	}

	router := routing.NewRouter(cfg, handlerMap, logger, m)
	srv := server.NewServer(cfg.Server, router)

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	logger.Info("Starting leetgate",
		zap.String("version", Version),
		zap.Int("port", cfg.Server.Port),
		zap.String("model", cfg.Gemini.Model),
	)
	if err := srv.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}

// buildLogger constructs a zap logger matching the configured level and
// format.
func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "text" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
