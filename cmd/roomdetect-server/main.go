// Command roomdetect-server runs the floor-plan room-detection HTTP
// service, wiring configuration, caching, the external LM/vision
// collaborators, and the detection orchestrator into a chi router.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arxfloor/roomdetect/internal/auth"
	"github.com/arxfloor/roomdetect/internal/cache"
	"github.com/arxfloor/roomdetect/internal/config"
	"github.com/arxfloor/roomdetect/internal/extract"
	"github.com/arxfloor/roomdetect/internal/httpapi"
	"github.com/arxfloor/roomdetect/internal/logger"
	"github.com/arxfloor/roomdetect/internal/orchestrator"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML configuration file")
		port       = flag.String("port", "", "Port to listen on (overrides config and PORT env)")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	if *verbose {
		logger.SetLevel(logger.DEBUG)
	} else {
		logger.SetLevel(logger.INFO)
	}

	logger.Info("Starting room detection service")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration: %v", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Port = *port
	}

	lmClient := &extract.Client{
		BaseURL:  "https://api.openai.com/v1",
		APIKey:   cfg.Vision.APIKey,
		Model:    cfg.Vision.Model,
		CacheTTL: cfg.Cache.LMResponseTTL,
	}
	visionClient := &extract.Client{
		BaseURL:  "https://api.openai.com/v1",
		APIKey:   cfg.Vision.APIKey,
		Model:    cfg.Vision.Model,
		CacheTTL: cfg.Cache.LMResponseTTL,
	}

	if cfg.Vision.APIKey != "" {
		responseCache, err := cache.NewResponseCache(cfg.Cache.RedisURL)
		if err != nil {
			logger.Error("failed to connect response cache: %v", err)
			os.Exit(1)
		}
		lmClient.Cache = responseCache
		visionClient.Cache = responseCache
	} else {
		logger.Warn("OPENAI_API_KEY not set; AI-parser and vision strategies will fail with AllMethodsFailed")
	}

	memo, err := cache.NewMemo()
	if err != nil {
		logger.Error("failed to construct request-scoped memoization cache: %v", err)
		os.Exit(1)
	}

	orch := &orchestrator.Orchestrator{
		LMClient:   lmClient,
		Vision:     visionClient,
		Vectorizer: &extract.ExecVectorizer{},
		Memo:       memo,
	}

	var authMW *auth.Middleware
	if cfg.Security.EnableAuth {
		authMW = auth.New(cfg.Security.JWTSecret)
	} else {
		logger.Warn("auth disabled; paid-strategy routes are unreachable until JWT_SECRET is set")
	}

	server := &httpapi.Server{
		Orchestrator:   orch,
		AllowedOrigins: cfg.AllowedOrigins,
		Auth:           authMW,
	}

	addr := ":" + cfg.Port
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.NewRouter(),
		ReadTimeout:  cfg.Timeouts.Multimodal,
		WriteTimeout: cfg.Timeouts.Multimodal,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("listening on %s", addr)
		logger.Info("health check: http://localhost%s/health", addr)
		logger.Info("metrics: http://localhost%s/metrics", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error: %v", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to gracefully shut down: %v", err)
		os.Exit(1)
	}

	fmt.Fprintln(os.Stderr, "server stopped")
}
