package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"videorelay/internal/cache"
	"videorelay/internal/calllog"
	"videorelay/internal/http/handlers"
	"videorelay/internal/http/httpapi"
	"videorelay/internal/infra"
	"videorelay/internal/infra/geoip"
	"videorelay/internal/middleware"
	"videorelay/internal/providers/grok"
	"videorelay/internal/task"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if len(cfg.APIKeys) == 0 {
		logger.Warn().Msg("no API_KEYS configured, authentication is disabled")
	}

	mediaCache, err := cache.New(cfg.CacheDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize media cache")
	}

	recorder, err := calllog.NewRecorder(cfg.CallLogFile, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("call log disabled")
		recorder = nil
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip lookup disabled")
		resolver = nil
	}
	var countryLookup middleware.CountryLookup
	if resolver != nil {
		countryLookup = resolver.CountryCode
	}

	tokens := grok.NewTokenPool(cfg.GrokSSOTokens)
	if tokens.Size() == 0 {
		logger.Warn().Msg("no GROK_SSO_TOKENS configured, upstream calls run unauthenticated")
	}
	client := grok.NewClient(grok.Options{
		BaseURL:    cfg.GrokBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.GrokTimeout},
	})

	tasks := task.NewService(task.Options{
		Store:        task.NewStore(cfg.DataFile, logger),
		Generator:    client,
		Credentials:  tokens,
		Cache:        mediaCache,
		CallLog:      recorder,
		Logger:       logger,
		MaxTasks:     cfg.MaxTasks,
		TTL:          cfg.TaskTTL,
		SaveInterval: cfg.SaveInterval,
	})
	tasks.Start()

	app := handlers.NewApp(tasks, logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		APIKeys:         cfg.APIKeys,
		AllowedOrigins:  cfg.AllowedOrigins,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   countryLookup,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	server := infra.NewHTTPServer(cfg, router)
	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}

	// Flush pending task state before the process exits; in-flight workers
	// are not joined.
	tasks.Shutdown()
	if err := recorder.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close call log")
	}
	if closer, ok := resolver.(io.Closer); ok {
		_ = closer.Close()
	}
	logger.Info().Msg("server stopped")
}
