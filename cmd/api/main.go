package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"artstudio/internal/adapter/repo"
	"artstudio/internal/domain"
	"artstudio/internal/generation"
	"artstudio/internal/http/handlers"
	httpapi "artstudio/internal/http/httpapi"
	"artstudio/internal/imagegen"
	"artstudio/internal/infra"
	"artstudio/internal/infra/geoip"
	"artstudio/internal/middleware"
	"artstudio/internal/providers/dashscope"
	"artstudio/internal/storage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)
	ctx := context.Background()

	if !cfg.HasDashScopeKey() {
		logger.Warn().Msg("DASHSCOPE_API_KEY is not set; generation requests will answer 503")
	}

	var history domain.GenerationRepository
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	if dbpool != nil {
		defer dbpool.Close()
		genRepo := repo.NewGenerationRepository(infra.NewSQLRunner(dbpool, logger))
		if err := genRepo.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare history table")
		}
		history = genRepo
		logger.Info().Msg("generation history enabled")
	}

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.GeoIPDBPath).Msg("geoip disabled")
	}
	defer resolver.Close()

	generated, uploads, err := buildStores(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("failed to prepare image storage")
	}

	format := imagegen.ParseBodyFormat(cfg.DashScopeBodyFormat)
	client := dashscope.NewClient(dashscope.Options{
		APIKey:         cfg.DashScopeAPIKey,
		BaseURL:        cfg.DashScopeBaseURL,
		Model:          cfg.DashScopeModel,
		Format:         format,
		Logger:         &logger,
		RequestTimeout: cfg.DashScopeTimeout,
	})

	var placeholder *generation.Placeholder
	if cfg.FallbackEnabled {
		placeholder = generation.NewPlaceholder(cfg.PlaceholderDir, cfg.PlaceholderURL, generated)
	}

	svc := generation.NewService(generation.Options{
		Vendor:      client,
		Normalizer:  imagegen.NewNormalizer(format, cfg.DashScopeModel, cfg.DashScopeStyleTransferModel),
		Store:       generated,
		Persist:     cfg.PersistImages,
		Placeholder: placeholder,
		History:     history,
		Logger:      &logger,
	})

	app := handlers.NewApp(cfg, &logger, svc, uploads)
	router := httpapi.NewRouter(app, middleware.CountryLookup(resolver.Lookup()))
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("storage", cfg.StorageBackend).
			Str("body_format", string(format)).
			Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.DashScopeTimeout+5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func buildStores(ctx context.Context, cfg *infra.Config) (storage.ImageStore, storage.ImageStore, error) {
	if cfg.StorageBackend == infra.StorageBackendMinio {
		base, err := storage.NewMinioStore(ctx, storage.MinioOptions{
			Endpoint:      cfg.MinioEndpoint,
			AccessKey:     cfg.MinioAccessKey,
			SecretKey:     cfg.MinioSecretKey,
			UseSSL:        cfg.MinioUseSSL,
			Bucket:        cfg.MinioBucket,
			PublicBaseURL: cfg.MinioPublicBaseURL,
		})
		if err != nil {
			return nil, nil, err
		}
		return base.WithPrefix("generated"), base.WithPrefix("uploads"), nil
	}

	generated, err := storage.NewFileStore(cfg.GeneratedDir, "/generated")
	if err != nil {
		return nil, nil, err
	}
	uploads, err := storage.NewFileStore(cfg.UploadDir, "/uploads")
	if err != nil {
		return nil, nil, err
	}
	return generated, uploads, nil
}
