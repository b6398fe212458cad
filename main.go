package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/vladimiradmaev/diabetes-companion/internal/api"
	"github.com/vladimiradmaev/diabetes-companion/internal/auth"
	"github.com/vladimiradmaev/diabetes-companion/internal/bot"
	"github.com/vladimiradmaev/diabetes-companion/internal/bot/handlers"
	"github.com/vladimiradmaev/diabetes-companion/internal/bot/state"
	"github.com/vladimiradmaev/diabetes-companion/internal/config"
	"github.com/vladimiradmaev/diabetes-companion/internal/database"
	"github.com/vladimiradmaev/diabetes-companion/internal/interfaces"
	"github.com/vladimiradmaev/diabetes-companion/internal/logger"
	"github.com/vladimiradmaev/diabetes-companion/internal/repository"
	"github.com/vladimiradmaev/diabetes-companion/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		logger.Fatal("Failed to initialize logger", "error", err)
	}
	logger.Info("Starting Diabetes Companion", "log_level", cfg.Logger.Level.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatal("Companion stopped with error", "error", err)
	}
	logger.Info("Companion stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	db, err := database.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close(db)

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = state.Connect(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		logger.Info("Connected to Redis", "addr", cfg.Redis.Addr())
	}

	svcs, closeSvcs, err := buildServices(ctx, cfg, db, redisClient)
	if err != nil {
		return err
	}
	defer closeSvcs()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.TelegramToken != "" {
		var stateManager state.StateManager = state.NewManager()
		if redisClient != nil {
			stateManager = state.NewRedisManager(redisClient)
		}

		telegramBot, err := bot.NewBot(cfg.TelegramToken, handlers.Dependencies{
			Services:   svcs,
			HTTPClient: &http.Client{Timeout: 30 * time.Second},
		}, stateManager)
		if err != nil {
			return err
		}
		g.Go(func() error { return telegramBot.Start(ctx) })
	}

	if cfg.HTTP.Addr != "" {
		health := func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
		srv := api.NewServer(cfg.HTTP.Addr, api.NewRouter(cfg.HTTP, svcs, health))

		g.Go(func() error {
			logger.Info("HTTP server listening", "addr", cfg.HTTP.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// buildServices wires repositories into services. The returned func releases
// external clients.
func buildServices(ctx context.Context, cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (interfaces.Services, func(), error) {
	repos := repository.New(db)

	var revoker auth.Revoker = auth.NewMemoryRevoker()
	if redisClient != nil {
		revoker = auth.NewRedisRevoker(redisClient)
	}
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, revoker)

	settings := services.NewSettingsService(repos.Settings)
	logs := services.NewLogService(repos.Entries)

	svcs := interfaces.Services{
		Users:    services.NewUserService(repos.Users, cfg.DefaultTimezone),
		Identity: services.NewIdentityService(repos.Users, tokens, 0, cfg.DefaultTimezone),
		Settings: settings,
		Log:      logs,
		Dose:     services.NewDoseService(settings, logs),
		Trend:    services.NewTrendService(repos.Entries),
		Alarms:   services.NewAlarmService(repos.Alarms),
		Watcher:  services.NewWatcher(repos.Entries, cfg.WatchInterval),
	}

	closeFn := func() {}
	var gemini, openAI services.CarbEstimator
	if cfg.GeminiAPIKey != "" {
		model, err := services.NewGeminiModel(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return interfaces.Services{}, nil, err
		}
		gemini = services.NewModelCarbEstimator(model, "gemini")
		closeFn = func() { _ = model.Close() }
	}
	if cfg.OpenAIAPIKey != "" {
		openAI = services.NewModelCarbEstimator(services.NewOpenAIModel(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL), "openai")
	}
	// Gemini first, OpenAI when it fails
	svcs.Carbs = services.NewCarbEstimator(gemini, openAI)
	if svcs.Carbs == nil {
		logger.Warn("GEMINI_API_KEY and OPENAI_API_KEY not set, food photo recognition is disabled")
	}

	return svcs, closeFn, nil
}
