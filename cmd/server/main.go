package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"moneytalk/internal/agent"
	"moneytalk/internal/config"
	"moneytalk/internal/convo"
	"moneytalk/internal/database"
	"moneytalk/internal/handlers"
	"moneytalk/internal/jobs"
	"moneytalk/internal/ledger"
	"moneytalk/internal/llm"
	"moneytalk/internal/logging"
	"moneytalk/internal/middleware"
	"moneytalk/internal/notify"
	"moneytalk/internal/query"
	"moneytalk/internal/stock"
)

// completerAdapter bridges the llm client into the agent's completion
// interface.
type completerAdapter struct {
	client llm.Client
}

func (a completerAdapter) Generate(ctx context.Context, prompt string, cfg agent.GenOptions) (string, error) {
	return a.client.Generate(ctx, prompt, llm.GenConfig{
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("ℹ️  [CONFIG] No .env file found, using environment variables")
	}

	logging.Init()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := database.NewMongoDB(cfg.MongoURI)
	if err != nil {
		log.Fatalf("🚨 [MONGO] Connection failed: %v", err)
	}
	if err := db.Initialize(ctx); err != nil {
		log.Fatalf("🚨 [MONGO] Initialization failed: %v", err)
	}
	log.Println("✅ [MONGO] Connected and initialized")

	var redisClient *redis.Client
	var notifier agent.Notifier
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("🚨 [REDIS] Invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("⚠️  [REDIS] Ping failed, entry events may be dropped: %v", err)
		} else {
			log.Println("✅ [REDIS] Connected")
		}
		notifier = notify.NewPublisher(redisClient, cfg.RedisChannel)
	} else {
		log.Println("ℹ️  [REDIS] Not configured, entry events disabled")
	}

	var completer agent.Completer
	if cfg.GeminiAPIKey != "" {
		gemini := llm.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
		cached := llm.NewCachedClient(gemini, rate.Limit(cfg.LLMRateLimit), cfg.LLMBurst)
		completer = completerAdapter{client: cached}
		log.Println("✅ [LLM] Completion service enabled")
	} else {
		log.Println("ℹ️  [LLM] No API key, running rules-only")
	}

	var stocks agent.StockProvider
	if cfg.StockFeedURL != "" {
		stocks = stock.NewClient(cfg.StockFeedURL)
		log.Println("✅ [STOCK] Price feed enabled")
	} else {
		log.Println("ℹ️  [STOCK] No price feed, ticker lookups disabled")
	}

	contexts := convo.NewStore()
	store := ledger.NewStore(db)
	queries := query.NewConstructor(store)
	bot := agent.New(store, queries, contexts, completer, stocks, notifier)

	scheduler := jobs.NewJobScheduler()
	scheduler.Register("context_metrics", jobs.NewContextMetricsJob(contexts))
	scheduler.Start()

	app := fiber.New(fiber.Config{
		AppName:      "moneytalk",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	if cfg.Environment != "production" {
		app.Use(logger.New())
	}

	prometheus := fiberprometheus.New("moneytalk")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	chat := handlers.NewChatHandler(bot)
	session := handlers.NewSessionHandler(contexts)
	health := handlers.NewHealthHandler(db, redisClient)
	handlers.SetupRoutes(app, chat, session, health, middleware.LoadRateLimitConfig())

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("🚨 [SERVER] Listen failed: %v", err)
		}
	}()
	log.Printf("🚀 [SERVER] Listening on port %s", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 [SERVER] Shutting down...")
	scheduler.Stop()

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("⚠️  [SERVER] Shutdown: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := db.Close(shutdownCtx); err != nil {
		log.Printf("⚠️  [MONGO] Close: %v", err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("⚠️  [REDIS] Close: %v", err)
		}
	}

	log.Println("✅ [SERVER] Stopped")
}
