// Package main is the entry point for the neuropilot daemon and CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"neuropilot/internal/adapter/api"
	"neuropilot/internal/adapter/client"
	"neuropilot/internal/adapter/scraper"
	"neuropilot/internal/adapter/store"
	"neuropilot/internal/config"
	"neuropilot/internal/domain/entity"
	"neuropilot/internal/domain/repository"
	"neuropilot/internal/guard"
	"neuropilot/internal/logging"
	"neuropilot/internal/usecase"
)

var rootCmd = &cobra.Command{
	Use:   "pilot",
	Short: "Autonomous sales copilot: customer analysis, budget autopilot, competitor radar",
	Long: `pilot watches campaigns and competitor pages, adjusts ad budgets by
return-on-ad-spend rules, recommends counter-offers on price undercuts, and
profiles customer messages to suggest a response strategy.

Examples:
  pilot serve
  pilot run
  pilot loop --interval 30`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a single autopilot cycle and exit",
	RunE:  runOnce,
}

var loopCmd = &cobra.Command{
	Use:   "loop",
	Short: "Run autopilot cycles on a fixed interval until interrupted",
	RunE:  runLoop,
}

var intervalMinutes int

func init() {
	loopCmd.Flags().IntVarP(&intervalMinutes, "interval", "i", 0, "minutes between cycles (default from config)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(loopCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the wired components shared by every command.
type app struct {
	cfg        *config.Config
	log        *zap.Logger
	store      *store.SQLiteStore
	scraper    *scraper.RodScraper
	classifier *usecase.Classifier
	pricing    *usecase.PricingAdvisor
	scheduler  *usecase.Scheduler
}

func (a *app) Close() {
	if a.scraper != nil {
		a.scraper.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
	logging.Sync()
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logging.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	log := logging.L

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("PILOT_GEMINI_API_KEY is required")
	}

	st, err := store.Open(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	counter := store.NewRedisCounter(rdb)
	ledger := usecase.NewLedger(st, counter, logging.Named("ledger"))

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("init genai client: %w", err)
	}
	provider := client.NewGeminiClassifier(genaiClient, cfg.ClassifierModel)
	embedder := client.NewEmbedder(genaiClient, cfg.EmbeddingModel)

	// Semantic cache is optional; without qdrant every call goes to the model.
	var cache repository.ResultCache
	if cfg.QdrantHost != "" {
		qClient, err := qdrant.NewClient(&qdrant.Config{Host: cfg.QdrantHost, Port: cfg.QdrantPort})
		if err != nil {
			return nil, fmt.Errorf("connect to qdrant: %w", err)
		}
		qCache := store.NewQdrantCache(qClient, cfg.QdrantCollection, logging.Named("cache"))
		if err := qCache.InitCollection(ctx, 768); err != nil {
			return nil, fmt.Errorf("init qdrant collection: %w", err)
		}
		cache = qCache
	} else {
		log.Info("qdrant host not set, semantic cache disabled")
	}

	limiter := guard.NewRateLimiter(st, logging.Named("ratelimit"))
	quota := guard.NewQuotaGuard(st, counter, func(plan string) int {
		return cfg.QuotaFor(entity.Plan(plan))
	}, logging.Named("quota"))
	sanitizer := guard.NewSanitizer(cfg.SanitizerMaxLen)

	classifier := usecase.NewClassifier(provider, embedder, cache, limiter, quota, sanitizer, ledger, usecase.ClassifierConfig{
		MaxMessageLen:   cfg.MaxMessageLen,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
		Temperature:     cfg.Temperature,
		MaxOutputTokens: cfg.MaxOutputTokens,
		CostFor:         config.CostFor,
	}, logging.Named("classifier"))

	snapshots, err := scraper.New(cfg.Headless, cfg.PagePoolSize,
		time.Duration(cfg.FetchTimeout)*time.Second, logging.Named("scraper"))
	if err != nil {
		return nil, fmt.Errorf("start scraper: %w", err)
	}

	pricing := usecase.NewPricingAdvisor(cfg.MinMarginPct)
	budget := usecase.NewBudgetController(st, ledger, logging.Named("budget"))
	scheduler := usecase.NewScheduler(st, snapshots, budget, pricing, ledger, cfg.PagePoolSize, logging.Named("scheduler"))

	return &app{
		cfg:        cfg,
		log:        log,
		store:      st,
		scraper:    snapshots,
		classifier: classifier,
		pricing:    pricing,
		scheduler:  scheduler,
	}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	fiberApp := fiber.New(fiber.Config{AppName: "neuropilot"})
	handler := api.NewHandler(a.classifier, a.scheduler, a.pricing, a.store)
	api.SetupRouter(fiberApp, handler)

	a.log.Info("http api listening", zap.String("port", a.cfg.Port))
	return fiberApp.Listen(":" + a.cfg.Port)
}

func runOnce(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	report := a.scheduler.RunOnce(ctx)
	fmt.Printf("campaigns=%d competitors=%d actions=%d failures=%d\n",
		report.Campaigns, report.Competitors, report.Actions, report.Failures)
	return nil
}

func runLoop(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	minutes := intervalMinutes
	if minutes <= 0 {
		minutes = a.cfg.IntervalMinutes
	}
	a.log.Info("autopilot loop starting", zap.Int("interval_minutes", minutes))
	a.scheduler.Loop(ctx, time.Duration(minutes)*time.Minute)
	return nil
}
