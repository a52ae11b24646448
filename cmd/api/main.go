package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/buskerbot/permit-assistant/internal/api/router"
	"github.com/buskerbot/permit-assistant/internal/application"
	appconfig "github.com/buskerbot/permit-assistant/internal/config"
	"github.com/buskerbot/permit-assistant/internal/dispatch"
	"github.com/buskerbot/permit-assistant/internal/docs"
	"github.com/buskerbot/permit-assistant/internal/events"
	"github.com/buskerbot/permit-assistant/internal/intent"
	"github.com/buskerbot/permit-assistant/internal/line"
	"github.com/buskerbot/permit-assistant/internal/media"
	"github.com/buskerbot/permit-assistant/internal/observability/metrics"
	"github.com/buskerbot/permit-assistant/internal/session"
	"github.com/buskerbot/permit-assistant/internal/window"
	"github.com/buskerbot/permit-assistant/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting permit-assistant API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"tier", cfg.DialogueTier,
	)

	ctx := context.Background()

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		logger.Error("invalid timezone", "timezone", cfg.TimeZone, "error", err)
		os.Exit(1)
	}

	// Redis: sessions and finalize tokens.
	redisOpts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}
	sessions := session.NewStore(rdb, cfg.SessionTTL, nil)
	guard := application.NewFinalizeGuard(rdb, time.Hour)

	// Postgres: application records and webhook dedupe.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	records := application.NewStore(pool)
	dedupe := events.NewProcessedStore(pool, cfg.DedupeTTL)

	// Dedupe rows are only useful within the redelivery horizon; trim
	// the table hourly.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			purgeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			removed, err := dedupe.PurgeExpired(purgeCtx, time.Now())
			cancel()
			if err != nil {
				logger.Error("processed-event purge failed", "error", err)
				continue
			}
			if removed > 0 {
				logger.Info("purged processed events", "removed", removed)
			}
		}
	}()

	// AWS: Bedrock for classification, S3 for uploaded videos.
	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	videos := media.NewVideoStore(s3.NewFromConfig(awsCfg), cfg.VideoBucket)

	classifier := buildClassifier(ctx, cfg, awsCfg, logger)

	// LINE channel.
	lineClient := line.NewClient(cfg.LineAccessToken)
	lineClient.SetAPIBase(cfg.LineAPIBaseURL)
	lineClient.SetDataBase(cfg.LineDataBaseURL)

	// Automation collaborator.
	automation := docs.NewClient(cfg.AutomationBaseURL, cfg.AutomationTimeout)
	callbackURL := ""
	if cfg.PublicBaseURL != "" {
		callbackURL = cfg.PublicBaseURL + "/webhooks/automation/callback"
	}
	finalizer := application.NewFinalizer(records, automation, sessions, callbackURL, cfg.AutomationTimeout, logger.Logger)

	assistantMetrics := metrics.NewAssistantMetrics(nil)

	dispatcher := dispatch.New(
		dispatch.Config{
			Tier: cfg.DialogueTier,
			Rules: window.Rules{
				First:  window.Period{StartDay: cfg.Period1Start, EndDay: cfg.Period1End, AdvanceMonths: cfg.Period1Advance},
				Second: window.Period{StartDay: cfg.Period2Start, EndDay: cfg.Period2End, AdvanceMonths: cfg.Period2Advance},
			},
			Location:         loc,
			DefaultSaturdays: cfg.DefaultSaturdayCount,
		},
		dispatch.Deps{
			Sessions:   sessions,
			Classifier: classifier,
			Finalizer:  finalizer,
			Guard:      guard,
			Dedupe:     dedupe,
			Replier:    lineClient,
			Content:    lineClient,
			Videos:     videos,
			Records:    records,
			Metrics:    assistantMetrics,
			Logger:     logger.Logger,
		},
	)

	webhook := line.NewWebhookHandler(cfg.LineChannelSecret, func(ev events.Inbound) {
		// The webhook response is already committed; each event gets
		// its own bounded context.
		go func() {
			evCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()
			dispatcher.HandleEvent(evCtx, ev)
		}()
	})

	r := router.New(&router.Config{
		Logger:         logger,
		LineWebhook:    webhook,
		Automation:     dispatcher,
		MetricsHandler: promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// loadAWSConfig builds the AWS config, preferring static credentials
// when provided and honoring a local endpoint override for development
// against LocalStack.
func loadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	if cfg.AWSEndpointOverride != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(cfg.AWSEndpointOverride))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

// buildClassifier assembles the LLM chain: Bedrock primary, Gemini
// fallback, keywords as the last resort inside the classifier itself.
func buildClassifier(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) *intent.Classifier {
	var llm intent.LLMClient

	if cfg.BedrockModelID != "" {
		llm = intent.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
	}

	if cfg.GeminiAPIKey != "" {
		gemini, err := intent.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Warn("gemini client unavailable", "error", err)
		} else if llm != nil {
			llm = intent.NewFallbackLLMClient(llm, gemini, logger.Logger)
		} else {
			llm = gemini
		}
	}

	if llm == nil {
		logger.Warn("no LLM provider configured, intent classification runs on keywords only")
	}

	return intent.NewClassifier(llm, cfg.BedrockModelID, cfg.ClassifierTimeout, logger.Logger)
}
