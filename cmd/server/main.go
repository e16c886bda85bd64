package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/offboardhq/offboard/common/id"
	"github.com/offboardhq/offboard/common/llm"
	"github.com/offboardhq/offboard/common/logger"
	"github.com/offboardhq/offboard/common/otel"
	"github.com/offboardhq/offboard/core/config"
	"github.com/offboardhq/offboard/internal/agent"
	"github.com/offboardhq/offboard/internal/classify"
	"github.com/offboardhq/offboard/internal/http/middleware"
	httprouter "github.com/offboardhq/offboard/internal/http/router"
	"github.com/offboardhq/offboard/internal/notify"
	"github.com/offboardhq/offboard/internal/queue"
	"github.com/offboardhq/offboard/internal/scan"
	"github.com/offboardhq/offboard/internal/service/issue_tracker"
	"github.com/offboardhq/offboard/internal/service/source_control"
	"github.com/offboardhq/offboard/internal/service/wiki"
	"github.com/offboardhq/offboard/internal/store"
	"github.com/offboardhq/offboard/internal/workflow"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		// Can't use slog yet — OTel failed before logger setup
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "offboard server starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	redisOpts, err := redis.ParseURL(cfg.Queue.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Queue.RedisStream)

	taskProducer := queue.NewRedisProducer(redisClient, cfg.Queue.RedisStream, nil)
	defer taskProducer.Close()

	tickets := issue_tracker.NewJiraIssueTrackerService(cfg.Jira)
	source, err := source_control.NewGitLabSourceControlService(cfg.GitLab)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create gitlab client", "error", err)
		os.Exit(1)
	}
	archive := wiki.NewConfluenceArchiveWriter(cfg.Confluence)

	classifier := classify.NewKeywordClassifier()
	engine := scan.NewEngine(tickets, source, classifier)
	scanner := scan.NewOrgScanner(tickets, source, engine, buildNotifier(ctx, cfg, redisClient))

	orchestrator := workflow.NewOrchestrator(
		store.NewMemorySessionStore(),
		engine,
		source,
		buildInterviewer(ctx, cfg, classifier),
		archive,
		workflow.Config{PhaseTimeout: cfg.Workflow.PhaseTimeout},
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, orchestrator, scanner, taskProducer)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, orchestrator workflow.Orchestrator, scanner scan.OrgScanner, producer queue.Producer) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, orchestrator, scanner, producer, httprouter.RouterConfig{
		IsProduction: cfg.IsProduction(),
	})

	return router
}

// buildInterviewer picks the conversational agent: LLM-backed when
// configured, with the deterministic heuristic agent as its fallback and
// as the default.
func buildInterviewer(ctx context.Context, cfg config.Config, classifier classify.Classifier) agent.Agent {
	heuristic := agent.NewHeuristicAgent(classifier)
	if !cfg.InterviewLLM.Enabled() {
		slog.InfoContext(ctx, "interview llm disabled, using heuristic interviewer")
		return heuristic
	}

	client, err := llm.New(llm.Config{
		APIKey:    cfg.InterviewLLM.APIKey,
		BaseURL:   cfg.InterviewLLM.BaseURL,
		Model:     cfg.InterviewLLM.Model,
		MaxTokens: cfg.InterviewLLM.MaxTokens,
	})
	if err != nil {
		slog.WarnContext(ctx, "interview llm unavailable, using heuristic interviewer", "error", err)
		return heuristic
	}

	slog.InfoContext(ctx, "interview llm enabled", "model", client.Model())
	return agent.NewLLMAgent(client, heuristic)
}

// buildNotifier always logs risk alerts; the Redis stream target joins in
// when configured so dashboards can consume them.
func buildNotifier(ctx context.Context, cfg config.Config, redisClient *redis.Client) notify.Notifier {
	if !cfg.Notify.Enabled() {
		return notify.NewSlogNotifier()
	}

	slog.InfoContext(ctx, "risk notifications enabled", "stream", cfg.Notify.Stream)
	return notify.NewMultiNotifier(
		notify.NewSlogNotifier(),
		notify.NewRedisNotifier(redisClient, cfg.Notify.Stream),
	)
}

const banner = `
 ██████╗ ███████╗███████╗██████╗  ██████╗  █████╗ ██████╗ ██████╗     ███████╗███████╗██████╗ ██╗   ██╗███████╗██████╗
██╔═══██╗██╔════╝██╔════╝██╔══██╗██╔═══██╗██╔══██╗██╔══██╗██╔══██╗    ██╔════╝██╔════╝██╔══██╗██║   ██║██╔════╝██╔══██╗
██║   ██║█████╗  █████╗  ██████╔╝██║   ██║███████║██████╔╝██║  ██║    ███████╗█████╗  ██████╔╝██║   ██║█████╗  ██████╔╝
██║   ██║██╔══╝  ██╔══╝  ██╔══██╗██║   ██║██╔══██║██╔══██╗██║  ██║    ╚════██║██╔══╝  ██╔══██╗╚██╗ ██╔╝██╔══╝  ██╔══██╗
╚██████╔╝██║     ██║     ██████╔╝╚██████╔╝██║  ██║██║  ██║██████╔╝    ███████║███████╗██║  ██║ ╚████╔╝ ███████╗██║  ██║
 ╚═════╝ ╚═╝     ╚═╝     ╚═════╝  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝     ╚══════╝╚══════╝╚═╝  ╚═╝  ╚═══╝  ╚══════╝╚═╝  ╚═╝
`
