package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/offboardhq/offboard/common/id"
	"github.com/offboardhq/offboard/common/llm"
	"github.com/offboardhq/offboard/common/logger"
	"github.com/offboardhq/offboard/common/otel"
	"github.com/offboardhq/offboard/core/config"
	"github.com/offboardhq/offboard/internal/agent"
	"github.com/offboardhq/offboard/internal/classify"
	"github.com/offboardhq/offboard/internal/notify"
	"github.com/offboardhq/offboard/internal/queue"
	"github.com/offboardhq/offboard/internal/scan"
	"github.com/offboardhq/offboard/internal/service/issue_tracker"
	"github.com/offboardhq/offboard/internal/service/source_control"
	"github.com/offboardhq/offboard/internal/service/wiki"
	"github.com/offboardhq/offboard/internal/store"
	"github.com/offboardhq/offboard/internal/worker"
	"github.com/offboardhq/offboard/internal/workflow"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	fmt.Printf("%s\n", banner)

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	slog.InfoContext(ctx, "offboard worker starting",
		"env", cfg.Env,
		"consumer_group", cfg.Queue.RedisGroup,
		"consumer_name", cfg.Queue.RedisConsumer)

	// Initialize snowflake ID generator (use different node ID than server)
	if err := id.Init(2); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	// Initialize Redis
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
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Queue.RedisStream)

	// Create consumer
	consumer, err := queue.NewRedisConsumer(redisClient, queue.ConsumerConfig{
		Stream:       cfg.Queue.RedisStream,
		Group:        cfg.Queue.RedisGroup,
		Consumer:     cfg.Queue.RedisConsumer,
		DLQStream:    cfg.Queue.RedisDLQStream,
		BatchSize:    1, // Process one offboarding at a time
		Block:        5 * time.Second,
		MaxAttempts:  3,
		RequeueDelay: time.Second,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create consumer", "error", err)
		os.Exit(1)
	}

	// Wire the same collaborator graph the API server uses; the worker
	// runs full workflows and org scans without holding an HTTP port.
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

	// Create processor and worker
	processor := worker.NewProcessor(orchestrator, scanner)
	w := worker.New(consumer, processor, worker.Config{
		MaxAttempts: 3,
	})

	// Create reclaimer
	reclaimer := worker.NewRedisReclaimer(redisClient, worker.RedisReclaimerConfig{
		Stream:    cfg.Queue.RedisStream,
		Group:     cfg.Queue.RedisGroup,
		Consumer:  cfg.Queue.RedisConsumer + "-reclaimer",
		MinIdle:   5 * time.Minute,
		Interval:  1 * time.Minute,
		BatchSize: 10,
	}, consumer, w.ProcessMessage)

	// Start worker and reclaimer
	errCh := make(chan error, 2)
	go func() {
		errCh <- w.Run(ctx)
	}()
	go func() {
		reclaimer.Run(ctx)
		errCh <- nil
	}()

	slog.InfoContext(ctx, "worker initialized and running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down worker...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Stop reclaimer first (quick)
	reclaimer.Stop()

	// Stop worker (may be processing)
	w.Stop()

	// Wait for goroutines with timeout
	select {
	case <-shutdownCtx.Done():
		slog.WarnContext(ctx, "shutdown timeout exceeded")
	case err := <-errCh:
		if err != nil {
			slog.ErrorContext(ctx, "worker error during shutdown", "error", err)
		}
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "worker shutdown complete")
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
 ██████╗ ███████╗███████╗██████╗  ██████╗  █████╗ ██████╗ ██████╗     ██╗    ██╗ ██████╗ ██████╗ ██╗  ██╗███████╗██████╗
██╔═══██╗██╔════╝██╔════╝██╔══██╗██╔═══██╗██╔══██╗██╔══██╗██╔══██╗    ██║    ██║██╔═══██╗██╔══██╗██║ ██╔╝██╔════╝██╔══██╗
██║   ██║█████╗  █████╗  ██████╔╝██║   ██║███████║██████╔╝██║  ██║    ██║ █╗ ██║██║   ██║██████╔╝█████╔╝ █████╗  ██████╔╝
██║   ██║██╔══╝  ██╔══╝  ██╔══██╗██║   ██║██╔══██║██╔══██╗██║  ██║    ██║███╗██║██║   ██║██╔══██╗██╔═██╗ ██╔══╝  ██╔══██╗
╚██████╔╝██║     ██║     ██████╔╝╚██████╔╝██║  ██║██║  ██║██████╔╝    ╚███╔███╔╝╚██████╔╝██║  ██║██║  ██╗███████╗██║  ██║
 ╚═════╝ ╚═╝     ╚═╝     ╚═════╝  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝      ╚══╝╚══╝  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝
`
