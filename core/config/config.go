package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	OTel         OTelConfig
	Jira         JiraConfig
	GitLab       GitLabConfig
	Confluence   ConfluenceConfig
	InterviewLLM LLMConfig
	Queue        QueueConfig
	Notify       NotifyConfig
	Workflow     WorkflowConfig
	Env          string
	Port         string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

// JiraConfig holds credentials for the Jira Cloud REST API (basic auth
// with account email + API token).
type JiraConfig struct {
	BaseURL  string
	Email    string
	APIToken string
}

type GitLabConfig struct {
	BaseURL    string
	Token      string
	ProjectIDs []int
}

type ConfluenceConfig struct {
	BaseURL  string
	Username string
	APIToken string
	SpaceKey string
}

type LLMConfig struct {
	APIKey    string
	BaseURL   string // Optional: for custom endpoints
	Model     string
	MaxTokens int
}

type QueueConfig struct {
	RedisURL       string
	RedisStream    string
	RedisGroup     string
	RedisDLQStream string
	RedisConsumer  string
}

type NotifyConfig struct {
	RedisURL string
	Stream   string
}

type WorkflowConfig struct {
	PhaseTimeout time.Duration
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeWorker ServiceType = "worker"
)

// Load loads configuration from environment variables.
// In development, it loads from service-specific .env files:
//   - .env.server for the API server
//   - .env.worker for the background worker
//
// Falls back to .env if service-specific file doesn't exist.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("OFFBOARD_ENV", "development") == "development" {
		// Try service-specific env file first, fall back to .env
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	defaultConsumer := "api-server"
	if serviceType == ServiceTypeWorker {
		defaultConsumer = "worker-1"
	}

	cfg := Config{
		Env:  getEnv("OFFBOARD_ENV", "development"),
		Port: getEnv("PORT", "8080"),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "offboard"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		Jira: JiraConfig{
			BaseURL:  getEnv("JIRA_BASE_URL", ""),
			Email:    getEnv("JIRA_EMAIL", ""),
			APIToken: getEnv("JIRA_API_TOKEN", ""),
		},
		GitLab: GitLabConfig{
			BaseURL:    getEnv("GITLAB_BASE_URL", "https://gitlab.com"),
			Token:      getEnv("GITLAB_TOKEN", ""),
			ProjectIDs: getEnvIntList("GITLAB_PROJECT_IDS"),
		},
		Confluence: ConfluenceConfig{
			BaseURL:  getEnv("CONFLUENCE_BASE_URL", ""),
			Username: getEnv("CONFLUENCE_USERNAME", ""),
			APIToken: getEnv("CONFLUENCE_API_TOKEN", ""),
			SpaceKey: getEnv("CONFLUENCE_SPACE_KEY", "ENG"),
		},
		InterviewLLM: LLMConfig{
			APIKey:    getEnv("INTERVIEW_LLM_API_KEY", ""),
			BaseURL:   getEnv("INTERVIEW_LLM_BASE_URL", ""),
			Model:     getEnv("INTERVIEW_LLM_MODEL", "gpt-4o-mini"),
			MaxTokens: getEnvInt("INTERVIEW_LLM_MAX_TOKENS", 4096),
		},
		Queue: QueueConfig{
			RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
			RedisStream:    getEnv("REDIS_STREAM", "offboard_tasks"),
			RedisGroup:     getEnv("REDIS_CONSUMER_GROUP", "offboard_group"),
			RedisDLQStream: getEnv("REDIS_DLQ_STREAM", "offboard_tasks_dlq"),
			RedisConsumer:  getEnv("REDIS_CONSUMER_NAME", defaultConsumer),
		},
		Notify: NotifyConfig{
			RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
			Stream:   getEnv("NOTIFY_STREAM", "offboard_risk_alerts"),
		},
		Workflow: WorkflowConfig{
			PhaseTimeout: getEnvDuration("WORKFLOW_PHASE_TIMEOUT", 2*time.Minute),
		},
	}

	if cfg.Jira.BaseURL == "" || cfg.Jira.Email == "" || cfg.Jira.APIToken == "" {
		return Config{}, fmt.Errorf("JIRA_BASE_URL, JIRA_EMAIL and JIRA_API_TOKEN are required")
	}

	if cfg.GitLab.Token == "" || len(cfg.GitLab.ProjectIDs) == 0 {
		return Config{}, fmt.Errorf("GITLAB_TOKEN and GITLAB_PROJECT_IDS are required")
	}

	if cfg.Confluence.BaseURL == "" || cfg.Confluence.Username == "" || cfg.Confluence.APIToken == "" {
		return Config{}, fmt.Errorf("CONFLUENCE_BASE_URL, CONFLUENCE_USERNAME and CONFLUENCE_API_TOKEN are required")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c LLMConfig) Enabled() bool {
	return c.APIKey != ""
}

func (c NotifyConfig) Enabled() bool {
	return c.RedisURL != "" && c.Stream != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvIntList parses a comma-separated list of integers, skipping
// entries that do not parse.
func getEnvIntList(key string) []int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}
	var out []int
	for _, part := range strings.Split(value, ",") {
		if i, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			out = append(out, i)
		}
	}
	return out
}
