package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/xmlreport/internal/report"
	"github.com/dgallion1/xmlreport/internal/rules"
)

type Config struct {
	Port string

	// Auth
	ReportAPIKey string

	// Rules and report defaults
	RulesDir                string
	ReportTitle             string
	DefaultFormat           string
	LabelFragmentPrecedence string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL      time.Duration
	StatsWindow time.Duration

	// PDF
	PDFCompress bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		ReportAPIKey: os.Getenv("REPORT_API_KEY"),

		RulesDir:                envOr("RULES_DIR", "config"),
		ReportTitle:             os.Getenv("REPORT_TITLE"),
		DefaultFormat:           envOr("DEFAULT_FORMAT", "pdf"),
		LabelFragmentPrecedence: envOr("LABEL_FRAGMENT_PRECEDENCE", string(rules.PrecedenceDeclared)),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20971520), // 20MB

		JobTTL:      envDuration("JOB_TTL", 1*time.Hour),
		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),

		PDFCompress: envBool("PDF_COMPRESS", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20971520
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

// Validate checks the settings the server cannot run without.
func (c Config) Validate() error {
	if c.ReportAPIKey == "" {
		return fmt.Errorf("REPORT_API_KEY is required")
	}
	return c.ValidateReport()
}

// ValidateReport checks the settings shared by the CLI and the server.
func (c Config) ValidateReport() error {
	if _, err := report.ForFormat(c.DefaultFormat, report.Options{}); err != nil {
		return fmt.Errorf("DEFAULT_FORMAT: %w", err)
	}
	if _, err := rules.ParsePrecedence(c.LabelFragmentPrecedence); err != nil {
		return fmt.Errorf("LABEL_FRAGMENT_PRECEDENCE: %w", err)
	}
	return nil
}

// Precedence returns the parsed fragment precedence, defaulting to declared order.
func (c Config) Precedence() rules.Precedence {
	p, err := rules.ParsePrecedence(c.LabelFragmentPrecedence)
	if err != nil {
		return rules.PrecedenceDeclared
	}
	return p
}

// RenderOptions returns renderer settings derived from the config.
func (c Config) RenderOptions() report.Options {
	return report.Options{Uncompressed: !c.PDFCompress}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
