package profile

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the habit server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Data is the data directory
	Data string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// DSN points to where habit-server stores its own data
	DSN string
	// Version is the current version of server
	Version string

	// OpenAI configuration. The base key is used for every call
	// category unless a category-specific key is set. The two-tier
	// deployment issues separate credentials per category so that
	// upstream quotas are tracked independently.
	OpenAIAPIKey              string // HABITSERVER_OPENAI_API_KEY
	OpenAIBaseURL             string // HABITSERVER_OPENAI_BASE_URL (default: https://api.openai.com/v1)
	OpenAIModel               string // HABITSERVER_OPENAI_MODEL (default: gpt-4o)
	OpenAIAggregateKey        string // HABITSERVER_OPENAI_API_KEY_AGGREGATE
	OpenAIIndividualKey       string // HABITSERVER_OPENAI_API_KEY_INDIVIDUAL
	OpenAIPatternsKey         string // HABITSERVER_OPENAI_API_KEY_SUCCESS_PATTERNS
	OpenAICorrelationsKey     string // HABITSERVER_OPENAI_API_KEY_CORRELATIONS

	// Analytics configuration
	PremiumPolicy           string  // HABITSERVER_PREMIUM_POLICY: "subscription" or "flag"
	AnalyticsLookbackDays   int     // HABITSERVER_ANALYTICS_LOOKBACK_DAYS (default: 14)
	AnalyticsWeekday        int     // HABITSERVER_ANALYTICS_WEEKDAY, 0=Sunday (default: 1, Monday)
	AnalyticsHourUTC        int     // HABITSERVER_ANALYTICS_HOUR_UTC (default: 5)
	AnalyticsCallsPerSecond float64 // HABITSERVER_ANALYTICS_CALLS_PER_SECOND per credential (default: 1)
	QualifyGroupHabitNames  bool    // HABITSERVER_ANALYTICS_QUALIFY_GROUP_NAMES
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAnalyticsEnabled returns true if at least one OpenAI credential is configured.
func (p *Profile) IsAnalyticsEnabled() bool {
	return p.OpenAIAPIKey != "" || p.OpenAIAggregateKey != "" || p.OpenAIIndividualKey != "" ||
		p.OpenAIPatternsKey != "" || p.OpenAICorrelationsKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatEnvOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// FromEnv loads configuration from HABITSERVER_* environment variables.
func (p *Profile) FromEnv() {
	p.OpenAIAPIKey = getEnvOrDefault("HABITSERVER_OPENAI_API_KEY", p.OpenAIAPIKey)
	p.OpenAIBaseURL = getEnvOrDefault("HABITSERVER_OPENAI_BASE_URL", "https://api.openai.com/v1")
	p.OpenAIModel = getEnvOrDefault("HABITSERVER_OPENAI_MODEL", "gpt-4o")
	p.OpenAIAggregateKey = os.Getenv("HABITSERVER_OPENAI_API_KEY_AGGREGATE")
	p.OpenAIIndividualKey = os.Getenv("HABITSERVER_OPENAI_API_KEY_INDIVIDUAL")
	p.OpenAIPatternsKey = os.Getenv("HABITSERVER_OPENAI_API_KEY_SUCCESS_PATTERNS")
	p.OpenAICorrelationsKey = os.Getenv("HABITSERVER_OPENAI_API_KEY_CORRELATIONS")

	p.PremiumPolicy = getEnvOrDefault("HABITSERVER_PREMIUM_POLICY", "subscription")
	p.AnalyticsLookbackDays = getIntEnvOrDefault("HABITSERVER_ANALYTICS_LOOKBACK_DAYS", 14)
	p.AnalyticsWeekday = getIntEnvOrDefault("HABITSERVER_ANALYTICS_WEEKDAY", 1)
	p.AnalyticsHourUTC = getIntEnvOrDefault("HABITSERVER_ANALYTICS_HOUR_UTC", 5)
	p.AnalyticsCallsPerSecond = getFloatEnvOrDefault("HABITSERVER_ANALYTICS_CALLS_PER_SECOND", 1)
	p.QualifyGroupHabitNames = os.Getenv("HABITSERVER_ANALYTICS_QUALIFY_GROUP_NAMES") == "true"
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "habit-server")
		} else {
			p.Data = "/var/opt/habit-server"
		}
		if _, err := os.Stat(p.Data); os.IsNotExist(err) {
			if err := os.MkdirAll(p.Data, 0770); err != nil {
				return errors.Wrapf(err, "failed to create data directory %s", p.Data)
			}
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}
	p.Data = dataDir

	switch p.Driver {
	case "sqlite":
		if p.DSN == "" {
			dbFile := filepath.Join(p.Data, "habit_"+p.Mode+".db")
			p.DSN = dbFile
		}
	case "postgres":
		if p.DSN == "" {
			return errors.New("dsn is required for postgres driver")
		}
	default:
		return errors.Errorf("unsupported database driver: %s", p.Driver)
	}

	if p.AnalyticsLookbackDays < 1 {
		return errors.Errorf("analytics lookback days must be at least 1, got %d", p.AnalyticsLookbackDays)
	}
	if p.PremiumPolicy != "subscription" && p.PremiumPolicy != "flag" {
		return errors.Errorf("unknown premium policy: %s", p.PremiumPolicy)
	}

	return nil
}
