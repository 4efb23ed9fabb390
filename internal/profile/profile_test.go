package profile

import (
	"os"
	"testing"
)

func clearAnalyticsEnvVars() {
	vars := []string{
		"HABITSERVER_OPENAI_API_KEY",
		"HABITSERVER_OPENAI_BASE_URL",
		"HABITSERVER_OPENAI_MODEL",
		"HABITSERVER_OPENAI_API_KEY_AGGREGATE",
		"HABITSERVER_OPENAI_API_KEY_INDIVIDUAL",
		"HABITSERVER_OPENAI_API_KEY_SUCCESS_PATTERNS",
		"HABITSERVER_OPENAI_API_KEY_CORRELATIONS",
		"HABITSERVER_PREMIUM_POLICY",
		"HABITSERVER_ANALYTICS_LOOKBACK_DAYS",
		"HABITSERVER_ANALYTICS_WEEKDAY",
		"HABITSERVER_ANALYTICS_HOUR_UTC",
		"HABITSERVER_ANALYTICS_CALLS_PER_SECOND",
		"HABITSERVER_ANALYTICS_QUALIFY_GROUP_NAMES",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}

func TestProfileDefaults(t *testing.T) {
	clearAnalyticsEnvVars()

	profile := &Profile{}
	profile.FromEnv()

	if profile.OpenAIBaseURL != "https://api.openai.com/v1" {
		t.Errorf("OpenAIBaseURL = %q, want default", profile.OpenAIBaseURL)
	}
	if profile.OpenAIModel != "gpt-4o" {
		t.Errorf("OpenAIModel = %q, want gpt-4o", profile.OpenAIModel)
	}
	if profile.PremiumPolicy != "subscription" {
		t.Errorf("PremiumPolicy = %q, want subscription", profile.PremiumPolicy)
	}
	if profile.AnalyticsLookbackDays != 14 {
		t.Errorf("AnalyticsLookbackDays = %d, want 14", profile.AnalyticsLookbackDays)
	}
	if profile.AnalyticsWeekday != 1 {
		t.Errorf("AnalyticsWeekday = %d, want 1 (Monday)", profile.AnalyticsWeekday)
	}
	if profile.AnalyticsHourUTC != 5 {
		t.Errorf("AnalyticsHourUTC = %d, want 5", profile.AnalyticsHourUTC)
	}
	if profile.AnalyticsCallsPerSecond != 1 {
		t.Errorf("AnalyticsCallsPerSecond = %v, want 1", profile.AnalyticsCallsPerSecond)
	}
	if profile.QualifyGroupHabitNames {
		t.Error("QualifyGroupHabitNames should default to false")
	}
	if profile.IsAnalyticsEnabled() {
		t.Error("analytics should be disabled without any API key")
	}
}

func TestProfileFromEnv(t *testing.T) {
	clearAnalyticsEnvVars()
	t.Setenv("HABITSERVER_OPENAI_API_KEY", "sk-test")
	t.Setenv("HABITSERVER_OPENAI_API_KEY_AGGREGATE", "sk-aggregate")
	t.Setenv("HABITSERVER_PREMIUM_POLICY", "flag")
	t.Setenv("HABITSERVER_ANALYTICS_LOOKBACK_DAYS", "7")
	t.Setenv("HABITSERVER_ANALYTICS_QUALIFY_GROUP_NAMES", "true")

	profile := &Profile{}
	profile.FromEnv()

	if profile.OpenAIAPIKey != "sk-test" {
		t.Errorf("OpenAIAPIKey = %q", profile.OpenAIAPIKey)
	}
	if profile.OpenAIAggregateKey != "sk-aggregate" {
		t.Errorf("OpenAIAggregateKey = %q", profile.OpenAIAggregateKey)
	}
	if profile.PremiumPolicy != "flag" {
		t.Errorf("PremiumPolicy = %q, want flag", profile.PremiumPolicy)
	}
	if profile.AnalyticsLookbackDays != 7 {
		t.Errorf("AnalyticsLookbackDays = %d, want 7", profile.AnalyticsLookbackDays)
	}
	if !profile.QualifyGroupHabitNames {
		t.Error("QualifyGroupHabitNames should be true")
	}
	if !profile.IsAnalyticsEnabled() {
		t.Error("analytics should be enabled with an API key")
	}
}

func TestValidateRejectsBadLookback(t *testing.T) {
	clearAnalyticsEnvVars()

	profile := &Profile{
		Mode:   "dev",
		Data:   t.TempDir(),
		Driver: "sqlite",
	}
	profile.FromEnv()
	profile.AnalyticsLookbackDays = 0

	if err := profile.Validate(); err == nil {
		t.Error("Validate should reject lookback days < 1")
	}
}

func TestValidateSQLiteDefaultDSN(t *testing.T) {
	clearAnalyticsEnvVars()

	profile := &Profile{
		Mode:   "dev",
		Data:   t.TempDir(),
		Driver: "sqlite",
	}
	profile.FromEnv()

	if err := profile.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if profile.DSN == "" {
		t.Error("DSN should be defaulted for sqlite")
	}
}

func TestValidatePostgresRequiresDSN(t *testing.T) {
	clearAnalyticsEnvVars()

	profile := &Profile{
		Mode:   "dev",
		Data:   t.TempDir(),
		Driver: "postgres",
	}
	profile.FromEnv()

	if err := profile.Validate(); err == nil {
		t.Error("Validate should require a DSN for postgres")
	}
}
