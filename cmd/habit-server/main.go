package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/amanjaiman/habit-server/internal/profile"
	"github.com/amanjaiman/habit-server/internal/version"
	"github.com/amanjaiman/habit-server/server/ai"
	"github.com/amanjaiman/habit-server/server/analytics"
	"github.com/amanjaiman/habit-server/server/runner/insights"
	"github.com/amanjaiman/habit-server/store"
	"github.com/amanjaiman/habit-server/store/db"
)

var rootCmd = &cobra.Command{
	Use:   "habit-server",
	Short: `A habit tracking backend that derives weekly AI insights from completion history.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// Try to load .env file from current directory (ignore error if file doesn't exist)
		_ = godotenv.Load()
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := &profile.Profile{
			Mode:    viper.GetString("mode"),
			Data:    viper.GetString("data"),
			Driver:  viper.GetString("driver"),
			DSN:     viper.GetString("dsn"),
			Version: version.GetCurrentVersion(viper.GetString("mode")),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			panic(err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			slog.Error("failed to create db driver", "error", err)
			return
		}

		storeInstance := store.New(dbDriver, instanceProfile)
		defer storeInstance.Close()
		if err := storeInstance.Migrate(ctx); err != nil {
			slog.Error("failed to migrate", "error", err)
			return
		}

		if !instanceProfile.IsAnalyticsEnabled() {
			slog.Error("no OpenAI credential configured, nothing to run")
			return
		}

		runner, err := newInsightsRunner(instanceProfile, storeInstance)
		if err != nil {
			slog.Error("failed to create insights runner", "error", err)
			return
		}

		if viper.GetBool("run-once") {
			runner.RunOnce(ctx)
			return
		}

		c := make(chan os.Signal, 1)
		// Trigger graceful shutdown on SIGINT or SIGTERM.
		// The default signal sent by the `kill` command is SIGTERM,
		// which is taken as the graceful shutdown signal for many systems, eg., Kubernetes, Gunicorn.
		signal.Notify(c, terminationSignals...)

		go runner.Run(ctx)
		printGreetings(instanceProfile)

		go func() {
			<-c
			cancel()
		}()

		// Wait for CTRL-C.
		<-ctx.Done()
	},
}

func newInsightsRunner(instanceProfile *profile.Profile, storeInstance *store.Store) (*insights.Runner, error) {
	provider, err := ai.NewProvider(&ai.Config{
		BaseURL: instanceProfile.OpenAIBaseURL,
		APIKey:  instanceProfile.OpenAIAPIKey,
		Model:   instanceProfile.OpenAIModel,
		CategoryKeys: map[ai.Category]string{
			ai.CategoryAggregate:    instanceProfile.OpenAIAggregateKey,
			ai.CategoryIndividual:   instanceProfile.OpenAIIndividualKey,
			ai.CategoryPatterns:     instanceProfile.OpenAIPatternsKey,
			ai.CategoryCorrelations: instanceProfile.OpenAICorrelationsKey,
		},
	})
	if err != nil {
		return nil, err
	}

	var selector analytics.PremiumSelector
	if instanceProfile.PremiumPolicy == "flag" {
		selector = analytics.NewPremiumFlagSelector(storeInstance)
	} else {
		selector = analytics.NewSubscriptionSelector(storeInstance)
	}

	orchestrator := analytics.NewOrchestrator(
		storeInstance,
		selector,
		analytics.NewGenerator(provider),
		analytics.NewCallLimiter(instanceProfile.AnalyticsCallsPerSecond),
		analytics.Options{
			LookbackDays:           instanceProfile.AnalyticsLookbackDays,
			QualifyGroupHabitNames: instanceProfile.QualifyGroupHabitNames,
		},
	)
	return insights.NewRunner(orchestrator, time.Weekday(instanceProfile.AnalyticsWeekday), instanceProfile.AnalyticsHourUTC), nil
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver (sqlite, postgres)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name(aka. DSN)")
	rootCmd.PersistentFlags().Bool("run-once", false, "run the analytics pipeline once and exit")

	for _, flag := range []string{"mode", "data", "driver", "dsn", "run-once"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("habitserver")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func printGreetings(profile *profile.Profile) {
	fmt.Printf("habit-server %s started successfully!\n", profile.Version)

	if profile.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
		if profile.DSN != "" {
			fmt.Fprintf(os.Stderr, "Database: %s\n", profile.DSN)
		}
	}

	fmt.Printf("Data directory: %s\n", profile.Data)
	fmt.Printf("Database driver: %s\n", profile.Driver)
	fmt.Printf("Mode: %s\n", profile.Mode)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
