// News-Sentiment: correlate financial news sentiment with stock returns.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/Abigiya-M/News-Sentiment/internal/config"
	"github.com/Abigiya-M/News-Sentiment/internal/logging"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set in PersistentPreRunE.
var (
	cfg    *config.Config
	logger *log.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "newssentiment",
	Short: "News-Sentiment: financial news sentiment vs. stock returns",
	Long: `News-Sentiment scores financial headlines, aligns them to trading days
and measures how daily sentiment relates to stock returns, technical
indicators and risk-adjusted performance.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.Logging.Level
		if l, _ := cmd.Flags().GetString("log-level"); l != "" {
			level = l
		}
		logger = logging.New(level, cfg.Logging.Format, nil)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(sentimentCmd)
	rootCmd.AddCommand(riskCmd)
	rootCmd.AddCommand(feedsCmd)
	rootCmd.AddCommand(migrateCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("News-Sentiment %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  News-Sentiment — Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Println()

		a := cfg.Analysis
		fmt.Println("  Analysis:")
		fmt.Printf("    Risk-free rate:   %.4f (annual)\n", a.RiskFreeRate)
		fmt.Printf("    Trading days:     %d\n", a.TradingDays)
		fmt.Printf("    Forward days:     %d\n", a.ForwardDays)
		fmt.Printf("    Max lag:          %d\n", a.MaxLag)
		fmt.Printf("    Thresholds:       %+.2f / %+.2f\n", cfg.Sentiment.PositiveThreshold, cfg.Sentiment.NegativeThreshold)
		fmt.Println()

		fmt.Println("  Data:")
		fmt.Printf("    News file:        %s\n", cfg.Data.NewsFile)
		fmt.Printf("    Price source:     %s\n", cfg.Data.Source)
		fmt.Printf("    Cache:            %s\n", cfg.Cache.Backend)
		fmt.Printf("    Database:         %s\n", enabled(cfg.Database.Enabled))
		fmt.Printf("    Kafka:            %s\n", enabled(cfg.Kafka.Enabled))
		fmt.Printf("    RSS feeds:        %d\n", len(cfg.Feeds))
		fmt.Println()

		fmt.Println("  Secrets:")
		for _, k := range config.CheckSecrets(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
