package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Abigiya-M/News-Sentiment/internal/analysis/risk"
	"github.com/Abigiya-M/News-Sentiment/internal/analysis/sentiment"
	"github.com/Abigiya-M/News-Sentiment/internal/datasource"
	"github.com/Abigiya-M/News-Sentiment/internal/pipeline"
	"github.com/Abigiya-M/News-Sentiment/internal/preprocess"
	"github.com/Abigiya-M/News-Sentiment/internal/report"
	"github.com/Abigiya-M/News-Sentiment/internal/store"
	"github.com/Abigiya-M/News-Sentiment/pkg/models"
	"github.com/Abigiya-M/News-Sentiment/pkg/utils"
)

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [tickers...]",
	Short: "Correlate news sentiment with returns for one or more tickers",
	Long: `Run the full pipeline: clean and score headlines, align them to trading
days, fetch prices, and correlate daily sentiment with returns, technical
indicators and risk metrics. With no tickers every stock in the news file
is analyzed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		newsFile, _ := cmd.Flags().GetString("news")
		source, _ := cmd.Flags().GetString("source")
		pricesDir, _ := cmd.Flags().GetString("prices-dir")
		asJSON, _ := cmd.Flags().GetBool("json")
		outDir, _ := cmd.Flags().GetString("out")

		if newsFile == "" {
			newsFile = cfg.Data.NewsFile
		}
		if source == "" {
			source = cfg.Data.Source
		}

		news, err := datasource.LoadNewsFile(newsFile)
		if err != nil {
			return err
		}

		prices, cleanup, err := newPriceSource(ctx, source, pricesDir)
		if err != nil {
			return err
		}
		defer cleanup()

		start := time.Now()
		p := pipeline.New(pipeline.ConfigFrom(cfg), prices, nil, logger)
		reports, err := p.AnalyzeAll(ctx, news, args)
		if err != nil {
			return err
		}
		logger.Info().Int("tickers", len(reports)).Str("source", prices.Name()).
			Str("elapsed", report.FormatDuration(time.Since(start))).Msg("analysis finished")

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(reports); err != nil {
				return err
			}
		} else {
			text, err := report.GenerateBatch(reports, report.DefaultReportConfig())
			if err != nil {
				return err
			}
			fmt.Print(text)
		}

		if outDir != "" {
			if err := writeReports(outDir, reports); err != nil {
				return err
			}
		}
		if doStore, _ := cmd.Flags().GetBool("store"); doStore || cfg.Database.Enabled {
			if err := storeReports(cmd, reports); err != nil {
				return err
			}
		}
		if doPublish, _ := cmd.Flags().GetBool("publish"); doPublish || cfg.Kafka.Enabled {
			producer, err := newProducer()
			if err != nil {
				return err
			}
			defer producer.Close()
			if err := producer.PublishReports(ctx, reports); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().String("news", "", "news CSV file (default: data.news_file)")
	analyzeCmd.Flags().String("source", "", "price source: yahoo or csv (default: data.source)")
	analyzeCmd.Flags().String("prices-dir", "", "directory of <TICKER>.csv price files for --source csv")
	analyzeCmd.Flags().Bool("json", false, "print reports as JSON")
	analyzeCmd.Flags().String("out", "", "directory for per-ticker report, JSON and CSV files")
	analyzeCmd.Flags().Bool("store", false, "save reports to Postgres")
	analyzeCmd.Flags().Bool("publish", false, "publish report events to Kafka")
}

func writeReports(dir string, reports []*models.TickerReport) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, r := range reports {
		base := filepath.Join(dir, r.Ticker)

		text, err := report.GenerateText(r, report.DefaultReportConfig())
		if err != nil {
			return err
		}
		if err := os.WriteFile(base+"_report.txt", []byte(text), 0o644); err != nil {
			return err
		}

		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(base+".json", data, 0o644); err != nil {
			return err
		}

		if len(r.Daily) > 0 {
			if err := writeFile(base+"_daily_sentiment.csv", func(f *os.File) error {
				return datasource.WriteDailySentiment(f, r.Daily)
			}); err != nil {
				return err
			}
		}
	}
	logger.Info().Str("dir", dir).Int("reports", len(reports)).Msg("wrote reports")
	return nil
}

func storeReports(cmd *cobra.Command, reports []*models.TickerReport) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	for _, r := range reports {
		if r.Error != "" {
			continue
		}
		id, err := db.SaveReport(cmd.Context(), r)
		if err != nil {
			return err
		}
		logger.Debug().Str("ticker", r.Ticker).Int64("id", id).Msg("stored report")
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// --- Sentiment Command ---

var sentimentCmd = &cobra.Command{
	Use:   "sentiment",
	Short: "Score a news CSV and aggregate daily sentiment",
	RunE: func(cmd *cobra.Command, args []string) error {
		newsFile, _ := cmd.Flags().GetString("news")
		outDir, _ := cmd.Flags().GetString("out")
		if newsFile == "" {
			newsFile = cfg.Data.NewsFile
		}

		news, err := datasource.LoadNewsFile(newsFile)
		if err != nil {
			return err
		}
		cleaned := preprocess.New(logger).CleanNews(news)

		analyzer := sentiment.New(nil, cfg.Sentiment.Thresholds(), logger)
		scored := analyzer.ScoreAll(cleaned)
		daily := analyzer.AggregateDaily(scored)
		byStock := analyzer.AggregateByStockDate(scored)
		stats := analyzer.SummaryStats(scored)

		fmt.Printf("📰 %s: %d headlines (%d after cleaning)\n", newsFile, len(news), len(cleaned))
		fmt.Printf("   Days: %d | Stock-days: %d\n", len(daily), len(byStock))
		fmt.Printf("   Avg polarity:    %.4f (median %.4f)\n", stats.AvgPolarity, stats.MedianPolarity)
		fmt.Printf("   Positive:        %d (%.1f%%)\n", stats.PositiveCount, stats.PositivePct)
		fmt.Printf("   Negative:        %d (%.1f%%)\n", stats.NegativeCount, stats.NegativePct)
		fmt.Printf("   Neutral:         %d (%.1f%%)\n", stats.NeutralCount, stats.NeutralPct)

		if outDir == "" {
			return nil
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		if err := writeFile(filepath.Join(outDir, "daily_sentiment.csv"), func(f *os.File) error {
			return datasource.WriteDailySentiment(f, daily)
		}); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(outDir, "scored_news.csv"), func(f *os.File) error {
			return datasource.WriteScoredNews(f, scored)
		}); err != nil {
			return err
		}
		fmt.Printf("   Wrote %s\n", outDir)
		return nil
	},
}

func init() {
	sentimentCmd.Flags().String("news", "", "news CSV file (default: data.news_file)")
	sentimentCmd.Flags().String("out", "", "directory for daily_sentiment.csv and scored_news.csv")
}

// --- Risk Command ---

var riskCmd = &cobra.Command{
	Use:   "risk [ticker]",
	Short: "Compute risk metrics from a price history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker := utils.NormalizeTicker(args[0])
		pricesFile, _ := cmd.Flags().GetString("prices")
		days, _ := cmd.Flags().GetInt("days")

		var raw []models.RawPriceBar
		var err error
		if pricesFile != "" {
			raw, err = datasource.LoadPricesFile(pricesFile)
		} else {
			var src datasource.PriceSource
			var cleanup func()
			src, cleanup, err = newPriceSource(cmd.Context(), "yahoo", "")
			if err != nil {
				return err
			}
			defer cleanup()
			to := utils.Day(time.Now())
			raw, err = src.History(cmd.Context(), ticker, to.AddDate(0, 0, -days), to)
		}
		if err != nil {
			return err
		}

		pre := preprocess.New(logger)
		bars := pre.CleanPrices(raw)
		analyzer, err := risk.NewAnalyzer(models.Closes(bars), ticker,
			risk.WithRiskFreeRate(cfg.Analysis.RiskFreeRate),
			risk.WithTradingDays(cfg.Analysis.TradingDays),
			risk.WithLogger(logger),
		)
		if err != nil {
			return err
		}
		m := analyzer.AllMetricsWithBenchmark(cfg.Analysis.BenchmarkReturn)
		level := risk.ClassifyRiskLevel(m.SharpeRatio)

		r := &models.TickerReport{Ticker: ticker, TradingDays: len(bars), Risk: &m, RiskLevel: level}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(m)
		}

		rc := report.DefaultReportConfig()
		rc.Sections = []report.ReportSection{report.SectionSummary, report.SectionRisk}
		rc.Title = ticker + ": Risk Profile"
		text, err := report.GenerateText(r, rc)
		if err != nil {
			return err
		}
		fmt.Print(text)
		return nil
	},
}

func init() {
	riskCmd.Flags().String("prices", "", "price CSV file (default: fetch from Yahoo)")
	riskCmd.Flags().Int("days", 365, "calendar days of history to fetch from Yahoo")
	riskCmd.Flags().Bool("json", false, "print metrics as JSON")
}

// --- Feeds Command ---

var feedsCmd = &cobra.Command{
	Use:   "feeds [tickers...]",
	Short: "Fetch RSS headlines that mention the tickers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		rss := datasource.NewRSS(feeds(), logger)
		news, err := rss.Headlines(cmd.Context(), args)
		if err != nil {
			return err
		}
		scored := sentiment.New(nil, cfg.Sentiment.Thresholds(), logger).ScoreAll(news)

		if out != "" {
			if err := writeFile(out, func(f *os.File) error {
				return datasource.WriteScoredNews(f, scored)
			}); err != nil {
				return err
			}
			fmt.Printf("📰 Wrote %d headlines to %s\n", len(scored), out)
			return nil
		}

		for _, s := range scored {
			fmt.Printf("%s  %-6s %+.2f %-8s %s\n",
				s.Timestamp.Format("2006-01-02 15:04"), s.Stock, s.Polarity, s.Label, s.Headline)
		}
		return nil
	},
}

func init() {
	feedsCmd.Flags().String("out", "", "write headlines to a news CSV instead of stdout")
}

// --- Migrate Command ---

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(cfg.Database.ConnectionString())
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(); err != nil {
			return err
		}
		fmt.Println("✅ Database schema is up to date")
		return nil
	},
}
