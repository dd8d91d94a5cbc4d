// Package report renders a ticker analysis as a plain-text report for the
// terminal or a file.
package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Abigiya-M/News-Sentiment/pkg/models"
	"github.com/Abigiya-M/News-Sentiment/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Report Config
// ════════════════════════════════════════════════════════════════════

// ReportSection identifies a section to include/exclude.
type ReportSection string

const (
	SectionSummary     ReportSection = "summary"
	SectionSentiment   ReportSection = "sentiment"
	SectionCorrelation ReportSection = "correlation"
	SectionLagged      ReportSection = "lagged"
	SectionCategories  ReportSection = "categories"
	SectionTechnical   ReportSection = "technical"
	SectionRisk        ReportSection = "risk"
)

// AllSections returns all report sections in display order.
func AllSections() []ReportSection {
	return []ReportSection{
		SectionSummary,
		SectionSentiment,
		SectionCorrelation,
		SectionLagged,
		SectionCategories,
		SectionTechnical,
		SectionRisk,
	}
}

// ReportConfig controls report generation behaviour.
type ReportConfig struct {
	Sections  []ReportSection // sections to include (default: all)
	Title     string          // custom report title (optional)
	Author    string
	TopPairs  int // strongest correlation pairs to list
	TopRanked int // indicators to list in the ranking
}

// DefaultReportConfig returns sensible defaults.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		Sections:  AllSections(),
		Author:    "News-Sentiment",
		TopPairs:  10,
		TopRanked: 5,
	}
}

func (rc ReportConfig) hasSection(s ReportSection) bool {
	for _, sec := range rc.Sections {
		if sec == s {
			return true
		}
	}
	return false
}

// ════════════════════════════════════════════════════════════════════
// Report Data
// ════════════════════════════════════════════════════════════════════

// ReportData is a ticker report flattened to display strings.
type ReportData struct {
	Title       string
	Ticker      string
	Author      string
	GeneratedAt string
	Period      string
	Error       string

	NewsCount    int
	AlignedCount int
	TradingDays  int

	SentimentRows []Row
	Correlation   []Row
	Lagged        []Row
	Categories    []Row
	Technical     []Row
	Pairs         []Row
	Ranking       []Row
	Risk          []Row
	RiskLevel     string

	ShowSummary     bool
	ShowSentiment   bool
	ShowCorrelation bool
	ShowLagged      bool
	ShowCategories  bool
	ShowTechnical   bool
	ShowRisk        bool
}

// Row is a label/value pair.
type Row struct {
	Label string
	Value string
}

// GenerateText generates a plain-text report for one ticker.
func GenerateText(report *models.TickerReport, cfg ReportConfig) (string, error) {
	if report == nil {
		return "", fmt.Errorf("report is nil")
	}
	return renderTextReport(buildReportData(report, cfg)), nil
}

// GenerateBatch renders every report one after another.
func GenerateBatch(reports []*models.TickerReport, cfg ReportConfig) (string, error) {
	var sb strings.Builder
	for _, r := range reports {
		text, err := GenerateText(r, cfg)
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// ════════════════════════════════════════════════════════════════════
// Internal: build report data
// ════════════════════════════════════════════════════════════════════

func buildReportData(r *models.TickerReport, cfg ReportConfig) ReportData {
	generated := r.GeneratedAt
	if generated.IsZero() {
		generated = time.Now().UTC()
	}

	data := ReportData{
		Title:        cfg.Title,
		Ticker:       r.Ticker,
		Author:       cfg.Author,
		GeneratedAt:  generated.Format("02 Jan 2006, 15:04 MST"),
		Error:        r.Error,
		NewsCount:    r.NewsCount,
		AlignedCount: r.AlignedCount,
		TradingDays:  r.TradingDays,

		ShowSummary:     cfg.hasSection(SectionSummary),
		ShowSentiment:   cfg.hasSection(SectionSentiment),
		ShowCorrelation: cfg.hasSection(SectionCorrelation),
		ShowLagged:      cfg.hasSection(SectionLagged) && len(r.Lagged) > 0,
		ShowCategories:  cfg.hasSection(SectionCategories) && len(r.Categories) > 0,
		ShowTechnical:   cfg.hasSection(SectionTechnical),
		ShowRisk:        cfg.hasSection(SectionRisk) && r.Risk != nil,
	}
	if data.Title == "" {
		data.Title = fmt.Sprintf("%s: News Sentiment vs. Returns", r.Ticker)
	}
	if c := r.Correlation; !c.Empty() {
		data.Period = fmt.Sprintf("%s to %s", utils.FormatDate(c.StartDate), utils.FormatDate(c.EndDate))
	}

	s := r.Sentiment
	data.SentimentRows = []Row{
		{"Articles", fmt.Sprintf("%d", s.TotalArticles)},
		{"Avg polarity", num(s.AvgPolarity, 4)},
		{"Median polarity", num(s.MedianPolarity, 4)},
		{"Std polarity", num(s.StdPolarity, 4)},
		{"Positive", fmt.Sprintf("%d (%s)", s.PositiveCount, pct(s.PositivePct))},
		{"Negative", fmt.Sprintf("%d (%s)", s.NegativeCount, pct(s.NegativePct))},
		{"Neutral", fmt.Sprintf("%d (%s)", s.NeutralCount, pct(s.NeutralPct))},
	}

	c := r.Correlation
	data.Correlation = []Row{
		{"Data points", fmt.Sprintf("%d", c.DataPoints)},
		{"Pearson", correlationText(c.Pearson)},
		{"Spearman", correlationText(c.Spearman)},
	}

	for _, l := range r.Lagged {
		data.Lagged = append(data.Lagged, Row{fmt.Sprintf("Lag %d", l.Lag), correlationText(l.CorrelationResult)})
	}

	for _, cat := range r.Categories {
		data.Categories = append(data.Categories, Row{
			Label: strings.ToUpper(string(cat.Label)),
			Value: fmt.Sprintf("%d days, avg %s, median %s, up %s",
				cat.DaysCount, pct(cat.AvgReturn), pct(cat.MedianReturn), pct(cat.PositiveReturnPct)),
		})
	}

	ind := r.Indicators
	data.Technical = []Row{
		{"RSI (current)", num(ind.RSICurrent, 2)},
		{"RSI (average)", num(ind.RSIAverage, 2)},
		{"MACD", num(ind.MACDCurrent, 4)},
		{"Price / SMA 20", num(ind.PriceSMARatio, 4)},
	}
	for i, p := range r.StrongPairs {
		if i >= cfg.TopPairs {
			break
		}
		data.Pairs = append(data.Pairs, Row{p.First + " ~ " + p.Second, num(p.Value, 3)})
	}
	for i, rk := range r.IndicatorRanking {
		if i >= cfg.TopRanked {
			break
		}
		data.Ranking = append(data.Ranking, Row{rk.Indicator, num(rk.Coefficient, 4)})
	}

	if m := r.Risk; m != nil {
		data.Risk = []Row{
			{"Total return", pct(m.TotalReturnPct)},
			{"Volatility (ann.)", pct(m.VolatilityPct)},
			{"Sharpe ratio", num(m.SharpeRatio, 3)},
			{"Sortino ratio", num(m.SortinoRatio, 3)},
			{"Calmar ratio", num(m.CalmarRatio, 3)},
			{"Max drawdown", pct(m.MaxDrawdownPct)},
			{"Win rate", pct(m.WinRatePct)},
			{"Profit factor", num(m.ProfitFactor, 3)},
			{"Information ratio", num(m.InformationRatio, 3)},
		}
		if r.RiskLevel != "" {
			data.RiskLevel = fmt.Sprintf("%s: %s", r.RiskLevel, r.RiskLevel.Description())
		}
	}

	return data
}

func correlationText(c models.CorrelationResult) string {
	if math.IsNaN(c.Coefficient) {
		return "n/a"
	}
	sig := ""
	if c.Significant {
		sig = " *"
	}
	return fmt.Sprintf("%s (p=%s)%s", num(c.Coefficient, 4), num(c.PValue, 4), sig)
}

// num formats v with prec decimals; NaN and infinities print as n/a.
func num(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", prec, v)
}

func pct(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", v)
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

func renderTextReport(d ReportData) string {
	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString(fmt.Sprintf("  %s\n", d.Title))
	sb.WriteString(fmt.Sprintf("  Generated: %s | Author: %s\n", d.GeneratedAt, d.Author))
	sb.WriteString(line + "\n")

	if d.Error != "" {
		sb.WriteString(fmt.Sprintf("\n  ✗ ANALYSIS FAILED\n  %s\n", d.Error))
		sb.WriteString(line + "\n")
		return sb.String()
	}

	if d.ShowSummary {
		sb.WriteString(fmt.Sprintf("\n  %s | %d headlines, %d aligned | %d trading days\n",
			d.Ticker, d.NewsCount, d.AlignedCount, d.TradingDays))
		if d.Period != "" {
			sb.WriteString(fmt.Sprintf("  Period: %s\n", d.Period))
		}
		sb.WriteString(thinLine + "\n")
	}

	writeRows := func(rows []Row) {
		for _, r := range rows {
			sb.WriteString(fmt.Sprintf("    %-20s %s\n", r.Label, r.Value))
		}
	}
	writeSection := func(title string, show bool, rows []Row) {
		if !show {
			return
		}
		sb.WriteString(fmt.Sprintf("\n  ■ %s\n", title))
		writeRows(rows)
		sb.WriteString(thinLine + "\n")
	}

	writeSection("SENTIMENT", d.ShowSentiment, d.SentimentRows)
	writeSection("SENTIMENT vs. RETURNS", d.ShowCorrelation, d.Correlation)
	writeSection("LAGGED CORRELATION", d.ShowLagged, d.Lagged)
	writeSection("RETURNS BY SENTIMENT", d.ShowCategories, d.Categories)

	if d.ShowTechnical {
		sb.WriteString("\n  ■ TECHNICAL INDICATORS\n")
		writeRows(d.Technical)
		if len(d.Ranking) > 0 {
			sb.WriteString("\n    Correlation with daily return:\n")
			writeRows(d.Ranking)
		}
		if len(d.Pairs) > 0 {
			sb.WriteString("\n    Strongest correlations:\n")
			writeRows(d.Pairs)
		}
		sb.WriteString(thinLine + "\n")
	}

	if d.ShowRisk {
		sb.WriteString("\n  ■ RISK\n")
		writeRows(d.Risk)
		if d.RiskLevel != "" {
			sb.WriteString(fmt.Sprintf("\n    %s\n", d.RiskLevel))
		}
		sb.WriteString(thinLine + "\n")
	}

	sb.WriteString("\n" + line + "\n")
	sb.WriteString("  * significant at p < 0.05\n")
	sb.WriteString("  Disclaimer: generated for research purposes. Not financial advice.\n")
	sb.WriteString(line + "\n")

	return sb.String()
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
