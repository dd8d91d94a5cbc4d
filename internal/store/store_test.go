package store

import (
	"context"
	"errors"
	"io/fs"
	"math"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abigiya-M/News-Sentiment/pkg/models"
)

func newMock(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return &DB{conn: sqlDB}, mock
}

func daily(day int, avg float64) models.DailySentiment {
	return models.DailySentiment{
		Date:            time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
		AvgPolarity:     avg,
		StdPolarity:     math.NaN(),
		MinPolarity:     avg,
		MaxPolarity:     avg,
		ArticleCount:    1,
		AvgSubjectivity: 0.4,
		PositiveCount:   1,
		PositivePct:     100,
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	require.NoError(t, err)
	assert.Contains(t, names, "migrations/000001_init.up.sql")
	assert.Contains(t, names, "migrations/000001_init.down.sql")
}

func TestSaveDailySentiment(t *testing.T) {
	db, mock := newMock(t)
	rows := []models.DailySentiment{daily(4, 0.3), daily(5, 0.5)}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO daily_sentiment")
	prep.ExpectExec().
		WithArgs("AAPL", rows[0].Date, 1, 0.3, nil, 0.3, 0.3, 0.4, 1, "100", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs("AAPL", rows[1].Date, 1, 0.5, nil, 0.5, 0.5, 0.4, 1, "100", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, db.SaveDailySentiment(context.Background(), "AAPL", rows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveDailySentimentExecFails(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO daily_sentiment").
		ExpectExec().WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := db.SaveDailySentiment(context.Background(), "AAPL", []models.DailySentiment{daily(4, 0.3)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upsert sentiment for AAPL on 2024-03-04")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveDailySentimentBeginFails(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin().WillReturnError(errors.New("begin failed"))

	err := db.SaveDailySentiment(context.Background(), "AAPL", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin transaction")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReport(t *testing.T) {
	db, mock := newMock(t)
	report := &models.TickerReport{
		Ticker:      "AAPL",
		GeneratedAt: time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC),
		NewsCount:   12,
		Daily:       []models.DailySentiment{daily(4, 0.3)},
		Correlation: models.SentimentReturnCorrelation{
			Pearson:    models.CorrelationResult{Coefficient: 0.42, PValue: 0.03, Significant: true},
			Spearman:   models.CorrelationResult{Coefficient: math.NaN(), PValue: math.NaN()},
			DataPoints: 9,
		},
		Risk:      &models.RiskMetrics{Name: "AAPL", SharpeRatio: 1.1, CalmarRatio: math.NaN()},
		RiskLevel: models.RiskAcceptable,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO analysis_reports").
		WithArgs("AAPL", report.GeneratedAt, 12, 9, 0.42, 0.03, nil, 1.1, string(models.RiskAcceptable), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectPrepare("INSERT INTO daily_sentiment").
		ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := db.SaveReport(context.Background(), report)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReportWithoutRisk(t *testing.T) {
	db, mock := newMock(t)
	report := &models.TickerReport{
		Ticker: "MSFT",
		Correlation: models.SentimentReturnCorrelation{
			Pearson:  models.CorrelationResult{Coefficient: math.NaN(), PValue: math.NaN()},
			Spearman: models.CorrelationResult{Coefficient: math.NaN(), PValue: math.NaN()},
		},
		Sentiment:  models.SentimentStats{AvgPolarity: math.NaN(), MedianPolarity: math.NaN()},
		Indicators: models.IndicatorSummary{RSICurrent: math.NaN()},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO analysis_reports").
		WithArgs("MSFT", sqlmock.AnyArg(), 0, 0, nil, nil, nil, nil, nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	_, err := db.SaveReport(context.Background(), report)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReportEmptyCorrelation(t *testing.T) {
	db, mock := newMock(t)
	report := &models.TickerReport{Ticker: "AAPL", NewsCount: 1}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO analysis_reports").
		WithArgs("AAPL", sqlmock.AnyArg(), 1, 0, nil, nil, nil, nil, nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectCommit()

	id, err := db.SaveReport(context.Background(), report)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReportInsertFails(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO analysis_reports").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := db.SaveReport(context.Background(), &models.TickerReport{Ticker: "AAPL"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert report for AAPL")
	require.NoError(t, mock.ExpectationsWereMet())
}

var reportColumns = []string{
	"id", "ticker", "generated_at", "news_count", "data_points", "pearson", "pearson_p",
	"spearman", "sharpe_ratio", "risk_level", "payload", "created_at",
}

func TestLatestReport(t *testing.T) {
	db, mock := newMock(t)
	generated := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM analysis_reports").
		WithArgs("AAPL").
		WillReturnRows(sqlmock.NewRows(reportColumns).AddRow(
			7, "AAPL", generated, 12, 9, 0.42, 0.03, nil, 1.1, "Acceptable",
			[]byte(`{"ticker":"AAPL"}`), generated,
		))

	r, err := db.LatestReport(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(7), r.ID)
	assert.Equal(t, 9, r.DataPoints)
	assert.Equal(t, 0.42, r.Pearson.Float64)
	assert.False(t, r.Spearman.Valid)
	assert.Equal(t, "Acceptable", r.RiskLevel.String)
	assert.JSONEq(t, `{"ticker":"AAPL"}`, string(r.Payload))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestReportNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT (.+) FROM analysis_reports").
		WithArgs("ZZZZ").
		WillReturnRows(sqlmock.NewRows(reportColumns))

	_, err := db.LatestReport(context.Background(), "ZZZZ")
	assert.True(t, errors.Is(err, ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDailySentimentQuery(t *testing.T) {
	db, mock := newMock(t)
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	cols := []string{
		"date", "article_count", "avg_polarity", "std_polarity", "min_polarity",
		"max_polarity", "avg_subjectivity", "positive_count", "positive_pct",
	}
	mock.ExpectQuery("SELECT (.+) FROM daily_sentiment").
		WithArgs("AAPL", from, to).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), 3, 0.2, 0.2, 0.0, 0.4, 0.5, 2, "66.667").
			AddRow(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), 1, -0.5, nil, -0.5, -0.5, 0.3, 0, nil))

	got, err := db.DailySentiment(context.Background(), "AAPL", from, to)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 3, got[0].ArticleCount)
	assert.InDelta(t, 66.667, got[0].PositivePct, 1e-9)
	assert.True(t, math.IsNaN(got[1].StdPolarity))
	assert.True(t, math.IsNaN(got[1].PositivePct))
	assert.Equal(t, -0.5, got[1].AvgPolarity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresIntegration(t *testing.T) {
	dsn := os.Getenv("NEWSSENTIMENT_TEST_DSN")
	if testing.Short() || dsn == "" {
		t.Skip("set NEWSSENTIMENT_TEST_DSN to run against Postgres")
	}

	db, err := New(dsn)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate())

	ctx := context.Background()
	report := &models.TickerReport{
		Ticker:      "ITEST",
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
		Daily:       []models.DailySentiment{daily(4, 0.3), daily(5, -0.1)},
	}
	id, err := db.SaveReport(ctx, report)
	require.NoError(t, err)

	latest, err := db.LatestReport(ctx, "ITEST")
	require.NoError(t, err)
	assert.Equal(t, id, latest.ID)

	rows, err := db.DailySentiment(ctx, "ITEST", report.Daily[0].Date, report.Daily[1].Date)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
