// Package store persists daily sentiment and ticker reports in Postgres.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/guregu/null/v6"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/Abigiya-M/News-Sentiment/pkg/models"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// ErrNotFound is returned when no report exists for a ticker.
var ErrNotFound = errors.New("report not found")

// DB wraps a Postgres connection.
type DB struct {
	conn *sql.DB
}

// New opens and pings a Postgres connection.
func New(dsn string) (*DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Migrate applies all pending embedded migrations.
func (db *DB) Migrate() error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	driver, err := postgres.WithInstance(db.conn, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// preparer is satisfied by *sql.DB and *sql.Tx.
type preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

const upsertDaily = `
	INSERT INTO daily_sentiment (
		ticker, date, article_count, avg_polarity, std_polarity, min_polarity,
		max_polarity, avg_subjectivity, positive_count, positive_pct, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (ticker, date) DO UPDATE SET
		article_count = EXCLUDED.article_count,
		avg_polarity = EXCLUDED.avg_polarity,
		std_polarity = EXCLUDED.std_polarity,
		min_polarity = EXCLUDED.min_polarity,
		max_polarity = EXCLUDED.max_polarity,
		avg_subjectivity = EXCLUDED.avg_subjectivity,
		positive_count = EXCLUDED.positive_count,
		positive_pct = EXCLUDED.positive_pct,
		updated_at = EXCLUDED.updated_at
`

// SaveDailySentiment upserts daily aggregates for a ticker on (ticker, date).
func (db *DB) SaveDailySentiment(ctx context.Context, ticker string, rows []models.DailySentiment) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := saveDaily(ctx, tx, ticker, rows); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func saveDaily(ctx context.Context, ex preparer, ticker string, rows []models.DailySentiment) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := ex.PrepareContext(ctx, upsertDaily)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, d := range rows {
		_, err := stmt.ExecContext(ctx,
			ticker, d.Date, d.ArticleCount,
			models.Nullable(d.AvgPolarity), models.Nullable(d.StdPolarity),
			models.Nullable(d.MinPolarity), models.Nullable(d.MaxPolarity),
			models.Nullable(d.AvgSubjectivity), d.PositiveCount,
			pct(d.PositivePct), now,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert sentiment for %s on %s: %w", ticker, d.Date.Format("2006-01-02"), err)
		}
	}
	return nil
}

// pct rounds a percentage to the NUMERIC(7,3) column scale.
func pct(v float64) decimal.NullDecimal {
	f := models.Nullable(v)
	if !f.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(f.Float64).Round(3))
}

// SaveReport stores a report and its daily sentiment rows in one
// transaction and returns the new report id.
func (db *DB) SaveReport(ctx context.Context, report *models.TickerReport) (int64, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal report: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var sharpe null.Float
	if report.Risk != nil {
		sharpe = models.Nullable(report.Risk.SharpeRatio)
	}

	pearson, spearman := report.Correlation.Results()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO analysis_reports (
			ticker, generated_at, news_count, data_points, pearson, pearson_p,
			spearman, sharpe_ratio, risk_level, payload
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`,
		report.Ticker, report.GeneratedAt, report.NewsCount, report.Correlation.DataPoints,
		models.Nullable(pearson.Coefficient),
		models.Nullable(pearson.PValue),
		models.Nullable(spearman.Coefficient),
		sharpe, null.NewString(string(report.RiskLevel), report.RiskLevel != ""), payload,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert report for %s: %w", report.Ticker, err)
	}

	if err := saveDaily(ctx, tx, report.Ticker, report.Daily); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

// StoredReport is a persisted report row. Payload is the report JSON as
// written, with NaN values encoded as null.
type StoredReport struct {
	ID          int64
	Ticker      string
	GeneratedAt time.Time
	NewsCount   int
	DataPoints  int
	Pearson     null.Float
	PearsonP    null.Float
	Spearman    null.Float
	SharpeRatio null.Float
	RiskLevel   null.String
	Payload     json.RawMessage
	CreatedAt   time.Time
}

// LatestReport returns the most recently generated report for a ticker.
func (db *DB) LatestReport(ctx context.Context, ticker string) (*StoredReport, error) {
	var r StoredReport
	var payload []byte
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, ticker, generated_at, news_count, data_points, pearson, pearson_p,
			spearman, sharpe_ratio, risk_level, payload, created_at
		FROM analysis_reports
		WHERE ticker = $1
		ORDER BY generated_at DESC
		LIMIT 1
	`, ticker).Scan(
		&r.ID, &r.Ticker, &r.GeneratedAt, &r.NewsCount, &r.DataPoints, &r.Pearson, &r.PearsonP,
		&r.Spearman, &r.SharpeRatio, &r.RiskLevel, &payload, &r.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", ticker, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest report: %w", err)
	}
	r.Payload = payload
	return &r, nil
}

// DailySentiment returns the stored daily aggregates for a ticker in
// [from, to], oldest first.
func (db *DB) DailySentiment(ctx context.Context, ticker string, from, to time.Time) ([]models.DailySentiment, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT date, article_count, avg_polarity, std_polarity, min_polarity,
			max_polarity, avg_subjectivity, positive_count, positive_pct
		FROM daily_sentiment
		WHERE ticker = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`, ticker, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily sentiment: %w", err)
	}
	defer rows.Close()

	var out []models.DailySentiment
	for rows.Next() {
		var d models.DailySentiment
		var avg, std, lo, hi, subj null.Float
		var positive decimal.NullDecimal
		if err := rows.Scan(&d.Date, &d.ArticleCount, &avg, &std, &lo, &hi, &subj, &d.PositiveCount, &positive); err != nil {
			return nil, fmt.Errorf("failed to scan daily sentiment: %w", err)
		}
		d.AvgPolarity, d.StdPolarity = orNaN(avg), orNaN(std)
		d.MinPolarity, d.MaxPolarity = orNaN(lo), orNaN(hi)
		d.AvgSubjectivity = orNaN(subj)
		d.PositivePct = math.NaN()
		if positive.Valid {
			d.PositivePct = positive.Decimal.InexactFloat64()
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read daily sentiment: %w", err)
	}
	return out, nil
}

func orNaN(f null.Float) float64 {
	if !f.Valid {
		return math.NaN()
	}
	return f.Float64
}
