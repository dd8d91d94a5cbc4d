package technical

import (
	"math/rand"
	"testing"
	"time"

	"github.com/Abigiya-M/News-Sentiment/pkg/models"
)

// benchBars creates synthetic random-walk bars for benchmarks.
func benchBars(n int) []models.PriceBar {
	bars := make([]models.PriceBar, n)
	rng := rand.New(rand.NewSource(42))
	price := 150.0
	t := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

	for i := range bars {
		change := (rng.Float64() - 0.48) * 3 // slight upward bias
		open := price
		close := price + change
		high := max(open, close) + rng.Float64()*2
		low := min(open, close) - rng.Float64()*2

		bars[i] = models.PriceBar{
			Date:   t,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: int64(rng.Intn(5_000_000) + 100_000),
		}
		price = close
		t = t.AddDate(0, 0, 1)
	}
	return bars
}

// ── Moving Average Benchmarks ──

func BenchmarkSMA20_500(b *testing.B) {
	data := models.Closes(benchBars(500))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		SMA(data, 20)
	}
}

func BenchmarkEMA26_500(b *testing.B) {
	data := models.Closes(benchBars(500))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		EMA(data, 26)
	}
}

// ── Technical Indicator Benchmarks ──

func BenchmarkRSI14_500(b *testing.B) {
	data := models.Closes(benchBars(500))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		RSI(data, 14)
	}
}

func BenchmarkMACD_500(b *testing.B) {
	data := models.Closes(benchBars(500))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		MACD(data, 12, 26, 9)
	}
}

func BenchmarkBollingerBands_500(b *testing.B) {
	data := models.Closes(benchBars(500))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		BollingerBands(data, 20, 2.0)
	}
}

func BenchmarkVolatility20_500(b *testing.B) {
	data := models.Closes(benchBars(500))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Volatility(data, 20)
	}
}

// ── Composite (heaviest) ──

func BenchmarkIndicatorFrame(b *testing.B) {
	bars := benchBars(1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		IndicatorFrame(bars)
	}
}
