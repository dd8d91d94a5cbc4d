package correlation

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Abigiya-M/News-Sentiment/internal/analysis/series"
	"github.com/Abigiya-M/News-Sentiment/pkg/models"
)

// ErrNoReturnColumn is returned when a frame has neither a return column
// nor a close column to derive one from.
var ErrNoReturnColumn = errors.New("frame has no Daily_Return or Close column")

const (
	returnColumn = "Daily_Return"
	closeColumn  = "Close"
)

// CorrelateIndicators correlates each named indicator column with the
// daily return. Indicators absent from the frame or with two or fewer
// usable observations are skipped. Results are in indicator order.
func CorrelateIndicators(f *models.Frame, indicators []string) ([]models.IndicatorCorrelation, error) {
	returns, err := frameReturns(f)
	if err != nil {
		return nil, err
	}

	var out []models.IndicatorCorrelation
	for _, name := range indicators {
		vals := f.Column(name)
		if vals == nil {
			continue
		}
		px, _ := series.Paired(vals, returns)
		if len(px) <= 2 {
			continue
		}
		coef, _ := Pearson(vals, returns)
		out = append(out, models.IndicatorCorrelation{Indicator: name, Coefficient: coef})
	}
	return out, nil
}

func frameReturns(f *models.Frame) ([]float64, error) {
	if r := f.Column(returnColumn); r != nil {
		return r, nil
	}
	closes := f.Column(closeColumn)
	if closes == nil {
		return nil, fmt.Errorf("correlate indicators: %w", ErrNoReturnColumn)
	}
	out := make([]float64, len(closes))
	for i := range closes {
		if i == 0 || closes[i-1] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (closes[i]/closes[i-1] - 1) * 100
	}
	return out, nil
}

// RankIndicators orders correlations by absolute coefficient, strongest
// first. NaN coefficients sort last.
func RankIndicators(in []models.IndicatorCorrelation) []models.IndicatorCorrelation {
	out := append([]models.IndicatorCorrelation(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Coefficient, out[j].Coefficient
		if math.IsNaN(a) {
			return false
		}
		if math.IsNaN(b) {
			return true
		}
		return math.Abs(a) > math.Abs(b)
	})
	return out
}
