package services

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ItemStats holds per-item descriptive statistics. Skewness and kurtosis
// use the bias-corrected estimators, with kurtosis reported as excess, so
// the numbers match what the usual statistics packages print.
type ItemStats struct {
	Mean     Float `json:"mean"`
	Std      Float `json:"std"`
	Skewness Float `json:"skewness"`
	Kurtosis Float `json:"kurtosis"`
	Min      Float `json:"min"`
	Max      Float `json:"max"`
}

// ItemStatistics computes descriptives for every column, keyed by item name.
func ItemStatistics(t *ScoreTable) map[string]ItemStats {
	out := make(map[string]ItemStats, len(t.Items))
	for i, name := range t.Items {
		col := t.ColumnAt(i)
		lo, hi := columnRange(col)
		out[name] = ItemStats{
			Mean:     Float(stat.Mean(col, nil)),
			Std:      Float(stat.StdDev(col, nil)),
			Skewness: Float(stat.Skew(col, nil)),
			Kurtosis: Float(stat.ExKurtosis(col, nil)),
			Min:      Float(lo),
			Max:      Float(hi),
		}
	}
	return out
}

// columnRange scans for min and max. Any NaN makes both NaN so that missing
// values propagate the same way they do through the moment statistics.
func columnRange(col []float64) (float64, float64) {
	if len(col) == 0 {
		return math.NaN(), math.NaN()
	}
	lo, hi := col[0], col[0]
	for _, v := range col {
		if math.IsNaN(v) {
			return math.NaN(), math.NaN()
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// ScaleStats summarizes the distribution of respondent total scores.
type ScaleStats struct {
	Mean      Float `json:"mean"`
	Variance  Float `json:"variance"`
	StdDev    Float `json:"std_dev"`
	NItems    int   `json:"n_items"`
	NSubjects int   `json:"n_subjects"`
}

// ScaleStatistics computes summary statistics over the total score.
func ScaleStatistics(t *ScoreTable) ScaleStats {
	totals := t.Totals()
	return ScaleStats{
		Mean:      Float(stat.Mean(totals, nil)),
		Variance:  Float(stat.Variance(totals, nil)),
		StdDev:    Float(stat.StdDev(totals, nil)),
		NItems:    t.NItems(),
		NSubjects: t.NRows(),
	}
}
