package services

import (
	"bytes"
	"encoding/csv"
	"math"
	"strconv"
)

// ExportTableCSV renders a score table as CSV: a header of item names and
// one row per respondent. Missing cells render as empty strings, the form
// ParseTableCSV reads back as NaN.
func ExportTableCSV(t *ScoreTable) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write(t.Items)
	for _, row := range t.Rows {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = csvFloat(v)
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportItemStatsCSV renders per-item descriptive statistics in item order.
func ExportItemStatsCSV(items []string, stats map[string]ItemStats) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"item", "mean", "std", "skewness", "kurtosis", "min", "max"})
	for _, name := range items {
		st, ok := stats[name]
		if !ok {
			continue
		}
		rec := []string{
			name,
			csvFloat(float64(st.Mean)),
			csvFloat(float64(st.Std)),
			csvFloat(float64(st.Skewness)),
			csvFloat(float64(st.Kurtosis)),
			csvFloat(float64(st.Min)),
			csvFloat(float64(st.Max)),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportDiagnosticsCSV renders the per-item reliability diagnostics: the
// corrected item-total correlation and alpha-if-deleted.
func ExportDiagnosticsCSV(res *AnalysisResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"item", "item_total_correlation", "alpha_if_deleted"})
	for _, name := range res.Items {
		itr := ""
		if v, ok := res.ItemTotalCorrelations[name]; ok {
			itr = csvFloat(float64(v))
		}
		aid := ""
		if v, ok := res.AlphaIfDeleted[name]; ok {
			aid = csvFloat(float64(v))
		}
		if err := w.Write([]string{name, itr, aid}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportCorrelationsCSV renders the inter-item matrix with a leading label
// column.
func ExportCorrelationsCSV(m *CorrelationMatrix) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write(append([]string{"item"}, m.Items...))
	for i, name := range m.Items {
		rec := make([]string, 0, 1+len(m.Items))
		rec = append(rec, name)
		for _, v := range m.Values[i] {
			rec = append(rec, csvFloat(float64(v)))
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportTotalsCSV renders per-respondent total scores.
func ExportTotalsCSV(t *ScoreTable) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"respondent", "total_score"})
	for i, total := range t.Totals() {
		if err := w.Write([]string{strconv.Itoa(i + 1), csvFloat(total)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// csvFloat renders a cell value; non-finite values become empty cells.
func csvFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
