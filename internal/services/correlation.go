package services

import (
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// ItemTotalCorrelation returns the Pearson correlation between an item and
// the rest score, the respondent total with that item excluded. Excluding
// the item keeps the correlation from being inflated by the item itself.
// A zero-variance column yields NaN.
func ItemTotalCorrelation(t *ScoreTable, item string) (float64, error) {
	idx := t.itemIndex(item)
	if idx < 0 {
		return 0, NewNotFoundError("unknown item " + strconv.Quote(item))
	}
	col := t.ColumnAt(idx)
	rest := t.Totals()
	for r := range rest {
		rest[r] -= col[r]
	}
	return stat.Correlation(col, rest, nil), nil
}

// ItemTotalCorrelations computes the corrected item-total correlation for
// every item, keyed by item name.
func ItemTotalCorrelations(t *ScoreTable) map[string]Float {
	out := make(map[string]Float, len(t.Items))
	for _, name := range t.Items {
		r, err := ItemTotalCorrelation(t, name)
		if err != nil {
			continue
		}
		out[name] = Float(r)
	}
	return out
}

// CorrelationMatrix is a symmetric item-by-item Pearson matrix. Values
// follow the order of Items.
type CorrelationMatrix struct {
	Items  []string  `json:"items"`
	Values [][]Float `json:"values"`
}

// At returns the correlation between two items by name.
func (m *CorrelationMatrix) At(a, b string) (float64, error) {
	ia, ib := -1, -1
	for i, n := range m.Items {
		if n == a {
			ia = i
		}
		if n == b {
			ib = i
		}
	}
	if ia < 0 {
		return 0, NewNotFoundError("unknown item " + strconv.Quote(a))
	}
	if ib < 0 {
		return 0, NewNotFoundError("unknown item " + strconv.Quote(b))
	}
	return float64(m.Values[ia][ib]), nil
}

// InterItemCorrelations builds the full inter-item correlation matrix. The
// diagonal is fixed at 1 and off-diagonal cells mirror across it, so only
// the upper triangle is computed.
func InterItemCorrelations(t *ScoreTable) *CorrelationMatrix {
	k := t.NItems()
	cols := make([][]float64, k)
	for i := 0; i < k; i++ {
		cols[i] = t.ColumnAt(i)
	}
	values := make([][]Float, k)
	for i := range values {
		values[i] = make([]Float, k)
		values[i][i] = 1
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			r := Float(stat.Correlation(cols[i], cols[j], nil))
			values[i][j] = r
			values[j][i] = r
		}
	}
	items := make([]string, k)
	copy(items, t.Items)
	return &CorrelationMatrix{Items: items, Values: values}
}
