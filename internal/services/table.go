package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Float is a float64 whose JSON form maps non-finite values to null.
// Score tables use NaN in memory for missing cells; encoding/json rejects
// NaN, so marshalling emits null instead and unmarshalling null restores NaN.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func (f *Float) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = Float(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return NewTypeError("non-numeric cell " + s)
	}
	*f = Float(v)
	return nil
}

// ScoreTable is a respondent-by-item matrix of numeric scores.
// Rows hold respondents in the order they were recorded and columns follow
// the order of Items. Missing observations are stored as NaN.
type ScoreTable struct {
	Items []string
	Rows  [][]float64
}

// NewScoreTable validates names and shape and returns a table that shares
// the provided backing slices.
func NewScoreTable(items []string, rows [][]float64) (*ScoreTable, error) {
	if len(items) == 0 {
		return nil, NewShapeError("at least one item required")
	}
	seen := make(map[string]struct{}, len(items))
	for _, name := range items {
		if strings.TrimSpace(name) == "" {
			return nil, NewInvalidError("item name required")
		}
		if _, dup := seen[name]; dup {
			return nil, NewInvalidError("duplicate item name " + strconv.Quote(name))
		}
		seen[name] = struct{}{}
	}
	for i, row := range rows {
		if len(row) != len(items) {
			return nil, NewShapeError("row " + strconv.Itoa(i) + " has " + strconv.Itoa(len(row)) + " values, want " + strconv.Itoa(len(items)))
		}
	}
	return &ScoreTable{Items: items, Rows: rows}, nil
}

// TableFromColumns builds a table from column-major data, one slice per item.
func TableFromColumns(items []string, cols [][]float64) (*ScoreTable, error) {
	if len(cols) != len(items) {
		return nil, NewShapeError("have " + strconv.Itoa(len(cols)) + " columns for " + strconv.Itoa(len(items)) + " items")
	}
	nrows := 0
	if len(cols) > 0 {
		nrows = len(cols[0])
	}
	for i, col := range cols {
		if len(col) != nrows {
			return nil, NewShapeError("column " + strconv.Itoa(i) + " has " + strconv.Itoa(len(col)) + " values, want " + strconv.Itoa(nrows))
		}
	}
	rows := make([][]float64, nrows)
	for r := range rows {
		row := make([]float64, len(cols))
		for c := range cols {
			row[c] = cols[c][r]
		}
		rows[r] = row
	}
	return NewScoreTable(items, rows)
}

func (t *ScoreTable) NRows() int  { return len(t.Rows) }
func (t *ScoreTable) NItems() int { return len(t.Items) }

func (t *ScoreTable) itemIndex(name string) int {
	for i, n := range t.Items {
		if n == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the named item's values.
func (t *ScoreTable) Column(name string) ([]float64, error) {
	idx := t.itemIndex(name)
	if idx < 0 {
		return nil, NewNotFoundError("unknown item " + strconv.Quote(name))
	}
	return t.ColumnAt(idx), nil
}

// ColumnAt returns a copy of the values in column i.
func (t *ScoreTable) ColumnAt(i int) []float64 {
	out := make([]float64, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

// Totals returns the per-respondent sum across items. Sums involving a
// missing value stay NaN.
func (t *ScoreTable) Totals() []float64 {
	out := make([]float64, len(t.Rows))
	for r, row := range t.Rows {
		sum := 0.0
		for _, v := range row {
			sum += v
		}
		out[r] = sum
	}
	return out
}

// WithoutItem returns a copy of the table with the named column removed.
func (t *ScoreTable) WithoutItem(name string) (*ScoreTable, error) {
	idx := t.itemIndex(name)
	if idx < 0 {
		return nil, NewNotFoundError("unknown item " + strconv.Quote(name))
	}
	items := make([]string, 0, len(t.Items)-1)
	items = append(items, t.Items[:idx]...)
	items = append(items, t.Items[idx+1:]...)
	rows := make([][]float64, len(t.Rows))
	for r, row := range t.Rows {
		nr := make([]float64, 0, len(row)-1)
		nr = append(nr, row[:idx]...)
		nr = append(nr, row[idx+1:]...)
		rows[r] = nr
	}
	return &ScoreTable{Items: items, Rows: rows}, nil
}

// Clone returns a deep copy of the table.
func (t *ScoreTable) Clone() *ScoreTable {
	items := make([]string, len(t.Items))
	copy(items, t.Items)
	rows := make([][]float64, len(t.Rows))
	for r, row := range t.Rows {
		nr := make([]float64, len(row))
		copy(nr, row)
		rows[r] = nr
	}
	return &ScoreTable{Items: items, Rows: rows}
}

// MissingCount reports the number of NaN cells.
func (t *ScoreTable) MissingCount() int {
	n := 0
	for _, row := range t.Rows {
		for _, v := range row {
			if math.IsNaN(v) {
				n++
			}
		}
	}
	return n
}

// DropIncompleteRows returns a copy without rows that contain any missing
// value.
func (t *ScoreTable) DropIncompleteRows() *ScoreTable {
	rows := make([][]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		complete := true
		for _, v := range row {
			if math.IsNaN(v) {
				complete = false
				break
			}
		}
		if complete {
			nr := make([]float64, len(row))
			copy(nr, row)
			rows = append(rows, nr)
		}
	}
	items := make([]string, len(t.Items))
	copy(items, t.Items)
	return &ScoreTable{Items: items, Rows: rows}
}

// ImputeColumnMeans returns a copy with every missing cell replaced by the
// mean of the observed values in its column. A column with no observed
// values stays NaN.
func (t *ScoreTable) ImputeColumnMeans() *ScoreTable {
	out := t.Clone()
	for j := range out.Items {
		sum, n := 0.0, 0
		for _, row := range out.Rows {
			if !math.IsNaN(row[j]) {
				sum += row[j]
				n++
			}
		}
		if n == 0 {
			continue
		}
		mean := sum / float64(n)
		for _, row := range out.Rows {
			if math.IsNaN(row[j]) {
				row[j] = mean
			}
		}
	}
	return out
}

type tableJSON struct {
	Items []string  `json:"items"`
	Rows  [][]Float `json:"rows"`
}

func (t *ScoreTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(tableJSON{Items: t.Items, Rows: floatRows(t.Rows)})
}

func (t *ScoreTable) UnmarshalJSON(data []byte) error {
	var raw tableJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		if _, ok := AsServiceError(err); ok {
			return err
		}
		return NewInvalidError("invalid table json: " + err.Error())
	}
	tt, err := NewScoreTable(raw.Items, float64Rows(raw.Rows))
	if err != nil {
		return err
	}
	*t = *tt
	return nil
}

// ParseTableCSV reads a header row of item names followed by one numeric
// row per respondent. Empty cells and the tokens na, n/a, nan and null
// (any case) become missing values; anything else non-numeric is a type
// error.
func ParseTableCSV(data []byte) (*ScoreTable, error) {
	// Strip optional UTF-8 BOM
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}
	r := csv.NewReader(bytes.NewReader(data))
	records, err := r.ReadAll()
	if err != nil {
		return nil, NewInvalidError("invalid csv: " + err.Error())
	}
	if len(records) == 0 {
		return nil, NewInvalidError("empty csv")
	}
	items := make([]string, 0, len(records[0]))
	for _, h := range records[0] {
		items = append(items, strings.TrimSpace(h))
	}
	rows := make([][]float64, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(strings.TrimSpace(strings.Join(rec, ""))) == 0 {
			continue
		}
		row := make([]float64, len(rec))
		for j, cell := range rec {
			v, err := parseCell(cell)
			if err != nil {
				return nil, NewTypeError("column " + strconv.Quote(items[j]) + " row " + strconv.Itoa(i+1) + ": non-numeric value " + strconv.Quote(strings.TrimSpace(cell)))
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return NewScoreTable(items, rows)
}

func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "na", "n/a", "nan", "null":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// MissingPolicy selects how analysis treats missing observations.
type MissingPolicy string

const (
	// MissingPairwise keeps all rows and lets NaN propagate through the
	// statistics.
	MissingPairwise MissingPolicy = "pairwise"
	// MissingListwise drops every row that contains a missing value.
	MissingListwise MissingPolicy = "listwise"
	// MissingImpute replaces missing cells with their column mean.
	MissingImpute MissingPolicy = "impute"
)

// ParseMissingPolicy normalizes a policy name; empty defaults to pairwise.
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch MissingPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MissingPairwise:
		return MissingPairwise, nil
	case MissingListwise:
		return MissingListwise, nil
	case MissingImpute:
		return MissingImpute, nil
	}
	return "", NewInvalidParameterError("unknown missing policy " + strconv.Quote(s))
}

func floatRows(rows [][]float64) [][]Float {
	out := make([][]Float, len(rows))
	for r, row := range rows {
		nr := make([]Float, len(row))
		for c, v := range row {
			nr[c] = Float(v)
		}
		out[r] = nr
	}
	return out
}

func float64Rows(rows [][]Float) [][]float64 {
	out := make([][]float64, len(rows))
	for r, row := range rows {
		nr := make([]float64, len(row))
		for c, v := range row {
			nr[c] = float64(v)
		}
		out[r] = nr
	}
	return out
}
