package services

import "math"

// ReverseScore maps a raw Likert value to its reverse-scored value
// given the number of points in the scale (e.g., 5 or 7).
// raw is expected to be within [1, points]. Out-of-range values are clamped.
func ReverseScore(raw, points int) int {
	if points < 2 {
		return raw
	}
	if raw < 1 {
		raw = 1
	}
	if raw > points {
		raw = points
	}
	return (points + 1) - raw
}

// reverseScoreFloat applies ReverseScore semantics to a table cell.
// Missing values pass through untouched and fractional values keep their
// fractional part, so 1.5 on a 5-point scale becomes 4.5.
func reverseScoreFloat(raw float64, points int) float64 {
	if math.IsNaN(raw) || points < 2 {
		return raw
	}
	if raw < 1 {
		raw = 1
	}
	if raw > float64(points) {
		raw = float64(points)
	}
	return float64(points+1) - raw
}

// Table returns the dataset's raw values as a score table. The rows are
// copied, so mutating the table leaves the dataset untouched.
func (d *Dataset) Table() (*ScoreTable, error) {
	return NewScoreTable(d.ItemNames(), float64Rows(d.Rows))
}

// DatasetFromTable wraps a parsed table in a dataset definition, the inverse
// of Table. ID, workspace and timestamps are left for the caller to fill.
func DatasetFromTable(t *ScoreTable, name string) *Dataset {
	items := make([]DatasetItem, len(t.Items))
	for i, n := range t.Items {
		items[i] = DatasetItem{Name: n}
	}
	return &Dataset{Name: name, Items: items, Rows: floatRows(t.Rows)}
}

// ScoredTable returns the dataset as a score table with reverse-scored
// items flipped around the scale midpoint. Datasets without an explicit
// point count score against a 5-point scale.
func (d *Dataset) ScoredTable() (*ScoreTable, error) {
	t, err := d.Table()
	if err != nil {
		return nil, err
	}
	points := d.Points
	if points <= 0 {
		points = 5
	}
	for j, it := range d.Items {
		if !it.ReverseScored {
			continue
		}
		for _, row := range t.Rows {
			row[j] = reverseScoreFloat(row[j], points)
		}
	}
	return t, nil
}
