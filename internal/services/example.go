package services

import (
	"encoding/json"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ExampleTable returns the bundled demonstration dataset: five Likert items
// answered by ten respondents, with a deliberately inconsistent response
// pattern so the diagnostics have something to flag.
func ExampleTable() *ScoreTable {
	items := []string{"Item1", "Item2", "Item3", "Item4", "Item5"}
	rows := [][]float64{
		{4, 3, 5, 2, 4},
		{3, 4, 2, 5, 3},
		{5, 4, 3, 4, 5},
		{2, 5, 4, 3, 2},
		{4, 3, 5, 2, 4},
		{3, 4, 2, 5, 3},
		{5, 4, 3, 4, 5},
		{2, 5, 4, 3, 2},
		{4, 3, 5, 2, 4},
		{3, 4, 2, 5, 3},
	}
	return &ScoreTable{Items: items, Rows: rows}
}

// ExampleDataset wraps ExampleTable in a dataset definition for seeding.
func ExampleDataset() *Dataset {
	t := ExampleTable()
	items := make([]DatasetItem, len(t.Items))
	for i, name := range t.Items {
		items[i] = DatasetItem{Name: name}
	}
	return &Dataset{ID: "demo", Name: "Example Scale", Points: 5, Items: items, Rows: floatRows(t.Rows)}
}

// EncodeTableJSON renders only the row data as a bare numeric array, the
// interchange form used for fixture files. Missing cells encode as null.
func EncodeTableJSON(t *ScoreTable) ([]byte, error) {
	return json.MarshalIndent(floatRows(t.Rows), "", "  ")
}

// DecodeTableJSON reads a bare numeric array and names the columns
// Item1..ItemK.
func DecodeTableJSON(data []byte) (*ScoreTable, error) {
	var rows [][]Float
	if err := json.Unmarshal(data, &rows); err != nil {
		if _, ok := AsServiceError(err); ok {
			return nil, err
		}
		return nil, NewInvalidError("invalid table json: " + err.Error())
	}
	if len(rows) == 0 {
		return nil, NewShapeError("empty table")
	}
	items := make([]string, len(rows[0]))
	for i := range items {
		items[i] = "Item" + strconv.Itoa(i+1)
	}
	return NewScoreTable(items, float64Rows(rows))
}

type taggedTable struct {
	Name  string      `yaml:"name,omitempty"`
	Items []string    `yaml:"items"`
	Rows  [][]float64 `yaml:"rows"`
}

// EncodeTableYAML renders a labeled table document. YAML represents missing
// cells natively as .nan.
func EncodeTableYAML(t *ScoreTable, name string) ([]byte, error) {
	return yaml.Marshal(taggedTable{Name: name, Items: t.Items, Rows: t.Rows})
}

// DecodeTableYAML reads a labeled table document and returns its optional
// name alongside the table.
func DecodeTableYAML(data []byte) (string, *ScoreTable, error) {
	var raw taggedTable
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return "", nil, NewInvalidError("invalid table yaml: " + err.Error())
	}
	t, err := NewScoreTable(raw.Items, raw.Rows)
	if err != nil {
		return "", nil, err
	}
	return raw.Name, t, nil
}
