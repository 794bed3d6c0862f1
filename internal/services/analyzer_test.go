package services

import (
	"math"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	warnings, err := Validate(docTable(), 2, 2)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}

	_, err = Validate(&ScoreTable{Items: []string{"a", "b"}, Rows: [][]float64{{1, 2}}}, 2, 2)
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorShape {
		t.Fatalf("expected shape error for single row, got %v", err)
	}

	_, err = Validate(&ScoreTable{Items: []string{"a"}, Rows: [][]float64{{1}, {2}}}, 2, 2)
	se, ok = AsServiceError(err)
	if !ok || se.Code != ErrorShape {
		t.Fatalf("expected shape error for single column, got %v", err)
	}
}

func TestValidateWarnings(t *testing.T) {
	tab := &ScoreTable{
		Items: []string{"flat", "neg"},
		Rows:  [][]float64{{3, -1}, {3, math.NaN()}, {3, 2}},
	}
	warnings, err := Validate(tab, 2, 2)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	joined := strings.Join(warnings, "; ")
	for _, want := range []string{"missing", "negative", "zero variance"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q warning in %q", want, joined)
		}
	}
}

func TestAnalyzeExampleTable(t *testing.T) {
	res, err := NewReliabilityAnalyzer(DefaultAnalysisOptions()).Analyze(ExampleTable())
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	want := -325.0 / 289.0
	if math.Abs(float64(res.Alpha)-want) > 1e-12 {
		t.Fatalf("alpha expected %v, got %v", want, res.Alpha)
	}
	if len(res.Items) != 5 || len(res.ItemTotalCorrelations) != 5 || len(res.ItemStatistics) != 5 {
		t.Fatalf("incomplete result: %+v", res)
	}
	if res.InterItemCorrelations == nil || len(res.InterItemCorrelations.Values) != 5 {
		t.Fatalf("missing correlation matrix")
	}
	if res.ScaleStatistics.NSubjects != 10 || res.ScaleStatistics.NItems != 5 {
		t.Fatalf("unexpected scale stats: %+v", res.ScaleStatistics)
	}
	if res.MissingPolicy != MissingPairwise {
		t.Fatalf("expected pairwise policy, got %v", res.MissingPolicy)
	}
	// Alpha is below -1 here, outside the Fisher domain, so the interval
	// degrades to a warning instead of failing the run.
	if res.ConfidenceInterval != nil {
		t.Fatalf("expected no interval for alpha < -1")
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "confidence interval unavailable") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected interval warning, got %v", res.Warnings)
	}
}

func TestAnalyzeProducesInterval(t *testing.T) {
	tab := &ScoreTable{
		Items: []string{"a", "b"},
		Rows:  [][]float64{{1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5}, {6, 7}},
	}
	res, err := NewReliabilityAnalyzer(AnalysisOptions{}).Analyze(tab)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	ci := res.ConfidenceInterval
	if ci == nil {
		t.Fatalf("expected interval, warnings: %v", res.Warnings)
	}
	if !(float64(ci.Lower) < float64(res.Alpha) && float64(res.Alpha) < float64(ci.Upper)) {
		t.Fatalf("alpha outside its interval: %v not in (%v, %v)", res.Alpha, ci.Lower, ci.Upper)
	}
	if ci.Confidence != 0.95 {
		t.Fatalf("expected default confidence 0.95, got %v", ci.Confidence)
	}
}

func TestAnalyzePairwiseKeepsNaN(t *testing.T) {
	tab := &ScoreTable{
		Items: []string{"a", "b"},
		Rows:  [][]float64{{1, 2}, {math.NaN(), 3}, {3, 4}},
	}
	res, err := NewReliabilityAnalyzer(AnalysisOptions{MissingPolicy: MissingPairwise}).Analyze(tab)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if !math.IsNaN(float64(res.Alpha)) {
		t.Fatalf("expected NaN alpha under pairwise with missing data, got %v", res.Alpha)
	}
}

func TestAnalyzeListwise(t *testing.T) {
	tab := &ScoreTable{
		Items: []string{"a", "b", "c"},
		Rows: [][]float64{
			{4, 3, 5},
			{math.NaN(), 1, 1},
			{3, 4, 4},
			{5, 2, 3},
			{2, 5, 4},
		},
	}
	res, err := NewReliabilityAnalyzer(AnalysisOptions{MissingPolicy: MissingListwise}).Analyze(tab)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	// Dropping the incomplete row leaves exactly the worked example.
	if math.Abs(float64(res.Alpha)-(-7.5)) > 1e-12 {
		t.Fatalf("alpha expected -7.5 after listwise deletion, got %v", res.Alpha)
	}
	if res.ScaleStatistics.NSubjects != 4 {
		t.Fatalf("expected 4 rows after deletion, got %d", res.ScaleStatistics.NSubjects)
	}
	if !math.IsNaN(tab.Rows[1][0]) {
		t.Fatalf("input table was modified")
	}
}

func TestAnalyzeListwiseTooFewRows(t *testing.T) {
	tab := &ScoreTable{
		Items: []string{"a", "b"},
		Rows:  [][]float64{{1, 2}, {math.NaN(), 3}, {math.NaN(), 4}},
	}
	_, err := NewReliabilityAnalyzer(AnalysisOptions{MissingPolicy: MissingListwise}).Analyze(tab)
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorShape {
		t.Fatalf("expected shape error after deletion, got %v", err)
	}
}

func TestAnalyzeImpute(t *testing.T) {
	tab := &ScoreTable{
		Items: []string{"a", "b"},
		Rows:  [][]float64{{1, 2}, {math.NaN(), 3}, {3, 7}},
	}
	res, err := NewReliabilityAnalyzer(AnalysisOptions{MissingPolicy: MissingImpute}).Analyze(tab)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if math.IsNaN(float64(res.Alpha)) {
		t.Fatalf("expected finite alpha after imputation")
	}
	if res.ScaleStatistics.NSubjects != 3 {
		t.Fatalf("imputation must keep all rows, got %d", res.ScaleStatistics.NSubjects)
	}
	if !math.IsNaN(tab.Rows[1][0]) {
		t.Fatalf("input table was modified")
	}
}

func TestAnalyzeUnknownPolicy(t *testing.T) {
	_, err := NewReliabilityAnalyzer(AnalysisOptions{MissingPolicy: "bogus"}).Analyze(docTable())
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorInvalidParameter {
		t.Fatalf("expected invalid_parameter error, got %v", err)
	}
}

func TestAnalysisOptionsDefaults(t *testing.T) {
	o := AnalysisOptions{}.withDefaults()
	if o.MissingPolicy != MissingPairwise || o.Confidence != 0.95 || o.MinRows != 2 || o.MinCols != 2 {
		t.Fatalf("unexpected defaults: %+v", o)
	}
}
