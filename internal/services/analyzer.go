package services

import (
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// AnalysisOptions configures a reliability run. Zero values fall back to
// the defaults: pairwise missing handling, a 95% interval and a 2x2
// minimum shape.
type AnalysisOptions struct {
	MissingPolicy MissingPolicy `json:"missing_policy,omitempty"`
	Confidence    float64       `json:"confidence,omitempty"`
	MinRows       int           `json:"min_rows,omitempty"`
	MinCols       int           `json:"min_cols,omitempty"`
}

func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{MissingPolicy: MissingPairwise, Confidence: 0.95, MinRows: 2, MinCols: 2}
}

func (o AnalysisOptions) withDefaults() AnalysisOptions {
	if o.MissingPolicy == "" {
		o.MissingPolicy = MissingPairwise
	}
	if o.Confidence == 0 {
		o.Confidence = 0.95
	}
	if o.MinRows == 0 {
		o.MinRows = 2
	}
	if o.MinCols == 0 {
		o.MinCols = 2
	}
	return o
}

// AnalysisResult aggregates every statistic produced by a run. Items keeps
// the column order so renderers do not depend on map iteration.
type AnalysisResult struct {
	Alpha                 Float                `json:"alpha"`
	Items                 []string             `json:"items"`
	ItemTotalCorrelations map[string]Float     `json:"item_total_correlations"`
	AlphaIfDeleted        map[string]Float     `json:"alpha_if_deleted"`
	ConfidenceInterval    *AlphaInterval       `json:"confidence_interval,omitempty"`
	ItemStatistics        map[string]ItemStats `json:"item_statistics"`
	InterItemCorrelations *CorrelationMatrix   `json:"inter_item_correlations"`
	ScaleStatistics       ScaleStats           `json:"scale_statistics"`
	MissingPolicy         MissingPolicy        `json:"missing_policy"`
	Warnings              []string             `json:"warnings,omitempty"`
}

// Validate checks that a table is analyzable and reports non-fatal
// data-quality findings: missing cells, negative values and zero-variance
// items come back as warnings rather than errors.
func Validate(t *ScoreTable, minRows, minCols int) ([]string, error) {
	if t == nil {
		return nil, NewInvalidError("score table required")
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Items) {
			return nil, NewShapeError("row " + strconv.Itoa(i) + " has " + strconv.Itoa(len(row)) + " values, want " + strconv.Itoa(len(t.Items)))
		}
	}
	if t.NItems() < minCols {
		return nil, NewShapeError("at least " + strconv.Itoa(minCols) + " items required, got " + strconv.Itoa(t.NItems()))
	}
	if t.NRows() < minRows {
		return nil, NewShapeError("at least " + strconv.Itoa(minRows) + " rows required, got " + strconv.Itoa(t.NRows()))
	}
	var warnings []string
	if n := t.MissingCount(); n > 0 {
		warnings = append(warnings, strconv.Itoa(n)+" missing values present")
	}
	negative := false
	for _, row := range t.Rows {
		for _, v := range row {
			if v < 0 {
				negative = true
			}
		}
	}
	if negative {
		warnings = append(warnings, "negative values present")
	}
	for i, name := range t.Items {
		if stat.Variance(t.ColumnAt(i), nil) == 0 {
			warnings = append(warnings, "item "+strconv.Quote(name)+" has zero variance")
		}
	}
	return warnings, nil
}

// ReliabilityAnalyzer runs the full reliability battery over a table.
type ReliabilityAnalyzer struct {
	opts AnalysisOptions
}

func NewReliabilityAnalyzer(opts AnalysisOptions) *ReliabilityAnalyzer {
	return &ReliabilityAnalyzer{opts: opts.withDefaults()}
}

// Analyze validates the table, applies the missing-value policy and
// computes alpha together with its companion diagnostics. The input table
// is never modified; policies that rewrite data work on copies. A
// confidence interval that cannot be formed (too few subjects, or alpha at
// the edge of the Fisher domain) downgrades to a warning instead of
// failing the whole run.
func (a *ReliabilityAnalyzer) Analyze(t *ScoreTable) (*AnalysisResult, error) {
	warnings, err := Validate(t, a.opts.MinRows, a.opts.MinCols)
	if err != nil {
		return nil, err
	}
	work := t
	switch a.opts.MissingPolicy {
	case MissingPairwise:
	case MissingListwise:
		work = t.DropIncompleteRows()
		if work.NRows() < a.opts.MinRows {
			return nil, NewShapeError("listwise deletion left " + strconv.Itoa(work.NRows()) + " rows, need " + strconv.Itoa(a.opts.MinRows))
		}
	case MissingImpute:
		work = t.ImputeColumnMeans()
	default:
		return nil, NewInvalidParameterError("unknown missing policy " + strconv.Quote(string(a.opts.MissingPolicy)))
	}
	alpha, err := CronbachAlpha(work)
	if err != nil {
		return nil, err
	}
	res := &AnalysisResult{
		Alpha:                 Float(alpha),
		Items:                 append([]string(nil), work.Items...),
		ItemTotalCorrelations: ItemTotalCorrelations(work),
		AlphaIfDeleted:        DeletedItemAlphas(work),
		ItemStatistics:        ItemStatistics(work),
		InterItemCorrelations: InterItemCorrelations(work),
		ScaleStatistics:       ScaleStatistics(work),
		MissingPolicy:         a.opts.MissingPolicy,
	}
	ci, err := ConfidenceInterval(alpha, work.NItems(), work.NRows(), a.opts.Confidence)
	if err != nil {
		warnings = append(warnings, "confidence interval unavailable: "+err.Error())
	} else {
		res.ConfidenceInterval = ci
	}
	res.Warnings = warnings
	return res, nil
}
