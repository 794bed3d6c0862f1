package services

import (
	"math"
	"time"
)

type SummaryStore interface {
	GetDataset(id string) (*Dataset, error)
	ListAnalysesByDataset(datasetID string) ([]*AnalysisRecord, error)
}

// SummaryService produces a lightweight dashboard view of a dataset:
// per-item score histograms, completeness counts and a quick alpha over
// the complete rows. Unlike AnalysisService.Run nothing is persisted.
type SummaryService struct {
	store SummaryStore
}

type ItemBreakdown struct {
	Name      string `json:"name"`
	Reverse   bool   `json:"reverse_scored,omitempty"`
	Histogram []int  `json:"histogram"`
	Total     int    `json:"total"`
	Missing   int    `json:"missing"`
}

type DatasetSummary struct {
	DatasetID     string          `json:"dataset_id"`
	Points        int             `json:"points"`
	TotalRows     int             `json:"total_rows"`
	CompleteRows  int             `json:"complete_rows"`
	Items         []ItemBreakdown `json:"items"`
	Alpha         Float           `json:"alpha"`
	AnalysisCount int             `json:"analysis_count"`
	LastAnalyzed  *time.Time      `json:"last_analyzed,omitempty"`
}

func NewSummaryService(store SummaryStore) *SummaryService {
	return &SummaryService{store: store}
}

func (s *SummaryService) Summary(workspaceID, datasetID string) (*DatasetSummary, error) {
	d, err := s.store.GetDataset(datasetID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, NewNotFoundError("dataset not found")
	}
	if d.WorkspaceID != "" && d.WorkspaceID != workspaceID {
		return nil, NewForbiddenError("forbidden")
	}
	points := d.Points
	if points <= 0 {
		points = 5
	}
	table, err := d.ScoredTable()
	if err != nil {
		return nil, err
	}

	items := buildItemBreakdowns(d, table, points)
	complete := table.DropIncompleteRows()
	alpha := math.NaN()
	if v, err := CronbachAlpha(complete); err == nil {
		alpha = v
	}

	records, err := s.store.ListAnalysesByDataset(datasetID)
	if err != nil {
		return nil, err
	}
	count := 0
	var last *time.Time
	for _, rec := range records {
		// On shared datasets only the caller's own runs are counted.
		if rec.WorkspaceID != "" && rec.WorkspaceID != workspaceID {
			continue
		}
		count++
		if last == nil || rec.CreatedAt.After(*last) {
			t := rec.CreatedAt
			last = &t
		}
	}

	return &DatasetSummary{
		DatasetID:     datasetID,
		Points:        points,
		TotalRows:     table.NRows(),
		CompleteRows:  complete.NRows(),
		Items:         items,
		Alpha:         Float(alpha),
		AnalysisCount: count,
		LastAnalyzed:  last,
	}, nil
}

// buildItemBreakdowns counts scored answers per item into 1..points bins.
// Non-integer scores and values outside the range only count toward the
// item total; NaN counts as missing.
func buildItemBreakdowns(d *Dataset, table *ScoreTable, points int) []ItemBreakdown {
	out := make([]ItemBreakdown, len(table.Items))
	for i, name := range table.Items {
		b := ItemBreakdown{Name: name, Histogram: make([]int, points)}
		if i < len(d.Items) {
			b.Reverse = d.Items[i].ReverseScored
		}
		for _, v := range table.ColumnAt(i) {
			if math.IsNaN(v) {
				b.Missing++
				continue
			}
			b.Total++
			iv := int(v)
			if float64(iv) == v && iv >= 1 && iv <= points {
				b.Histogram[iv-1]++
			}
		}
		out[i] = b
	}
	return out
}
