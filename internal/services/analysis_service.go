package services

import "time"

type AnalysisStore interface {
	GetDataset(id string) (*Dataset, error)
	InsertAnalysis(rec *AnalysisRecord) (*AnalysisRecord, error)
	GetAnalysis(id string) (*AnalysisRecord, error)
	ListAnalysesByDataset(datasetID string) ([]*AnalysisRecord, error)
}

type AnalysisService struct {
	store AnalysisStore
	now   func() time.Time
	idGen func(n int) string
}

func NewAnalysisService(store AnalysisStore) *AnalysisService {
	return &AnalysisService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: shortID,
	}
}

func (s *AnalysisService) dataset(workspaceID, datasetID string) (*Dataset, error) {
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
	return d, nil
}

// Run executes a reliability analysis over a stored dataset and persists
// the result. Reverse-scored items are flipped before any statistics are
// computed.
func (s *AnalysisService) Run(workspaceID, datasetID string, opts AnalysisOptions) (*AnalysisRecord, error) {
	d, err := s.dataset(workspaceID, datasetID)
	if err != nil {
		return nil, err
	}
	table, err := d.ScoredTable()
	if err != nil {
		return nil, err
	}
	res, err := NewReliabilityAnalyzer(opts).Analyze(table)
	if err != nil {
		return nil, err
	}
	rec := &AnalysisRecord{
		ID:          s.idGen(8),
		DatasetID:   datasetID,
		WorkspaceID: workspaceID,
		Options:     opts.withDefaults(),
		Result:      res,
		CreatedAt:   s.now(),
	}
	created, err := s.store.InsertAnalysis(rec)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return rec, nil
	}
	return created, nil
}

// Alpha computes just the reliability coefficient for a dataset without
// persisting anything. The returned count is the number of respondent rows
// that entered the computation.
func (s *AnalysisService) Alpha(datasetID string) (float64, int, error) {
	d, err := s.store.GetDataset(datasetID)
	if err != nil {
		return 0, 0, err
	}
	if d == nil {
		return 0, 0, NewNotFoundError("dataset not found")
	}
	table, err := d.ScoredTable()
	if err != nil {
		return 0, 0, err
	}
	alpha, err := CronbachAlpha(table)
	if err != nil {
		return 0, 0, err
	}
	return alpha, table.NRows(), nil
}

// Report runs a fresh analysis and renders it as text. Nothing is
// persisted; the title defaults to the dataset name.
func (s *AnalysisService) Report(workspaceID, datasetID string, opts AnalysisOptions, ropts ReportOptions) (string, error) {
	d, err := s.dataset(workspaceID, datasetID)
	if err != nil {
		return "", err
	}
	table, err := d.ScoredTable()
	if err != nil {
		return "", err
	}
	res, err := NewReliabilityAnalyzer(opts).Analyze(table)
	if err != nil {
		return "", err
	}
	if ropts.Title == "" {
		ropts.Title = d.Name
	}
	return RenderReport(res, ropts), nil
}

func (s *AnalysisService) GetAnalysis(workspaceID, id string) (*AnalysisRecord, error) {
	rec, err := s.store.GetAnalysis(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, NewNotFoundError("analysis not found")
	}
	if rec.WorkspaceID != "" && rec.WorkspaceID != workspaceID {
		return nil, NewForbiddenError("forbidden")
	}
	return rec, nil
}

// ListAnalyses returns the stored records for a dataset the caller can
// see. On shared datasets each caller only sees records from their own
// workspace.
func (s *AnalysisService) ListAnalyses(workspaceID, datasetID string) ([]*AnalysisRecord, error) {
	if _, err := s.dataset(workspaceID, datasetID); err != nil {
		return nil, err
	}
	recs, err := s.store.ListAnalysesByDataset(datasetID)
	if err != nil {
		return nil, err
	}
	out := make([]*AnalysisRecord, 0, len(recs))
	for _, rec := range recs {
		if rec.WorkspaceID == "" || rec.WorkspaceID == workspaceID {
			out = append(out, rec)
		}
	}
	return out, nil
}
