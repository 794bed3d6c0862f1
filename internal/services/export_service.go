package services

type ExportStore interface {
	GetDataset(id string) (*Dataset, error)
}

type ExportParams struct {
	DatasetID     string
	Format        string
	MissingPolicy string
}

type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ExportService struct {
	store ExportStore
}

func NewExportService(store ExportStore) *ExportService {
	return &ExportService{store: store}
}

// ExportCSV renders a dataset in one of the supported CSV formats. The
// table format (alias: wide) dumps raw rows; score dumps respondent totals;
// stats, diagnostics and correlations (alias: corr) run a reliability
// analysis first, honoring the requested missing-value policy.
func (s *ExportService) ExportCSV(params ExportParams) (*ExportResult, error) {
	if params.DatasetID == "" {
		return nil, NewInvalidError("dataset_id required")
	}
	format := params.Format
	if format == "" {
		format = "table"
	}
	d, err := s.store.GetDataset(params.DatasetID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, NewNotFoundError("dataset not found")
	}

	switch format {
	case "table", "wide":
		t, err := d.Table()
		if err != nil {
			return nil, err
		}
		b, err := ExportTableCSV(t)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: "table.csv", ContentType: "text/csv; charset=utf-8", Data: b}, nil
	case "score":
		t, err := d.ScoredTable()
		if err != nil {
			return nil, err
		}
		b, err := ExportTotalsCSV(t)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: "score.csv", ContentType: "text/csv; charset=utf-8", Data: b}, nil
	case "stats":
		res, err := s.analyze(d, params.MissingPolicy)
		if err != nil {
			return nil, err
		}
		b, err := ExportItemStatsCSV(res.Items, res.ItemStatistics)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: "stats.csv", ContentType: "text/csv; charset=utf-8", Data: b}, nil
	case "diagnostics":
		res, err := s.analyze(d, params.MissingPolicy)
		if err != nil {
			return nil, err
		}
		b, err := ExportDiagnosticsCSV(res)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: "diagnostics.csv", ContentType: "text/csv; charset=utf-8", Data: b}, nil
	case "correlations", "corr":
		res, err := s.analyze(d, params.MissingPolicy)
		if err != nil {
			return nil, err
		}
		b, err := ExportCorrelationsCSV(res.InterItemCorrelations)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: "correlations.csv", ContentType: "text/csv; charset=utf-8", Data: b}, nil
	default:
		return nil, NewInvalidError("unsupported format")
	}
}

func (s *ExportService) analyze(d *Dataset, policy string) (*AnalysisResult, error) {
	mp, err := ParseMissingPolicy(policy)
	if err != nil {
		return nil, err
	}
	table, err := d.ScoredTable()
	if err != nil {
		return nil, err
	}
	opts := DefaultAnalysisOptions()
	opts.MissingPolicy = mp
	return NewReliabilityAnalyzer(opts).Analyze(table)
}
