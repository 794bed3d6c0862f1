package api

import "github.com/Exios66/Cronbach-Alpha/internal/services"

type summaryStoreAdapter struct {
	store Store
}

func newSummaryStoreAdapter(store Store) services.SummaryStore {
	return &summaryStoreAdapter{store: store}
}

func (a *summaryStoreAdapter) GetDataset(id string) (*services.Dataset, error) {
	return convertAPIDataset(a.store.GetDataset(id)), nil
}

func (a *summaryStoreAdapter) ListAnalysesByDataset(datasetID string) ([]*services.AnalysisRecord, error) {
	recs := a.store.ListAnalysesByDataset(datasetID)
	out := make([]*services.AnalysisRecord, 0, len(recs))
	for _, rec := range recs {
		conv, err := convertAPIAnalysis(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, conv)
	}
	return out, nil
}

var _ services.SummaryStore = (*summaryStoreAdapter)(nil)
