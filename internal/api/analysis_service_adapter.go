package api

import (
	"encoding/json"

	"github.com/Exios66/Cronbach-Alpha/internal/services"
)

type analysisStoreAdapter struct {
	store Store
}

func newAnalysisStoreAdapter(store Store) services.AnalysisStore {
	return &analysisStoreAdapter{store: store}
}

func (a *analysisStoreAdapter) GetDataset(id string) (*services.Dataset, error) {
	return convertAPIDataset(a.store.GetDataset(id)), nil
}

func (a *analysisStoreAdapter) InsertAnalysis(rec *services.AnalysisRecord) (*services.AnalysisRecord, error) {
	apiRec, err := convertServiceAnalysis(rec)
	if err != nil {
		return nil, err
	}
	a.store.InsertAnalysis(apiRec)
	return convertAPIAnalysis(a.store.GetAnalysis(apiRec.ID))
}

func (a *analysisStoreAdapter) GetAnalysis(id string) (*services.AnalysisRecord, error) {
	return convertAPIAnalysis(a.store.GetAnalysis(id))
}

func (a *analysisStoreAdapter) ListAnalysesByDataset(datasetID string) ([]*services.AnalysisRecord, error) {
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

func convertServiceAnalysis(rec *services.AnalysisRecord) (*AnalysisRecord, error) {
	if rec == nil {
		return nil, services.NewInvalidError("analysis required")
	}
	opts, err := json.Marshal(rec.Options)
	if err != nil {
		return nil, err
	}
	out := &AnalysisRecord{
		ID:          rec.ID,
		DatasetID:   rec.DatasetID,
		WorkspaceID: rec.WorkspaceID,
		OptionsJSON: string(opts),
		CreatedAt:   rec.CreatedAt,
	}
	if rec.Result != nil {
		res, err := json.Marshal(rec.Result)
		if err != nil {
			return nil, err
		}
		out.ResultJSON = string(res)
	}
	return out, nil
}

func convertAPIAnalysis(rec *AnalysisRecord) (*services.AnalysisRecord, error) {
	if rec == nil {
		return nil, nil
	}
	out := &services.AnalysisRecord{
		ID:          rec.ID,
		DatasetID:   rec.DatasetID,
		WorkspaceID: rec.WorkspaceID,
		CreatedAt:   rec.CreatedAt,
	}
	if rec.OptionsJSON != "" {
		if err := json.Unmarshal([]byte(rec.OptionsJSON), &out.Options); err != nil {
			return nil, err
		}
	}
	if rec.ResultJSON != "" {
		out.Result = &services.AnalysisResult{}
		if err := json.Unmarshal([]byte(rec.ResultJSON), out.Result); err != nil {
			return nil, err
		}
	}
	return out, nil
}

var _ services.AnalysisStore = (*analysisStoreAdapter)(nil)
