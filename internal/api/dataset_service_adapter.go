package api

import "github.com/Exios66/Cronbach-Alpha/internal/services"

type datasetStoreAdapter struct {
	store Store
}

func newDatasetStoreAdapter(store Store) services.DatasetStore {
	return &datasetStoreAdapter{store: store}
}

func (a *datasetStoreAdapter) InsertDataset(d *services.Dataset) (*services.Dataset, error) {
	apiDataset := convertServiceDataset(d)
	a.store.InsertDataset(apiDataset)
	stored := a.store.GetDataset(apiDataset.ID)
	return convertAPIDataset(stored), nil
}

func (a *datasetStoreAdapter) GetDataset(id string) (*services.Dataset, error) {
	return convertAPIDataset(a.store.GetDataset(id)), nil
}

func (a *datasetStoreAdapter) UpdateDataset(d *services.Dataset) error {
	if d == nil {
		return services.NewInvalidError("dataset required")
	}
	if ok := a.store.UpdateDataset(convertServiceDataset(d)); !ok {
		return services.NewNotFoundError("dataset not found")
	}
	return nil
}

func (a *datasetStoreAdapter) DeleteDataset(id string) error {
	if ok := a.store.DeleteDataset(id); !ok {
		return services.NewNotFoundError("dataset not found")
	}
	return nil
}

func (a *datasetStoreAdapter) ListDatasetsByWorkspace(workspaceID string) ([]*services.Dataset, error) {
	datasets := a.store.ListDatasetsByWorkspace(workspaceID)
	out := make([]*services.Dataset, 0, len(datasets))
	for _, d := range datasets {
		out = append(out, convertAPIDataset(d))
	}
	return out, nil
}

func (a *datasetStoreAdapter) AddAudit(entry services.AuditEntry) {
	a.store.AddAudit(AuditEntry{Time: entry.Time, Actor: entry.Actor, Action: entry.Action, Target: entry.Target, Note: entry.Note})
}

func convertServiceDataset(d *services.Dataset) *Dataset {
	if d == nil {
		return nil
	}
	items := make([]DatasetItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, DatasetItem{Name: it.Name, ReverseScored: it.ReverseScored})
	}
	return &Dataset{
		ID:          d.ID,
		WorkspaceID: d.WorkspaceID,
		Name:        d.Name,
		Points:      d.Points,
		Items:       items,
		Rows:        convertServiceRows(d.Rows),
		CreatedAt:   d.CreatedAt,
	}
}

func convertAPIDataset(d *Dataset) *services.Dataset {
	if d == nil {
		return nil
	}
	items := make([]services.DatasetItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, services.DatasetItem{Name: it.Name, ReverseScored: it.ReverseScored})
	}
	return &services.Dataset{
		ID:          d.ID,
		WorkspaceID: d.WorkspaceID,
		Name:        d.Name,
		Points:      d.Points,
		Items:       items,
		Rows:        convertAPIRows(d.Rows),
		CreatedAt:   d.CreatedAt,
	}
}

func convertServiceRows(rows [][]services.Float) [][]float64 {
	if rows == nil {
		return nil
	}
	out := make([][]float64, len(rows))
	for i, row := range rows {
		r := make([]float64, len(row))
		for j, v := range row {
			r[j] = float64(v)
		}
		out[i] = r
	}
	return out
}

func convertAPIRows(rows [][]float64) [][]services.Float {
	if rows == nil {
		return nil
	}
	out := make([][]services.Float, len(rows))
	for i, row := range rows {
		r := make([]services.Float, len(row))
		for j, v := range row {
			r[j] = services.Float(v)
		}
		out[i] = r
	}
	return out
}

var _ services.DatasetStore = (*datasetStoreAdapter)(nil)
