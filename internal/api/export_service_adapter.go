package api

import "github.com/Exios66/Cronbach-Alpha/internal/services"

type exportStoreAdapter struct {
	store Store
}

func newExportStoreAdapter(store Store) services.ExportStore {
	return &exportStoreAdapter{store: store}
}

func (a *exportStoreAdapter) GetDataset(id string) (*services.Dataset, error) {
	return convertAPIDataset(a.store.GetDataset(id)), nil
}

var _ services.ExportStore = (*exportStoreAdapter)(nil)
