package services

import (
	"strings"
	"testing"
)

type datasetStubStore struct {
	datasets map[string]*Dataset
	audits   []AuditEntry
}

func newDatasetStubStore() *datasetStubStore {
	return &datasetStubStore{datasets: map[string]*Dataset{}}
}

func (s *datasetStubStore) InsertDataset(d *Dataset) (*Dataset, error) {
	copy := *d
	s.datasets[d.ID] = &copy
	return &copy, nil
}

func (s *datasetStubStore) GetDataset(id string) (*Dataset, error) {
	if d, ok := s.datasets[id]; ok {
		copy := *d
		return &copy, nil
	}
	return nil, nil
}

func (s *datasetStubStore) UpdateDataset(d *Dataset) error {
	if _, ok := s.datasets[d.ID]; !ok {
		return NewNotFoundError("dataset not found")
	}
	copy := *d
	s.datasets[d.ID] = &copy
	return nil
}

func (s *datasetStubStore) DeleteDataset(id string) error {
	if _, ok := s.datasets[id]; !ok {
		return NewNotFoundError("dataset not found")
	}
	delete(s.datasets, id)
	return nil
}

func (s *datasetStubStore) ListDatasetsByWorkspace(workspaceID string) ([]*Dataset, error) {
	out := []*Dataset{}
	for _, d := range s.datasets {
		if d.WorkspaceID == workspaceID {
			copy := *d
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (s *datasetStubStore) AddAudit(entry AuditEntry) {
	s.audits = append(s.audits, entry)
}

func TestCreateDatasetDefaults(t *testing.T) {
	store := newDatasetStubStore()
	svc := NewDatasetService(store)
	created, err := svc.CreateDataset("W1", &Dataset{
		Rows: [][]Float{{4, 3, 5}, {3, 4, 4}},
	})
	if err != nil {
		t.Fatalf("CreateDataset error: %v", err)
	}
	if created.ID == "" || created.WorkspaceID != "W1" {
		t.Fatalf("unexpected dataset %+v", created)
	}
	if created.Points != 5 {
		t.Fatalf("expected default points 5, got %d", created.Points)
	}
	if len(created.Items) != 3 || created.Items[0].Name != "Item1" {
		t.Fatalf("expected generated item names, got %+v", created.Items)
	}
	if created.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}
}

func TestCreateDatasetValidation(t *testing.T) {
	svc := NewDatasetService(newDatasetStubStore())
	if _, err := svc.CreateDataset("", &Dataset{}); err == nil {
		t.Fatalf("expected forbidden error without workspace")
	}
	if _, err := svc.CreateDataset("W1", nil); err == nil {
		t.Fatalf("expected invalid error for nil dataset")
	}
	_, err := svc.CreateDataset("W1", &Dataset{
		Items: []DatasetItem{{Name: "a"}, {Name: "b"}},
		Rows:  [][]Float{{1, 2}, {3}},
	})
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorShape {
		t.Fatalf("expected shape error for ragged rows, got %v", err)
	}
	_, err = svc.CreateDataset("W1", &Dataset{
		Items: []DatasetItem{{Name: "a"}, {Name: "a"}},
	})
	se, ok = AsServiceError(err)
	if !ok || se.Code != ErrorInvalid {
		t.Fatalf("expected invalid error for duplicate items, got %v", err)
	}
}

func TestGetDatasetScope(t *testing.T) {
	store := newDatasetStubStore()
	store.datasets["D1"] = &Dataset{ID: "D1", WorkspaceID: "W1"}
	store.datasets["seed"] = &Dataset{ID: "seed"}
	svc := NewDatasetService(store)

	if _, err := svc.GetDataset("W1", "D1"); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
	_, err := svc.GetDataset("W2", "D1")
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.GetDataset("W2", "seed"); err != nil {
		t.Fatalf("seeded datasets must be readable by anyone: %v", err)
	}
	_, err = svc.GetDataset("W1", "missing")
	se, ok = AsServiceError(err)
	if !ok || se.Code != ErrorNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestAppendRows(t *testing.T) {
	store := newDatasetStubStore()
	store.datasets["D1"] = &Dataset{
		ID:          "D1",
		WorkspaceID: "W1",
		Items:       []DatasetItem{{Name: "a"}, {Name: "b"}},
	}
	svc := NewDatasetService(store)
	n, err := svc.AppendRows("W1", "D1", [][]Float{{1, 2}, {3, 4}})
	if err != nil {
		t.Fatalf("AppendRows error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows appended, got %d", n)
	}
	stored, _ := store.GetDataset("D1")
	if len(stored.Rows) != 2 {
		t.Fatalf("rows not persisted: %+v", stored)
	}
	_, err = svc.AppendRows("W1", "D1", [][]Float{{1}})
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorShape {
		t.Fatalf("expected shape error, got %v", err)
	}
}

func TestImportRowsCSV(t *testing.T) {
	store := newDatasetStubStore()
	store.datasets["D1"] = &Dataset{
		ID:          "D1",
		WorkspaceID: "W1",
		Items:       []DatasetItem{{Name: "q1"}, {Name: "q2"}},
	}
	svc := NewDatasetService(store)
	n, err := svc.ImportRowsCSV("W1", "D1", []byte("q1,q2\n1,2\n3,\n"))
	if err != nil {
		t.Fatalf("ImportRowsCSV error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}
	if len(store.audits) == 0 || store.audits[0].Action != "import_rows" {
		t.Fatalf("expected import audit, got %+v", store.audits)
	}
	if _, err := svc.ImportRowsCSV("W1", "D1", []byte("other,q2\n1,2\n")); err == nil {
		t.Fatalf("expected error for mismatched header")
	}
	_, err = svc.ImportRowsCSV("W1", "D1", []byte("q1,q2,q3\n1,2,3\n"))
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorShape {
		t.Fatalf("expected shape error for extra column, got %v", err)
	}
}

func TestDeleteDatasetAudits(t *testing.T) {
	store := newDatasetStubStore()
	store.datasets["D1"] = &Dataset{ID: "D1", WorkspaceID: "W1"}
	svc := NewDatasetService(store)
	if err := svc.DeleteDataset("W2", "D1", "admin"); err == nil {
		t.Fatalf("expected forbidden for wrong workspace")
	}
	if err := svc.DeleteDataset("W1", "D1", "admin"); err != nil {
		t.Fatalf("DeleteDataset error: %v", err)
	}
	if len(store.audits) != 1 || store.audits[0].Action != "delete_dataset" {
		t.Fatalf("expected delete audit, got %+v", store.audits)
	}
}

func TestSetReverseScored(t *testing.T) {
	store := newDatasetStubStore()
	store.datasets["D1"] = &Dataset{
		ID:          "D1",
		WorkspaceID: "W1",
		Items:       []DatasetItem{{Name: "q1"}, {Name: "q2"}},
	}
	svc := NewDatasetService(store)
	if err := svc.SetReverseScored("W1", "D1", "q2", true); err != nil {
		t.Fatalf("SetReverseScored error: %v", err)
	}
	stored, _ := store.GetDataset("D1")
	if !stored.Items[1].ReverseScored {
		t.Fatalf("flag not persisted: %+v", stored.Items)
	}
	err := svc.SetReverseScored("W1", "D1", "q9", true)
	if err == nil || !strings.Contains(err.Error(), "unknown item") {
		t.Fatalf("expected unknown item error, got %v", err)
	}
}
