package services

import (
	"math"
	"strings"
	"testing"
)

type stubAnalysisStore struct {
	datasets map[string]*Dataset
	analyses map[string]*AnalysisRecord
}

func newStubAnalysisStore() *stubAnalysisStore {
	return &stubAnalysisStore{datasets: map[string]*Dataset{}, analyses: map[string]*AnalysisRecord{}}
}

func (s *stubAnalysisStore) GetDataset(id string) (*Dataset, error) {
	if d, ok := s.datasets[id]; ok {
		copy := *d
		return &copy, nil
	}
	return nil, nil
}

func (s *stubAnalysisStore) InsertAnalysis(rec *AnalysisRecord) (*AnalysisRecord, error) {
	copy := *rec
	s.analyses[rec.ID] = &copy
	return &copy, nil
}

func (s *stubAnalysisStore) GetAnalysis(id string) (*AnalysisRecord, error) {
	if rec, ok := s.analyses[id]; ok {
		copy := *rec
		return &copy, nil
	}
	return nil, nil
}

func (s *stubAnalysisStore) ListAnalysesByDataset(datasetID string) ([]*AnalysisRecord, error) {
	out := []*AnalysisRecord{}
	for _, rec := range s.analyses {
		if rec.DatasetID == datasetID {
			copy := *rec
			out = append(out, &copy)
		}
	}
	return out, nil
}

func exampleStore() *stubAnalysisStore {
	store := newStubAnalysisStore()
	d := ExampleDataset()
	d.WorkspaceID = "W1"
	store.datasets[d.ID] = d
	return store
}

func TestAnalysisRun(t *testing.T) {
	store := exampleStore()
	svc := NewAnalysisService(store)
	rec, err := svc.Run("W1", "demo", AnalysisOptions{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if rec.ID == "" || rec.DatasetID != "demo" || rec.WorkspaceID != "W1" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Options.MissingPolicy != MissingPairwise || rec.Options.Confidence != 0.95 {
		t.Fatalf("options not normalized: %+v", rec.Options)
	}
	want := -325.0 / 289.0
	if math.Abs(float64(rec.Result.Alpha)-want) > 1e-12 {
		t.Fatalf("alpha expected %v, got %v", want, rec.Result.Alpha)
	}
	if len(store.analyses) != 1 {
		t.Fatalf("expected analysis to be persisted")
	}
}

func TestAnalysisRunScope(t *testing.T) {
	store := exampleStore()
	svc := NewAnalysisService(store)
	_, err := svc.Run("W2", "demo", AnalysisOptions{})
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	_, err = svc.Run("W1", "missing", AnalysisOptions{})
	se, ok = AsServiceError(err)
	if !ok || se.Code != ErrorNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestAnalysisRunAppliesReverseScoring(t *testing.T) {
	store := newStubAnalysisStore()
	store.datasets["D1"] = &Dataset{
		ID:     "D1",
		Points: 5,
		Items:  []DatasetItem{{Name: "a"}, {Name: "b", ReverseScored: true}},
		Rows: [][]Float{
			{1, 5},
			{2, 4},
			{3, 3},
			{4, 2},
		},
	}
	svc := NewAnalysisService(store)
	// Reversing b turns it into a copy of a, giving perfect consistency.
	rec, err := svc.Run("", "D1", AnalysisOptions{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if math.Abs(float64(rec.Result.Alpha)-1) > 1e-12 {
		t.Fatalf("expected alpha 1 after reverse scoring, got %v", rec.Result.Alpha)
	}
}

func TestAnalysisAlpha(t *testing.T) {
	store := exampleStore()
	svc := NewAnalysisService(store)
	alpha, n, err := svc.Alpha("demo")
	if err != nil {
		t.Fatalf("Alpha error: %v", err)
	}
	if n != 10 {
		t.Fatalf("expected n=10, got %d", n)
	}
	if math.Abs(alpha-(-325.0/289.0)) > 1e-12 {
		t.Fatalf("unexpected alpha %v", alpha)
	}
}

func TestAnalysisReport(t *testing.T) {
	store := exampleStore()
	svc := NewAnalysisService(store)
	out, err := svc.Report("W1", "demo", AnalysisOptions{}, ReportOptions{ItemStatistics: true})
	if err != nil {
		t.Fatalf("Report error: %v", err)
	}
	if !strings.Contains(out, "Example Scale") {
		t.Fatalf("expected dataset name as title:\n%s", out)
	}
	if !strings.Contains(out, "Cronbach's Alpha: -1.125") {
		t.Fatalf("expected formatted alpha:\n%s", out)
	}
	if len(store.analyses) != 0 {
		t.Fatalf("Report must not persist records")
	}
}

func TestAnalysisGetAndList(t *testing.T) {
	store := exampleStore()
	svc := NewAnalysisService(store)
	rec, err := svc.Run("W1", "demo", AnalysisOptions{MissingPolicy: MissingListwise})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	got, err := svc.GetAnalysis("W1", rec.ID)
	if err != nil {
		t.Fatalf("GetAnalysis error: %v", err)
	}
	if got.Options.MissingPolicy != MissingListwise {
		t.Fatalf("unexpected options: %+v", got.Options)
	}
	if _, err := svc.GetAnalysis("W2", rec.ID); err == nil {
		t.Fatalf("expected forbidden for wrong workspace")
	}
	list, err := svc.ListAnalyses("W1", "demo")
	if err != nil {
		t.Fatalf("ListAnalyses error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 record, got %d", len(list))
	}
	_, err = svc.ListAnalyses("W2", "demo")
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorForbidden {
		t.Fatalf("expected forbidden for other workspace, got %v", err)
	}
}
