package api

import (
	"sort"
	"strings"
	"sync"
	"time"
)

type Dataset struct {
	ID          string        `json:"id"`
	WorkspaceID string        `json:"workspace_id,omitempty"`
	Name        string        `json:"name"`
	Points      int           `json:"points"`
	Items       []DatasetItem `json:"items"`
	Rows        [][]float64   `json:"rows"`
	CreatedAt   time.Time     `json:"created_at"`
}

type DatasetItem struct {
	Name          string `json:"name"`
	ReverseScored bool   `json:"reverse_scored,omitempty"`
}

// AnalysisRecord keeps the request options and the computed result as JSON
// blobs. The adapters marshal through the services codec so missing cells
// survive as nulls.
type AnalysisRecord struct {
	ID          string    `json:"id"`
	DatasetID   string    `json:"dataset_id"`
	WorkspaceID string    `json:"workspace_id,omitempty"`
	OptionsJSON string    `json:"options_json,omitempty"`
	ResultJSON  string    `json:"result_json,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type memoryStore struct {
	mu           sync.RWMutex
	datasets     map[string]*Dataset
	analyses     map[string]*AnalysisRecord
	workspaces   map[string]*Workspace
	usersByEmail map[string]*User
	audit        []AuditEntry
}

func NewMemoryStore() Store { return newMemoryStore() }

func newMemoryStore() *memoryStore {
	return &memoryStore{
		datasets:     map[string]*Dataset{},
		analyses:     map[string]*AnalysisRecord{},
		workspaces:   map[string]*Workspace{},
		usersByEmail: map[string]*User{},
		audit:        []AuditEntry{},
	}
}

func (s *memoryStore) InsertDataset(d *Dataset) {
	if d == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *d
	s.datasets[d.ID] = &copy
}

func (s *memoryStore) GetDataset(id string) *Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.datasets[id]
	if d == nil {
		return nil
	}
	copy := *d
	return &copy
}

func (s *memoryStore) UpdateDataset(d *Dataset) bool {
	if d == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[d.ID]; !ok {
		return false
	}
	copy := *d
	s.datasets[d.ID] = &copy
	return true
}

func (s *memoryStore) DeleteDataset(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[id]; !ok {
		return false
	}
	delete(s.datasets, id)
	for aid, rec := range s.analyses {
		if rec.DatasetID == id {
			delete(s.analyses, aid)
		}
	}
	return true
}

func (s *memoryStore) ListDatasetsByWorkspace(workspaceID string) []*Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*Dataset{}
	for _, d := range s.datasets {
		if d.WorkspaceID == workspaceID {
			copy := *d
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memoryStore) InsertAnalysis(rec *AnalysisRecord) {
	if rec == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *rec
	s.analyses[rec.ID] = &copy
}

func (s *memoryStore) GetAnalysis(id string) *AnalysisRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec := s.analyses[id]
	if rec == nil {
		return nil
	}
	copy := *rec
	return &copy
}

func (s *memoryStore) ListAnalysesByDataset(datasetID string) []*AnalysisRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*AnalysisRecord{}
	for _, rec := range s.analyses {
		if rec.DatasetID == datasetID {
			copy := *rec
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// audit log
type AuditEntry struct {
	Time   time.Time `json:"time"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Target string    `json:"target"`
	Note   string    `json:"note,omitempty"`
}

func (s *memoryStore) AddAudit(e AuditEntry) {
	s.mu.Lock()
	s.audit = append(s.audit, e)
	s.mu.Unlock()
}

func (s *memoryStore) ListAudit() []AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AuditEntry, len(s.audit))
	copy(out, s.audit)
	return out
}

// workspaces & users
type Workspace struct{ ID, Name string }

type User struct {
	ID          string
	Email       string
	PassHash    []byte
	WorkspaceID string
	CreatedAt   time.Time
}

func (s *memoryStore) AddWorkspace(ws *Workspace) {
	if ws == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces[ws.ID] = ws
}

func (s *memoryStore) AddUser(u *User) {
	if u == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usersByEmail[strings.ToLower(u.Email)] = u
}

func (s *memoryStore) FindUserByEmail(email string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usersByEmail[strings.ToLower(email)]
}
