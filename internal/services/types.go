package services

import "time"

type Dataset struct {
	ID          string        `json:"id"`
	WorkspaceID string        `json:"workspace_id,omitempty"`
	Name        string        `json:"name"`
	Points      int           `json:"points"`
	Items       []DatasetItem `json:"items"`
	Rows        [][]Float     `json:"rows"`
	CreatedAt   time.Time     `json:"created_at"`
}

type DatasetItem struct {
	Name          string `json:"name"`
	ReverseScored bool   `json:"reverse_scored,omitempty"`
}

func (d *Dataset) ItemNames() []string {
	out := make([]string, len(d.Items))
	for i, it := range d.Items {
		out[i] = it.Name
	}
	return out
}

type AnalysisRecord struct {
	ID          string          `json:"id"`
	DatasetID   string          `json:"dataset_id"`
	WorkspaceID string          `json:"workspace_id,omitempty"`
	Options     AnalysisOptions `json:"options"`
	Result      *AnalysisResult `json:"result"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Workspace struct{ ID, Name string }

type User struct {
	ID          string
	Email       string
	PassHash    []byte
	WorkspaceID string
	CreatedAt   time.Time
}

type AuditEntry struct {
	Time   time.Time
	Actor  string
	Action string
	Target string
	Note   string
}
