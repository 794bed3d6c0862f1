package api

type Store interface {
	InsertDataset(d *Dataset)
	GetDataset(id string) *Dataset
	UpdateDataset(d *Dataset) bool
	DeleteDataset(id string) bool
	ListDatasetsByWorkspace(workspaceID string) []*Dataset

	InsertAnalysis(rec *AnalysisRecord)
	GetAnalysis(id string) *AnalysisRecord
	ListAnalysesByDataset(datasetID string) []*AnalysisRecord

	AddWorkspace(ws *Workspace)
	AddUser(u *User)
	FindUserByEmail(email string) *User

	AddAudit(e AuditEntry)
	ListAudit() []AuditEntry
}

var _ Store = (*memoryStore)(nil)
