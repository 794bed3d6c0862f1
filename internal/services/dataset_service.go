package services

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ErrorCode string

const (
	ErrorInvalid           ErrorCode = "invalid"
	ErrorForbidden         ErrorCode = "forbidden"
	ErrorNotFound          ErrorCode = "not_found"
	ErrorConflict          ErrorCode = "conflict"
	ErrorUnauthorized      ErrorCode = "unauthorized"
	ErrorShape             ErrorCode = "shape"
	ErrorType              ErrorCode = "type"
	ErrorInsufficientItems ErrorCode = "insufficient_items"
	ErrorDegenerateData    ErrorCode = "degenerate_data"
	ErrorInvalidParameter  ErrorCode = "invalid_parameter"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error   { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewForbiddenError(msg string) error { return &ServiceError{Code: ErrorForbidden, Message: msg} }
func NewNotFoundError(msg string) error  { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error  { return &ServiceError{Code: ErrorConflict, Message: msg} }
func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

func NewShapeError(msg string) error { return &ServiceError{Code: ErrorShape, Message: msg} }
func NewTypeError(msg string) error  { return &ServiceError{Code: ErrorType, Message: msg} }

func NewInsufficientItemsError(msg string) error {
	return &ServiceError{Code: ErrorInsufficientItems, Message: msg}
}

func NewDegenerateDataError(msg string) error {
	return &ServiceError{Code: ErrorDegenerateData, Message: msg}
}

func NewInvalidParameterError(msg string) error {
	return &ServiceError{Code: ErrorInvalidParameter, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

type DatasetStore interface {
	InsertDataset(d *Dataset) (*Dataset, error)
	GetDataset(id string) (*Dataset, error)
	UpdateDataset(d *Dataset) error
	DeleteDataset(id string) error
	ListDatasetsByWorkspace(workspaceID string) ([]*Dataset, error)
	AddAudit(entry AuditEntry)
}

type DatasetService struct {
	store DatasetStore
	now   func() time.Time
}

func NewDatasetService(store DatasetStore) *DatasetService {
	return &DatasetService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateDataset validates and stores a dataset scoped to a workspace.
// Missing item definitions are generated as Item1..ItemK from the first
// row's width.
func (s *DatasetService) CreateDataset(workspaceID string, d *Dataset) (*Dataset, error) {
	if workspaceID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	if d == nil {
		return nil, NewInvalidError("dataset required")
	}
	if len(d.Items) == 0 {
		if len(d.Rows) == 0 {
			return nil, NewInvalidError("items or rows required")
		}
		d.Items = make([]DatasetItem, len(d.Rows[0]))
		for i := range d.Items {
			d.Items[i] = DatasetItem{Name: "Item" + strconv.Itoa(i+1)}
		}
	}
	if _, err := NewScoreTable(d.ItemNames(), float64Rows(d.Rows)); err != nil {
		return nil, err
	}
	if d.ID == "" {
		d.ID = shortID(8)
	}
	if d.Points == 0 {
		d.Points = 5
	}
	if strings.TrimSpace(d.Name) == "" {
		d.Name = d.ID
	}
	d.WorkspaceID = workspaceID
	d.CreatedAt = s.now()
	created, err := s.store.InsertDataset(d)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return d, nil
	}
	return created, nil
}

// GetDataset fetches a dataset and enforces workspace scope. Datasets
// without a workspace (seeded examples) are readable by anyone.
func (s *DatasetService) GetDataset(workspaceID, id string) (*Dataset, error) {
	d, err := s.store.GetDataset(id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, NewNotFoundError("dataset not found")
	}
	if d.WorkspaceID != "" && d.WorkspaceID != workspaceID {
		return nil, NewForbiddenError("forbidden")
	}
	return d, nil
}

func (s *DatasetService) ListDatasets(workspaceID string) ([]*Dataset, error) {
	if workspaceID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	return s.store.ListDatasetsByWorkspace(workspaceID)
}

func (s *DatasetService) DeleteDataset(workspaceID, id, actor string) error {
	d, err := s.store.GetDataset(id)
	if err != nil {
		return err
	}
	if d == nil {
		return NewNotFoundError("dataset not found")
	}
	if d.WorkspaceID != "" && d.WorkspaceID != workspaceID {
		return NewForbiddenError("forbidden")
	}
	if err := s.store.DeleteDataset(id); err != nil {
		return err
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: actor, Action: "delete_dataset", Target: id})
	return nil
}

// AppendRows adds respondent rows to a dataset. Row width must match the
// item definitions.
func (s *DatasetService) AppendRows(workspaceID, id string, rows [][]Float) (int, error) {
	d, err := s.GetDataset(workspaceID, id)
	if err != nil {
		return 0, err
	}
	for i, row := range rows {
		if len(row) != len(d.Items) {
			return 0, NewShapeError("row " + strconv.Itoa(i) + " has " + strconv.Itoa(len(row)) + " values, want " + strconv.Itoa(len(d.Items)))
		}
	}
	d.Rows = append(d.Rows, rows...)
	if err := s.store.UpdateDataset(d); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// ImportRowsCSV parses a CSV table (as produced by ExportTableCSV) and
// appends its rows to the dataset. The header must match the dataset's
// item names in order.
func (s *DatasetService) ImportRowsCSV(workspaceID, id string, data []byte) (int, error) {
	d, err := s.GetDataset(workspaceID, id)
	if err != nil {
		return 0, err
	}
	t, err := ParseTableCSV(data)
	if err != nil {
		return 0, err
	}
	names := d.ItemNames()
	if len(t.Items) != len(names) {
		return 0, NewShapeError("csv has " + strconv.Itoa(len(t.Items)) + " columns, dataset has " + strconv.Itoa(len(names)))
	}
	for i, name := range names {
		if !strings.EqualFold(t.Items[i], name) {
			return 0, NewInvalidError("csv column " + strconv.Quote(t.Items[i]) + " does not match item " + strconv.Quote(name))
		}
	}
	d.Rows = append(d.Rows, floatRows(t.Rows)...)
	if err := s.store.UpdateDataset(d); err != nil {
		return 0, err
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: "admin", Action: "import_rows", Target: id, Note: strconv.Itoa(len(t.Rows))})
	return len(t.Rows), nil
}

// SetReverseScored flips the reverse-scored flag on one item.
func (s *DatasetService) SetReverseScored(workspaceID, id, item string, reverse bool) error {
	d, err := s.GetDataset(workspaceID, id)
	if err != nil {
		return err
	}
	for i := range d.Items {
		if d.Items[i].Name == item {
			d.Items[i].ReverseScored = reverse
			return s.store.UpdateDataset(d)
		}
	}
	return NewNotFoundError("unknown item " + strconv.Quote(item))
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
