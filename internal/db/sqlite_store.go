package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/Exios66/Cronbach-Alpha/internal/api"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func NewStore(db *sql.DB) (api.Store, error) {
	return NewSQLiteStore(db)
}

func (s *SQLiteStore) logErr(prefix string, err error) {
	if err != nil {
		log.Printf("sqlite store: %s: %v", prefix, err)
	}
}

func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func encodeJSON(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if strings.TrimSpace(s) == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		log.Printf("sqlite store: parse time %q: %v", s, err)
		return time.Time{}
	}
	return t
}

func decodeItems(ns sql.NullString) []api.DatasetItem {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil
	}
	var out []api.DatasetItem
	if err := json.Unmarshal([]byte(ns.String), &out); err != nil {
		log.Printf("sqlite store: decode items: %v", err)
		return nil
	}
	return out
}

// Row cells are stored as JSON arrays with null marking a missing value, so
// NaN survives the trip through the database.
func encodeRows(rows [][]float64) (sql.NullString, error) {
	if len(rows) == 0 {
		return sql.NullString{}, nil
	}
	out := make([][]*float64, len(rows))
	for i, row := range rows {
		enc := make([]*float64, len(row))
		for j := range row {
			if v := row[j]; !math.IsNaN(v) && !math.IsInf(v, 0) {
				c := v
				enc[j] = &c
			}
		}
		out[i] = enc
	}
	return encodeJSON(out)
}

func decodeRows(ns sql.NullString) [][]float64 {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil
	}
	var raw [][]*float64
	if err := json.Unmarshal([]byte(ns.String), &raw); err != nil {
		log.Printf("sqlite store: decode rows: %v", err)
		return nil
	}
	out := make([][]float64, len(raw))
	for i, row := range raw {
		dec := make([]float64, len(row))
		for j, p := range row {
			if p == nil {
				dec[j] = math.NaN()
			} else {
				dec[j] = *p
			}
		}
		out[i] = dec
	}
	return out
}

// --- Dataset methods ---

func (s *SQLiteStore) InsertDataset(d *api.Dataset) {
	if d == nil {
		return
	}
	items, err := encodeJSON(d.Items)
	if err != nil {
		s.logErr("InsertDataset encode items", err)
		return
	}
	rows, err := encodeRows(d.Rows)
	if err != nil {
		s.logErr("InsertDataset encode rows", err)
		return
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO datasets (id, workspace_id, name, points, items, rows, created_at)
      VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.WorkspaceID, d.Name, d.Points, items, rows, formatTime(d.CreatedAt))
	s.logErr("InsertDataset", err)
}

func (s *SQLiteStore) scanDataset(row *sql.Row) *api.Dataset {
	var d api.Dataset
	var items, rows sql.NullString
	var created string
	if err := row.Scan(&d.ID, &d.WorkspaceID, &d.Name, &d.Points, &items, &rows, &created); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logErr("scan dataset", err)
		}
		return nil
	}
	d.Items = decodeItems(items)
	d.Rows = decodeRows(rows)
	d.CreatedAt = parseTime(created)
	return &d
}

func (s *SQLiteStore) GetDataset(id string) *api.Dataset {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	row := s.db.QueryRow(`SELECT id, workspace_id, name, points, items, rows, created_at FROM datasets WHERE id = ?`, id)
	return s.scanDataset(row)
}

func (s *SQLiteStore) UpdateDataset(d *api.Dataset) bool {
	if d == nil {
		return false
	}
	items, err := encodeJSON(d.Items)
	if err != nil {
		s.logErr("UpdateDataset encode items", err)
		return false
	}
	rows, err := encodeRows(d.Rows)
	if err != nil {
		s.logErr("UpdateDataset encode rows", err)
		return false
	}
	res, err := s.db.Exec(`UPDATE datasets SET workspace_id = ?, name = ?, points = ?, items = ?, rows = ? WHERE id = ?`,
		d.WorkspaceID, d.Name, d.Points, items, rows, d.ID)
	if err != nil {
		s.logErr("UpdateDataset", err)
		return false
	}
	count, _ := res.RowsAffected()
	return count > 0
}

func (s *SQLiteStore) DeleteDataset(id string) bool {
	if strings.TrimSpace(id) == "" {
		return false
	}
	res, err := s.db.Exec(`DELETE FROM datasets WHERE id = ?`, id)
	if err != nil {
		s.logErr("DeleteDataset", err)
		return false
	}
	count, _ := res.RowsAffected()
	if count == 0 {
		return false
	}
	if _, err := s.db.Exec(`DELETE FROM analyses WHERE dataset_id = ?`, id); err != nil {
		s.logErr("DeleteDataset analyses", err)
	}
	return true
}

func (s *SQLiteStore) ListDatasetsByWorkspace(workspaceID string) []*api.Dataset {
	rows, err := s.db.Query(`SELECT id, workspace_id, name, points, items, rows, created_at FROM datasets WHERE workspace_id = ? ORDER BY id ASC`, workspaceID)
	if err != nil {
		s.logErr("ListDatasetsByWorkspace: query", err)
		return nil
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logErr("ListDatasetsByWorkspace: rows.Close", cerr)
		}
	}()
	out := []*api.Dataset{}
	for rows.Next() {
		var d api.Dataset
		var items, rowsJSON sql.NullString
		var created string
		if err := rows.Scan(&d.ID, &d.WorkspaceID, &d.Name, &d.Points, &items, &rowsJSON, &created); err != nil {
			s.logErr("ListDatasetsByWorkspace: scan", err)
			continue
		}
		d.Items = decodeItems(items)
		d.Rows = decodeRows(rowsJSON)
		d.CreatedAt = parseTime(created)
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		s.logErr("ListDatasetsByWorkspace: rows.Err", err)
	}
	return out
}

// --- Analysis methods ---

func (s *SQLiteStore) InsertAnalysis(rec *api.AnalysisRecord) {
	if rec == nil {
		return
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO analyses (id, dataset_id, workspace_id, options_json, result_json, created_at)
      VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.DatasetID, rec.WorkspaceID, toNullString(rec.OptionsJSON), toNullString(rec.ResultJSON), formatTime(rec.CreatedAt))
	s.logErr("InsertAnalysis", err)
}

func (s *SQLiteStore) GetAnalysis(id string) *api.AnalysisRecord {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	row := s.db.QueryRow(`SELECT id, dataset_id, workspace_id, options_json, result_json, created_at FROM analyses WHERE id = ?`, id)
	var rec api.AnalysisRecord
	var opts, result sql.NullString
	var created string
	if err := row.Scan(&rec.ID, &rec.DatasetID, &rec.WorkspaceID, &opts, &result, &created); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logErr("GetAnalysis", err)
		}
		return nil
	}
	rec.OptionsJSON = opts.String
	rec.ResultJSON = result.String
	rec.CreatedAt = parseTime(created)
	return &rec
}

func (s *SQLiteStore) ListAnalysesByDataset(datasetID string) []*api.AnalysisRecord {
	rows, err := s.db.Query(`SELECT id, dataset_id, workspace_id, options_json, result_json, created_at FROM analyses WHERE dataset_id = ? ORDER BY created_at ASC`, datasetID)
	if err != nil {
		s.logErr("ListAnalysesByDataset: query", err)
		return nil
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logErr("ListAnalysesByDataset: rows.Close", cerr)
		}
	}()
	out := []*api.AnalysisRecord{}
	for rows.Next() {
		var rec api.AnalysisRecord
		var opts, result sql.NullString
		var created string
		if err := rows.Scan(&rec.ID, &rec.DatasetID, &rec.WorkspaceID, &opts, &result, &created); err != nil {
			s.logErr("ListAnalysesByDataset: scan", err)
			continue
		}
		rec.OptionsJSON = opts.String
		rec.ResultJSON = result.String
		rec.CreatedAt = parseTime(created)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		s.logErr("ListAnalysesByDataset: rows.Err", err)
	}
	return out
}

// --- Workspaces & users ---

func (s *SQLiteStore) AddWorkspace(ws *api.Workspace) {
	if ws == nil {
		return
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO workspaces (id, name, created_at) VALUES (?, ?, ?)`,
		ws.ID, ws.Name, formatTime(time.Time{}))
	s.logErr("AddWorkspace", err)
}

func (s *SQLiteStore) AddUser(u *api.User) {
	if u == nil {
		return
	}
	_, err := s.db.Exec(`INSERT INTO users (id, email, pass_hash, workspace_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PassHash, u.WorkspaceID, formatTime(u.CreatedAt))
	s.logErr("AddUser", err)
}

func (s *SQLiteStore) FindUserByEmail(email string) *api.User {
	if strings.TrimSpace(email) == "" {
		return nil
	}
	row := s.db.QueryRow(`SELECT id, email, pass_hash, workspace_id, created_at FROM users WHERE email = ?`, email)
	var u api.User
	var created string
	if err := row.Scan(&u.ID, &u.Email, &u.PassHash, &u.WorkspaceID, &created); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logErr("FindUserByEmail", err)
		}
		return nil
	}
	u.CreatedAt = parseTime(created)
	return &u
}

// --- Audit log ---

func (s *SQLiteStore) AddAudit(e api.AuditEntry) {
	_, err := s.db.Exec(`INSERT INTO audit_log (ts, actor, action, target, note) VALUES (?, ?, ?, ?, ?)`,
		formatTime(e.Time), e.Actor, e.Action, toNullString(e.Target), toNullString(e.Note))
	s.logErr("AddAudit", err)
}

// ListAudit returns the 500 most recent entries in insertion order.
func (s *SQLiteStore) ListAudit() []api.AuditEntry {
	rows, err := s.db.Query(`SELECT ts, actor, action, target, note FROM
      (SELECT id, ts, actor, action, target, note FROM audit_log ORDER BY id DESC LIMIT 500)
      ORDER BY id ASC`)
	if err != nil {
		s.logErr("ListAudit: query", err)
		return nil
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logErr("ListAudit: rows.Close", cerr)
		}
	}()
	out := []api.AuditEntry{}
	for rows.Next() {
		var e api.AuditEntry
		var ts string
		var target, note sql.NullString
		if err := rows.Scan(&ts, &e.Actor, &e.Action, &target, &note); err != nil {
			s.logErr("ListAudit: scan", err)
			continue
		}
		e.Time = parseTime(ts)
		e.Target = target.String
		e.Note = note.String
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		s.logErr("ListAudit: rows.Err", err)
	}
	return out
}

var _ api.Store = (*SQLiteStore)(nil)
