package api

import (
    "encoding/json"
    "io"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/Exios66/Cronbach-Alpha/internal/middleware"
    "github.com/Exios66/Cronbach-Alpha/internal/services"
)

type Router struct {
    store     Store
    datasets  *services.DatasetService
    analyses  *services.AnalysisService
    auth      *services.AuthService
    exports   *services.ExportService
    summaries *services.SummaryService
}

func NewRouter() *Router { return NewRouterWithStore(newMemoryStore()) }

func NewRouterWithStore(store Store) *Router {
    return &Router{
        store:     store,
        datasets:  services.NewDatasetService(newDatasetStoreAdapter(store)),
        analyses:  services.NewAnalysisService(newAnalysisStoreAdapter(store)),
        auth:      services.NewAuthService(newAuthStoreAdapter(store), middleware.SignToken),
        exports:   services.NewExportService(newExportStoreAdapter(store)),
        summaries: services.NewSummaryService(newSummaryStoreAdapter(store)),
    }
}

func (rt *Router) Register(mux *http.ServeMux) {
    mux.HandleFunc("/api/auth/register", rt.handleRegister) // POST
    mux.HandleFunc("/api/auth/login", rt.handleLogin)       // POST
    mux.HandleFunc("/api/seed", rt.handleSeed)              // POST
    mux.HandleFunc("/api/datasets", rt.handleDatasets)      // POST, GET
    mux.HandleFunc("/api/datasets/", rt.handleDatasetScoped)
    mux.HandleFunc("/api/analyses/", rt.handleAnalysisByID) // GET
    mux.HandleFunc("/api/export", rt.handleExport)          // GET
    mux.HandleFunc("/api/metrics/alpha", rt.handleAlpha)    // GET
    mux.Handle("/api/audit", middleware.RequireAuth(http.HandlerFunc(rt.handleAudit))) // GET
}

func writeJSON(w http.ResponseWriter, v any) {
    w.Header().Set("Content-Type", "application/json")
    _ = json.NewEncoder(w).Encode(v)
}

func writeServiceError(w http.ResponseWriter, err error) {
    if se, ok := services.AsServiceError(err); ok {
        http.Error(w, se.Message, statusForCode(se.Code))
        return
    }
    http.Error(w, err.Error(), http.StatusInternalServerError)
}

func statusForCode(code services.ErrorCode) int {
    switch code {
    case services.ErrorNotFound:
        return http.StatusNotFound
    case services.ErrorForbidden:
        return http.StatusForbidden
    case services.ErrorUnauthorized:
        return http.StatusUnauthorized
    case services.ErrorConflict:
        return http.StatusConflict
    default:
        return http.StatusBadRequest
    }
}

// POST /api/auth/register
func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost { http.Error(w, "method not allowed", http.StatusMethodNotAllowed); return }
    var req struct {
        Email         string `json:"email"`
        Password      string `json:"password"`
        WorkspaceName string `json:"workspace_name"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil { http.Error(w, err.Error(), http.StatusBadRequest); return }
    res, err := rt.auth.Register(req.Email, req.Password, req.WorkspaceName)
    if err != nil { writeServiceError(w, err); return }
    writeJSON(w, map[string]any{"token": res.Token, "workspace_id": res.WorkspaceID, "user_id": res.UserID})
}

// POST /api/auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost { http.Error(w, "method not allowed", http.StatusMethodNotAllowed); return }
    var req struct {
        Email    string `json:"email"`
        Password string `json:"password"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil { http.Error(w, err.Error(), http.StatusBadRequest); return }
    res, err := rt.auth.Login(req.Email, req.Password)
    if err != nil { writeServiceError(w, err); return }
    writeJSON(w, map[string]any{"token": res.Token, "workspace_id": res.WorkspaceID, "user_id": res.UserID})
}

// SeedExample inserts the bundled demonstration dataset into the store.
func SeedExample(store Store) *Dataset {
    d := services.ExampleDataset()
    d.CreatedAt = time.Now().UTC()
    apiDataset := convertServiceDataset(d)
    store.InsertDataset(apiDataset)
    store.AddAudit(AuditEntry{Time: time.Now().UTC(), Actor: "admin", Action: "seed_example", Target: d.ID})
    return apiDataset
}

// POST /api/seed: insert the documented example dataset
func (rt *Router) handleSeed(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost { http.Error(w, "method not allowed", http.StatusMethodNotAllowed); return }
    d := SeedExample(rt.store)
    writeJSON(w, map[string]any{"ok": true, "dataset_id": d.ID, "items": len(d.Items), "rows": len(d.Rows)})
}

// POST /api/datasets (JSON body; ?format=csv|yaml for raw table uploads)
// GET /api/datasets: list datasets in the caller's workspace
func (rt *Router) handleDatasets(w http.ResponseWriter, r *http.Request) {
    wid, _ := middleware.WorkspaceIDFromContext(r.Context())
    switch r.Method {
    case http.MethodGet:
        if wid == "" { http.Error(w, "unauthorized", http.StatusUnauthorized); return }
        list, err := rt.datasets.ListDatasets(wid)
        if err != nil { writeServiceError(w, err); return }
        writeJSON(w, map[string]any{"datasets": list})
    case http.MethodPost:
        if wid == "" { http.Error(w, "unauthorized", http.StatusUnauthorized); return }
        d, err := decodeDatasetBody(r)
        if err != nil { writeServiceError(w, err); return }
        created, err := rt.datasets.CreateDataset(wid, d)
        if err != nil { writeServiceError(w, err); return }
        writeJSON(w, created)
    default:
        http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
    }
}

func decodeDatasetBody(r *http.Request) (*services.Dataset, error) {
    q := r.URL.Query()
    switch q.Get("format") {
    case "", "json":
        var d services.Dataset
        if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
            if _, ok := services.AsServiceError(err); ok { return nil, err }
            return nil, services.NewInvalidError("invalid dataset json: " + err.Error())
        }
        return &d, nil
    case "csv":
        data, err := io.ReadAll(r.Body)
        if err != nil { return nil, services.NewInvalidError("read body: " + err.Error()) }
        t, err := services.ParseTableCSV(data)
        if err != nil { return nil, err }
        return services.DatasetFromTable(t, q.Get("name")), nil
    case "yaml":
        data, err := io.ReadAll(r.Body)
        if err != nil { return nil, services.NewInvalidError("read body: " + err.Error()) }
        name, t, err := services.DecodeTableYAML(data)
        if err != nil { return nil, err }
        if qn := q.Get("name"); qn != "" { name = qn }
        return services.DatasetFromTable(t, name), nil
    default:
        return nil, services.NewInvalidError("unsupported format")
    }
}

// /api/datasets/{id}            GET, DELETE
// /api/datasets/{id}/rows       POST (?format=csv for raw CSV rows)
// /api/datasets/{id}/analysis   GET (?policy=&confidence=), runs and persists
// /api/datasets/{id}/analyses   GET, lists persisted analyses
// /api/datasets/{id}/summary    GET, histograms and completeness
// /api/datasets/{id}/report     GET (?stats=1&corr=1&title=), plain text
// /api/datasets/{id}/reverse    POST {item, reverse}
func (rt *Router) handleDatasetScoped(w http.ResponseWriter, r *http.Request) {
    rest := strings.TrimPrefix(r.URL.Path, "/api/datasets/")
    parts := strings.Split(rest, "/")
    if len(parts) == 0 || parts[0] == "" { http.NotFound(w, r); return }
    id := parts[0]
    wid, _ := middleware.WorkspaceIDFromContext(r.Context())

    if len(parts) == 1 {
        switch r.Method {
        case http.MethodGet:
            d, err := rt.datasets.GetDataset(wid, id)
            if err != nil { writeServiceError(w, err); return }
            writeJSON(w, d)
        case http.MethodDelete:
            if wid == "" { http.Error(w, "unauthorized", http.StatusUnauthorized); return }
            actor, _ := middleware.EmailFromContext(r.Context())
            if err := rt.datasets.DeleteDataset(wid, id, actor); err != nil { writeServiceError(w, err); return }
            writeJSON(w, map[string]any{"ok": true})
        default:
            http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
        }
        return
    }
    if len(parts) != 2 { http.NotFound(w, r); return }

    switch parts[1] {
    case "rows":
        rt.handleDatasetRows(w, r, wid, id)
    case "analysis":
        opts, err := analysisOptionsFromQuery(r)
        if err != nil { writeServiceError(w, err); return }
        rec, err := rt.analyses.Run(wid, id, opts)
        if err != nil { writeServiceError(w, err); return }
        writeJSON(w, rec)
    case "analyses":
        list, err := rt.analyses.ListAnalyses(wid, id)
        if err != nil { writeServiceError(w, err); return }
        writeJSON(w, map[string]any{"analyses": list})
    case "summary":
        sum, err := rt.summaries.Summary(wid, id)
        if err != nil { writeServiceError(w, err); return }
        writeJSON(w, sum)
    case "report":
        rt.handleDatasetReport(w, r, wid, id)
    case "reverse":
        if r.Method != http.MethodPost { http.Error(w, "method not allowed", http.StatusMethodNotAllowed); return }
        if wid == "" { http.Error(w, "unauthorized", http.StatusUnauthorized); return }
        var req struct {
            Item    string `json:"item"`
            Reverse bool   `json:"reverse"`
        }
        if err := json.NewDecoder(r.Body).Decode(&req); err != nil { http.Error(w, err.Error(), http.StatusBadRequest); return }
        if err := rt.datasets.SetReverseScored(wid, id, req.Item, req.Reverse); err != nil { writeServiceError(w, err); return }
        writeJSON(w, map[string]any{"ok": true})
    default:
        http.NotFound(w, r)
    }
}

func (rt *Router) handleDatasetRows(w http.ResponseWriter, r *http.Request, wid, id string) {
    if r.Method != http.MethodPost { http.Error(w, "method not allowed", http.StatusMethodNotAllowed); return }
    if r.URL.Query().Get("format") == "csv" {
        data, err := io.ReadAll(r.Body)
        if err != nil { http.Error(w, err.Error(), http.StatusBadRequest); return }
        n, err := rt.datasets.ImportRowsCSV(wid, id, data)
        if err != nil { writeServiceError(w, err); return }
        writeJSON(w, map[string]any{"ok": true, "count": n})
        return
    }
    var req struct {
        Rows [][]services.Float `json:"rows"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        if _, ok := services.AsServiceError(err); ok { writeServiceError(w, err); return }
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }
    n, err := rt.datasets.AppendRows(wid, id, req.Rows)
    if err != nil { writeServiceError(w, err); return }
    writeJSON(w, map[string]any{"ok": true, "count": n})
}

func (rt *Router) handleDatasetReport(w http.ResponseWriter, r *http.Request, wid, id string) {
    opts, err := analysisOptionsFromQuery(r)
    if err != nil { writeServiceError(w, err); return }
    q := r.URL.Query()
    ropts := services.ReportOptions{
        Title:             q.Get("title"),
        ItemStatistics:    boolParam(q.Get("stats")),
        CorrelationMatrix: boolParam(q.Get("corr")),
    }
    text, err := rt.analyses.Report(wid, id, opts, ropts)
    if err != nil { writeServiceError(w, err); return }
    w.Header().Set("Content-Type", "text/plain; charset=utf-8")
    _, _ = io.WriteString(w, text)
}

func analysisOptionsFromQuery(r *http.Request) (services.AnalysisOptions, error) {
    opts := services.AnalysisOptions{}
    q := r.URL.Query()
    if p := q.Get("policy"); p != "" {
        mp, err := services.ParseMissingPolicy(p)
        if err != nil { return opts, err }
        opts.MissingPolicy = mp
    }
    if c := q.Get("confidence"); c != "" {
        v, err := strconv.ParseFloat(c, 64)
        if err != nil { return opts, services.NewInvalidParameterError("invalid confidence: " + c) }
        opts.Confidence = v
    }
    return opts, nil
}

func boolParam(v string) bool { return v == "1" || strings.EqualFold(v, "true") }

// GET /api/analyses/{id}
func (rt *Router) handleAnalysisByID(w http.ResponseWriter, r *http.Request) {
    id := strings.TrimPrefix(r.URL.Path, "/api/analyses/")
    if id == "" || strings.Contains(id, "/") { http.NotFound(w, r); return }
    wid, _ := middleware.WorkspaceIDFromContext(r.Context())
    rec, err := rt.analyses.GetAnalysis(wid, id)
    if err != nil { writeServiceError(w, err); return }
    writeJSON(w, rec)
}

// GET /api/export?dataset_id=...&format=wide|score|stats|diagnostics|corr&policy=
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
    q := r.URL.Query()
    datasetID := q.Get("dataset_id")
    if datasetID == "" { http.Error(w, "dataset_id required", http.StatusBadRequest); return }
    wid, _ := middleware.WorkspaceIDFromContext(r.Context())
    if d := rt.store.GetDataset(datasetID); d != nil && d.WorkspaceID != "" && d.WorkspaceID != wid {
        http.Error(w, "forbidden", http.StatusForbidden)
        return
    }
    res, err := rt.exports.ExportCSV(services.ExportParams{DatasetID: datasetID, Format: q.Get("format"), MissingPolicy: q.Get("policy")})
    if err != nil { writeServiceError(w, err); return }
    w.Header().Set("Content-Type", res.ContentType)
    w.Header().Set("Content-Disposition", "attachment; filename="+res.Filename)
    _, _ = w.Write(res.Data)
}

// GET /api/audit lists recent audit entries, newest last.
func (rt *Router) handleAudit(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet { http.Error(w, "method not allowed", http.StatusMethodNotAllowed); return }
    writeJSON(w, map[string]any{"audit": rt.store.ListAudit()})
}

// GET /api/metrics/alpha?dataset_id=...
func (rt *Router) handleAlpha(w http.ResponseWriter, r *http.Request) {
    datasetID := r.URL.Query().Get("dataset_id")
    if datasetID == "" { http.Error(w, "dataset_id required", http.StatusBadRequest); return }
    alpha, n, err := rt.analyses.Alpha(datasetID)
    if err != nil { writeServiceError(w, err); return }
    writeJSON(w, map[string]any{"dataset_id": datasetID, "alpha": services.Float(alpha), "n": n})
}
