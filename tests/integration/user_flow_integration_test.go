//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("CRONBACH_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:18080"
}

func TestUserJourneyIntegration(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	base := baseURL()

	userEmail := fmt.Sprintf("integration_%d@example.com", time.Now().UnixNano())
	password := "Secret123!"
	workspaceName := fmt.Sprintf("Workspace %d", time.Now().UnixNano())

	var registerResp struct {
		Token       string `json:"token"`
		WorkspaceID string `json:"workspace_id"`
		UserID      string `json:"user_id"`
	}
	doPost(t, client, base+"/api/auth/register", "", map[string]any{
		"email":          userEmail,
		"password":       password,
		"workspace_name": workspaceName,
	}, &registerResp)
	if registerResp.Token == "" || registerResp.WorkspaceID == "" {
		t.Fatalf("unexpected register response: %+v", registerResp)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	doPost(t, client, base+"/api/auth/login", "", map[string]string{
		"email":    userEmail,
		"password": password,
	}, &loginResp)
	token := loginResp.Token
	if token == "" {
		t.Fatalf("login did not return token")
	}

	var createResp struct {
		ID string `json:"id"`
	}
	doPost(t, client, base+"/api/datasets", token, map[string]any{
		"name":   "Integration Scale",
		"points": 5,
		"items":  []map[string]any{{"name": "Item1"}, {"name": "Item2"}, {"name": "Item3"}},
		"rows":   [][]float64{{4, 3, 5}, {3, 4, 4}, {5, 2, 3}},
	}, &createResp)
	if createResp.ID == "" {
		t.Fatalf("expected dataset id in response")
	}

	var rowsResp struct {
		OK    bool `json:"ok"`
		Count int  `json:"count"`
	}
	doPost(t, client, base+"/api/datasets/"+createResp.ID+"/rows", token, map[string]any{
		"rows": [][]float64{{2, 5, 4}},
	}, &rowsResp)
	if !rowsResp.OK || rowsResp.Count != 1 {
		t.Fatalf("unexpected rows response: %+v", rowsResp)
	}

	analysisURL := base + "/api/datasets/" + createResp.ID + "/analysis"
	req, err := http.NewRequest(http.MethodGet, analysisURL, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("analysis request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("analysis status %d body %s", resp.StatusCode, string(body))
	}
	var analysisResp struct {
		ID     string `json:"id"`
		Result struct {
			Alpha *float64 `json:"alpha"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&analysisResp); err != nil {
		t.Fatalf("decode analysis response: %v", err)
	}
	if analysisResp.ID == "" || analysisResp.Result.Alpha == nil {
		t.Fatalf("unexpected analysis response: %+v", analysisResp)
	}

	exportURL := fmt.Sprintf("%s/api/export?dataset_id=%s&format=score", base, createResp.ID)
	req, err = http.NewRequest(http.MethodGet, exportURL, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("export request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("export status %d body %s", resp.StatusCode, string(body))
	}
	csvData, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read export data: %v", err)
	}
	csvContent := string(csvData)
	if !strings.Contains(csvContent, "respondent,total_score") {
		t.Fatalf("export csv missing header; csv=%s", csvContent)
	}
	if !strings.Contains(csvContent, "4,11") {
		t.Fatalf("export csv missing appended row total; csv=%s", csvContent)
	}
}

func doPost(t *testing.T, client *http.Client, url, token string, body any, out any) {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http post %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(bodyBytes))
	}
	if out != nil {
		decoder := json.NewDecoder(resp.Body)
		if err := decoder.Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
}
