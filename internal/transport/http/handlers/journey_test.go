package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/s6816011857053-star/on-boarding/internal/app/server"
	"github.com/s6816011857053-star/on-boarding/internal/platform/config"
)

const (
	hrID       = "1"
	employeeID = "2"
	trainerID  = "3"
	managerID  = "4"
)

type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta *struct {
		Total  int `json:"total"`
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	} `json:"meta"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			Fields []struct {
				Field  string `json:"field"`
				Reason string `json:"reason"`
			} `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func testConfig(dbURL string) config.Config {
	cfg := config.Default()
	cfg.DatabaseURL = dbURL
	cfg.Environment = "test"
	cfg.LogLevel = "error"
	cfg.RateLimitPerMinute = 1000
	cfg.MigrationsDir = "../../../../migrations"
	return cfg
}

func newTestServer(t *testing.T, cfg config.Config) *httptest.Server {
	t.Helper()
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to init app: %v", err)
	}
	srv := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		srv.Close()
		app.Close()
	})
	return srv
}

func TestOnboardingJourney(t *testing.T) {
	srv := newTestServer(t, testConfig(""))
	runOnboardingJourney(t, srv)
}

func TestOnboardingJourneyPostgres(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	srv := newTestServer(t, testConfig(dbURL))
	runOnboardingJourney(t, srv)
}

func runOnboardingJourney(t *testing.T, srv *httptest.Server) {
	t.Helper()
	client := srv.Client()
	base := srv.URL + "/api/v1"
	newID := "EMP" + time.Now().UTC().Format("150405.000000")

	start := time.Now().UTC().Format("2006-01-02")
	registration := map[string]any{
		"employeeId":    newID,
		"firstName":     "Mali",
		"lastName":      "Srisuk",
		"position":      "server",
		"department":    "customer service",
		"branch":        "Siam",
		"startDate":     start,
		"trainerId":     trainerID,
		"lineManagerId": managerID,
	}
	created := envelopeDataMap(t, postJSONStatus(t, client, base+"/employees", hrID, registration, http.StatusCreated))
	if created["status"] != "pending" {
		t.Fatalf("expected pending status, got %v", created["status"])
	}
	if created["department"] != "Customer Service" {
		t.Fatalf("expected canonical department, got %v", created["department"])
	}
	postJSONStatus(t, client, base+"/employees", hrID, registration, http.StatusConflict)
	postJSONStatus(t, client, base+"/employees", trainerID, registration, http.StatusForbidden)

	progress := envelopeDataMap(t, getJSONStatus(t, client, base+"/employees/"+newID+"/progress", hrID, http.StatusOK))
	if progress["completedModules"].(float64) != 0 || progress["totalModules"].(float64) != 10 {
		t.Fatalf("unexpected initial progress: %v", progress)
	}
	if progress["averageScore"].(float64) != 0 {
		t.Fatalf("expected zero average without evaluations, got %v", progress["averageScore"])
	}

	postJSONStatus(t, client, base+"/employees/"+newID+"/modules/server_1/complete", trainerID, map[string]any{"notes": "solid start"}, http.StatusOK)
	postJSONStatus(t, client, base+"/employees/"+newID+"/modules/cook_helper_1/complete", trainerID, nil, http.StatusNotFound)
	postJSONStatus(t, client, base+"/employees/"+newID+"/modules/server_2/complete", managerID, nil, http.StatusForbidden)

	emp := envelopeDataMap(t, getJSONStatus(t, client, base+"/employees/"+newID, hrID, http.StatusOK))
	if emp["status"] != "in_progress" {
		t.Fatalf("expected in_progress after first module, got %v", emp["status"])
	}

	evaluations := map[string]any{
		"evaluations": []map[string]any{
			{"moduleId": "server_1", "score": 8, "passed": true, "comments": "clear vocabulary"},
		},
	}
	postJSONStatus(t, client, base+"/employees/"+newID+"/evaluations", trainerID, evaluations, http.StatusForbidden)
	env := postJSONStatus(t, client, base+"/employees/"+newID+"/evaluations", managerID, evaluations, http.StatusConflict)
	if env.Error == nil || env.Error.Code != "training_incomplete" {
		t.Fatalf("expected training_incomplete, got %+v", env.Error)
	}

	progress = envelopeDataMap(t, getJSONStatus(t, client, base+"/employees/"+newID+"/progress", managerID, http.StatusOK))
	if progress["completedModules"].(float64) != 1 || progress["averageScore"].(float64) != 0 {
		t.Fatalf("unexpected progress after one module: %v", progress)
	}
	if progress["status"] != "on_track" {
		t.Fatalf("expected on_track for a fresh hire, got %v", progress["status"])
	}
	if days := progress["daysRemaining"].(float64); days < 89 || days > 90 {
		t.Fatalf("expected about 90 days remaining, got %v", days)
	}

	for i := 2; i <= 10; i++ {
		postJSONStatus(t, client, fmt.Sprintf("%s/employees/%s/modules/server_%d/complete", base, newID, i), trainerID, nil, http.StatusOK)
	}
	emp = envelopeDataMap(t, getJSONStatus(t, client, base+"/employees/"+newID, hrID, http.StatusOK))
	if emp["status"] != "completed" {
		t.Fatalf("expected completed after all modules, got %v", emp["status"])
	}

	var scores []map[string]any
	for i := 1; i <= 10; i++ {
		scores = append(scores, map[string]any{"moduleId": fmt.Sprintf("server_%d", i), "score": 8, "passed": true})
	}
	postJSONStatus(t, client, base+"/employees/"+newID+"/evaluations", managerID, map[string]any{"evaluations": scores}, http.StatusOK)

	progress = envelopeDataMap(t, getJSONStatus(t, client, base+"/employees/"+newID+"/progress", managerID, http.StatusOK))
	if progress["completedModules"].(float64) != 10 || progress["status"] != "completed" {
		t.Fatalf("unexpected progress after training: %v", progress)
	}
	if progress["averageScore"].(float64) != 8 || progress["totalScore"].(float64) != 80 {
		t.Fatalf("unexpected scores: %v", progress)
	}

	emp = envelopeDataMap(t, getJSONStatus(t, client, base+"/employees/"+newID, hrID, http.StatusOK))
	if emp["status"] != "evaluated" {
		t.Fatalf("expected evaluated after manager review, got %v", emp["status"])
	}

	// The employee account only sees its own record.
	getJSONStatus(t, client, base+"/employees/"+newID+"/progress", employeeID, http.StatusNotFound)
	own := envelopeDataMap(t, getJSONStatus(t, client, base+"/employees/EMP001/progress", employeeID, http.StatusOK))
	if own["employeeId"] != "EMP001" {
		t.Fatalf("unexpected own progress: %v", own)
	}

	summary := envelopeDataMap(t, getJSONStatus(t, client, base+"/reports/summary?branch=siam", hrID, http.StatusOK))
	rows := summary["employees"].([]any)
	found := false
	for _, row := range rows {
		if row.(map[string]any)["employeeId"] == newID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %s in branch report, got %v", newID, rows)
	}
	getJSONStatus(t, client, base+"/reports/summary", trainerID, http.StatusForbidden)
}

func TestEmployeeListIsScopedByRole(t *testing.T) {
	srv := newTestServer(t, testConfig(""))
	client := srv.Client()
	base := srv.URL + "/api/v1"

	cases := []struct {
		name   string
		userID string
		want   int
	}{
		{name: "hr", userID: hrID, want: 2},
		{name: "trainer", userID: trainerID, want: 2},
		{name: "manager", userID: managerID, want: 2},
		{name: "employee", userID: employeeID, want: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := getJSONStatus(t, client, base+"/employees", tc.userID, http.StatusOK)
			items := envelopeDataList(t, env)
			if len(items) != tc.want {
				t.Fatalf("expected %d employees, got %d", tc.want, len(items))
			}
			if env.Meta == nil || env.Meta.Total != tc.want {
				t.Fatalf("expected meta total %d, got %+v", tc.want, env.Meta)
			}
		})
	}

	env := getJSONStatus(t, client, base+"/employees?limit=1&offset=1", hrID, http.StatusOK)
	items := envelopeDataList(t, env)
	if len(items) != 1 || items[0]["employeeId"] != "EMP002" {
		t.Fatalf("unexpected second page: %v", items)
	}
	if env.Meta.Total != 2 || env.Meta.Limit != 1 || env.Meta.Offset != 1 {
		t.Fatalf("unexpected meta: %+v", env.Meta)
	}
}

func TestViewerIdentity(t *testing.T) {
	srv := newTestServer(t, testConfig(""))
	client := srv.Client()
	base := srv.URL + "/api/v1"

	env := getJSONStatus(t, client, base+"/employees", "", http.StatusUnauthorized)
	if env.Error == nil || env.Error.Code != "unauthorized" {
		t.Fatalf("expected unauthorized error, got %+v", env.Error)
	}
	env = getJSONStatus(t, client, base+"/employees", "999", http.StatusUnauthorized)
	if env.Error == nil || env.Error.Code != "unknown_user" {
		t.Fatalf("expected unknown_user error, got %+v", env.Error)
	}
	getJSONStatus(t, client, base+"/employees/EMP404", hrID, http.StatusNotFound)
}

func TestPositionsCatalog(t *testing.T) {
	srv := newTestServer(t, testConfig(""))
	client := srv.Client()
	base := srv.URL + "/api/v1"

	catalog := envelopeDataMap(t, getJSONStatus(t, client, base+"/positions", "", http.StatusOK))
	if len(catalog["positions"].([]any)) != 2 {
		t.Fatalf("expected two positions, got %v", catalog["positions"])
	}
	if len(catalog["branches"].([]any)) != 5 {
		t.Fatalf("expected five branches, got %v", catalog["branches"])
	}

	modules := envelopeDataList(t, getJSONStatus(t, client, base+"/positions/cook_helper/modules", "", http.StatusOK))
	if len(modules) != 10 {
		t.Fatalf("expected ten modules, got %d", len(modules))
	}
	for i, module := range modules {
		if int(module["order"].(float64)) != i+1 {
			t.Fatalf("modules out of order at %d: %v", i, module)
		}
	}
	getJSONStatus(t, client, base+"/positions/chef/modules", "", http.StatusBadRequest)
}

func TestDashboardAndPDF(t *testing.T) {
	srv := newTestServer(t, testConfig(""))
	client := srv.Client()
	base := srv.URL + "/api/v1"

	dash := envelopeDataMap(t, getJSONStatus(t, client, base+"/employees/EMP001/dashboard", employeeID, http.StatusOK))
	if dash["positionName"] != "Server" {
		t.Fatalf("unexpected position name: %v", dash["positionName"])
	}
	modules := dash["modules"].([]any)
	if len(modules) != 10 {
		t.Fatalf("expected ten module rows, got %d", len(modules))
	}
	first := modules[0].(map[string]any)
	if first["status"] != "completed" || first["score"].(float64) != 8 {
		t.Fatalf("unexpected first module row: %v", first)
	}
	progress := dash["progress"].(map[string]any)
	if progress["completedModules"].(float64) != 2 || progress["averageScore"].(float64) != 8.5 {
		t.Fatalf("unexpected dashboard progress: %v", progress)
	}

	req, err := http.NewRequest(http.MethodGet, base+"/employees/EMP001/progress.pdf", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("X-User-ID", hrID)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read pdf: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", ct)
	}
	if !bytes.HasPrefix(body, []byte("%PDF-")) {
		t.Fatalf("response is not a pdf document")
	}

	getJSONStatus(t, client, base+"/employees/EMP002/progress.pdf", employeeID, http.StatusNotFound)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, testConfig(""))
	client := srv.Client()

	resp, err := client.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", resp.StatusCode)
	}

	getJSONStatus(t, client, srv.URL+"/api/v1/employees/EMP001/progress", hrID, http.StatusOK)

	resp, err = client.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics failed: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read metrics: %v", err)
	}
	text := string(raw)
	for _, want := range []string{
		`onboarding_http_requests_total`,
		`route="/api/v1/employees/{employeeID}/progress"`,
		`onboarding_progress_computations_total`,
	} {
		if !bytes.Contains(raw, []byte(want)) {
			t.Fatalf("expected %q in metrics output:\n%s", want, text)
		}
	}
}

func doJSON(t *testing.T, client *http.Client, method, url, userID string, body any, want int) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d: %s", want, resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}

func getJSONStatus(t *testing.T, client *http.Client, url, userID string, want int) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodGet, url, userID, nil, want)
}

func postJSONStatus(t *testing.T, client *http.Client, url, userID string, body any, want int) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodPost, url, userID, body, want)
}

func envelopeDataMap(t *testing.T, env envelope) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("failed to decode object payload: %v", err)
	}
	return payload
}

func envelopeDataList(t *testing.T, env envelope) []map[string]any {
	t.Helper()
	var payload []map[string]any
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("failed to decode list payload: %v", err)
	}
	return payload
}

func TestRegisterEmployeeValidationDetails(t *testing.T) {
	srv := newTestServer(t, testConfig(""))
	client := srv.Client()
	base := srv.URL + "/api/v1"

	env := postJSONStatus(t, client, base+"/employees", hrID, map[string]any{
		"employeeId":       "EMP900",
		"firstName":        "Niran",
		"position":         "chef",
		"department":       "Kitchen",
		"branch":           "Siam",
		"startDate":        "2024-05-01",
		"probationEndDate": "2024-04-01",
	}, http.StatusBadRequest)
	if env.Error == nil || env.Error.Code != "validation_error" {
		t.Fatalf("expected validation_error, got %+v", env.Error)
	}
	fields := map[string]bool{}
	for _, issue := range env.Error.Details.Fields {
		fields[issue.Field] = true
	}
	for _, want := range []string{"lastName", "position", "probationEndDate"} {
		if !fields[want] {
			t.Fatalf("expected issue for %s, got %+v", want, env.Error.Details)
		}
	}

	env = postJSONStatus(t, client, base+"/employees/EMP001/evaluations", managerID, map[string]any{
		"evaluations": []map[string]any{{"moduleId": "server_3"}},
	}, http.StatusBadRequest)
	if env.Error == nil || len(env.Error.Details.Fields) != 1 || env.Error.Details.Fields[0].Field != "evaluations[0].score" {
		t.Fatalf("expected missing score issue, got %+v", env.Error)
	}
	env = postJSONStatus(t, client, base+"/employees/EMP001/evaluations", managerID, map[string]any{
		"evaluations": []map[string]any{{"moduleId": "server_3", "score": 7}},
	}, http.StatusConflict)
	if env.Error == nil || env.Error.Code != "training_incomplete" {
		t.Fatalf("expected training_incomplete, got %+v", env.Error)
	}
}

func TestRegisterEmployeeCanonicalPosition(t *testing.T) {
	srv := newTestServer(t, testConfig(""))
	client := srv.Client()
	base := srv.URL + "/api/v1"

	created := envelopeDataMap(t, postJSONStatus(t, client, base+"/employees", hrID, map[string]any{
		"employeeId":    "EMP901",
		"firstName":     "Kanya",
		"lastName":      "Dee",
		"position":      "Cook_Helper",
		"department":    "kitchen",
		"branch":        "silom",
		"startDate":     "2024-05-01",
		"trainerId":     trainerID,
		"lineManagerId": managerID,
	}, http.StatusCreated))
	if created["position"] != "cook_helper" || created["department"] != "Kitchen" || created["branch"] != "Silom" {
		t.Fatalf("expected canonical catalog values, got %v", created)
	}
}
