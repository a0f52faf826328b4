package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/quarkfin/platform-go/internal/domain"
	"github.com/quarkfin/platform-go/internal/guard"
	"github.com/quarkfin/platform-go/internal/handler"
	"github.com/quarkfin/platform-go/internal/infra/cache"
	"github.com/quarkfin/platform-go/internal/infra/identity"
	"github.com/quarkfin/platform-go/internal/infra/observability"
	"github.com/quarkfin/platform-go/internal/port"
	"github.com/quarkfin/platform-go/internal/service"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// --- Mocks ---

const goodToken = "good-token"

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, raw string) (*domain.Session, error) {
	if raw != goodToken {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}
	return &domain.Session{UserID: "user-1", Email: "ana@acme.io", Token: raw}, nil
}

// mockAPI implements only what the routes under test call.
type mockAPI struct {
	port.PlatformAPI

	mu        sync.Mutex
	tokens    []string
	healthErr error
	getErr    error
	credits   *domain.UserCredits
	creditErr error
	created   []domain.CreateAssessmentRequest
	pdf       *domain.Download
	snapshots []domain.AssessmentStatus
}

func (m *mockAPI) record(ctx context.Context) {
	token, _ := identity.FromContext(ctx)
	m.mu.Lock()
	m.tokens = append(m.tokens, token)
	m.mu.Unlock()
}

func (m *mockAPI) seenTokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tokens...)
}

func (m *mockAPI) HealthCheck(ctx context.Context) (*domain.Ping, error) {
	if m.healthErr != nil {
		return nil, m.healthErr
	}
	return &domain.Ping{Message: "pong", Status: "ok"}, nil
}

func (m *mockAPI) GetAssessment(ctx context.Context, id int64) (*domain.Assessment, error) {
	m.record(ctx)
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &domain.Assessment{ID: id, Website: "acme.io", Status: domain.AssessmentCompleted}, nil
}

func (m *mockAPI) CreateAssessment(ctx context.Context, in domain.CreateAssessmentRequest) (*domain.Assessment, error) {
	m.record(ctx)
	m.mu.Lock()
	m.created = append(m.created, in)
	m.mu.Unlock()
	return &domain.Assessment{ID: 7, Website: in.Website, CountryCode: in.CountryCode, Status: domain.AssessmentPending}, nil
}

func (m *mockAPI) GetUserCredits(ctx context.Context) (*domain.UserCredits, error) {
	m.record(ctx)
	return m.credits, m.creditErr
}

func (m *mockAPI) ExportBusinessRiskPDF(ctx context.Context, id string) (*domain.Download, error) {
	return m.pdf, nil
}

func (m *mockAPI) PollAssessmentStatus(ctx context.Context, id int64, onUpdate func(*domain.Assessment), _ domain.PollOptions) (*domain.Assessment, error) {
	m.record(ctx)
	var last *domain.Assessment
	for _, st := range m.snapshots {
		last = &domain.Assessment{ID: id, Status: st}
		onUpdate(last)
	}
	return last, nil
}

func newRouter(t *testing.T, api *mockAPI) http.Handler {
	t.Helper()
	plans := cache.New[[]domain.SubscriptionPlan](time.Minute)
	t.Cleanup(plans.Close)
	metrics := observability.NewMetrics()
	svc := service.NewPlatformService(api, plans, metrics, zap.NewNop())
	return handler.NewRouter(svc, stubVerifier{}, guard.DefaultTable(), domain.PollOptions{}, metrics, zap.NewNop())
}

func do(t *testing.T, h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Status int    `json:"status"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

// --- Operational ---

func TestHealthz(t *testing.T) {
	router := handler.NewRouter(nil, nil, nil, domain.PollOptions{}, observability.NewMetrics(), zap.NewNop())

	rec := do(t, router, http.MethodGet, "/healthz", "", "")

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHealthz_ReportsBackendOutage(t *testing.T) {
	api := &mockAPI{healthErr: &domain.APIError{Message: "Network error", Code: domain.CodeNetwork}}
	router := newRouter(t, api)

	rec := do(t, router, http.MethodGet, "/healthz", "", "")

	var health domain.HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "degraded" {
		t.Errorf("expected degraded, got %q", health.Status)
	}
	if len(health.Services) != 2 || health.Services[1].Status != "unhealthy" {
		t.Errorf("unexpected services %+v", health.Services)
	}
}

func TestReadyz(t *testing.T) {
	router := handler.NewRouter(nil, nil, nil, domain.PollOptions{}, observability.NewMetrics(), zap.NewNop())

	rec := do(t, router, http.MethodGet, "/readyz", "", "")

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router := handler.NewRouter(nil, nil, nil, domain.PollOptions{}, observability.NewMetrics(), zap.NewNop())

	rec := do(t, router, http.MethodGet, "/metrics", "", "")

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

// --- Session gate ---

func TestGate(t *testing.T) {
	router := newRouter(t, &mockAPI{})

	tests := []struct {
		name     string
		path     string
		token    string
		allow    bool
		redirect string
	}{
		{"signed out protected", "/platform/assessments", "", false, guard.LoginPath},
		{"signed in protected", "/platform/assessments", goodToken, true, ""},
		{"signed in login page", "/login", goodToken, false, guard.HomePath},
		{"bad token treated as signed out", "/dashboard", "forged", false, guard.LoginPath},
		{"public", "/pricing", "", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, "/session/gate?path="+tt.path, "", tt.token)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			var d guard.Decision
			if err := json.NewDecoder(rec.Body).Decode(&d); err != nil {
				t.Fatal(err)
			}
			if d.Allow != tt.allow || d.Redirect != tt.redirect {
				t.Errorf("expected allow=%v redirect=%q, got %+v", tt.allow, tt.redirect, d)
			}
		})
	}
}

func TestGate_RequiresPath(t *testing.T) {
	router := newRouter(t, &mockAPI{})

	rec := do(t, router, http.MethodGet, "/session/gate", "", "")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

// --- /app ---

func TestApp_RequiresSession(t *testing.T) {
	router := newRouter(t, &mockAPI{})

	for _, token := range []string{"", "forged"} {
		rec := do(t, router, http.MethodGet, "/app/assessments/1", "", token)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("token %q: expected 401, got %d", token, rec.Code)
		}
		if body := decodeError(t, rec); body.Code != "HTTP_401" {
			t.Errorf("expected HTTP_401 code, got %+v", body)
		}
	}
}

func TestApp_ForwardsCallerToken(t *testing.T) {
	api := &mockAPI{}
	router := newRouter(t, api)

	rec := do(t, router, http.MethodGet, "/app/assessments/42", "", goodToken)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if tokens := api.seenTokens(); len(tokens) != 1 || tokens[0] != goodToken {
		t.Errorf("expected backend call with caller token, got %v", tokens)
	}
}

func TestCreateAssessment(t *testing.T) {
	api := &mockAPI{}
	router := newRouter(t, api)

	rec := do(t, router, http.MethodPost, "/app/assessments", `{"website":"acme.io","country_code":"US"}`, goodToken)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var a domain.Assessment
	if err := json.NewDecoder(rec.Body).Decode(&a); err != nil {
		t.Fatal(err)
	}
	if a.ID != 7 || a.Status != domain.AssessmentPending {
		t.Errorf("unexpected assessment %+v", a)
	}
}

func TestCreateAssessment_Validation(t *testing.T) {
	api := &mockAPI{}
	router := newRouter(t, api)

	rec := do(t, router, http.MethodPost, "/app/assessments", `{"website":"acme.io"}`, goodToken)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(api.created) != 0 {
		t.Error("invalid request must not reach the backend")
	}
}

func TestBackendErrorsKeepNormalizedShape(t *testing.T) {
	tests := []struct {
		name       string
		err        *domain.APIError
		wantStatus int
	}{
		{"backend status passed through", &domain.APIError{Message: "Assessment not found", Code: "HTTP_404", Status: 404}, http.StatusNotFound},
		{"network error is bad gateway", &domain.APIError{Message: "Network error - please check your connection", Code: domain.CodeNetwork}, http.StatusBadGateway},
		{"timeout is gateway timeout", &domain.APIError{Message: "Request timeout - please try again", Code: domain.CodeTimeout}, http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(t, &mockAPI{getErr: tt.err})

			rec := do(t, router, http.MethodGet, "/app/assessments/5", "", goodToken)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			body := decodeError(t, rec)
			if body.Error != tt.err.Message || body.Code != tt.err.Code || body.Status != tt.err.Status {
				t.Errorf("expected %+v, got %+v", tt.err, body)
			}
		})
	}
}

func TestGetAssessment_InvalidID(t *testing.T) {
	router := newRouter(t, &mockAPI{})

	rec := do(t, router, http.MethodGet, "/app/assessments/abc", "", goodToken)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestExportPDF(t *testing.T) {
	api := &mockAPI{pdf: &domain.Download{
		Data:        []byte("%PDF-1.4"),
		ContentType: "application/pdf",
		Filename:    "business-risk-assessment-abc.pdf",
	}}
	router := newRouter(t, api)

	rec := do(t, router, http.MethodGet, "/app/business-risk/assessments/abc/export.pdf", "", goodToken)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="business-risk-assessment-abc.pdf"` {
		t.Errorf("unexpected disposition %q", got)
	}
	if rec.Body.String() != "%PDF-1.4" {
		t.Errorf("expected raw bytes, got %q", rec.Body.String())
	}
}

// --- Streams ---

func TestAssessmentStream(t *testing.T) {
	api := &mockAPI{snapshots: []domain.AssessmentStatus{
		domain.AssessmentPending,
		domain.AssessmentProcessing,
		domain.AssessmentCompleted,
	}}
	srv := httptest.NewServer(newRouter(t, api))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/app/assessments/9/stream"
	header := http.Header{"Authorization": []string{"Bearer " + goodToken}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	type frame struct {
		Type string            `json:"type"`
		Data domain.Assessment `json:"data"`
	}
	var frames []frame
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			break
		}
		frames = append(frames, f)
		if f.Type == "done" || f.Type == "error" {
			break
		}
	}

	if len(frames) != 4 {
		t.Fatalf("expected 3 snapshots and done, got %+v", frames)
	}
	for i, want := range api.snapshots {
		if frames[i].Type != "snapshot" || frames[i].Data.Status != want {
			t.Errorf("frame %d: expected snapshot %s, got %+v", i, want, frames[i])
		}
	}
	if last := frames[3]; last.Type != "done" || last.Data.Status != domain.AssessmentCompleted {
		t.Errorf("unexpected final frame %+v", last)
	}
	if tokens := api.seenTokens(); len(tokens) != 1 || tokens[0] != goodToken {
		t.Errorf("expected poll to carry caller token, got %v", tokens)
	}
}

func TestAssessmentStream_RequiresSession(t *testing.T) {
	srv := httptest.NewServer(newRouter(t, &mockAPI{}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/app/assessments/9/stream"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 handshake response, got %+v", resp)
	}
}

func TestCredits_ServedThroughBinding(t *testing.T) {
	api := &mockAPI{credits: &domain.UserCredits{AvailableCredits: 9, TotalCredits: 10}}
	rec := do(t, newRouter(t, api), http.MethodGet, "/app/account/credits", "", goodToken)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var credits domain.UserCredits
	if err := json.NewDecoder(rec.Body).Decode(&credits); err != nil {
		t.Fatal(err)
	}
	if credits.AvailableCredits != 9 {
		t.Errorf("unexpected credits %+v", credits)
	}
}

func TestCredits_PlainErrorIsNormalized(t *testing.T) {
	api := &mockAPI{creditErr: errors.New("socket closed")}
	rec := do(t, newRouter(t, api), http.MethodGet, "/app/account/credits", "", goodToken)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Code != domain.CodeUnknown || body.Error != "socket closed" {
		t.Errorf("unexpected error body %+v", body)
	}
}
