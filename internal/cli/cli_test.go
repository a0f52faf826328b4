package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/quarkfin/platform-go/internal/cli"
	"github.com/quarkfin/platform-go/internal/domain"

	"github.com/fatih/color"
)

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	full := append([]string{"quarkctl", "--api-url", srv.URL, "--token", "tok", "--no-color", "--poll-interval", "1ms"}, args...)
	err := cli.Run(context.Background(), full, &out, "test")
	return out.String(), err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestHealth(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, domain.Ping{Message: "pong", Status: "ok"})
	}))
	defer srv.Close()

	out, err := run(t, srv, "health")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "API reachable: pong (ok)") {
		t.Errorf("unexpected output %q", out)
	}
	if auth != "Bearer tok" {
		t.Errorf("expected token from flag, got %q", auth)
	}
}

func TestAssessGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/assessments/42" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, domain.Assessment{
			ID: 42, Website: "acme.io", CountryCode: "US",
			Status: domain.AssessmentCompleted, RiskCategory: domain.RiskHigh,
		})
	}))
	defer srv.Close()

	out, err := run(t, srv, "assess", "get", "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Assessment #42") || !strings.Contains(out, "High Risk") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestAssessGet_InvalidID(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	_, err := run(t, srv, "assess", "get", "abc")

	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if calls.Load() != 0 {
		t.Error("expected no backend call")
	}
}

func TestAssessGet_BackendErrorIsNormalized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Assessment not found"})
	}))
	defer srv.Close()

	_, err := run(t, srv, "assess", "get", "9")

	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Status != 404 || apiErr.Message != "Assessment not found" {
		t.Errorf("unexpected error %+v", apiErr)
	}
}

func TestAssessPoll(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := domain.AssessmentProcessing
		if calls.Add(1) >= 3 {
			status = domain.AssessmentCompleted
		}
		writeJSON(w, http.StatusOK, domain.Assessment{ID: 5, Website: "acme.io", Status: status})
	}))
	defer srv.Close()

	out, err := run(t, srv, "assess", "poll", "5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 status checks, got %d", calls.Load())
	}
	if strings.Count(out, "poll #5") != 3 || !strings.Contains(out, "status:   completed") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestBusinessRiskDelete_ManyUsesBulk(t *testing.T) {
	var gotPath string
	var gotBody domain.BulkDeleteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, http.StatusOK, domain.MessageResponse{Message: "2 assessments deleted"})
	}))
	defer srv.Close()

	out, err := run(t, srv, "brp", "delete", "a1", "b2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "DELETE /api/business-risk-prevention/assessments/bulk" {
		t.Errorf("unexpected request %s", gotPath)
	}
	if len(gotBody.IDs) != 2 || gotBody.IDs[0] != "a1" {
		t.Errorf("unexpected ids %v", gotBody.IDs)
	}
	if !strings.Contains(out, "2 assessments deleted") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestBusinessRiskExportPDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="report.pdf"`)
		w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out.pdf")
	if _, err := run(t, srv, "brp", "export-pdf", "--out", dest, "abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "%PDF-1.4" {
		t.Errorf("unexpected file contents %q", data)
	}
}

func TestBusinessRiskCreate_ValidatesType(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	_, err := run(t, srv, "brp", "create", "--name", "Acme", "--domain", "acme.io", "--type", "Deep")

	var validation *domain.ErrValidation
	if !errors.As(err, &validation) || validation.Field != "assessment_type" {
		t.Fatalf("expected assessment_type validation error, got %v", err)
	}
	if calls.Load() != 0 {
		t.Error("expected no backend call")
	}
}

func TestRiskLabel(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		in   domain.RiskCategory
		want string
	}{
		{domain.RiskLow, "Low Risk"},
		{domain.RiskMedium, "Medium Risk"},
		{domain.RiskHigh, "High Risk"},
		{"bogus", "Unknown"},
	}
	for _, tt := range tests {
		if got := cli.RiskLabel(tt.in); got != tt.want {
			t.Errorf("RiskLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
