package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/quarkfin/platform-go/internal/domain"
	"github.com/quarkfin/platform-go/internal/view"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

// StatusClientClosedRequest is written when the caller went away before the
// backend answered.
const StatusClientClosedRequest = 499

// maxRequestBytes bounds decoded request bodies.
const maxRequestBytes = 1 << 20

// errorResponse is the normalized error shape every /app route returns.
type errorResponse struct {
	Error   string          `json:"error"`
	Code    string          `json:"code,omitempty"`
	Status  int             `json:"status,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeDownload streams an export back with its original file name.
func writeDownload(w http.ResponseWriter, dl *domain.Download) {
	contentType := dl.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+strings.ReplaceAll(dl.Filename, `"`, "")+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(dl.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(dl.Data)
}

// decodeBody reads a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	if err := dec.Decode(v); err != nil {
		return &domain.ErrValidation{Field: "body", Message: "invalid request body"}
	}
	return nil
}

// parseListParams reads the assessment list filters from the query string.
func parseListParams(r *http.Request) domain.ListAssessmentsParams {
	q := r.URL.Query()
	params := domain.ListAssessmentsParams{
		Status:       domain.AssessmentStatus(q.Get("status")),
		CountryCode:  q.Get("country_code"),
		RiskCategory: domain.RiskCategory(q.Get("risk_category")),
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 && v <= 100 {
		params.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		params.Offset = v
	}
	return params
}

func parseAssessmentID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ErrValidation{Field: "id", Message: "must be a positive integer"}
	}
	return id, nil
}

// apiStatus picks the portal status for a normalized backend failure.
func apiStatus(e *domain.APIError) int {
	switch {
	case e.Code == domain.CodeCancelled:
		return StatusClientClosedRequest
	case e.Code == domain.CodeTimeout:
		return http.StatusGatewayTimeout
	case e.Status >= 400 && e.Status < 600:
		return e.Status
	default:
		return http.StatusBadGateway
	}
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var apiErr *domain.APIError
	var validation *domain.ErrValidation
	var unauthorized *domain.ErrUnauthorized
	var forbidden *domain.ErrForbidden

	switch {
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "VALIDATION_ERROR", Status: http.StatusBadRequest})
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error(), Code: domain.HTTPCode(http.StatusUnauthorized), Status: http.StatusUnauthorized})
	case errors.As(err, &forbidden):
		logger.Warn("forbidden access", zap.String("error", err.Error()))
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error(), Code: domain.HTTPCode(http.StatusForbidden), Status: http.StatusForbidden})
	case errors.As(err, &apiErr):
		status := apiStatus(apiErr)
		if status >= 500 && apiErr.Code != domain.CodeCancelled {
			logger.Error("backend error", zap.String("code", apiErr.Code), zap.Int("status", apiErr.Status), zap.Error(err))
		} else {
			logger.Debug("backend rejected request", zap.String("code", apiErr.Code), zap.Int("status", apiErr.Status))
		}
		writeJSON(w, status, errorResponse{
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Status:  apiErr.Status,
			Details: apiErr.Details,
		})
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// mountQuery loads q and reports its data. On failure the normalized error
// has already been written.
func mountQuery[T any](ctx context.Context, w http.ResponseWriter, q *view.Query[T], logger *zap.Logger) (T, bool) {
	st := q.Mount(ctx)
	if st.Err != nil {
		handleServiceError(w, st.Err, logger)
		var zero T
		return zero, false
	}
	return st.Data, true
}

// runDownload fetches an export through a download binding and streams it back.
func runDownload(ctx context.Context, w http.ResponseWriter, fetch func(ctx context.Context) (*domain.Download, error), logger *zap.Logger) {
	var d view.Download
	dl, err := d.Run(ctx, fetch)
	if err != nil {
		handleServiceError(w, err, logger)
		return
	}
	writeDownload(w, dl)
}
