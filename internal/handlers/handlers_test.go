package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"medichat-backend/internal/models"
	"medichat-backend/internal/services"
)

// ─── Shared Helper Tests ───

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()

	writeJSON(rr, http.StatusCreated, map[string]string{"message": "ok"})

	if rr.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["message"] != "ok" {
		t.Errorf("message = %q", body["message"])
	}
}

func TestErrorRespCarriesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")

	resp := errorResp("NOT_FOUND", "missing", req)

	if resp.Error.Code != "NOT_FOUND" || resp.Error.Message != "missing" {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Error.RequestID != "req-123" {
		t.Errorf("request id = %q", resp.Error.RequestID)
	}
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"validation", &services.ValidationError{Fields: map[string]string{"email": "Invalid"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"conflict", &services.ConflictError{Message: "exists"}, http.StatusConflict, "CONFLICT"},
		{"not found", &services.NotFoundError{Message: "gone"}, http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", &services.UnauthorizedError{Message: "nope"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", &services.ForbiddenError{Message: "denied"}, http.StatusForbidden, "FORBIDDEN"},
		{"rate limited", &services.RateLimitError{Message: "slow down"}, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			handleServiceError(rr, req, tt.err)

			if rr.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantCode)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error.Code != tt.wantBody {
				t.Errorf("code = %q, want %q", resp.Error.Code, tt.wantBody)
			}
		})
	}
}

func TestHandleServiceErrorValidationFields(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	handleServiceError(rr, req, &services.ValidationError{Fields: map[string]string{"age": "Out of range"}})

	var resp models.ErrorResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Error.Fields["age"] != "Out of range" {
		t.Errorf("fields = %v", resp.Error.Fields)
	}
}

// ─── Project Config Helpers ───

func TestNormalizeSites(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			"strips scheme and www",
			[]string{"https://www.mayoclinic.org/", "http://cdc.gov"},
			[]string{"mayoclinic.org", "cdc.gov"},
		},
		{
			"dedupes and drops blanks",
			[]string{"webmd.com", "WEBMD.COM", "  ", "nih.gov"},
			[]string{"webmd.com", "nih.gov"},
		},
		{
			"empty input",
			[]string{},
			[]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeSites(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("normalizeSites(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
