package problem

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
)

func TestWriteIncludesErrorDetailInDevelopment(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/users/signup", nil)

	Write(rec, req, 409, TypeConflict, "Conflict", errors.New("email already registered"), "development")

	if rec.Code != 409 {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != contentType {
		t.Fatalf("content type = %q, want %q", got, contentType)
	}

	var p Details
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if p.Detail != "email already registered" {
		t.Errorf("detail = %q, want raw error in development", p.Detail)
	}
	if p.Instance != "/api/v1/users/signup" {
		t.Errorf("instance = %q, want request path", p.Instance)
	}
}

func TestWriteHidesErrorDetailInProduction(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/events/7", nil)

	Write(rec, req, 500, TypeInternal, "Internal Server Error", errors.New("sqlite: disk I/O error"), "production")

	var p Details
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if p.Detail != "Internal Server Error" {
		t.Errorf("detail = %q, must not leak internals in production", p.Detail)
	}
}

func TestWriteCarriesFieldErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/events", nil)

	Write(rec, req, 400, TypeValidation, "Validation Failed", nil, "test",
		WithErrors(map[string]string{"title": "must not be blank"}))

	var p Details
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if p.Errors["title"] != "must not be blank" {
		t.Errorf("errors = %v, want field message", p.Errors)
	}
}
