// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/shoprec/shoprec/internal/models"
)

func TestRespondJSONHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	respondJSON(rec, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]int{"n": 1},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("missing ETag header")
	}

	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("status = %q", resp.Status)
	}
}

func TestRespondErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, http.StatusNotFound, models.ErrCodeNotFound, "missing", nil)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}

	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != "error" {
		t.Errorf("status = %q, want error", resp.Status)
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeNotFound {
		t.Errorf("error = %+v", resp.Error)
	}
	if resp.Error.Message != "missing" {
		t.Errorf("message = %q", resp.Error.Message)
	}
}

func TestGenerateETag(t *testing.T) {
	a := generateETag([]byte("hello"))
	b := generateETag([]byte("hello"))
	c := generateETag([]byte("world"))

	if a != b {
		t.Errorf("same input produced different ETags: %q vs %q", a, b)
	}
	if a == c {
		t.Errorf("different inputs produced identical ETag %q", a)
	}
}

func TestSanitizeLogValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello", "hello"},
		{"newline", "a\nb", "a\\x0ab"},
		{"carriage return", "a\rb", "a\\x0db"},
		{"tab", "a\tb", "a\\x09b"},
		{"delete", "a\x7fb", "a\\x7fb"},
		{"unicode preserved", "café", "café"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeLogValue(tt.input); got != tt.want {
				t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGetIntParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?n=5&bad=x", nil)

	if got := getIntParam(req, "n", 10); got != 5 {
		t.Errorf("n = %d, want 5", got)
	}
	if got := getIntParam(req, "missing", 10); got != 10 {
		t.Errorf("missing = %d, want default 10", got)
	}
	if got := getIntParam(req, "bad", 10); got != 10 {
		t.Errorf("bad = %d, want default 10", got)
	}
}

func TestGetFloatParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?p=9.5", nil)

	if got := getFloatParam(req, "p", 0); got != 9.5 {
		t.Errorf("p = %v, want 9.5", got)
	}
	if got := getFloatParam(req, "missing", 1.5); got != 1.5 {
		t.Errorf("missing = %v, want 1.5", got)
	}
}

func TestGetBoolParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?sample=true&off=false&bad=maybe", nil)

	if !getBoolParam(req, "sample", false) {
		t.Error("sample = false, want true")
	}
	if getBoolParam(req, "off", true) {
		t.Error("off = true, want false")
	}
	if getBoolParam(req, "bad", false) {
		t.Error("bad = true, want default false")
	}
	if !getBoolParam(req, "missing", true) {
		t.Error("missing = false, want default true")
	}
}
