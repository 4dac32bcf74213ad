package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestAssertStatusCode(t *testing.T) {
	AssertStatusCode(t, http.StatusOK, http.StatusOK)
}

func TestAssertContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.Header().Set("Content-Type", "text/html; charset=utf-8")
	AssertContentType(t, rec, "text/html")
}

func TestNewFormRequest(t *testing.T) {
	req := NewFormRequest(http.MethodPost, "/results/swap", url.Values{"race_id": {"3"}})
	if got := req.Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
		t.Errorf("Content-Type = %q", got)
	}
	body, _ := io.ReadAll(req.Body)
	if string(body) != "race_id=3" {
		t.Errorf("body = %q", body)
	}
}

func TestDecodeJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.WriteString(`{"message":"ok"}`)
	var got struct{ Message string }
	DecodeJSON(t, rec, &got)
	if got.Message != "ok" {
		t.Errorf("Message = %q", got.Message)
	}
}
