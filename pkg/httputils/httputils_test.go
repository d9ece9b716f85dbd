package httputils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/microfix/dashboard/internal/constants"
)

func TestWriteAPIError_EchoesCorrelationID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/links/x", nil)
	req.Header.Set(CorrelationIDHeader, "abc-123")
	rec := httptest.NewRecorder()

	WriteAPIError(rec, req, constants.ErrLinkNotFound)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if got := rec.Header().Get(CorrelationIDHeader); got != "abc-123" {
		t.Errorf("expected correlation id to be echoed, got %q", got)
	}

	var body APIErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != constants.CodeLinkNotFound || body.Message != constants.MsgLinkNotFound {
		t.Errorf("unexpected body: %+v", body)
	}
	if body.CorrelationId != "abc-123" || body.ResponseTime.IsZero() {
		t.Errorf("missing metadata: %+v", body)
	}
}

func TestWriteJSON_BareBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/links", nil)
	rec := httptest.NewRecorder()

	WriteJSON(rec, req, http.StatusCreated, []string{"a"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if rec.Header().Get(CorrelationIDHeader) == "" {
		t.Error("expected a generated correlation id")
	}
	if got := rec.Body.String(); got != "[\"a\"]\n" {
		t.Errorf("unexpected body %q", got)
	}
}
