package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cyberregistro/ledger/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newErrorTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger.L
	logger.L = zap.New(core)
	t.Cleanup(func() { logger.L = prev })

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/credits", nil)
	c.Set("request_id", "req-9")
	return c, w, logs
}

func TestRespondErrorLogsCause(t *testing.T) {
	c, w, logs := newErrorTestContext(t)

	RespondError(c, http.StatusInternalServerError, "error.internal", errors.New("db down"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status want 500 got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if body["error"] != "Erro interno do servidor" || body["request_id"] != "req-9" {
		t.Fatalf("unexpected body: %v", body)
	}
	entries := logs.FilterMessage("handler_error").All()
	if len(entries) != 1 {
		t.Fatalf("expected one handler_error entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["code"] != int64(http.StatusInternalServerError) || fields["request_id"] != "req-9" {
		t.Fatalf("unexpected log fields: %v", fields)
	}
}

func TestRespondErrorWithoutCauseSkipsLog(t *testing.T) {
	c, w, logs := newErrorTestContext(t)
	c.Request.Header.Set("Accept-Language", "en-US")

	RespondError(c, http.StatusBadRequest, "error.bad_request", nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status want 400 got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if body["error"] != "Invalid request" {
		t.Fatalf("unexpected body: %v", body)
	}
	if logs.Len() != 0 {
		t.Fatalf("no log expected without cause, got %d", logs.Len())
	}
}
