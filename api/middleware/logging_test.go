package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLoggingMiddleware_LogsRequestMethodAndPath(t *testing.T) {
	logger := &mockLogger{}
	handler := RequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/document?pretty=1", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, logger.logs, 2)

	start := logger.logs[0]
	assert.Equal(t, "INFO", start.Level)
	assert.Equal(t, "Request started", start.Message)
	assert.Equal(t, http.MethodGet, start.Fields["method"])
	assert.Equal(t, "/document", start.Fields["path"])
	assert.Equal(t, "10.1.2.3", start.Fields["remote_ip"])

	done := logger.logs[1]
	assert.Equal(t, "Request completed", done.Message)
	assert.Equal(t, http.StatusOK, done.Fields["status"])
}

func TestRequestLoggingMiddleware_LogsResponseStatusCode(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		expectedLog int
		expectError bool
	}{
		{"200 OK", http.StatusOK, 2, false},
		{"404 Not Found", http.StatusNotFound, 2, false},
		{"500 Internal Server Error", http.StatusInternalServerError, 3, true},
		{"503 Service Unavailable", http.StatusServiceUnavailable, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &mockLogger{}
			handler := RequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/feeds", nil))

			require.Len(t, logger.logs, tt.expectedLog)
			assert.Equal(t, tt.status, logger.logs[1].Fields["status"])
			if tt.expectError {
				assert.Equal(t, "ERROR", logger.logs[2].Level)
				assert.Contains(t, logger.logs[2].Message, "server error")
			}
		})
	}
}

func TestRequestLoggingMiddleware_ImplicitStatus(t *testing.T) {
	logger := &mockLogger{}
	handler := RequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, logger.logs[1].Fields["status"])
}

func TestRequestLoggingMiddleware_LogsRequestDuration(t *testing.T) {
	logger := &mockLogger{}
	handler := RequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	done := logger.logs[1]
	assert.NotEmpty(t, done.Fields["duration"])
	assert.GreaterOrEqual(t, done.Fields["duration_ms"].(int64), int64(50))
}

func TestRequestLoggingMiddleware_RequestID(t *testing.T) {
	logger := &mockLogger{}
	var seen string
	handler := RequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	id := rec.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	assert.Equal(t, id, seen)
	assert.Equal(t, id, logger.logs[0].Fields["request_id"])
	assert.Equal(t, id, logger.logs[1].Fields["request_id"])
}

func TestRequestID_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", RequestID(req.Context()))
}

func TestResponseWriter_CapturesFirstStatusCode(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusBadRequest)

	assert.Equal(t, http.StatusCreated, rw.statusCode)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
