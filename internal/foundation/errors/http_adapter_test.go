package errors

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPErrorAdapter_StatusCodeFor(t *testing.T) {
	adapter := NewHTTPErrorAdapter(slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: http.StatusOK},
		{name: "validation error", err: ValidationError("invalid input").Build(), expected: http.StatusBadRequest},
		{name: "not found error", err: NotFoundError("snapshot").Build(), expected: http.StatusNotFound},
		{name: "database error", err: DatabaseError("down").Build(), expected: http.StatusBadGateway},
		{name: "snapshot error", err: SnapshotError("corrupt").Build(), expected: http.StatusUnprocessableEntity},
		{name: "daemon error", err: DaemonError("stopping").Build(), expected: http.StatusServiceUnavailable},
		{name: "internal error", err: InternalError("internal").Build(), expected: http.StatusInternalServerError},
		{name: "unclassified error", err: &customHTTPError{msg: "unknown error"}, expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.StatusCodeFor(tt.err)
			if got != tt.expected {
				t.Errorf("StatusCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestHTTPErrorAdapter_WriteErrorResponse(t *testing.T) {
	adapter := NewHTTPErrorAdapter(slog.Default())

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		checkJSON      bool
	}{
		{name: "nil error", err: nil, expectedStatus: http.StatusOK},
		{
			name:           "validation error",
			err:            ValidationError("invalid input").Build(),
			expectedStatus: http.StatusBadRequest,
			checkJSON:      true,
		},
		{
			name:           "not found error",
			err:            NotFoundError("snapshot").Build(),
			expectedStatus: http.StatusNotFound,
			checkJSON:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/snapshot", nil)
			adapter.WriteErrorResponse(w, r, tt.err)

			if w.Code != tt.expectedStatus {
				t.Errorf("WriteErrorResponse() status = %v, want %v", w.Code, tt.expectedStatus)
			}

			if !tt.checkJSON {
				return
			}
			var response HTTPErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Fatalf("WriteErrorResponse() invalid JSON: %v", err)
			}
			if response.Error == "" {
				t.Error("WriteErrorResponse() missing error message")
			}
			if response.Code == "" {
				t.Error("WriteErrorResponse() missing error code")
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("WriteErrorResponse() content-type = %v, want application/json", ct)
			}
		})
	}
}

func TestHTTPErrorAdapter_FormatErrorResponse(t *testing.T) {
	adapter := NewHTTPErrorAdapter(slog.Default())

	t.Run("context becomes details", func(t *testing.T) {
		resp := adapter.FormatErrorResponse(ValidationError("invalid field").WithContext("field", "verify.interval").Build())
		if resp.Code != string(CategoryValidation) {
			t.Errorf("unexpected code %q", resp.Code)
		}
		if resp.Details["field"] != "verify.interval" {
			t.Errorf("expected field detail, got %v", resp.Details)
		}
		if resp.Retryable {
			t.Error("validation errors are not retryable")
		}
	})

	t.Run("retryable flag", func(t *testing.T) {
		resp := adapter.FormatErrorResponse(DatabaseError("timeout").Build())
		if !resp.Retryable {
			t.Error("expected retryable response")
		}
		if v, ok := resp.Details["retryable"].(bool); !ok || !v {
			t.Error("expected retryable detail")
		}
	})

	t.Run("unclassified", func(t *testing.T) {
		resp := adapter.FormatErrorResponse(&customHTTPError{msg: "plain"})
		if resp.Error != "plain" || resp.Code != "" {
			t.Errorf("unexpected response %+v", resp)
		}
	})
}

// customHTTPError is a test helper for unclassified errors
type customHTTPError struct {
	msg string
}

func (e *customHTTPError) Error() string {
	return e.msg
}
