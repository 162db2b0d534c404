package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/discussion-service/internal/service"
	"github.com/pribylovaa/discussion-service/internal/storage"
	"github.com/pribylovaa/discussion-service/internal/thread"
)

func TestToHTTP_Mapping(t *testing.T) {
	wrapped := func(kind, cause error) error {
		return fmt.Errorf("thread/Session/Op: %w", fmt.Errorf("%w: %w", kind, cause))
	}

	tcs := []struct {
		name       string
		in         error
		wantStatus int
		wantCode   string
	}{
		{"validation", fmt.Errorf("op: %w", thread.ErrValidation), http.StatusBadRequest, "invalid_argument"},
		{"auth", fmt.Errorf("op: %w", thread.ErrAuth), http.StatusUnauthorized, "unauthenticated"},
		{"auth permission denied", wrapped(thread.ErrAuth, storage.ErrPermissionDenied), http.StatusForbidden, "permission_denied"},
		{"validation conflict", wrapped(thread.ErrValidation, storage.ErrConflict), http.StatusConflict, "conflict"},
		{"not_found", wrapped(thread.ErrNotFound, storage.ErrNotFound), http.StatusNotFound, "not_found"},
		{"network", wrapped(thread.ErrNetwork, storage.ErrUnavailable), http.StatusServiceUnavailable, "unavailable"},
		{"in_flight", thread.ErrMutationInFlight, http.StatusConflict, "mutation_in_flight"},
		{"not_ready", thread.ErrNotReady, http.StatusTooEarly, "not_ready"},
		{"closed", thread.ErrClosed, http.StatusGone, "closed"},
		{"session_not_found", service.ErrSessionNotFound, http.StatusNotFound, "session_not_found"},
		{"forbidden", service.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"too_many", service.ErrTooManySessions, http.StatusTooManyRequests, "too_many_sessions"},
		{"service invalid", service.ErrInvalidArgument, http.StatusBadRequest, "invalid_argument"},
		{"raw storage", storage.ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			gotStatus, resp := ToHTTP(tc.in)
			require.Equal(t, tc.wantStatus, gotStatus)
			require.Equal(t, tc.wantCode, resp.Error.Code)
			require.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestToHTTP_NilError_Returns500Internal(t *testing.T) {
	gotStatus, resp := ToHTTP(nil)
	require.Equal(t, http.StatusInternalServerError, gotStatus)
	require.Equal(t, "internal", resp.Error.Code)
	require.Equal(t, "internal error", resp.Error.Message)
}

func TestWriteError_EchoesRequestID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-Id", "rid-1")
	w := httptest.NewRecorder()

	WriteError(w, r, thread.ErrMutationInFlight)

	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "rid-1", resp.Error.RequestID)
	require.Equal(t, "mutation_in_flight", resp.Error.Code)
}
