package errors

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-contact-book/auth-service/internal/ratelimit"
	"github.com/pribylovaa/go-contact-book/auth-service/internal/service"
)

func TestToHTTP_BaseMapping(t *testing.T) {
	tcs := []struct {
		name       string
		in         error
		wantStatus int
		wantCode   string
	}{
		{"invalid_argument", ErrInvalidArgument, http.StatusBadRequest, "invalid_argument"},
		{"invalid_email", service.ErrInvalidEmail, http.StatusBadRequest, "invalid_email"},
		{"empty_password", service.ErrEmptyPassword, http.StatusBadRequest, "empty_password"},
		{"weak_password", service.ErrWeakPassword, http.StatusBadRequest, "weak_password"},
		{"invalid_credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{"token_expired", service.ErrTokenExpired, http.StatusUnauthorized, "token_expired"},
		{"invalid_token", service.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
		{"token_type_mismatch", service.ErrTokenTypeMismatch, http.StatusUnauthorized, "invalid_token"},
		{"refresh_reuse", service.ErrRefreshReuse, http.StatusUnauthorized, "invalid_token"},
		{"unauthenticated", service.ErrUnauthorized, http.StatusUnauthorized, "unauthenticated"},
		{"email_not_verified", service.ErrEmailNotVerified, http.StatusForbidden, "email_not_verified"},
		{"email_taken", service.ErrEmailTaken, http.StatusConflict, "email_taken"},
		{"rate_limited", ratelimit.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{"store_unavailable", service.ErrStoreUnavailable, http.StatusServiceUnavailable, "unavailable"},
		{"limiter_unavailable", ratelimit.ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "deadline_exceeded"},
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

// Слои оборачивают ошибки через fmt.Errorf("%s: %w", ...): маппинг обязан
// работать по errors.Is, а не по равенству.
func TestToHTTP_WrappedSentinels(t *testing.T) {
	wrapped := fmt.Errorf("service.auth.LoginUser: %w", service.ErrInvalidCredentials)

	gotStatus, resp := ToHTTP(wrapped)
	require.Equal(t, http.StatusUnauthorized, gotStatus)
	require.Equal(t, "invalid_credentials", resp.Error.Code)
}

func TestToHTTP_NilError_Returns500Internal(t *testing.T) {
	gotStatus, resp := ToHTTP(nil)
	require.Equal(t, http.StatusInternalServerError, gotStatus)
	require.Equal(t, "internal", resp.Error.Code)
	require.Equal(t, "internal error", resp.Error.Message)
}

func TestWriteError_AddsRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set("X-Request-Id", "rid-123")

	rr := httptest.NewRecorder()
	WriteError(rr, req, service.ErrInvalidCredentials)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.Contains(t, rr.Body.String(), `"request_id":"rid-123"`)
	require.Contains(t, rr.Body.String(), `"code":"invalid_credentials"`)
}

// Детали внутренней ошибки не попадают в тело ответа.
func TestWriteError_DoesNotLeakDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)

	rr := httptest.NewRecorder()
	WriteError(rr, req, fmt.Errorf("pq: connection refused at 10.0.0.5"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.NotContains(t, rr.Body.String(), "10.0.0.5")
	require.Contains(t, rr.Body.String(), `"code":"internal"`)
}
