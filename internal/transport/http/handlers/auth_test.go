package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-contact-book/auth-service/internal/models"
	"github.com/pribylovaa/go-contact-book/auth-service/internal/service"
	"github.com/pribylovaa/go-contact-book/auth-service/internal/transport/http/middleware"
)

// fakeAuth — заглушка сервисного слоя: каждый метод задаётся функцией теста.
type fakeAuth struct {
	register func(ctx context.Context, email, username, password string) (*models.User, error)
	login    func(ctx context.Context, email, password string) (*models.TokenPair, uuid.UUID, error)
	refresh  func(ctx context.Context, refreshToken string) (*models.TokenPair, uuid.UUID, error)
	logout   func(ctx context.Context, accessToken string) error
	verify   func(ctx context.Context, token string) error
	userByID func(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

func (f *fakeAuth) RegisterUser(ctx context.Context, email, username, password string) (*models.User, error) {
	return f.register(ctx, email, username, password)
}

func (f *fakeAuth) LoginUser(ctx context.Context, email, password string) (*models.TokenPair, uuid.UUID, error) {
	return f.login(ctx, email, password)
}

func (f *fakeAuth) RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, uuid.UUID, error) {
	return f.refresh(ctx, refreshToken)
}

func (f *fakeAuth) Logout(ctx context.Context, accessToken string) error {
	return f.logout(ctx, accessToken)
}

func (f *fakeAuth) VerifyEmail(ctx context.Context, token string) error {
	return f.verify(ctx, token)
}

func (f *fakeAuth) UserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return f.userByID(ctx, userID)
}

func postJSON(t *testing.T, h http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func sampleUser() *models.User {
	return &models.User{
		ID:           uuid.New(),
		Email:        "user@example.com",
		Username:     "alice",
		PasswordHash: "$2a$10$secret-hash",
		Verified:     false,
		CreatedAt:    time.Now().UTC(),
	}
}

func samplePair() *models.TokenPair {
	return &models.TokenPair{
		AccessToken:     "access-jwt",
		RefreshToken:    "refresh-jwt",
		AccessExpiresAt: time.Now().UTC().Add(15 * time.Minute),
	}
}

func TestRegister_OK_DoesNotExposeHash(t *testing.T) {
	user := sampleUser()
	svc := &fakeAuth{
		register: func(_ context.Context, email, username, password string) (*models.User, error) {
			require.Equal(t, "user@example.com", email)
			require.Equal(t, "alice", username)
			require.Equal(t, "Abcdef1!", password)
			return user, nil
		},
	}
	h := New(svc)

	rr := postJSON(t, h.Register, "/auth/register", map[string]string{
		"email":    "user@example.com",
		"username": "alice",
		"password": "Abcdef1!",
	})

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Contains(t, rr.Body.String(), user.ID.String())
	require.NotContains(t, rr.Body.String(), "secret-hash")
	require.NotContains(t, rr.Body.String(), "password")
}

func TestRegister_BadJSON_400(t *testing.T) {
	h := New(&fakeAuth{})

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte("{broken")))
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegister_UnknownField_400(t *testing.T) {
	h := New(&fakeAuth{})

	rr := postJSON(t, h.Register, "/auth/register", map[string]string{
		"email":    "user@example.com",
		"username": "alice",
		"password": "Abcdef1!",
		"extra":    "nope",
	})

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegister_EmailTaken_409(t *testing.T) {
	svc := &fakeAuth{
		register: func(context.Context, string, string, string) (*models.User, error) {
			return nil, service.ErrEmailTaken
		},
	}
	h := New(svc)

	rr := postJSON(t, h.Register, "/auth/register", map[string]string{
		"email": "user@example.com", "username": "alice", "password": "Abcdef1!",
	})

	require.Equal(t, http.StatusConflict, rr.Code)
	require.Contains(t, rr.Body.String(), `"code":"email_taken"`)
}

func TestLogin_OK(t *testing.T) {
	pair := samplePair()
	svc := &fakeAuth{
		login: func(context.Context, string, string) (*models.TokenPair, uuid.UUID, error) {
			return pair, uuid.New(), nil
		},
	}
	h := New(svc)

	rr := postJSON(t, h.Login, "/auth/login", map[string]string{
		"email": "user@example.com", "password": "Abcdef1!",
	})

	require.Equal(t, http.StatusOK, rr.Code)

	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Equal(t, pair.AccessToken, out.AccessToken)
	require.Equal(t, pair.RefreshToken, out.RefreshToken)
	require.Equal(t, "Bearer", out.TokenType)
}

func TestLogin_NotVerified_403(t *testing.T) {
	svc := &fakeAuth{
		login: func(context.Context, string, string) (*models.TokenPair, uuid.UUID, error) {
			return nil, uuid.Nil, service.ErrEmailNotVerified
		},
	}
	h := New(svc)

	rr := postJSON(t, h.Login, "/auth/login", map[string]string{
		"email": "user@example.com", "password": "Abcdef1!",
	})

	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Contains(t, rr.Body.String(), `"code":"email_not_verified"`)
}

func TestLogin_InvalidCredentials_401(t *testing.T) {
	svc := &fakeAuth{
		login: func(context.Context, string, string) (*models.TokenPair, uuid.UUID, error) {
			return nil, uuid.Nil, service.ErrInvalidCredentials
		},
	}
	h := New(svc)

	rr := postJSON(t, h.Login, "/auth/login", map[string]string{
		"email": "user@example.com", "password": "wrong",
	})

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRefresh_OK_And_ReuseRejected(t *testing.T) {
	pair := samplePair()
	svc := &fakeAuth{
		refresh: func(_ context.Context, token string) (*models.TokenPair, uuid.UUID, error) {
			if token == "fresh" {
				return pair, uuid.New(), nil
			}
			return nil, uuid.Nil, service.ErrRefreshReuse
		},
	}
	h := New(svc)

	rr := postJSON(t, h.Refresh, "/auth/refresh", map[string]string{"refresh_token": "fresh"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = postJSON(t, h.Refresh, "/auth/refresh", map[string]string{"refresh_token": "stolen"})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Contains(t, rr.Body.String(), `"code":"invalid_token"`)
}

func TestRefresh_EmptyToken_400(t *testing.T) {
	h := New(&fakeAuth{})

	rr := postJSON(t, h.Refresh, "/auth/refresh", map[string]string{"refresh_token": ""})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLogout_OK_204(t *testing.T) {
	svc := &fakeAuth{
		logout: func(_ context.Context, token string) error {
			require.Equal(t, "access-jwt", token)
			return nil
		},
	}
	h := New(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer access-jwt")
	rr := httptest.NewRecorder()

	middleware.Chain(http.HandlerFunc(h.Logout), middleware.AuthBearer()).ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
}

func TestLogout_NoToken_401(t *testing.T) {
	h := New(&fakeAuth{})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rr := httptest.NewRecorder()
	h.Logout(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestVerifyEmail_OK_And_BadToken(t *testing.T) {
	svc := &fakeAuth{
		verify: func(_ context.Context, token string) error {
			if token == "good-token" {
				return nil
			}
			return service.ErrInvalidToken
		},
	}
	h := New(svc)

	r := chi.NewRouter()
	r.Get("/auth/verify/{token}", h.VerifyEmail)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/auth/verify/good-token", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "email verified")

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/auth/verify/bad-token", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMe_ReturnsProfile(t *testing.T) {
	user := sampleUser()
	user.Verified = true

	svc := &fakeAuth{
		userByID: func(_ context.Context, id uuid.UUID) (*models.User, error) {
			require.Equal(t, user.ID, id)
			return user, nil
		},
	}
	h := New(svc)

	// RequireAuth кладёт user id в контекст; здесь эмулируем это напрямую
	// через цепочку AuthBearer+RequireAuth с резолвером-заглушкой.
	resolver := staticResolver{uid: user.ID}
	chain := middleware.Chain(http.HandlerFunc(h.Me),
		middleware.AuthBearer(),
		middleware.RequireAuth(resolver),
	)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer access-jwt")
	rr := httptest.NewRecorder()
	chain.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), user.Email)
	require.NotContains(t, rr.Body.String(), "secret-hash")
}

func TestMe_NoIdentityInContext_401(t *testing.T) {
	h := New(&fakeAuth{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rr := httptest.NewRecorder()
	h.Me(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHealthcheck_OK(t *testing.T) {
	h := New(&fakeAuth{})

	rr := httptest.NewRecorder()
	h.Healthcheck(rr, httptest.NewRequest(http.MethodGet, "/api/healthchecker", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"status":"ok"`)
}

type staticResolver struct {
	uid uuid.UUID
}

func (s staticResolver) ResolveIdentity(context.Context, string) (uuid.UUID, error) {
	return s.uid, nil
}
