package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-middleware"

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok {
			w.Write([]byte("anonymous"))
			return
		}
		w.Write([]byte(u.ID + "|" + u.Email))
	})
}

func TestIssueAndParse(t *testing.T) {
	j := NewJWT(testSecret, "admin.com")
	token, err := j.Issue(User{ID: "u1", Email: "ada@campus.edu"}, time.Hour)
	require.NoError(t, err)

	u, err := j.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, User{ID: "u1", Email: "ada@campus.edu"}, u)
}

func TestParse_Rejections(t *testing.T) {
	j := NewJWT(testSecret, "admin.com")

	t.Run("expired", func(t *testing.T) {
		token, err := j.Issue(User{ID: "u1"}, -time.Minute)
		require.NoError(t, err)
		_, err = j.Parse(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewJWT("other", "").Issue(User{ID: "u1"}, time.Hour)
		require.NoError(t, err)
		_, err = j.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing user id", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"email": "x@y.z",
			"exp":   time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = j.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := j.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestIsAdmin(t *testing.T) {
	j := NewJWT(testSecret, "@Admin.com")
	assert.True(t, j.IsAdmin(User{ID: "a", Email: "boss@admin.com"}))
	assert.True(t, j.IsAdmin(User{ID: "a", Email: "Boss@ADMIN.com"}))
	assert.False(t, j.IsAdmin(User{ID: "a", Email: "boss@notadmin.com.evil"}))
	assert.False(t, j.IsAdmin(User{ID: "a", Email: "student@campus.edu"}))
	assert.False(t, j.IsAdmin(User{Email: "boss@admin.com"}))
}

func TestMiddleware(t *testing.T) {
	j := NewJWT(testSecret, "admin.com")
	h := j.Middleware(echoUser())
	token, err := j.Issue(User{ID: "user-123", Email: "test@example.com"}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"no header is anonymous", "", http.StatusOK, "anonymous"},
		{"valid token", "Bearer " + token, http.StatusOK, "user-123|test@example.com"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, ""},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, ""},
		{"bad token", "Bearer nope", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), `"error"`)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	j := NewJWT(testSecret, "admin.com")
	h := j.RequireAdmin(echoUser())

	serve := func(ctx context.Context) int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, serve(context.Background()))
	assert.Equal(t, http.StatusForbidden, serve(WithUser(context.Background(), User{ID: "s", Email: "s@campus.edu"})))
	assert.Equal(t, http.StatusOK, serve(WithUser(context.Background(), User{ID: "a", Email: "a@admin.com"})))
}

func TestRequireUser(t *testing.T) {
	h := RequireUser(echoUser())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "authentication required")

	rec = httptest.NewRecorder()
	ctx := WithUser(context.Background(), User{ID: "u1", Email: "ada@campus.edu"})
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1|ada@campus.edu", rec.Body.String())
}
