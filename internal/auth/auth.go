// Package auth is the identity provider: it turns a bearer JWT into an
// optional current user.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Shivanand-hulikatti/campus-connect/internal/logger"
	"github.com/Shivanand-hulikatti/campus-connect/internal/model"
)

var (
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
)

// User is the authenticated caller.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Identity reports the current user, if any.
type Identity interface {
	UserFromContext(ctx context.Context) (User, bool)
}

type ctxKey struct{}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFromContext returns the user attached by the middleware.
func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok && u.ID != ""
}

// claims is the token payload.
type claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// JWT validates HS256 tokens and decides admin rights by email domain.
type JWT struct {
	secret      []byte
	adminDomain string
	now         func() time.Time
}

var _ Identity = (*JWT)(nil)

// NewJWT constructs a JWT identity provider. Users whose email ends in
// "@"+adminDomain are administrators.
func NewJWT(secret, adminDomain string) *JWT {
	return &JWT{
		secret:      []byte(secret),
		adminDomain: strings.ToLower(strings.TrimPrefix(adminDomain, "@")),
		now:         time.Now,
	}
}

// UserFromContext implements Identity.
func (j *JWT) UserFromContext(ctx context.Context) (User, bool) {
	return UserFromContext(ctx)
}

// IsAdmin reports whether u may use the admin surface.
func (j *JWT) IsAdmin(u User) bool {
	if u.ID == "" || j.adminDomain == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Email), "@"+j.adminDomain)
}

// Issue signs a token for u valid for ttl.
func (j *JWT) Issue(u User, ttl time.Duration) (string, error) {
	now := j.now()
	c := claims{
		UserID: u.ID,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token string and returns its user.
func (j *JWT) Parse(token string) (User, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return User{}, ErrTokenExpired
		}
		return User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || c.UserID == "" {
		return User{}, ErrInvalidToken
	}
	return User{ID: c.UserID, Email: c.Email}, nil
}

// Middleware attaches the bearer token's user to the request context.
// Requests without an Authorization header pass through anonymously; a
// malformed or invalid token is rejected with 401.
func (j *JWT) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(header, bearerPrefix) || len(header) == len(bearerPrefix) {
			unauthorized(w, ErrInvalidAuthFormat)
			return
		}

		u, err := j.Parse(header[len(bearerPrefix):])
		if err != nil {
			unauthorized(w, err)
			return
		}

		ctx := WithUser(r.Context(), u)
		ctx = logger.WithUser(ctx, u.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser rejects anonymous callers with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			unauthorized(w, errors.New("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects anonymous callers with 401 and non-admins with 403.
func (j *JWT) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok {
			unauthorized(w, errors.New("authentication required"))
			return
		}
		if !j.IsAdmin(u) {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, err error) {
	msg := "invalid access token"
	switch {
	case errors.Is(err, ErrTokenExpired):
		msg = "access token has expired"
	case errors.Is(err, ErrInvalidAuthFormat):
		msg = ErrInvalidAuthFormat.Error()
	case !errors.Is(err, ErrInvalidToken):
		msg = err.Error()
	}
	writeError(w, http.StatusUnauthorized, msg)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg})
}
