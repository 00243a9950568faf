// internal/auth/tokens.go
//
// JWT + cookie handling and request middleware.
//   - Tokens are HS256 JWTs carrying id/username, read from
//     "Authorization: Bearer <token>" or the auth cookie.
//   - Optional decorates requests with the player when a valid token is
//     present and never rejects; Require answers 401 otherwise.

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tokens signs and verifies player tokens.
type Tokens struct {
	Secret     []byte
	TTL        time.Duration
	CookieName string
	Secure     bool // set Secure + SameSite=None on cookies
}

// Identity is placed into request context by the middleware.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type ctxKey struct{}

// WithIdentity returns ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the authenticated player, or nil for guests.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxKey{}).(*Identity)
	return id
}

// Sign creates a token for p and returns it with its expiry.
func (t Tokens) Sign(p *Player) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(t.TTL)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       p.ID,
		"username": p.Username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	})
	ss, err := tok.SignedString(t.Secret)
	return ss, exp, err
}

// Parse verifies a token and returns its identity.
func (t Tokens) Parse(tokenStr string) (*Identity, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(tk *jwt.Token) (interface{}, error) {
		return t.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	id, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	if id == "" || username == "" {
		return nil, errors.New("invalid token claims")
	}
	return &Identity{ID: id, Username: username}, nil
}

// FromRequest extracts a bearer token from the Authorization header or cookie.
func (t Tokens) FromRequest(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(t.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// SetCookie writes the auth token cookie.
func (t Tokens) SetCookie(w http.ResponseWriter, token string, exp time.Time) {
	c := t.cookie()
	c.Value = token
	c.Expires = exp
	http.SetCookie(w, c)
}

// ClearCookie deletes the auth token cookie.
func (t Tokens) ClearCookie(w http.ResponseWriter) {
	c := t.cookie()
	c.MaxAge = -1
	http.SetCookie(w, c)
}

func (t Tokens) cookie() *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if t.Secure {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     t.CookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   t.Secure,
		SameSite: sameSite,
	}
}

// resolve returns the identity behind a request, checking the player still exists.
func (t Tokens) resolve(r *http.Request, players *Store) (*Identity, error) {
	tok := t.FromRequest(r)
	if tok == "" {
		return nil, errors.New("no token")
	}
	id, err := t.Parse(tok)
	if err != nil {
		return nil, err
	}
	if _, err := players.ByID(r.Context(), id.ID); err != nil {
		return nil, err
	}
	return id, nil
}

// Optional decorates requests with the player if a valid token is present.
func Optional(t Tokens, players *Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, err := t.resolve(r, players); err == nil {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Require enforces a valid token.
func Require(t Tokens, players *Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := t.resolve(r, players)
			if err != nil {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
