package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/eldrow/internal/db"
)

func newPlayers(t *testing.T) *Store {
	t.Helper()
	conn, err := db.OpenAndMigrate(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewStore(conn)
}

func testTokens() Tokens {
	return Tokens{Secret: []byte("test-secret"), TTL: time.Hour, CookieName: "eldrow_token"}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("ana_01", "password1"))
	assert.ErrorIs(t, Validate("an", "password1"), ErrInvalidUsername)
	assert.ErrorIs(t, Validate("ana!", "password1"), ErrInvalidUsername)
	assert.ErrorIs(t, Validate("ana", "short"), ErrInvalidPassword)
}

func TestStore_CreateAndAuthenticate(t *testing.T) {
	s := newPlayers(t)
	ctx := context.Background()

	p, err := s.Create(ctx, "  Ana ", "password1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.Username)
	assert.Len(t, p.ID, 22)
	assert.NotEqual(t, "password1", p.PasswordHash)

	_, err = s.Create(ctx, "ana", "password2")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	got, err := s.Authenticate(ctx, "ANA", "password1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = s.Authenticate(ctx, "ana", "wrong-password")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = s.Authenticate(ctx, "bob", "password1")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = s.ByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTokens_SignParse(t *testing.T) {
	tk := testTokens()
	tok, exp, err := tk.Sign(&Player{ID: "p1", Username: "ana"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	id, err := tk.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, &Identity{ID: "p1", Username: "ana"}, id)

	other := tk
	other.Secret = []byte("other")
	_, err = other.Parse(tok)
	assert.Error(t, err)

	expired := tk
	expired.TTL = -time.Minute
	old, _, err := expired.Sign(&Player{ID: "p1", Username: "ana"})
	require.NoError(t, err)
	_, err = tk.Parse(old)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	s := newPlayers(t)
	tk := testTokens()
	p, err := s.Create(context.Background(), "ana", "password1")
	require.NoError(t, err)
	tok, _, err := tk.Sign(p)
	require.NoError(t, err)

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := FromContext(r.Context()); id != nil {
			_, _ = w.Write([]byte(id.Username))
			return
		}
		_, _ = w.Write([]byte("guest"))
	})

	t.Run("optional with bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		Optional(tk, s)(echo).ServeHTTP(rec, req)
		assert.Equal(t, "ana", rec.Body.String())
	})

	t.Run("optional with cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: tk.CookieName, Value: tok})
		rec := httptest.NewRecorder()
		Optional(tk, s)(echo).ServeHTTP(rec, req)
		assert.Equal(t, "ana", rec.Body.String())
	})

	t.Run("optional guest", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Optional(tk, s)(echo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "guest", rec.Body.String())
	})

	t.Run("require rejects guest", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Require(tk, s)(echo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
	})

	t.Run("require rejects unknown player", func(t *testing.T) {
		ghost, _, err := tk.Sign(&Player{ID: "ghost", Username: "ghost"})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+ghost)
		rec := httptest.NewRecorder()
		Require(tk, s)(echo).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCookies(t *testing.T) {
	tk := testTokens()
	tk.Secure = true

	rec := httptest.NewRecorder()
	tk.SetCookie(rec, "abc", time.Now().Add(time.Hour))
	c := rec.Result().Cookies()
	require.Len(t, c, 1)
	assert.Equal(t, "abc", c[0].Value)
	assert.True(t, c[0].Secure)
	assert.Equal(t, http.SameSiteNoneMode, c[0].SameSite)

	rec = httptest.NewRecorder()
	tk.ClearCookie(rec)
	c = rec.Result().Cookies()
	require.Len(t, c, 1)
	assert.Equal(t, -1, c[0].MaxAge)
}
