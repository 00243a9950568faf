package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/robalobadob/eldrow/internal/auth"
	"github.com/robalobadob/eldrow/internal/daily"
	"github.com/robalobadob/eldrow/internal/db"
	"github.com/robalobadob/eldrow/internal/game"
	"github.com/robalobadob/eldrow/internal/render"
	"github.com/robalobadob/eldrow/internal/store"
	"github.com/robalobadob/eldrow/internal/words"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	conn, err := db.OpenAndMigrate(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	l, err := words.NewList(5, []string{"crane", "reset", "slate"}, []string{"eerie", "adieu"})
	require.NoError(t, err)

	return New(Options{
		Store:     store.NewMemoryStore(),
		DB:        conn,
		Words:     l,
		Tokens:    auth.Tokens{Secret: []byte("test"), TTL: time.Hour, CookieName: "eldrow_token"},
		DailySalt: "salt",
		Now:       func() time.Time { return fixedNow },
	})
}

type call struct {
	method  string
	path    string
	body    any
	token   string
	cookies []*http.Cookie
}

func do(t *testing.T, s *Server, c call) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = do(t, s, call{method: http.MethodGet, path: "/nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGameFlow(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, call{method: http.MethodPost, path: "/game/new", body: map[string]string{"answer": "crane"}})
	require.Equal(t, http.StatusOK, rec.Code)
	ng := decode[newGameRes](t, rec)
	assert.Equal(t, 5, ng.Cols)
	assert.Equal(t, game.DefaultRows, ng.Rows)
	assert.Equal(t, "standard", ng.Rule)

	rec = do(t, s, call{method: http.MethodPost, path: "/game/guess", body: guessReq{GameID: ng.GameID, Guess: "eerie"}})
	require.Equal(t, http.StatusOK, rec.Code)
	gr := decode[guessRes](t, rec)
	assert.Equal(t, []game.Mark{game.MarkAbsent, game.MarkAbsent, game.MarkPresent, game.MarkAbsent, game.MarkExact}, gr.Marks)
	assert.Equal(t, []render.Decoration{render.DecorNone, render.DecorNone, render.DecorYellow, render.DecorNone, render.DecorGreen}, gr.Decorations)
	assert.Equal(t, game.StatePlaying, gr.State)
	assert.Equal(t, 5, gr.Remaining)
	assert.Empty(t, gr.Answer)

	for guess, code := range map[string]string{
		"cran":   "invalid_guess_length",
		"cranes": "invalid_guess_length",
		"zzzzz":  "not_in_word_list",
		"cr4ne":  "not_alpha",
	} {
		rec = do(t, s, call{method: http.MethodPost, path: "/game/guess", body: guessReq{GameID: ng.GameID, Guess: guess}})
		assert.Equal(t, http.StatusBadRequest, rec.Code, guess)
		assert.Equal(t, code, decode[map[string]string](t, rec)["error"], guess)
	}

	rec = do(t, s, call{method: http.MethodPost, path: "/game/guess", body: guessReq{GameID: ng.GameID, Guess: "crane"}})
	require.Equal(t, http.StatusOK, rec.Code)
	gr = decode[guessRes](t, rec)
	assert.Equal(t, game.StateWon, gr.State)
	assert.Equal(t, "crane", gr.Answer)

	rec = do(t, s, call{method: http.MethodPost, path: "/game/guess", body: guessReq{GameID: ng.GameID, Guess: "crane"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGame_NotFoundAndBadInput(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, call{method: http.MethodPost, path: "/game/guess", body: guessReq{GameID: "missing", Guess: "crane"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, call{method: http.MethodPost, path: "/game/new", body: map[string]string{"rule": "fuzzy"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/game/guess", bytes.NewBufferString("{"))
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGame_NaiveRuleOverride(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, call{method: http.MethodPost, path: "/game/new", body: map[string]string{"answer": "crane", "rule": "naive"}})
	ng := decode[newGameRes](t, rec)
	assert.Equal(t, "naive", ng.Rule)

	rec = do(t, s, call{method: http.MethodPost, path: "/game/guess", body: guessReq{GameID: ng.GameID, Guess: "eerie"}})
	gr := decode[guessRes](t, rec)
	assert.Equal(t, game.MarkPresent, gr.Marks[0])
	assert.Equal(t, game.MarkPresent, gr.Marks[1])
}

func TestGame_ConcurrentGuesses(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, call{method: http.MethodPost, path: "/game/new", body: map[string]string{"answer": "crane"}})
	require.Equal(t, http.StatusOK, rec.Code)
	id := decode[newGameRes](t, rec).GameID

	body, err := json.Marshal(guessReq{GameID: id, Guess: "slate"})
	require.NoError(t, err)

	const callers = 2 * game.DefaultRows
	codes := make([]int, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/game/guess", bytes.NewReader(body))
			rr := httptest.NewRecorder()
			s.Router().ServeHTTP(rr, req)
			codes[i] = rr.Code
		}(i)
	}
	wg.Wait()

	var ok, finished int
	for _, c := range codes {
		switch c {
		case http.StatusOK:
			ok++
		case http.StatusConflict:
			finished++
		}
	}
	assert.Equal(t, game.DefaultRows, ok)
	assert.Equal(t, callers-game.DefaultRows, finished)

	g, err := s.store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, g.Turns, game.DefaultRows)
	assert.Equal(t, game.StateLost, g.State())

	var recorded int
	require.NoError(t, s.opts.DB.QueryRow(`SELECT COUNT(*) FROM results`).Scan(&recorded))
	assert.Equal(t, 1, recorded)
}

func TestGame_FixedAnswer(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, call{method: http.MethodPost, path: "/game/new", body: map[string]string{"answer": "12345"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_answer", decode[map[string]string](t, rec)["error"])

	rec = do(t, s, call{method: http.MethodPost, path: "/game/new", body: map[string]string{"answer": "ghost"}})
	require.Equal(t, http.StatusOK, rec.Code)
	id := decode[newGameRes](t, rec).GameID

	rec = do(t, s, call{method: http.MethodPost, path: "/game/guess", body: guessReq{GameID: id, Guess: "ghost"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, game.StateWon, decode[guessRes](t, rec).State)
}

func TestAuth_SignupValidationCodes(t *testing.T) {
	s := newTestServer(t)
	for _, tc := range []struct {
		creds credentials
		code  string
	}{
		{credentials{Username: "an", Password: "password1"}, "invalid_username"},
		{credentials{Username: "ana!", Password: "password1"}, "invalid_username"},
		{credentials{Username: "ana", Password: "short"}, "invalid_password"},
	} {
		rec := do(t, s, call{method: http.MethodPost, path: "/auth/signup", body: tc.creds})
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.creds.Username)
		assert.Equal(t, tc.code, decode[map[string]string](t, rec)["error"], tc.creds.Username)
	}

	rec := do(t, s, call{method: http.MethodGet, path: "/stats/me"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "unauthorized", decode[map[string]string](t, rec)["error"])
}

func TestAuth_ClaimsGuestResults(t *testing.T) {
	s := newTestServer(t)
	challenge := daily.Today(fixedNow, "salt", s.opts.Words)

	rec := do(t, s, call{method: http.MethodPost, path: "/daily/new"})
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	nr := decode[newRes](t, rec)
	rec = do(t, s, call{method: http.MethodPost, path: "/daily/guess", cookies: cookies, body: dailyGuessReq{GameID: nr.GameID, Guess: challenge.Answer}})
	require.Equal(t, "won", decode[dailyGuessRes](t, rec).State)

	rec = do(t, s, call{method: http.MethodPost, path: "/auth/signup", cookies: cookies, body: credentials{Username: "ana", Password: "password1"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := rec.Header().Get("X-Auth-Token")

	rec = do(t, s, call{method: http.MethodGet, path: "/stats/me", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["gamesPlayed"])

	rec = do(t, s, call{method: http.MethodPost, path: "/daily/new", token: token})
	assert.True(t, decode[newRes](t, rec).Played, "the claimed daily result locks the account too")

	rec = do(t, s, call{method: http.MethodGet, path: "/games/mine", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[[]daily.RecentGame](t, rec)
	require.Len(t, mine, 1)
	assert.Equal(t, daily.ModeDaily, mine[0].Mode)
	assert.True(t, mine[0].Won)
	assert.Equal(t, "2026-10-19", mine[0].Date)

	rec = do(t, s, call{method: http.MethodGet, path: "/games/mine"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthAndStats(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, call{method: http.MethodPost, path: "/auth/signup", body: credentials{Username: "ana", Password: "password1"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := rec.Header().Get("X-Auth-Token")
	require.NotEmpty(t, token)

	rec = do(t, s, call{method: http.MethodPost, path: "/auth/signup", body: credentials{Username: "ANA", Password: "password1"}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, call{method: http.MethodPost, path: "/auth/login", body: credentials{Username: "ana", Password: "nope-nope"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, call{method: http.MethodPost, path: "/auth/login", body: credentials{Username: "ana", Password: "password1"}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, call{method: http.MethodGet, path: "/auth/me", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ana", decode[auth.Identity](t, rec).Username)

	rec = do(t, s, call{method: http.MethodGet, path: "/stats/me"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// play one winning game while logged in
	rec = do(t, s, call{method: http.MethodPost, path: "/game/new", token: token, body: map[string]string{"answer": "slate"}})
	id := decode[newGameRes](t, rec).GameID
	rec = do(t, s, call{method: http.MethodPost, path: "/game/guess", token: token, body: guessReq{GameID: id, Guess: "slate"}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, call{method: http.MethodGet, path: "/stats/me", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[map[string]any](t, rec)
	assert.EqualValues(t, 1, st["gamesPlayed"])
	assert.EqualValues(t, 1, st["wins"])
	assert.EqualValues(t, 1, st["streak"])

	rec = do(t, s, call{method: http.MethodPost, path: "/auth/logout"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDailyFlow(t *testing.T) {
	s := newTestServer(t)
	challenge := daily.Today(fixedNow, "salt", s.opts.Words)

	rec := do(t, s, call{method: http.MethodPost, path: "/daily/new"})
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies, "guest gets an anonymous cookie")
	nr := decode[newRes](t, rec)
	assert.Equal(t, "2026-10-19", nr.Date)
	assert.False(t, nr.Played)

	// same session is reused
	rec = do(t, s, call{method: http.MethodPost, path: "/daily/new", cookies: cookies})
	assert.Equal(t, nr.GameID, decode[newRes](t, rec).GameID)

	rec = do(t, s, call{method: http.MethodPost, path: "/daily/guess", cookies: cookies, body: dailyGuessReq{GameID: "other", Guess: "crane"}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, call{method: http.MethodPost, path: "/daily/guess", cookies: cookies, body: dailyGuessReq{GameID: nr.GameID, Guess: "abc"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, call{method: http.MethodPost, path: "/daily/guess", cookies: cookies, body: dailyGuessReq{GameID: nr.GameID, Guess: challenge.Answer}})
	require.Equal(t, http.StatusOK, rec.Code)
	dg := decode[dailyGuessRes](t, rec)
	assert.Equal(t, "won", dg.State)
	assert.Equal(t, 1, dg.Guesses)

	rec = do(t, s, call{method: http.MethodPost, path: "/daily/guess", cookies: cookies, body: dailyGuessReq{GameID: nr.GameID, Guess: challenge.Answer}})
	assert.Equal(t, "locked", decode[dailyGuessRes](t, rec).State)

	rec = do(t, s, call{method: http.MethodPost, path: "/daily/new", cookies: cookies})
	assert.True(t, decode[newRes](t, rec).Played)

	rec = do(t, s, call{method: http.MethodGet, path: "/daily/leaderboard"})
	require.Equal(t, http.StatusOK, rec.Code)
	lb := decode[lbRes](t, rec)
	assert.Equal(t, "2026-10-19", lb.Date)
	require.Len(t, lb.Top, 1)
	assert.Equal(t, 1, lb.Top[0].Guesses)

	rec = do(t, s, call{method: http.MethodGet, path: "/daily/leaderboard?date=2026-10-18"})
	assert.Empty(t, decode[lbRes](t, rec).Top)
}

func TestDaily_SessionsArePruned(t *testing.T) {
	s := newTestServer(t)
	challenge := daily.Today(fixedNow, "salt", s.opts.Words)

	// a finished game leaves no session behind
	rec := do(t, s, call{method: http.MethodPost, path: "/daily/new"})
	winner := rec.Result().Cookies()
	nr := decode[newRes](t, rec)
	do(t, s, call{method: http.MethodPost, path: "/daily/guess", cookies: winner, body: dailyGuessReq{GameID: nr.GameID, Guess: challenge.Answer}})
	assert.Empty(t, s.daily.sessions)

	// an abandoned game is dropped once the day changes
	do(t, s, call{method: http.MethodPost, path: "/daily/new"})
	assert.Len(t, s.daily.sessions, 1)

	s.opts.Now = func() time.Time { return fixedNow.Add(24 * time.Hour) }
	do(t, s, call{method: http.MethodPost, path: "/daily/new"})
	require.Len(t, s.daily.sessions, 1)
	for _, sess := range s.daily.sessions {
		assert.Equal(t, "2026-10-20", sess.date)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, call{method: http.MethodOptions, path: "/game/new"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStart_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
