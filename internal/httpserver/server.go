// internal/httpserver/server.go
//
// HTTP server wiring for the eldrow JSON API.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, logging).
//   - Public endpoints: "/", "/health".
//   - Game endpoints (optional auth): POST /game/new, POST /game/guess.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Account endpoints: /auth/*, /stats/me, /games/mine.
//
// Notes:
//   - Guests are identified by an anonymous cookie so their results still
//     count towards stats and the daily lock; signup/login claims them.
//   - Evaluator errors map to stable JSON error codes (see errorCode).

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"hash/fnv"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/eldrow/internal/auth"
	"github.com/robalobadob/eldrow/internal/daily"
	"github.com/robalobadob/eldrow/internal/game"
	"github.com/robalobadob/eldrow/internal/render"
	"github.com/robalobadob/eldrow/internal/store"
	"github.com/robalobadob/eldrow/internal/words"
)

// Options carries the server's dependencies.
type Options struct {
	Store        store.Store
	DB           *sql.DB
	Words        *words.List
	Tokens       auth.Tokens
	DailySalt    string
	Rows         int
	Rule         game.Rule
	ClientOrigin string
	Secure       bool             // production cookies
	Now          func() time.Time // clock; time.Now when nil
}

// Server bundles router, game store, and DB-backed stores.
type Server struct {
	r       *chi.Mux
	opts    Options
	store   store.Store
	players *auth.Store
	results *daily.Store
	httpSrv *http.Server

	daily     *dailyServer
	gameLocks [64]sync.Mutex // striped by game ID; see gameLock
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rows <= 0 {
		opts.Rows = game.DefaultRows
	}
	s := &Server{
		r:       chi.NewRouter(),
		opts:    opts,
		store:   opts.Store,
		players: auth.NewStore(opts.DB),
		results: daily.NewStore(opts.DB),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)                   // zerolog access log
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors(opts.ClientOrigin))         // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "eldrow",
			"endpoints": []string{"/health", "POST /game/new", "POST /game/guess", "/daily/*", "/auth/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		a, g := s.opts.Words.Stats()
		writeJSON(w, http.StatusOK, map[string]int{"answers": a, "allowed": g, "length": s.opts.Words.Length()})
	})

	optional := s.r.With(auth.Optional(opts.Tokens, s.players))
	optional.Post("/game/new", s.handleNewGame)
	optional.Post("/game/guess", s.handleGuess)
	s.mountDaily(optional)
	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Start serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.httpSrv = &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- s.httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ------------------------------ GAME ---------------------------------------

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Answer string `json:"answer"` // optional fixed answer (testing)
	Rule   string `json:"rule"`   // "standard" | "naive"; server default when empty
}
type newGameRes struct {
	GameID string `json:"gameId"`
	Rows   int    `json:"rows"`
	Cols   int    `json:"cols"`
	Rule   string `json:"rule"`
}

// handleNewGame creates a new game session.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	rule := s.opts.Rule
	if req.Rule != "" {
		var err error
		if rule, err = game.ParseRule(req.Rule); err != nil {
			writeError(w, http.StatusBadRequest, "bad_rule")
			return
		}
	}
	opts := []game.Option{game.WithWords(s.opts.Words), game.WithRows(s.opts.Rows), game.WithRule(rule)}
	if req.Answer != "" {
		opts = append(opts, game.WithAnswer(req.Answer))
	}
	g, err := game.New(opts...)
	if errors.Is(err, game.ErrInvalidAnswer) {
		writeError(w, http.StatusBadRequest, "invalid_answer")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "new_game_failed")
		return
	}
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	log.Debug().Str("gameId", g.ID).Str("rule", rule.String()).Msg("game created")
	writeJSON(w, http.StatusOK, newGameRes{GameID: g.ID, Rows: g.Rows, Cols: g.Cols, Rule: rule.String()})
}

// guessReq/Res payloads for POST /game/guess.
type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}
type guessRes struct {
	Marks       []game.Mark         `json:"marks"`
	Decorations []render.Decoration `json:"decorations"`
	State       game.State          `json:"state"`
	Remaining   int                 `json:"remaining"`
	Answer      string              `json:"answer,omitempty"` // revealed once finished
}

// handleGuess applies a guess to a stored game and records finished games.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	mu := s.gameLock(req.GameID)
	mu.Lock()
	defer mu.Unlock()

	g, err := s.store.Get(r.Context(), req.GameID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	g.UseWords(s.opts.Words)

	marks, state, err := g.ApplyGuess(req.Guess)
	if err != nil {
		status, code := errorCode(err)
		writeError(w, status, code)
		return
	}
	if err := s.store.Save(r.Context(), g); err != nil {
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	res := guessRes{Marks: marks, Decorations: render.Decorations(marks), State: state, Remaining: g.Remaining()}
	if g.Finished {
		res.Answer = g.Answer
		player := s.playerID(w, r)
		if err := s.results.InsertResult(r.Context(), daily.Result{
			Player:    player,
			Mode:      daily.ModeFree,
			Date:      daily.DateKey(s.opts.Now()),
			WordIndex: -1,
			Guesses:   len(g.Turns),
			Won:       g.Won,
		}); err != nil {
			log.Warn().Err(err).Str("player", player).Msg("record result")
		}
	}
	writeJSON(w, http.StatusOK, res)
}

// gameLock returns the mutex serialising guesses on one game, from load to
// save. Locks are per process: replicas sharing a redis store can still
// interleave guesses on the same game.
func (s *Server) gameLock(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &s.gameLocks[h.Sum32()%uint32(len(s.gameLocks))]
}

// errorCode maps game errors to HTTP status and a stable code.
func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrInvalidGuessLength):
		return http.StatusBadRequest, "invalid_guess_length"
	case errors.Is(err, game.ErrNotAlpha):
		return http.StatusBadRequest, "not_alpha"
	case errors.Is(err, game.ErrNotInWordList):
		return http.StatusBadRequest, "not_in_word_list"
	case errors.Is(err, game.ErrGameFinished):
		return http.StatusConflict, "game_finished"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// ------------------------------- AUTH --------------------------------------

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// mountAuthRoutes registers authentication + gated routes.
func (s *Server) mountAuthRoutes() {
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		s.opts.Tokens.ClearCookie(w)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	gated := s.r.With(auth.Require(s.opts.Tokens, s.players))
	gated.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, auth.FromContext(r.Context()))
	})
	gated.Get("/stats/me", func(w http.ResponseWriter, r *http.Request) {
		me := auth.FromContext(r.Context())
		st, err := s.results.Stats(r.Context(), me.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id":          me.ID,
			"gamesPlayed": st.Played,
			"wins":        st.Wins,
			"streak":      st.Streak,
			"maxStreak":   st.MaxStreak,
			"winRate":     st.WinRate(),
		})
	})
	gated.Get("/games/mine", func(w http.ResponseWriter, r *http.Request) {
		me := auth.FromContext(r.Context())
		games, err := s.results.Recent(r.Context(), me.ID, 50)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		writeJSON(w, http.StatusOK, games)
	})
}

// handleSignup creates a player, signs a JWT, and sets the auth cookie.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	p, err := s.players.Create(r.Context(), body.Username, body.Password)
	switch {
	case errors.Is(err, auth.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "username_taken")
		return
	case errors.Is(err, auth.ErrInvalidUsername):
		writeError(w, http.StatusBadRequest, "invalid_username")
		return
	case errors.Is(err, auth.ErrInvalidPassword):
		writeError(w, http.StatusBadRequest, "invalid_password")
		return
	case err != nil:
		log.Error().Err(err).Msg("create player")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	s.issue(w, p)
	s.claimGuestResults(r, p.ID)
	writeJSON(w, http.StatusOK, p)
}

// handleLogin authenticates a player and sets the auth cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	p, err := s.players.Authenticate(r.Context(), body.Username, body.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}
	s.issue(w, p)
	s.claimGuestResults(r, p.ID)
	writeJSON(w, http.StatusOK, map[string]string{"id": p.ID, "username": p.Username})
}

func (s *Server) issue(w http.ResponseWriter, p *auth.Player) {
	tok, exp, err := s.opts.Tokens.Sign(p)
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		return
	}
	w.Header().Set("X-Auth-Token", tok)
	s.opts.Tokens.SetCookie(w, tok, exp)
}

// --------------------------- identity --------------------------------------

const anonCookieName = "eldrow_anon"

// guestID returns the anonymous player ID from the guest cookie, or "".
func guestID(r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return "anon:" + strings.TrimPrefix(c.Value, "anon:")
	}
	return ""
}

// claimGuestResults transfers a guest's recorded games to the account that
// just signed up or logged in.
func (s *Server) claimGuestResults(r *http.Request, playerID string) {
	anon := guestID(r)
	if anon == "" {
		return
	}
	n, err := s.results.Claim(r.Context(), anon, playerID)
	if err != nil {
		log.Warn().Err(err).Msg("claim guest results")
		return
	}
	if n > 0 {
		log.Info().Int64("results", n).Str("player", playerID).Msg("claimed guest results")
	}
}

// playerID returns the authenticated player ID, or a stable anonymous ID
// stored in a cookie for guests.
func (s *Server) playerID(w http.ResponseWriter, r *http.Request) string {
	if me := auth.FromContext(r.Context()); me != nil {
		return me.ID
	}
	if id := guestID(r); id != "" {
		return id
	}
	id := auth.NewID()
	sameSite := http.SameSiteLaxMode
	if s.opts.Secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     anonCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: sameSite,
		Expires:  s.opts.Now().Add(180 * 24 * time.Hour),
	})
	return "anon:" + id
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
