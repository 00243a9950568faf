// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start a daily game (creates or reuses session)
//   - POST /daily/guess       → submit a guess for today's daily game
//   - GET  /daily/leaderboard → fetch top 20 wins for today (or a given date)
//
// Each player can finish the daily once (enforced by DB + in-memory session).
// Sessions are held in memory for active play only: the result is persisted
// when the game finishes, won or lost, and the session is dropped. Sessions
// left over from earlier days are dropped on the next /daily/new.

package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/eldrow/internal/daily"
	"github.com/robalobadob/eldrow/internal/game"
	"github.com/robalobadob/eldrow/internal/render"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	mu       sync.Mutex               // guards sessions
	sessions map[string]*dailySession // active sessions keyed by player|date
}

// dailySession holds transient state for an in-progress daily game.
type dailySession struct {
	game      *game.Game
	date      string
	wordIndex int
	start     time.Time
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{srv: s, sessions: make(map[string]*dailySession)}
	s.daily = dd
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/guess", dd.handleGuess)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

func (d *dailyServer) today() daily.Challenge {
	o := d.srv.opts
	return daily.Today(o.Now(), o.DailySalt, o.Words)
}

// newRes is returned by /daily/new.
type newRes struct {
	GameID string `json:"gameId"`
	Date   string `json:"date"`
	Played bool   `json:"played"`
	Rows   int    `json:"rows"`
	Cols   int    `json:"cols"`
}

// handleNew creates or reuses a daily session for the current date.
//   - If the player already has a DB row for today → Played=true.
//   - Otherwise create/reuse an in-memory session and return its GameID.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	player := d.srv.playerID(w, r)
	c := d.today()

	played, err := d.srv.results.AlreadyPlayed(r.Context(), player, c.Date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if played {
		writeJSON(w, http.StatusOK, newRes{Date: c.Date, Played: true})
		return
	}

	key := player + "|" + c.Date
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pruneLocked(c.Date)
	sess, ok := d.sessions[key]
	if !ok {
		g, err := game.New(
			game.WithAnswer(c.Answer),
			game.WithWords(d.srv.opts.Words),
			game.WithRows(d.srv.opts.Rows),
			game.WithRule(d.srv.opts.Rule),
		)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "new_game_failed")
			return
		}
		sess = &dailySession{game: g, date: c.Date, wordIndex: c.WordIndex, start: d.srv.opts.Now()}
		d.sessions[key] = sess
	}
	writeJSON(w, http.StatusOK, newRes{GameID: sess.game.ID, Date: c.Date, Rows: sess.game.Rows, Cols: sess.game.Cols})
}

// dailyGuessReq is the request payload for /daily/guess.
type dailyGuessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}

// dailyGuessRes is the response payload for /daily/guess.
type dailyGuessRes struct {
	Marks       []game.Mark         `json:"marks"`
	Decorations []render.Decoration `json:"decorations"`
	State       string              `json:"state"` // playing | won | lost | locked
	Guesses     int                 `json:"guesses"`
}

// handleGuess validates and applies a guess for today's daily session.
func (d *dailyServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	player := d.srv.playerID(w, r)

	var p dailyGuessReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	c := d.today()
	key := player + "|" + c.Date

	d.mu.Lock()
	defer d.mu.Unlock()
	sess, ok := d.sessions[key]
	if !ok {
		played, err := d.srv.results.AlreadyPlayed(r.Context(), player, c.Date)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		if played {
			writeJSON(w, http.StatusOK, dailyGuessRes{Marks: []game.Mark{}, Decorations: []render.Decoration{}, State: "locked"})
			return
		}
	}
	if !ok || sess.game.ID != p.GameID {
		writeError(w, http.StatusConflict, "no_session")
		return
	}
	g := sess.game

	marks, state, err := g.ApplyGuess(p.Guess)
	if err != nil {
		status, code := errorCode(err)
		writeError(w, status, code)
		return
	}

	if g.Finished {
		elapsed := int(d.srv.opts.Now().Sub(sess.start).Milliseconds())
		if err := d.srv.results.InsertResult(r.Context(), daily.Result{
			Player:    player,
			Mode:      daily.ModeDaily,
			Date:      c.Date,
			WordIndex: sess.wordIndex,
			Guesses:   len(g.Turns),
			Won:       g.Won,
			ElapsedMs: elapsed,
		}); err != nil {
			log.Warn().Err(err).Str("player", player).Msg("insert daily result")
		} else {
			delete(d.sessions, key)
		}
	}
	writeJSON(w, http.StatusOK, dailyGuessRes{
		Marks:       marks,
		Decorations: render.Decorations(marks),
		State:       string(state),
		Guesses:     len(g.Turns),
	})
}

// pruneLocked drops sessions from other days. d.mu must be held.
func (d *dailyServer) pruneLocked(today string) {
	for k, sess := range d.sessions {
		if sess.date != today {
			delete(d.sessions, k)
		}
	}
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = d.today().Date
	}
	rows, err := d.srv.results.Leaderboard(r.Context(), date, 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
