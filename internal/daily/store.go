// internal/daily/store.go
//
// SQLite persistence for finished games.
//   - Daily results: at most one per player and date (duplicates ignored).
//   - Free-play results: unlimited, feed the same statistics.
//   - Leaderboard and per-player stats are computed from the results table.

package daily

import (
	"context"
	"database/sql"
	"fmt"
)

// Mode distinguishes daily challenges from free play.
type Mode string

const (
	ModeDaily Mode = "daily"
	ModeFree  Mode = "free"
)

// Result is one finished game.
type Result struct {
	Player    string `json:"player"`
	Mode      Mode   `json:"mode"`
	Date      string `json:"date"`
	WordIndex int    `json:"wordIndex"`
	Guesses   int    `json:"guesses"`
	Won       bool   `json:"won"`
	ElapsedMs int    `json:"elapsedMs"`
}

// LBRow is one leaderboard line.
type LBRow struct {
	Player    string `json:"player"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int    `json:"elapsedMs"`
}

// Stats summarises a player's history.
type Stats struct {
	Played    int `json:"gamesPlayed"`
	Wins      int `json:"wins"`
	Streak    int `json:"streak"`
	MaxStreak int `json:"maxStreak"`
}

// WinRate is wins/played in percent, 0 when nothing was played.
func (s Stats) WinRate() int {
	if s.Played == 0 {
		return 0
	}
	return s.Wins * 100 / s.Played
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether player has a daily result for date.
func (s *Store) AlreadyPlayed(ctx context.Context, player, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM results WHERE player=? AND date=? AND mode='daily'`,
		player, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult stores a finished game. For ModeDaily a second result for the
// same player and date is ignored without error.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	if r.Mode == "" {
		r.Mode = ModeDaily
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO results(player, mode, date, word_index, guesses, won, elapsed_ms)
		 VALUES(?,?,?,?,?,?,?)`,
		r.Player, string(r.Mode), r.Date, r.WordIndex, r.Guesses, r.Won, r.ElapsedMs,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// Leaderboard returns the fastest daily wins for date.
// Ordered by guesses ASC, elapsed time ASC, then insertion order.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT player, guesses, elapsed_ms
		 FROM results
		 WHERE date=? AND mode='daily' AND won=1
		 ORDER BY guesses ASC, elapsed_ms ASC, id ASC
		 LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.Player, &r.Guesses, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats computes played/wins/streaks for player in result order.
// The current streak counts consecutive wins ending at the latest result.
func (s *Store) Stats(ctx context.Context, player string) (Stats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT won FROM results WHERE player=? ORDER BY id ASC`, player)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	var st Stats
	for rows.Next() {
		var won bool
		if err := rows.Scan(&won); err != nil {
			return Stats{}, err
		}
		st.Played++
		if won {
			st.Wins++
			st.Streak++
			if st.Streak > st.MaxStreak {
				st.MaxStreak = st.Streak
			}
		} else {
			st.Streak = 0
		}
	}
	return st, rows.Err()
}

// Claim moves every result recorded under from to the player to, e.g. a
// guest's games when they sign up. A daily result for a date that to has
// already played stays with from.
func (s *Store) Claim(ctx context.Context, from, to string) (int64, error) {
	if from == "" || to == "" || from == to {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `UPDATE OR IGNORE results SET player=? WHERE player=?`, to, from)
	if err != nil {
		return 0, fmt.Errorf("claim results: %w", err)
	}
	return res.RowsAffected()
}

// RecentGame is one line of a player's history.
type RecentGame struct {
	ID        int64  `json:"id"`
	Mode      Mode   `json:"mode"`
	Date      string `json:"date"`
	Guesses   int    `json:"guesses"`
	Won       bool   `json:"won"`
	ElapsedMs int    `json:"elapsedMs"`
	CreatedAt string `json:"createdAt"`
}

// Recent lists player's latest results, newest first.
func (s *Store) Recent(ctx context.Context, player string, limit int) ([]RecentGame, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mode, date, guesses, won, elapsed_ms, created_at
		 FROM results WHERE player=?
		 ORDER BY id DESC LIMIT ?`, player, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []RecentGame{}
	for rows.Next() {
		var g RecentGame
		var mode string
		if err := rows.Scan(&g.ID, &mode, &g.Date, &g.Guesses, &g.Won, &g.ElapsedMs, &g.CreatedAt); err != nil {
			return nil, err
		}
		g.Mode = Mode(mode)
		out = append(out, g)
	}
	return out, rows.Err()
}
