// internal/auth/players.go
//
// Player accounts for the HTTP API.
// Responsibilities:
//   - Username/password validation.
//   - bcrypt hashing and verification.
//   - SQLite persistence of the players table.

package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken  = errors.New("username taken")
	ErrNotFound       = errors.New("player not found")
	ErrBadCredentials = errors.New("invalid username or password")

	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidPassword = errors.New("invalid password")
)

// Player matches the players table shape.
type Player struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Store persists players.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// normalizeUsername trims whitespace; adjust here if you want stricter rules.
func normalizeUsername(u string) string {
	return strings.TrimSpace(u)
}

// Validate enforces basic username/password rules.
func Validate(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return fmt.Errorf("%w: must be 3 to 24 chars", ErrInvalidUsername)
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return fmt.Errorf("%w: letters, numbers, underscore only", ErrInvalidUsername)
		}
	}
	if len(p) < 8 || len(p) > 72 {
		return fmt.Errorf("%w: must be 8 to 72 chars", ErrInvalidPassword)
	}
	return nil
}

// Create validates input, checks uniqueness, hashes the password and inserts a new player.
func (s *Store) Create(ctx context.Context, username, pw string) (*Player, error) {
	username = normalizeUsername(username)
	if err := Validate(username, pw); err != nil {
		return nil, err
	}
	if _, err := s.ByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	p := &Player{
		ID:           NewID(),
		Username:     username,
		PasswordHash: string(h),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO players (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		p.ID, p.Username, p.PasswordHash, p.CreatedAt.Format(time.RFC3339)); err != nil {
		return nil, fmt.Errorf("insert player: %w", err)
	}
	return p, nil
}

// Authenticate returns the player when the password matches.
func (s *Store) Authenticate(ctx context.Context, username, pw string) (*Player, error) {
	p, err := s.ByUsername(ctx, normalizeUsername(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(pw)) != nil {
		return nil, ErrBadCredentials
	}
	return p, nil
}

// ByUsername looks a player up case-insensitively.
func (s *Store) ByUsername(ctx context.Context, username string) (*Player, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at
	                                  FROM players WHERE username=?`, username)
	return scanPlayer(row)
}

// ByID looks a player up by id.
func (s *Store) ByID(ctx context.Context, id string) (*Player, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at
	                                  FROM players WHERE id=?`, id)
	return scanPlayer(row)
}

func scanPlayer(row *sql.Row) (*Player, error) {
	var p Player
	var created string
	if err := row.Scan(&p.ID, &p.Username, &p.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &p, nil
}

// NewID creates a 22-char URL-safe, crypto-random identifier (no padding).
func NewID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
