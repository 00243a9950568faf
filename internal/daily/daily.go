// internal/daily/daily.go
//
// Deterministic daily word selection.
// Every player sees the same answer for a given UTC date and salt.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/robalobadob/eldrow/internal/words"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WordIndex returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % answersLen.
func WordIndex(date time.Time, salt string, answersLen int) int {
	if answersLen <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// take first 8 bytes to uint64 for modulus distribution
	n := binary.BigEndian.Uint64(sum[:8])
	return int(n % uint64(answersLen))
}

// Challenge is the puzzle of one day.
type Challenge struct {
	Date      string
	WordIndex int
	Answer    string
}

// Today resolves the challenge for the date containing now.
func Today(now time.Time, salt string, l *words.List) Challenge {
	n, _ := l.Stats()
	idx := WordIndex(now, salt, n)
	return Challenge{Date: DateKey(now), WordIndex: idx, Answer: l.At(idx)}
}
