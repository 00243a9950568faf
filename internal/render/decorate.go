// internal/render/decorate.go
//
// Decoration mapping: classification → display token.
//
// Decorations are presentation only. Nothing in this package feeds back into
// the evaluator; the game package never imports render.

package render

import "github.com/robalobadob/eldrow/internal/game"

// Decoration is a display token for one classified tile.
type Decoration string

const (
	DecorGreen  Decoration = "green"  // exact
	DecorYellow Decoration = "yellow" // present
	DecorNone   Decoration = ""       // absent, neutral
)

// Decorate maps a mark to its fixed decoration token.
// Unknown marks are treated as absent.
func Decorate(m game.Mark) Decoration {
	switch m {
	case game.MarkExact:
		return DecorGreen
	case game.MarkPresent:
		return DecorYellow
	default:
		return DecorNone
	}
}

// Decorations maps a whole row of marks.
func Decorations(marks []game.Mark) []Decoration {
	out := make([]Decoration, len(marks))
	for i, m := range marks {
		out[i] = Decorate(m)
	}
	return out
}
