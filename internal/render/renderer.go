// internal/render/renderer.go
//
// Line-mode renderers for the console game.
//   - Styled: coloured tiles via lipgloss.
//   - Plain:  bracket notation for pipes, dumb terminals and --no-color.
//     [A] exact, (A) present, " A " absent.

package render

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	"github.com/robalobadob/eldrow/internal/game"
)

// Renderer turns decorated tiles into printable strings.
type Renderer interface {
	Tile(r rune, d Decoration) string
	Row(guess string, marks []game.Mark) string
	Keyboard(kb map[rune]game.Mark) string
}

// New returns a Styled renderer when color is true, Plain otherwise.
func New(color bool) Renderer {
	if color {
		return NewStyled()
	}
	return Plain{}
}

var keyboardRows = []string{"qwertyuiop", "asdfghjkl", "zxcvbnm"}

// Styled renders tiles with terminal colours.
type Styled struct {
	styles map[Decoration]lipgloss.Style
	used   lipgloss.Style // absent letters on the keyboard
	unused lipgloss.Style
}

// NewStyled builds the default palette.
func NewStyled() *Styled {
	tile := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	return &Styled{
		styles: map[Decoration]lipgloss.Style{
			DecorGreen:  tile.Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#538d4e")),
			DecorYellow: tile.Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#b59f3b")),
			DecorNone:   tile.Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#3a3a3c")),
		},
		used:   lipgloss.NewStyle().Foreground(lipgloss.Color("#565758")),
		unused: lipgloss.NewStyle().Bold(true),
	}
}

// Tile implements Renderer.
func (s *Styled) Tile(r rune, d Decoration) string {
	st, ok := s.styles[d]
	if !ok {
		st = s.styles[DecorNone]
	}
	return st.Render(string(unicode.ToUpper(r)))
}

// Row implements Renderer.
func (s *Styled) Row(guess string, marks []game.Mark) string {
	return row(s, guess, marks, "")
}

// Keyboard implements Renderer.
func (s *Styled) Keyboard(kb map[rune]game.Mark) string {
	var b strings.Builder
	for i, line := range keyboardRows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Repeat(" ", i))
		for j, r := range line {
			if j > 0 {
				b.WriteByte(' ')
			}
			m, seen := kb[r]
			switch {
			case !seen:
				b.WriteString(s.unused.Render(string(unicode.ToUpper(r))))
			case m == game.MarkAbsent:
				b.WriteString(s.used.Render(string(unicode.ToUpper(r))))
			default:
				b.WriteString(s.Tile(r, Decorate(m)))
			}
		}
	}
	return b.String()
}

// Plain renders tiles without escape sequences.
type Plain struct{}

// Tile implements Renderer.
func (Plain) Tile(r rune, d Decoration) string {
	u := string(unicode.ToUpper(r))
	switch d {
	case DecorGreen:
		return "[" + u + "]"
	case DecorYellow:
		return "(" + u + ")"
	default:
		return " " + u + " "
	}
}

// Row implements Renderer.
func (p Plain) Row(guess string, marks []game.Mark) string {
	return row(p, guess, marks, " ")
}

// Keyboard implements Renderer. Absent letters are replaced with '.'.
func (p Plain) Keyboard(kb map[rune]game.Mark) string {
	var b strings.Builder
	for i, line := range keyboardRows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, r := range line {
			if j > 0 {
				b.WriteByte(' ')
			}
			m, seen := kb[r]
			switch {
			case !seen:
				b.WriteRune(unicode.ToUpper(r))
			case m == game.MarkAbsent:
				b.WriteByte('.')
			case m == game.MarkExact:
				b.WriteString("[" + string(unicode.ToUpper(r)) + "]")
			default:
				b.WriteString("(" + string(unicode.ToUpper(r)) + ")")
			}
		}
	}
	return b.String()
}

func row(r Renderer, guess string, marks []game.Mark, sep string) string {
	letters := []rune(guess)
	parts := make([]string, 0, len(letters))
	for i, l := range letters {
		d := DecorNone
		if i < len(marks) {
			d = Decorate(marks[i])
		}
		parts = append(parts, r.Tile(l, d))
	}
	return strings.Join(parts, sep)
}
