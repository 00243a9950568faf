package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/robalobadob/eldrow/internal/game"
)

func TestDecorate_FixedTokens(t *testing.T) {
	want := map[game.Mark]Decoration{
		game.MarkExact:   DecorGreen,
		game.MarkPresent: DecorYellow,
		game.MarkAbsent:  DecorNone,
	}
	order := []game.Mark{
		game.MarkAbsent, game.MarkExact, game.MarkPresent,
		game.MarkPresent, game.MarkAbsent, game.MarkExact,
		game.MarkExact, game.MarkPresent, game.MarkAbsent,
	}
	for _, m := range order {
		assert.Equal(t, want[m], Decorate(m), "mark %s", m)
	}
}

func TestDecorate_UnknownIsNeutral(t *testing.T) {
	assert.Equal(t, DecorNone, Decorate(game.Mark("bogus")))
}

func TestDecorations(t *testing.T) {
	marks, err := game.Evaluate("crane", "eerie")
	assert.NoError(t, err)
	assert.Equal(t,
		[]Decoration{DecorNone, DecorNone, DecorYellow, DecorNone, DecorGreen},
		Decorations(marks))
}

func TestPlain_Row(t *testing.T) {
	marks := []game.Mark{game.MarkPresent, game.MarkExact, game.MarkExact, game.MarkExact, game.MarkAbsent}
	got := Plain{}.Row("teser", marks)
	assert.Equal(t, "(T) [E] [S] [E]  R ", got)
}

func TestPlain_Keyboard(t *testing.T) {
	kb := map[rune]game.Mark{'q': game.MarkExact, 'w': game.MarkPresent, 'e': game.MarkAbsent}
	got := Plain{}.Keyboard(kb)
	lines := strings.Split(got, "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "[Q] (W) . R"), lines[0])
	assert.Equal(t, "Z X C V B N M", lines[2])
}

func TestStyled_ContainsLetters(t *testing.T) {
	s := NewStyled()
	out := s.Row("crane", []game.Mark{game.MarkExact, game.MarkAbsent, game.MarkPresent, game.MarkAbsent, game.MarkAbsent})
	for _, r := range "CRANE" {
		assert.Contains(t, out, string(r))
	}
	kb := s.Keyboard(map[rune]game.Mark{'c': game.MarkExact})
	assert.Contains(t, kb, "C")
	assert.Equal(t, 3, strings.Count(kb, "\n")+1)
}

func TestNew(t *testing.T) {
	assert.IsType(t, Plain{}, New(false))
	assert.IsType(t, &Styled{}, New(true))
}
