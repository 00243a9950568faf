// Package tui is the full-screen terminal front end built on tcell.
//
// Layout (top to bottom): title, board of Rows×Cols tiles, status line,
// keyboard summary. Tiles are three cells wide; their style comes from the
// render decorations, so the board and the line-mode renderer agree on colour.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/robalobadob/eldrow/internal/game"
	"github.com/robalobadob/eldrow/internal/render"
)

const (
	boardTop  = 2
	tileWidth = 4 // three cells + one gap
)

var (
	styleTitle  = tcell.StyleDefault.Bold(true)
	styleEmpty  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleInput  = tcell.StyleDefault.Bold(true).Reverse(true)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleUsed   = tcell.StyleDefault.Foreground(tcell.ColorDimGray)
)

// CellStyle maps a decoration to a tile style.
func CellStyle(d render.Decoration) tcell.Style {
	base := tcell.StyleDefault.Bold(true).Foreground(tcell.ColorWhite)
	switch d {
	case render.DecorGreen:
		return base.Background(tcell.NewRGBColor(0x53, 0x8d, 0x4e))
	case render.DecorYellow:
		return base.Background(tcell.NewRGBColor(0xb5, 0x9f, 0x3b))
	default:
		return base.Background(tcell.NewRGBColor(0x3a, 0x3a, 0x3c))
	}
}

// canvas is the drawing surface subset of tcell.Screen the UI needs.
type canvas interface {
	SetContent(x, y int, mainc rune, combc []rune, style tcell.Style)
	Clear()
	Show()
}

// UI holds the interactive state on top of a game.
type UI struct {
	g      *game.Game
	input  []rune
	status string
}

// New wraps g.
func New(g *game.Game) *UI {
	return &UI{g: g}
}

// Run polls screen events until the player quits or presses a key after the
// game ends. The caller owns screen initialisation and Fini.
func (u *UI) Run(screen tcell.Screen) game.State {
	u.Draw(screen)
	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return u.g.State()
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if u.Handle(ev.Key(), ev.Rune()) {
				return u.g.State()
			}
		}
		u.Draw(screen)
	}
}

// Handle applies one key press. It reports true when the UI should exit.
func (u *UI) Handle(key tcell.Key, r rune) bool {
	if u.g.Finished {
		return true
	}
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(u.input) > 0 {
			u.input = u.input[:len(u.input)-1]
		}
		u.status = ""
	case tcell.KeyEnter:
		u.submit()
	case tcell.KeyRune:
		if unicode.IsLetter(r) && len(u.input) < u.g.Cols {
			u.input = append(u.input, unicode.ToLower(r))
			u.status = ""
		}
	}
	return false
}

func (u *UI) submit() {
	_, state, err := u.g.ApplyGuess(string(u.input))
	if err != nil {
		var le *game.LengthError
		switch {
		case errors.As(err, &le):
			u.status = fmt.Sprintf("Need %d letters", le.Want)
		case errors.Is(err, game.ErrNotInWordList):
			u.status = "Not in word list"
		default:
			u.status = err.Error()
		}
		return
	}
	u.input = u.input[:0]
	switch state {
	case game.StateWon:
		u.status = fmt.Sprintf("Solved in %d/%d! Press any key.", len(u.g.Turns), u.g.Rows)
	case game.StateLost:
		u.status = fmt.Sprintf("The word was %s. Press any key.", strings.ToUpper(u.g.Answer))
	}
}

// Status returns the current status line.
func (u *UI) Status() string { return u.status }

// Draw renders the whole screen.
func (u *UI) Draw(c canvas) {
	c.Clear()
	drawText(c, 0, 0, "ELDROW", styleTitle)

	for row := 0; row < u.g.Rows; row++ {
		y := boardTop + row
		switch {
		case row < len(u.g.Turns):
			t := u.g.Turns[row]
			for i, r := range []rune(t.Guess) {
				drawTile(c, i*tileWidth, y, r, CellStyle(render.Decorate(t.Marks[i])))
			}
		case row == len(u.g.Turns) && !u.g.Finished:
			for i := 0; i < u.g.Cols; i++ {
				if i < len(u.input) {
					drawTile(c, i*tileWidth, y, u.input[i], styleInput)
				} else {
					drawTile(c, i*tileWidth, y, '_', styleEmpty)
				}
			}
		default:
			for i := 0; i < u.g.Cols; i++ {
				drawTile(c, i*tileWidth, y, '·', styleEmpty)
			}
		}
	}

	statusY := boardTop + u.g.Rows + 1
	drawText(c, 0, statusY, u.status, styleStatus)
	u.drawKeyboard(c, statusY+2)
	c.Show()
}

func (u *UI) drawKeyboard(c canvas, top int) {
	kb := game.Keyboard(u.g.Turns)
	for i, line := range []string{"qwertyuiop", "asdfghjkl", "zxcvbnm"} {
		x := i
		for _, r := range line {
			st := tcell.StyleDefault
			if m, ok := kb[r]; ok {
				if m == game.MarkAbsent {
					st = styleUsed
				} else {
					st = CellStyle(render.Decorate(m))
				}
			}
			c.SetContent(x, top+i, unicode.ToUpper(r), nil, st)
			x += 2
		}
	}
}

func drawTile(c canvas, x, y int, r rune, st tcell.Style) {
	c.SetContent(x, y, ' ', nil, st)
	c.SetContent(x+1, y, unicode.ToUpper(r), nil, st)
	c.SetContent(x+2, y, ' ', nil, st)
}

func drawText(c canvas, x, y int, s string, st tcell.Style) {
	for _, r := range s {
		c.SetContent(x, y, r, nil, st)
		x++
	}
}
