package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aigallery/gallery/game/gomoku"
)

// capitalize upper-cases the first ASCII letter of s
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParsePoint reads "row,col" (zero-based) or board notation such as "h8",
// where the letter a-o is the column and the number 1-15 the row.
func ParsePoint(s string) (gomoku.Point, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if row, col, ok := strings.Cut(s, ","); ok {
		r, err1 := strconv.Atoi(strings.TrimSpace(row))
		c, err2 := strconv.Atoi(strings.TrimSpace(col))
		if err1 != nil || err2 != nil {
			return gomoku.Point{}, fmt.Errorf("invalid point %q", s)
		}
		return gomoku.Point{Row: r, Col: c}, nil
	}
	if len(s) < 2 || s[0] < 'a' || s[0] >= 'a'+gomoku.Size {
		return gomoku.Point{}, fmt.Errorf("invalid point %q", s)
	}
	r, err := strconv.Atoi(s[1:])
	if err != nil || r < 1 || r > gomoku.Size {
		return gomoku.Point{}, fmt.Errorf("invalid point %q", s)
	}
	return gomoku.Point{Row: r - 1, Col: int(s[0] - 'a')}, nil
}

// Notation formats p in board notation, the inverse of ParsePoint.
func Notation(p gomoku.Point) string {
	if !p.InBounds() {
		return p.String()
	}
	return fmt.Sprintf("%c%d", 'a'+p.Col, p.Row+1)
}

// CountStones returns how many stones each colour has on the board
func CountStones(state *GameState) (black, white int) {
	return state.Board.Count(gomoku.Black), state.Board.Count(gomoku.White)
}
