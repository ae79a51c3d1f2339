package gomoku

import (
	"errors"
	"fmt"
	"strings"
)

// Size is the side length of the board.
const Size = 15

// Center is the middle row and column.
const Center = Size / 2

// ErrInvalidStone is returned when a stone name cannot be parsed.
var ErrInvalidStone = errors.New("invalid stone")

// Stone is the content of a board cell.
type Stone uint8

const (
	Empty Stone = iota
	Black
	White
)

// Opponent returns the other colour; Empty has no opponent.
func (s Stone) Opponent() Stone {
	switch s {
	case Black:
		return White
	case White:
		return Black
	}
	return Empty
}

// Symbol returns the single character used in text boards.
func (s Stone) Symbol() byte {
	switch s {
	case Black:
		return 'B'
	case White:
		return 'W'
	}
	return '.'
}

// Name returns "black", "white" or "empty".
func (s Stone) Name() string {
	switch s {
	case Black:
		return "black"
	case White:
		return "white"
	}
	return "empty"
}

func (s Stone) String() string {
	return s.Name()
}

// MarshalText encodes a stone as "", "B" or "W".
func (s Stone) MarshalText() ([]byte, error) {
	if s == Empty {
		return []byte{}, nil
	}
	return []byte{s.Symbol()}, nil
}

// UnmarshalText accepts the forms understood by ParseStone.
func (s *Stone) UnmarshalText(text []byte) error {
	v, err := ParseStone(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStone parses "", ".", "B", "W", "black" or "white" (any case).
func ParseStone(v string) (Stone, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", ".", "empty":
		return Empty, nil
	case "b", "black":
		return Black, nil
	case "w", "white":
		return White, nil
	}
	return Empty, fmt.Errorf("%w: %q", ErrInvalidStone, v)
}

// Point is a board coordinate.
type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InBounds reports whether p is on the board.
func (p Point) InBounds() bool {
	return p.Row >= 0 && p.Row < Size && p.Col >= 0 && p.Col < Size
}

// Step returns the point n cells away from p along d.
func (p Point) Step(d Direction, n int) Point {
	return Point{Row: p.Row + n*d.DR, Col: p.Col + n*d.DC}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Direction is a unit step along a line.
type Direction struct {
	DR int `json:"dr"`
	DC int `json:"dc"`
}

var (
	Horizontal   = Direction{DR: 0, DC: 1}
	Vertical     = Direction{DR: 1, DC: 0}
	Diagonal     = Direction{DR: 1, DC: 1}
	AntiDiagonal = Direction{DR: -1, DC: 1}
)

// Directions lists the four canonical line directions.
var Directions = [4]Direction{Horizontal, Vertical, Diagonal, AntiDiagonal}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	return Direction{DR: -d.DR, DC: -d.DC}
}

// Name returns a readable label for the canonical directions.
func (d Direction) Name() string {
	switch d {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case Diagonal:
		return "diagonal"
	case AntiDiagonal:
		return "anti-diagonal"
	}
	return fmt.Sprintf("(%d,%d)", d.DR, d.DC)
}

// Board is a 15x15 grid. It is a value: assigning a Board copies it.
type Board [Size][Size]Stone

// At returns the stone at p, or Empty and false when p is off the board.
func (b *Board) At(p Point) (Stone, bool) {
	if !p.InBounds() {
		return Empty, false
	}
	return b[p.Row][p.Col], true
}

// Set places s at p. It does nothing when p is off the board.
func (b *Board) Set(p Point, s Stone) {
	if p.InBounds() {
		b[p.Row][p.Col] = s
	}
}

// With returns a copy of b with s placed at p.
func (b Board) With(p Point, s Stone) Board {
	b.Set(p, s)
	return b
}

// Count returns the number of stones of colour s.
func (b *Board) Count(s Stone) int {
	n := 0
	for r := range Size {
		for c := range Size {
			if b[r][c] == s {
				n++
			}
		}
	}
	return n
}

// IsEmpty reports whether no stone has been placed.
func (b *Board) IsEmpty() bool {
	return b.Count(Empty) == Size*Size
}

// Full reports whether every cell holds a stone.
func (b *Board) Full() bool {
	return b.Count(Empty) == 0
}

// String renders the board one row per line using '.', 'B' and 'W'.
func (b *Board) String() string {
	var sb strings.Builder
	for r := range Size {
		for c := range Size {
			sb.WriteByte(b[r][c].Symbol())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ParseBoard reads a text board: one line per row, '.', '_' or '+' for
// empty cells, 'B' and 'W' for stones. Whitespace inside a line is ignored
// and missing rows or columns are empty.
func ParseBoard(text string) (Board, error) {
	b, _, err := parse(text, Empty)
	return b, err
}

// ParsePosition reads a text board in which a single 'X' marks the focal
// cell. The focal cell is filled with player.
func ParsePosition(text string, player Stone) (Board, Point, error) {
	b, focal, err := parse(text, player)
	if err != nil {
		return b, Point{}, err
	}
	if focal == nil {
		return b, Point{}, errors.New("parse board: no focal cell marked with X")
	}
	return b, *focal, nil
}

func parse(text string, player Stone) (Board, *Point, error) {
	var b Board
	var focal *Point
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > Size {
		return b, nil, fmt.Errorf("parse board: %d rows, at most %d allowed", len(lines), Size)
	}
	for r, line := range lines {
		c := 0
		for _, ch := range line {
			if ch == ' ' || ch == '\t' || ch == '\r' {
				continue
			}
			if c >= Size {
				return b, nil, fmt.Errorf("parse board: row %d has more than %d cells", r+1, Size)
			}
			switch ch {
			case '.', '_', '+':
			case 'B', 'b':
				b[r][c] = Black
			case 'W', 'w':
				b[r][c] = White
			case 'X', 'x':
				if player == Empty || focal != nil {
					return b, nil, fmt.Errorf("parse board: unexpected X at row %d, col %d", r+1, c+1)
				}
				b[r][c] = player
				focal = &Point{Row: r, Col: c}
			default:
				return b, nil, fmt.Errorf("parse board: invalid character '%c' at row %d, col %d", ch, r+1, c+1)
			}
			c++
		}
	}
	return b, focal, nil
}

// dedupe returns the points in first-seen order without repeats.
func dedupe(groups ...[]Point) []Point {
	seen := make(map[Point]bool)
	out := []Point{}
	for _, g := range groups {
		for _, p := range g {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}
