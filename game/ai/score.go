package ai

import "github.com/aigallery/gallery/game/gomoku"

// Pattern scores for a five-cell window.
const (
	scoreFive        = 100000
	scoreOpenFour    = 12000
	scoreClosedFour  = 6000
	scoreOpenThree   = 2500
	scoreClosedThree = 300
	scoreOpenTwo     = 80
	scoreClosedTwo   = 20
	scoreOther       = 2

	centerWeight = 10
)

func patternScore(count, empty, openEnds int) float64 {
	switch {
	case count >= 5:
		return scoreFive
	case count == 4 && empty == 1 && openEnds == 2:
		return scoreOpenFour
	case count == 4 && empty == 1 && openEnds == 1:
		return scoreClosedFour
	case count == 3 && empty == 2 && openEnds == 2:
		return scoreOpenThree
	case count == 3 && empty == 2 && openEnds >= 1:
		return scoreClosedThree
	case count == 2 && empty == 3 && openEnds == 2:
		return scoreOpenTwo
	case count == 2 && empty == 3 && openEnds >= 1:
		return scoreClosedTwo
	}
	return scoreOther
}

// evaluateDirection returns the best window score among the five-cell
// windows along d that contain p.
func evaluateDirection(b *gomoku.Board, p gomoku.Point, d gomoku.Direction, player gomoku.Stone) float64 {
	best := 0.0
	for offset := -4; offset <= 0; offset++ {
		count, empty := 0, 0
		valid := true
		for i := range 5 {
			s, ok := b.At(p.Step(d, offset+i))
			switch {
			case !ok:
				valid = false
			case s == player:
				count++
			case s == gomoku.Empty:
				empty++
			default:
				valid = false
			}
			if !valid {
				break
			}
		}
		if !valid || count == 0 {
			continue
		}
		openEnds := 0
		if s, ok := b.At(p.Step(d, offset-1)); ok && s == gomoku.Empty {
			openEnds++
		}
		if s, ok := b.At(p.Step(d, offset+5)); ok && s == gomoku.Empty {
			openEnds++
		}
		best = max(best, patternScore(count, empty, openEnds))
	}
	return best
}

// contribution sums evaluateDirection over the four directions.
func contribution(b *gomoku.Board, p gomoku.Point, player gomoku.Stone) float64 {
	total := 0.0
	for _, d := range gomoku.Directions {
		total += evaluateDirection(b, p, d, player)
	}
	return total
}

func centerBias(p gomoku.Point) float64 {
	return float64(centerWeight - (abs(gomoku.Center-p.Row) + abs(gomoku.Center-p.Col)))
}

// hasNeighbor reports whether any stone lies within two cells of p.
func hasNeighbor(b *gomoku.Board, p gomoku.Point) bool {
	for dr := -2; dr <= 2; dr++ {
		for dc := -2; dc <= 2; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if s, ok := b.At(gomoku.Point{Row: p.Row + dr, Col: p.Col + dc}); ok && s != gomoku.Empty {
				return true
			}
		}
	}
	return false
}

// candidates returns empty cells near existing stones in row-major order.
func candidates(b *gomoku.Board) []gomoku.Point {
	var out []gomoku.Point
	for r := range gomoku.Size {
		for c := range gomoku.Size {
			p := gomoku.Point{Row: r, Col: c}
			if b[r][c] == gomoku.Empty && hasNeighbor(b, p) {
				out = append(out, p)
			}
		}
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
