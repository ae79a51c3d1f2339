package gomoku

// CountDirection counts consecutive stones of player starting one step
// from p along d.
func CountDirection(b *Board, p Point, d Direction, player Stone) int {
	n := 0
	for q := p.Step(d, 1); ; q = q.Step(d, 1) {
		s, ok := b.At(q)
		if !ok || s != player {
			return n
		}
		n++
	}
}

// ExactFive reports whether a stone of player at p makes a line of
// exactly five. Such a move wins even when it also breaks a rule.
func ExactFive(b *Board, p Point, player Stone) bool {
	if player == Empty {
		return false
	}
	for _, d := range Directions {
		if 1+CountDirection(b, p, d, player)+CountDirection(b, p, d.Reverse(), player) == 5 {
			return true
		}
	}
	return false
}

// CheckWin reports whether the stone at (row, col) completes five or more
// in a row for player.
func CheckWin(b *Board, row, col int, player Stone) bool {
	return len(WinningLine(b, row, col, player)) > 0
}

// WinningLine returns the cells of the first line of five or more through
// (row, col), ordered along the direction, or nil.
func WinningLine(b *Board, row, col int, player Stone) []Point {
	if player == Empty {
		return nil
	}
	p := Point{Row: row, Col: col}
	for _, d := range Directions {
		back := CountDirection(b, p, d.Reverse(), player)
		fwd := CountDirection(b, p, d, player)
		if back+fwd+1 >= 5 {
			line := make([]Point, 0, back+fwd+1)
			for i := -back; i <= fwd; i++ {
				line = append(line, p.Step(d, i))
			}
			return line
		}
	}
	return nil
}

// CheckOverline returns every line through (row, col) longer than five.
func CheckOverline(b *Board, row, col int, player Stone) [][]Point {
	lines := [][]Point{}
	if player == Empty {
		return lines
	}
	p := Point{Row: row, Col: col}
	for _, d := range Directions {
		back := min(CountDirection(b, p, d.Reverse(), player), 5)
		fwd := min(CountDirection(b, p, d, player), 5)
		if back+fwd+1 > 5 {
			line := make([]Point, 0, back+fwd+1)
			for i := -back; i <= fwd; i++ {
				line = append(line, p.Step(d, i))
			}
			lines = append(lines, line)
		}
	}
	return lines
}

// CheckLiveFour returns the straight fours through (row, col) with an
// empty cell at both ends.
func CheckLiveFour(b *Board, row, col int, player Stone) [][]Point {
	fours := [][]Point{}
	if player == Empty {
		return fours
	}
	p := Point{Row: row, Col: col}
	for _, d := range Directions {
		line := []Point{p}
		openEnds := 0
		for _, dir := range []Direction{d.Reverse(), d} {
			for i := 1; i <= 4; i++ {
				q := p.Step(dir, i)
				s, ok := b.At(q)
				if !ok {
					break
				}
				if s == player {
					if dir == d {
						line = append(line, q)
					} else {
						line = append([]Point{q}, line...)
					}
					continue
				}
				if s == Empty {
					openEnds++
				}
				break
			}
		}
		if len(line) == 4 && openEnds == 2 {
			fours = append(fours, line)
		}
	}
	return fours
}

// CheckRushFour returns fours through (row, col) that have exactly one
// completing cell: a straight four blocked on one side, or a four with a
// single gap. Each result lists the player's stones only.
func CheckRushFour(b *Board, row, col int, player Stone) [][]Point {
	fours := [][]Point{}
	if player == Empty {
		return fours
	}
	p := Point{Row: row, Col: col}
	for _, d := range Directions {
		stones := []Point{p}
		var gaps [2]int
		var blocked [2]bool
		for side, dir := range []Direction{d.Reverse(), d} {
			for i := 1; i <= 4; i++ {
				q := p.Step(dir, i)
				s, ok := b.At(q)
				if !ok || s == player.Opponent() {
					blocked[side] = true
					break
				}
				if s == Empty {
					if gaps[side] > 0 {
						break
					}
					gaps[side]++
					continue
				}
				stones = append(stones, q)
			}
		}
		if len(stones) != 4 || gaps[0]+gaps[1] != 1 {
			continue
		}
		if (gaps[0] == 1 && blocked[1]) || (gaps[1] == 1 && blocked[0]) {
			fours = append(fours, stones)
		}
	}
	return fours
}

// DoubleFour aggregates the fours through a cell.
type DoubleFour struct {
	Double    bool      `json:"is_double_four"`
	LiveFours [][]Point `json:"live_fours"`
	RushFours [][]Point `json:"rush_fours"`
	Positions []Point   `json:"forbidden_positions"`
}

// FindDoubleFours reports whether (row, col) creates two or more fours.
func FindDoubleFours(b *Board, row, col int, player Stone) DoubleFour {
	res := DoubleFour{
		LiveFours: CheckLiveFour(b, row, col, player),
		RushFours: CheckRushFour(b, row, col, player),
		Positions: []Point{},
	}
	all := append(append([][]Point{}, res.LiveFours...), res.RushFours...)
	res.Double = len(all) >= 2
	if res.Double {
		res.Positions = dedupe(all...)
	}
	return res
}
