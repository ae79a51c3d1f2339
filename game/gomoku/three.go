package gomoku

// ThreeKind distinguishes contiguous threes from split ones.
type ThreeKind string

const (
	Continuous ThreeKind = "continuous"
	Jump       ThreeKind = "jump"
)

// Pattern names the template that matched.
type Pattern string

// template describes cells at offsets along a direction: '_' must be
// empty and 'P' must hold the player's stone.
type template struct {
	name    Pattern
	offsets []int
	cells   string
}

var continuousTemplates = []template{
	{name: "A", offsets: []int{-2, -1, 0, 1, 2}, cells: "_PPP_"},
	{name: "B", offsets: []int{-1, 0, 1, 2, 3}, cells: "_PPP_"},
	{name: "C", offsets: []int{-3, -2, -1, 0, 1}, cells: "_PPP_"},
}

var jumpTemplates = []template{
	{name: "J1", offsets: []int{-4, -3, -2, -1, 0, 1}, cells: "_PP_P_"},
	{name: "J2", offsets: []int{-2, -1, 0, 1, 2, 3}, cells: "_PP_P_"},
	{name: "J3", offsets: []int{-1, 0, 1, 2, 3, 4}, cells: "_PP_P_"},
	{name: "J4", offsets: []int{-1, 0, 1, 2, 3, 4}, cells: "_P_PP_"},
	{name: "J5", offsets: []int{-3, -2, -1, 0, 1, 2}, cells: "_P_PP_"},
	{name: "J6", offsets: []int{-4, -3, -2, -1, 0, 1}, cells: "_P_PP_"},
}

// match returns the spanned cells when t matches at origin.
func (t template) match(b *Board, origin Point, d Direction, player Stone) ([]Point, bool) {
	cells := make([]Point, 0, len(t.offsets))
	for i, off := range t.offsets {
		p := origin.Step(d, off)
		got, ok := b.At(p)
		if !ok {
			return nil, false
		}
		want := Empty
		if t.cells[i] == 'P' {
			want = player
		}
		if got != want {
			return nil, false
		}
		cells = append(cells, p)
	}
	return cells, true
}

// OpenThree is the result of testing one direction at a focal cell.
type OpenThree struct {
	Open      bool      `json:"is_open"`
	Kind      ThreeKind `json:"kind,omitempty"`
	Pattern   Pattern   `json:"pattern,omitempty"`
	Positions []Point   `json:"positions,omitempty"`
}

// matchOne succeeds only when exactly one template matches. Two or more
// simultaneous matches describe an ambiguous shape and are rejected.
func matchOne(b *Board, origin Point, d Direction, player Stone, kind ThreeKind, ts []template) OpenThree {
	if player == Empty {
		return OpenThree{}
	}
	var found OpenThree
	matches := 0
	for _, t := range ts {
		cells, ok := t.match(b, origin, d, player)
		if !ok {
			continue
		}
		matches++
		if matches > 1 {
			return OpenThree{}
		}
		found = OpenThree{Open: true, Kind: kind, Pattern: t.name, Positions: cells}
	}
	return found
}

// IsOpenThree tests the continuous templates A, B and C at (row, col)
// along dir. The focal cell must already hold player's stone.
func IsOpenThree(b *Board, row, col int, dir Direction, player Stone) OpenThree {
	return matchOne(b, Point{Row: row, Col: col}, dir, player, Continuous, continuousTemplates)
}

// IsJumpOpenThree tests the six split templates at (row, col) along dir.
func IsJumpOpenThree(b *Board, row, col int, dir Direction, player Stone) OpenThree {
	return matchOne(b, Point{Row: row, Col: col}, dir, player, Jump, jumpTemplates)
}

// Three is an open three found in one direction.
type Three struct {
	Kind      ThreeKind `json:"kind"`
	Pattern   Pattern   `json:"pattern"`
	Direction Direction `json:"direction"`
	Positions []Point   `json:"positions"`
}

// DoubleThree is the aggregate over all four directions.
type DoubleThree struct {
	Forbidden bool    `json:"is_forbidden"`
	Positions []Point `json:"forbidden_positions"`
	Threes    []Three `json:"open_threes"`
}

// Detector finds open threes. The zero value looks for continuous threes
// only; IncludeJump adds the split templates in directions without a
// continuous three.
type Detector struct {
	IncludeJump bool
}

// IsOpenThree tests one direction.
func (d Detector) IsOpenThree(b *Board, row, col int, dir Direction, player Stone) OpenThree {
	res := IsOpenThree(b, row, col, dir, player)
	if !res.Open && d.IncludeJump {
		res = IsJumpOpenThree(b, row, col, dir, player)
	}
	return res
}

// FindOpenThrees returns the open threes through (row, col) in direction
// order: horizontal, vertical, diagonal, anti-diagonal.
func (d Detector) FindOpenThrees(b *Board, row, col int, player Stone) []Three {
	threes := []Three{}
	for _, dir := range Directions {
		res := d.IsOpenThree(b, row, col, dir, player)
		if res.Open {
			threes = append(threes, Three{
				Kind:      res.Kind,
				Pattern:   res.Pattern,
				Direction: dir,
				Positions: res.Positions,
			})
		}
	}
	return threes
}

// CheckDoubleThree reports whether (row, col) forms two or more open
// threes. Positions is the deduplicated union of all their cells when the
// move is forbidden and empty otherwise.
func (d Detector) CheckDoubleThree(b *Board, row, col int, player Stone) DoubleThree {
	threes := d.FindOpenThrees(b, row, col, player)
	res := DoubleThree{
		Forbidden: len(threes) >= 2,
		Positions: []Point{},
		Threes:    threes,
	}
	if res.Forbidden {
		groups := make([][]Point, 0, len(threes))
		for _, t := range threes {
			groups = append(groups, t.Positions)
		}
		res.Positions = dedupe(groups...)
	}
	return res
}

// FindOpenThrees uses the continuous-only detector.
func FindOpenThrees(b *Board, row, col int, player Stone) []Three {
	return Detector{}.FindOpenThrees(b, row, col, player)
}

// CheckDoubleThree uses the continuous-only detector.
func CheckDoubleThree(b *Board, row, col int, player Stone) DoubleThree {
	return Detector{}.CheckDoubleThree(b, row, col, player)
}
