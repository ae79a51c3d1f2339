package gomoku

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func place(b *Board, s Stone, pts ...Point) {
	for _, p := range pts {
		b.Set(p, s)
	}
}

func row(r int, cols ...int) []Point {
	pts := make([]Point, 0, len(cols))
	for _, c := range cols {
		pts = append(pts, Point{Row: r, Col: c})
	}
	return pts
}

func col(c int, rows ...int) []Point {
	pts := make([]Point, 0, len(rows))
	for _, r := range rows {
		pts = append(pts, Point{Row: r, Col: c})
	}
	return pts
}

func TestIsOpenThreeContinuous(t *testing.T) {
	tests := []struct {
		name    string
		stones  []Point
		blocks  []Point
		focal   Point
		open    bool
		pattern Pattern
		span    []Point
	}{
		{
			name:    "focal in the middle",
			stones:  row(7, 6, 7, 8),
			focal:   Point{7, 7},
			open:    true,
			pattern: "A",
			span:    row(7, 5, 6, 7, 8, 9),
		},
		{
			name:    "focal first",
			stones:  row(7, 6, 7, 8),
			focal:   Point{7, 6},
			open:    true,
			pattern: "B",
			span:    row(7, 5, 6, 7, 8, 9),
		},
		{
			name:    "focal last",
			stones:  row(7, 6, 7, 8),
			focal:   Point{7, 8},
			open:    true,
			pattern: "C",
			span:    row(7, 5, 6, 7, 8, 9),
		},
		{
			name:   "blocked by opponent",
			stones: row(7, 6, 7, 8),
			blocks: row(7, 5),
			focal:  Point{7, 7},
		},
		{
			name:   "four is not a three",
			stones: row(7, 5, 6, 7, 8),
			focal:  Point{7, 6},
		},
		{
			name:   "left edge",
			stones: row(0, 0, 1, 2),
			focal:  Point{0, 1},
		},
		{
			name:   "focal on the edge",
			stones: row(3, 0, 1, 2),
			focal:  Point{3, 0},
		},
		{
			name:    "one cell from the edge",
			stones:  row(3, 1, 2, 3),
			focal:   Point{3, 2},
			open:    true,
			pattern: "A",
			span:    row(3, 0, 1, 2, 3, 4),
		},
		{
			name:   "right edge",
			stones: row(5, 12, 13, 14),
			focal:  Point{5, 13},
		},
		{
			name:   "two stones only",
			stones: row(7, 7, 8),
			focal:  Point{7, 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Board
			place(&b, Black, tt.stones...)
			place(&b, White, tt.blocks...)
			got := IsOpenThree(&b, tt.focal.Row, tt.focal.Col, Horizontal, Black)
			assert.Equal(t, tt.open, got.Open)
			if !tt.open {
				assert.Empty(t, got.Positions)
				return
			}
			assert.Equal(t, tt.pattern, got.Pattern)
			assert.Equal(t, Continuous, got.Kind)
			if diff := cmp.Diff(tt.span, got.Positions); diff != "" {
				t.Errorf("positions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIsOpenThreeAllDirections(t *testing.T) {
	for _, d := range Directions {
		t.Run(d.Name(), func(t *testing.T) {
			var b Board
			focal := Point{7, 7}
			place(&b, Black, focal.Step(d, -1), focal, focal.Step(d, 1))
			got := IsOpenThree(&b, 7, 7, d, Black)
			require.True(t, got.Open)
			assert.Equal(t, Pattern("A"), got.Pattern)
			assert.Equal(t, focal.Step(d, -2), got.Positions[0])
			assert.Equal(t, focal.Step(d, 2), got.Positions[4])

			assert.False(t, IsOpenThree(&b, 7, 7, d, White).Open)
		})
	}
}

func TestIsOpenThreeFromText(t *testing.T) {
	b, focal, err := ParsePosition(`
...............
...............
...............
...............
...............
...............
..XBB..........
`, Black)
	require.NoError(t, err)
	assert.Equal(t, Point{6, 2}, focal)

	got := IsOpenThree(&b, focal.Row, focal.Col, Horizontal, Black)
	require.True(t, got.Open)
	assert.Equal(t, Pattern("B"), got.Pattern)
	assert.Equal(t, row(6, 1, 2, 3, 4, 5), got.Positions)
}

func TestAmbiguousMatchIsRejected(t *testing.T) {
	ts := []template{
		{name: "X", offsets: []int{-1, 0, 1}, cells: "_P_"},
		{name: "Y", offsets: []int{0}, cells: "P"},
	}
	var b Board
	place(&b, Black, Point{7, 7})

	got := matchOne(&b, Point{7, 7}, Horizontal, Black, Continuous, ts)
	assert.False(t, got.Open)

	got = matchOne(&b, Point{7, 7}, Horizontal, Black, Continuous, ts[1:])
	assert.True(t, got.Open)
	assert.Equal(t, Pattern("Y"), got.Pattern)
}

func TestJumpThree(t *testing.T) {
	var b Board
	place(&b, Black, row(7, 4, 5, 7)...)

	got := IsJumpOpenThree(&b, 7, 7, Horizontal, Black)
	require.True(t, got.Open)
	assert.Equal(t, Jump, got.Kind)
	assert.Equal(t, Pattern("J1"), got.Pattern)
	assert.Equal(t, row(7, 3, 4, 5, 6, 7, 8), got.Positions)

	assert.False(t, IsOpenThree(&b, 7, 7, Horizontal, Black).Open)
	assert.True(t, Detector{IncludeJump: true}.IsOpenThree(&b, 7, 7, Horizontal, Black).Open)

	// _PP_P_PP_ matches J1 and J4 at once.
	place(&b, Black, row(7, 9, 10)...)
	assert.False(t, IsJumpOpenThree(&b, 7, 7, Horizontal, Black).Open)
}

func TestCheckDoubleThree(t *testing.T) {
	var b Board
	place(&b, Black, row(7, 6, 7, 8)...)
	place(&b, Black, col(7, 6, 8)...)

	got := CheckDoubleThree(&b, 7, 7, Black)
	assert.True(t, got.Forbidden)
	require.Len(t, got.Threes, 2)
	assert.Equal(t, Horizontal, got.Threes[0].Direction)
	assert.Equal(t, Vertical, got.Threes[1].Direction)

	want := []Point{
		{7, 5}, {7, 6}, {7, 7}, {7, 8}, {7, 9},
		{5, 7}, {6, 7}, {8, 7}, {9, 7},
	}
	if diff := cmp.Diff(want, got.Positions); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckDoubleThreeSingle(t *testing.T) {
	var b Board
	place(&b, Black, row(7, 6, 7, 8)...)
	place(&b, Black, Point{6, 7})

	got := CheckDoubleThree(&b, 7, 7, Black)
	assert.False(t, got.Forbidden)
	assert.Len(t, got.Threes, 1)
	assert.Equal(t, []Point{}, got.Positions)
}

func TestCheckDoubleThreeDiagonals(t *testing.T) {
	var b Board
	focal := Point{7, 7}
	place(&b, Black, focal)
	place(&b, Black, focal.Step(Diagonal, -1), focal.Step(Diagonal, 1))
	place(&b, Black, focal.Step(AntiDiagonal, 1), focal.Step(AntiDiagonal, 2))

	got := CheckDoubleThree(&b, 7, 7, Black)
	require.True(t, got.Forbidden)
	assert.Equal(t, Pattern("A"), got.Threes[0].Pattern)
	assert.Equal(t, Pattern("B"), got.Threes[1].Pattern)
	assert.Len(t, got.Positions, 9)
}

func TestDetectorWithJumpThrees(t *testing.T) {
	var b Board
	place(&b, Black, row(7, 4, 5, 7)...)
	place(&b, Black, col(7, 6, 8)...)

	assert.False(t, CheckDoubleThree(&b, 7, 7, Black).Forbidden)

	got := Detector{IncludeJump: true}.CheckDoubleThree(&b, 7, 7, Black)
	assert.True(t, got.Forbidden)
	require.Len(t, got.Threes, 2)
	assert.Equal(t, Jump, got.Threes[0].Kind)
	assert.Equal(t, Continuous, got.Threes[1].Kind)
}

func TestEmptyPlayerNeverMatches(t *testing.T) {
	var b Board
	assert.False(t, IsOpenThree(&b, 7, 7, Horizontal, Empty).Open)
	assert.Empty(t, FindOpenThrees(&b, 7, 7, Empty))
}
