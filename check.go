package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aigallery/gallery/game/engine"
	"github.com/aigallery/gallery/game/gomoku"
)

var (
	blackStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#101F38")).Background(lipgloss.Color("#d6dae0"))
	whiteStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f2f2f2")).Background(lipgloss.Color("#2a3850"))
	emptyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8a8f98"))
	forbiddenStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e53935"))
	focalStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3"))
	boxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#2a3850")).Padding(0, 1)
)

// checkReport is the forbidden-move analysis of a board file.
type checkReport struct {
	Preset    string
	Board     gomoku.Board
	Player    gomoku.Stone
	Focal     *gomoku.Point
	Analysis  *engine.Analysis
	Forbidden map[gomoku.Point]gomoku.Violation
}

// analyzeBoard analyses text for player under config. A board with an X
// marks a single cell to analyse; without one every empty cell is checked.
func analyzeBoard(text string, config *engine.GameConfig, player gomoku.Stone) (*checkReport, error) {
	if player == gomoku.Empty {
		return nil, fmt.Errorf("%w: player must be black or white", gomoku.ErrInvalidStone)
	}

	checker := config.RuleChecker()
	constrained := slices.Contains(config.Constrained(), player)
	report := &checkReport{
		Preset:    config.Name,
		Player:    player,
		Forbidden: make(map[gomoku.Point]gomoku.Violation),
	}

	if strings.ContainsAny(text, "Xx") {
		board, focal, err := gomoku.ParsePosition(text, player)
		if err != nil {
			return nil, err
		}
		board.Set(focal, gomoku.Empty)
		a := engine.AnalyzeMove(&board, focal, player, checker, constrained)
		report.Board = board
		report.Focal = &focal
		report.Analysis = &a
		if a.Violation != nil {
			report.Forbidden[focal] = *a.Violation
		}
		return report, nil
	}

	board, err := gomoku.ParseBoard(text)
	if err != nil {
		return nil, err
	}
	report.Board = board
	for row := range gomoku.Size {
		for col := range gomoku.Size {
			p := gomoku.Point{Row: row, Col: col}
			if s, _ := board.At(p); s != gomoku.Empty {
				continue
			}
			if a := engine.AnalyzeMove(&board, p, player, checker, constrained); a.Violation != nil {
				report.Forbidden[p] = *a.Violation
			}
		}
	}
	return report, nil
}

// renderBoard draws the board; forbidden cells show as x and the focal
// cell as ?.
func (r *checkReport) renderBoard() string {
	var b strings.Builder
	b.WriteString("   ")
	for col := range gomoku.Size {
		b.WriteString(fmt.Sprintf("%x ", col))
	}
	b.WriteByte('\n')

	for row := range gomoku.Size {
		fmt.Fprintf(&b, "%2d ", row)
		for col := range gomoku.Size {
			p := gomoku.Point{Row: row, Col: col}
			stone, _ := r.Board.At(p)
			var cell string
			switch {
			case stone == gomoku.Black:
				cell = blackStyle.Render("B")
			case stone == gomoku.White:
				cell = whiteStyle.Render("W")
			case r.Focal != nil && *r.Focal == p && r.Analysis != nil && r.Analysis.Violation != nil:
				cell = forbiddenStyle.Render("x")
			case r.Focal != nil && *r.Focal == p:
				cell = focalStyle.Render("?")
			case r.Focal == nil && hasViolation(r.Forbidden, p):
				cell = forbiddenStyle.Render("x")
			default:
				cell = emptyStyle.Render(".")
			}
			b.WriteString(cell)
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func hasViolation(cells map[gomoku.Point]gomoku.Violation, p gomoku.Point) bool {
	_, ok := cells[p]
	return ok
}

func formatPoints(points []gomoku.Point) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}

// Render returns the styled report.
func (r *checkReport) Render() string {
	var b strings.Builder
	fmt.Fprintln(&b, titleStyle.Render(fmt.Sprintf("%s: %s to move", r.Preset, r.Player.Name())))
	fmt.Fprintln(&b, r.renderBoard())

	if a := r.Analysis; a != nil {
		fmt.Fprintf(&b, "Cell %s\n", a.Point)
		if a.Win {
			fmt.Fprintln(&b, "  makes five in a row")
		}
		for _, t := range a.DoubleThree.Threes {
			fmt.Fprintf(&b, "  open three %s (%s %s): %s\n", t.Direction.Name(), t.Kind, t.Pattern, formatPoints(t.Positions))
		}
		if a.DoubleFour.Double {
			fmt.Fprintf(&b, "  double four: %s\n", formatPoints(a.DoubleFour.Positions))
		}
		for _, line := range a.Overlines {
			fmt.Fprintf(&b, "  overline: %s\n", formatPoints(line))
		}
		if a.Violation != nil {
			fmt.Fprintln(&b, forbiddenStyle.Render(fmt.Sprintf("FORBIDDEN: %s", a.Violation.Rule)))
		} else {
			fmt.Fprintln(&b, focalStyle.Render("ALLOWED"))
		}
		return b.String()
	}

	if len(r.Forbidden) == 0 {
		fmt.Fprintln(&b, focalStyle.Render("No forbidden cells"))
		return b.String()
	}
	points := make([]gomoku.Point, 0, len(r.Forbidden))
	for p := range r.Forbidden {
		points = append(points, p)
	}
	slices.SortFunc(points, func(a, b gomoku.Point) int {
		if a.Row != b.Row {
			return a.Row - b.Row
		}
		return a.Col - b.Col
	})
	fmt.Fprintln(&b, forbiddenStyle.Render(fmt.Sprintf("%d forbidden cells", len(points))))
	for _, p := range points {
		fmt.Fprintf(&b, "  %s %s\n", p, r.Forbidden[p].Rule)
	}
	return b.String()
}
