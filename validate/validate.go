// Package validate checks rule preset files before the server loads them.
// For each preset it checks:
//   - JSON or YAML structure and required fields
//   - Rule names, enforcement and colour fields
//   - Contradictions such as no_restriction mixed with other rules
//   - The computer opponent's rank and endpoint
//   - Playability: the empty board has no forbidden cells, and each enabled
//     rule rejects its reference position for every constrained colour
package validate

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aigallery/gallery/game/ai"
	"github.com/aigallery/gallery/game/engine"
	"github.com/aigallery/gallery/game/gomoku"
)

// Result captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type Result struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *Result) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) note(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// reference is a position where the move at Point breaks Rule.
type reference struct {
	Rule   gomoku.Rule
	Stones []gomoku.Point
	Point  gomoku.Point
}

var references = []reference{
	{
		Rule:   gomoku.ThreeThree,
		Stones: []gomoku.Point{{Row: 7, Col: 6}, {Row: 7, Col: 8}, {Row: 6, Col: 7}, {Row: 8, Col: 7}},
		Point:  gomoku.Point{Row: 7, Col: 7},
	},
	{
		Rule:   gomoku.FourFour,
		Stones: []gomoku.Point{{Row: 7, Col: 4}, {Row: 7, Col: 5}, {Row: 7, Col: 6}, {Row: 4, Col: 7}, {Row: 5, Col: 7}, {Row: 6, Col: 7}},
		Point:  gomoku.Point{Row: 7, Col: 7},
	},
	{
		Rule:   gomoku.LongConnection,
		Stones: []gomoku.Point{{Row: 7, Col: 2}, {Row: 7, Col: 3}, {Row: 7, Col: 4}, {Row: 7, Col: 6}, {Row: 7, Col: 7}},
		Point:  gomoku.Point{Row: 7, Col: 5},
	},
}

// File loads and validates a single preset file.
func File(path string) Result {
	result := Result{
		File:   filepath.Base(path),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := engine.DecodeGameConfig(data, filepath.Ext(path))
	if err != nil {
		result.fail("Invalid %s: %v", strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), ".")), err)
		return result
	}

	if err := engine.ValidateGameConfig(config); err != nil {
		result.fail("%v", err)
		return result
	}

	checkRules(&result, config)
	checkAI(&result, config)
	if result.Valid {
		checkPlayability(&result, config)
	}
	return result
}

func checkRules(result *Result, config *engine.GameConfig) {
	checker := config.RuleChecker()
	if checker.Rules.Has(gomoku.NoRestriction) && len(checker.Rules) > 1 {
		result.fail("Rules: no_restriction cannot be combined with other rules")
		return
	}

	seen := make(map[gomoku.Rule]bool)
	for _, r := range checker.Rules {
		if seen[r] {
			result.fail("Rules: %s listed twice", r)
		}
		seen[r] = true
	}

	if !checker.Rules.Active() {
		result.note("Rules: freestyle, nothing is forbidden")
		return
	}
	constrained := make([]string, 0, 2)
	for _, s := range config.Constrained() {
		constrained = append(constrained, s.Name())
	}
	result.note("Rules: %s for %s", strings.Join(config.Rules, ", "), strings.Join(constrained, " and "))
}

func checkAI(result *Result, config *engine.GameConfig) {
	if config.AI.Rank != "" {
		if _, err := ai.ParseRank(config.AI.Rank); err != nil {
			result.fail("AI: %v", err)
		}
	}
	if config.AI.Endpoint != "" {
		u, err := url.Parse(config.AI.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			result.fail("AI: endpoint must be an http(s) URL, got %q", config.AI.Endpoint)
		}
	}
	if config.AI.Color == "" {
		return
	}

	color, _ := gomoku.ParseStone(config.AI.Color)
	if color == config.First() {
		result.note("AI: computer plays %s and opens the game", color.Name())
	} else {
		result.note("AI: computer plays %s", color.Name())
	}
}

func checkPlayability(result *Result, config *engine.GameConfig) {
	checker := config.RuleChecker()
	var empty gomoku.Board

	for _, player := range config.Constrained() {
		if cells := checker.ForbiddenCells(&empty, player); len(cells) > 0 {
			result.fail("Playability: %d cells forbidden for %s on the empty board", len(cells), player.Name())
		}

		for _, ref := range references {
			if !checker.Rules.Active() || !checker.Rules.Has(ref.Rule) {
				continue
			}
			var board gomoku.Board
			for _, p := range ref.Stones {
				board.Set(p, player)
			}
			v, bad := checker.Check(&board, ref.Point, player)
			if !bad {
				result.fail("Playability: %s does not reject %s for %s", ref.Rule, ref.Point, player.Name())
				continue
			}
			if v.Rule != ref.Rule {
				result.fail("Playability: %s at %s reported as %s", ref.Rule, ref.Point, v.Rule)
			}
		}
	}

	if result.Valid && checker.Rules.Active() {
		result.note("Playability: reference positions rejected")
	}
}

// Dir validates every preset file in dir, sorted by name.
func Dir(dir string) ([]Result, error) {
	var files []string
	for _, ext := range engine.ConfigExtensions {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no preset files in %s", dir)
	}
	slices.Sort(files)

	results := make([]Result, 0, len(files))
	for _, f := range files {
		results = append(results, File(f))
	}
	return results, nil
}

// Report prints a concise report and returns whether every result is valid.
func Report(w io.Writer, results []Result) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(w, "  "+info)
			}
			continue
		}

		fmt.Fprintln(w, "❌ INVALID")
		allValid = false
		for _, err := range result.Errors {
			if !strings.HasPrefix(err, "✓") {
				fmt.Fprintln(w, "  ❌ "+err)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All presets are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some presets have errors")
	}
	return allValid
}
