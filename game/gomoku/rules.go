package gomoku

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownRule is returned for rule names ParseRule does not know.
var ErrUnknownRule = errors.New("unknown rule")

// Rule names a forbidden-move restriction.
type Rule string

const (
	ThreeThree     Rule = "three_three"
	FourFour       Rule = "four_four"
	LongConnection Rule = "long_connection"
	NoRestriction  Rule = "no_restriction"
)

// ParseRule accepts snake_case, camelCase and dashed spellings.
func ParseRule(v string) (Rule, error) {
	key := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(v))
	switch key {
	case "threethree", "doublethree", "33":
		return ThreeThree, nil
	case "fourfour", "doublefour", "44":
		return FourFour, nil
	case "longconnection", "overline":
		return LongConnection, nil
	case "norestriction", "none", "freestyle":
		return NoRestriction, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRule, v)
}

// Rules is a set of restrictions applied to the constrained colour.
type Rules []Rule

// Has reports whether r contains rule.
func (r Rules) Has(rule Rule) bool {
	return slices.Contains(r, rule)
}

// Active reports whether any restriction applies.
func (r Rules) Active() bool {
	return len(r) > 0 && !r.Has(NoRestriction)
}

// Violation describes why a move is forbidden.
type Violation struct {
	Rule      Rule    `json:"rule"`
	Positions []Point `json:"positions"`
	Threes    []Three `json:"open_threes,omitempty"`
}

// RuleChecker applies Rules with a given open-three Detector.
type RuleChecker struct {
	Rules    Rules
	Detector Detector
}

// Check reports whether placing player at p breaks a rule. The board is
// not modified; p may be empty or already hold player's stone. Rules are
// tested in the order three-three, long connection, four-four.
func (c RuleChecker) Check(b *Board, p Point, player Stone) (Violation, bool) {
	if !c.Rules.Active() || player == Empty {
		return Violation{}, false
	}
	s, ok := b.At(p)
	if !ok || (s != Empty && s != player) {
		return Violation{}, false
	}
	after := b.With(p, player)

	if c.Rules.Has(ThreeThree) {
		if dt := c.Detector.CheckDoubleThree(&after, p.Row, p.Col, player); dt.Forbidden {
			return Violation{Rule: ThreeThree, Positions: dt.Positions, Threes: dt.Threes}, true
		}
	}
	if c.Rules.Has(LongConnection) {
		if lines := CheckOverline(&after, p.Row, p.Col, player); len(lines) > 0 {
			return Violation{Rule: LongConnection, Positions: dedupe(lines...)}, true
		}
	}
	if c.Rules.Has(FourFour) {
		if df := FindDoubleFours(&after, p.Row, p.Col, player); df.Double {
			return Violation{Rule: FourFour, Positions: df.Positions}, true
		}
	}
	return Violation{}, false
}

// ForbiddenCells returns every empty cell where player would break a rule.
func (c RuleChecker) ForbiddenCells(b *Board, player Stone) map[Point]Violation {
	cells := make(map[Point]Violation)
	if !c.Rules.Active() {
		return cells
	}
	for r := range Size {
		for col := range Size {
			p := Point{Row: r, Col: col}
			if b[r][col] != Empty {
				continue
			}
			if v, bad := c.Check(b, p, player); bad {
				cells[p] = v
			}
		}
	}
	return cells
}
