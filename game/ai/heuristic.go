package ai

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/aigallery/gallery/game/gomoku"
)

// Rank selects a strength preset.
type Rank string

const (
	Novice Rank = "novice"
	Expert Rank = "expert"
	Master Rank = "master"
)

// Weights tune the heuristic. Randomness in [0, 1] widens the pool of top
// moves picked from; Counter penalises moves that leave a strong reply.
type Weights struct {
	Attack     float64 `json:"attack" yaml:"attack"`
	Defense    float64 `json:"defense" yaml:"defense"`
	Randomness float64 `json:"randomness" yaml:"randomness"`
	Counter    float64 `json:"counter" yaml:"counter"`
}

// Presets holds the weights of each rank.
var Presets = map[Rank]Weights{
	Novice: {Attack: 0.65, Defense: 0.45, Randomness: 1, Counter: 0},
	Expert: {Attack: 1.1, Defense: 1, Randomness: 0.25, Counter: 0.35},
	Master: {Attack: 1.4, Defense: 1.25, Randomness: 0, Counter: 0.75},
}

// ParseRank returns the rank for name, defaulting to Expert when empty.
func ParseRank(name string) (Rank, error) {
	r := Rank(strings.ToLower(strings.TrimSpace(name)))
	if r == "" {
		return Expert, nil
	}
	if _, ok := Presets[r]; !ok {
		return "", fmt.Errorf("unknown rank %q", name)
	}
	return r, nil
}

// Heuristic scores every candidate cell and picks among the best ones.
type Heuristic struct {
	weights     Weights
	checker     gomoku.RuleChecker
	constrained []gomoku.Stone

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Heuristic.
type Option func(*Heuristic)

// WithRules makes the heuristic avoid cells forbidden to the constrained
// colours.
func WithRules(checker gomoku.RuleChecker, constrained ...gomoku.Stone) Option {
	return func(h *Heuristic) {
		h.checker = checker
		h.constrained = constrained
	}
}

// WithWeights overrides the rank preset.
func WithWeights(w Weights) Option {
	return func(h *Heuristic) { h.weights = w }
}

// WithRand sets the random source used to pick among top moves.
func WithRand(r *rand.Rand) Option {
	return func(h *Heuristic) { h.rng = r }
}

// NewHeuristic returns a heuristic suggester using the preset of rank.
// Unknown ranks use the Expert preset.
func NewHeuristic(rank Rank, opts ...Option) *Heuristic {
	w, ok := Presets[rank]
	if !ok {
		w = Presets[Expert]
	}
	h := &Heuristic{weights: w}
	for _, opt := range opts {
		opt(h)
	}
	if h.rng == nil {
		h.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return h
}

type scored struct {
	p     gomoku.Point
	score float64
}

// Suggest implements Suggester. A winning cell is returned first, then a
// cell that blocks an immediate opponent win, then a pick among the best
// scored cells.
func (h *Heuristic) Suggest(ctx context.Context, r Request) (Suggestion, error) {
	if err := r.Validate(); err != nil {
		return Suggestion{}, err
	}
	b := r.Board
	me, opp := r.ToMove, r.ToMove.Opponent()
	center := gomoku.Point{Row: gomoku.Center, Col: gomoku.Center}

	if b.IsEmpty() {
		return h.suggestion(center, 0), nil
	}
	cands := candidates(&b)
	if len(cands) == 0 {
		return Suggestion{}, ErrNoMove
	}

	for _, p := range cands {
		if h.forbidden(&b, p, me) {
			continue
		}
		if h.wins(&b, p, me) {
			return h.suggestion(p, 1), nil
		}
	}
	for _, p := range cands {
		if h.wins(&b, p, opp) && !h.forbidden(&b, p, me) {
			return h.suggestion(p, 0.9), nil
		}
	}

	var moves []scored
	for _, p := range cands {
		if err := ctx.Err(); err != nil {
			return Suggestion{}, err
		}
		if h.forbidden(&b, p, me) {
			continue
		}
		total := h.weights.Attack*h.value(&b, p, me) +
			h.weights.Defense*h.value(&b, p, opp) +
			centerBias(p)
		if h.weights.Counter > 0 {
			b.Set(p, me)
			total -= h.weights.Counter * h.bestReply(&b, opp)
			b.Set(p, gomoku.Empty)
		}
		moves = append(moves, scored{p: p, score: total})
	}
	if len(moves) == 0 {
		return h.suggestion(cands[0], 0), nil
	}

	slices.SortStableFunc(moves, func(x, y scored) int {
		return cmp.Compare(y.score, x.score)
	})
	window := int(math.Round(1 + clamp(h.weights.Randomness, 0, 1)*5))
	window = max(1, min(len(moves), window))
	choice := moves[h.intn(window)]
	return h.suggestion(choice.p, clamp(choice.score/scoreFive, 0, 1)), nil
}

func (h *Heuristic) suggestion(p gomoku.Point, confidence float64) Suggestion {
	return Suggestion{Move: p, Confidence: confidence, Source: "heuristic"}
}

// value scores the lines player would own by playing p.
func (h *Heuristic) value(b *gomoku.Board, p gomoku.Point, player gomoku.Stone) float64 {
	b.Set(p, player)
	defer b.Set(p, gomoku.Empty)
	return contribution(b, p, player)
}

func (h *Heuristic) wins(b *gomoku.Board, p gomoku.Point, player gomoku.Stone) bool {
	b.Set(p, player)
	defer b.Set(p, gomoku.Empty)
	return gomoku.CheckWin(b, p.Row, p.Col, player)
}

// bestReply returns the score of the strongest answer by player.
func (h *Heuristic) bestReply(b *gomoku.Board, player gomoku.Stone) float64 {
	best := math.Inf(-1)
	for _, p := range candidates(b) {
		if h.forbidden(b, p, player) {
			continue
		}
		if h.wins(b, p, player) {
			return scoreFive
		}
		s := 1.1*h.value(b, p, player) + 0.9*h.value(b, p, player.Opponent()) + centerBias(p)
		best = max(best, s)
	}
	if math.IsInf(best, -1) {
		return 0
	}
	return best
}

// forbidden reports whether p breaks a rule for player. A move making
// exactly five is never forbidden.
func (h *Heuristic) forbidden(b *gomoku.Board, p gomoku.Point, player gomoku.Stone) bool {
	if !slices.Contains(h.constrained, player) || gomoku.ExactFive(b, p, player) {
		return false
	}
	_, bad := h.checker.Check(b, p, player)
	return bad
}

func (h *Heuristic) intn(n int) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rng.IntN(n)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
