// Package ai suggests Gomoku moves.
//
// Suggester is the common contract. Heuristic scores candidate cells with
// pattern weights and needs no external resources. Remote asks an
// inference sidecar serving the policy/value network. Fallback chains them
// so a missing model degrades to the heuristic.
package ai

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aigallery/gallery/game/gomoku"
)

var (
	// ErrModelUnavailable is returned when no inference model can be reached.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrNoMove is returned when the board has no playable cell.
	ErrNoMove = errors.New("no playable move")
	// ErrInvalidRequest is returned for requests without a side to move.
	ErrInvalidRequest = errors.New("invalid suggestion request")
)

// Request is the position to analyse.
type Request struct {
	Board    gomoku.Board
	LastMove *gomoku.Point
	ToMove   gomoku.Stone
}

// Validate checks the side to move.
func (r Request) Validate() error {
	if r.ToMove == gomoku.Empty {
		return fmt.Errorf("%w: side to move is empty", ErrInvalidRequest)
	}
	return nil
}

// Suggestion is a proposed move. Confidence is in [0, 1] for the heuristic
// and the raw value head output for the model.
type Suggestion struct {
	Move       gomoku.Point `json:"move"`
	Confidence float64      `json:"confidence"`
	Source     string       `json:"source"`
}

// Suggester proposes the next move for r.ToMove.
type Suggester interface {
	Suggest(ctx context.Context, r Request) (Suggestion, error)
}

// Fallback asks Primary first and Secondary when the model is unavailable.
type Fallback struct {
	Primary   Suggester
	Secondary Suggester
	Logger    *zap.Logger
}

// Suggest implements Suggester.
func (f Fallback) Suggest(ctx context.Context, r Request) (Suggestion, error) {
	if f.Primary != nil {
		s, err := f.Primary.Suggest(ctx, r)
		if err == nil || !errors.Is(err, ErrModelUnavailable) || f.Secondary == nil {
			return s, err
		}
		if f.Logger != nil {
			f.Logger.Warn("model unavailable, using fallback", zap.Error(err))
		}
	}
	if f.Secondary == nil {
		return Suggestion{}, ErrModelUnavailable
	}
	return f.Secondary.Suggest(ctx, r)
}
