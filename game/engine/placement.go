package engine

import (
	"fmt"
	"time"

	"github.com/aigallery/gallery/game/gomoku"
)

// PlaceStone puts a stone of the side to move at p and advances the game
func (gs *GameState) PlaceStone(p gomoku.Point, config *GameConfig, checker gomoku.RuleChecker, constrained bool) error {
	if gs.GameOver {
		gs.Message = config.Messages.GameOver
		return ErrGameOver
	}

	cell, ok := gs.Board.At(p)
	if !ok {
		gs.Message = fmt.Sprintf("%s %v", config.Messages.OutOfBounds, p)
		return fmt.Errorf("%w: %v", ErrOutOfBounds, p)
	}
	if cell != gomoku.Empty {
		gs.Message = fmt.Sprintf("%s %v", config.Messages.Occupied, p)
		return fmt.Errorf("%w: %v holds %s", ErrOccupied, p, cell)
	}

	player := gs.Turn
	if constrained && !gomoku.ExactFive(&gs.Board, p, player) {
		if v, bad := checker.Check(&gs.Board, p, player); bad {
			gs.Rejected = &v
			gs.Message = formatRule(config.Messages.Forbidden, v.Rule)
			return fmt.Errorf("%w: %s at %v", ErrForbidden, v.Rule, p)
		}
	}

	gs.Board.Set(p, player)
	gs.Stones = append(gs.Stones, p)
	gs.LastMove = &p
	gs.Rejected = nil

	if line := gomoku.WinningLine(&gs.Board, p.Row, p.Col, player); line != nil {
		gs.Winner = player
		gs.WinningLine = line
		gs.GameOver = true
		gs.Message = config.Messages.BlackWin
		if player == gomoku.White {
			gs.Message = config.Messages.WhiteWin
		}
		return nil
	}

	if gs.Board.Full() {
		gs.Draw = true
		gs.GameOver = true
		gs.Message = config.Messages.Draw
		return nil
	}

	gs.Turn = player.Opponent()
	gs.Message = turnMessage(config, gs.Turn)
	return nil
}

// TakeBack removes the last stone of the current game and gives the turn
// back to its owner
func (gs *GameState) TakeBack(config *GameConfig) (gomoku.Point, gomoku.Stone, error) {
	if len(gs.Stones) == 0 {
		return gomoku.Point{}, gomoku.Empty, ErrNothingToUndo
	}

	last := gs.Stones[len(gs.Stones)-1]
	owner, _ := gs.Board.At(last)
	gs.Stones = gs.Stones[:len(gs.Stones)-1]
	gs.Board.Set(last, gomoku.Empty)

	gs.Turn = owner
	gs.Winner = gomoku.Empty
	gs.WinningLine = nil
	gs.GameOver = false
	gs.Draw = false
	gs.Rejected = nil
	gs.LastMove = nil
	if n := len(gs.Stones); n > 0 {
		prev := gs.Stones[n-1]
		gs.LastMove = &prev
	}
	gs.Message = turnMessage(config, owner)

	return last, owner, nil
}

// AnalyzeMove reports what a stone of player at p would create on b
func AnalyzeMove(b *gomoku.Board, p gomoku.Point, player gomoku.Stone, checker gomoku.RuleChecker, constrained bool) Analysis {
	a := Analysis{
		Point:     p,
		Player:    player,
		Overlines: [][]gomoku.Point{},
		DoubleThree: gomoku.DoubleThree{
			Positions: []gomoku.Point{},
			Threes:    []gomoku.Three{},
		},
		DoubleFour: gomoku.DoubleFour{
			LiveFours: [][]gomoku.Point{},
			RushFours: [][]gomoku.Point{},
			Positions: []gomoku.Point{},
		},
	}

	cell, ok := b.At(p)
	if !ok || player == gomoku.Empty {
		return a
	}
	if cell != gomoku.Empty && cell != player {
		a.Occupied = true
		return a
	}
	a.Occupied = cell != gomoku.Empty

	after := b.With(p, player)
	a.Win = gomoku.CheckWin(&after, p.Row, p.Col, player)
	a.DoubleThree = checker.Detector.CheckDoubleThree(&after, p.Row, p.Col, player)
	a.DoubleFour = gomoku.FindDoubleFours(&after, p.Row, p.Col, player)
	a.Overlines = gomoku.CheckOverline(&after, p.Row, p.Col, player)

	if constrained && !gomoku.ExactFive(b, p, player) {
		if v, bad := checker.Check(b, p, player); bad {
			a.Violation = &v
		}
	}
	return a
}

// AddMoveToHistory adds a placement or undo to the game's move history
func (gs *GameState) AddMoveToHistory(action string, player gomoku.Stone, p gomoku.Point, err error) {
	entry := MoveHistoryEntry{
		Action:     action,
		Player:     player,
		Position:   p,
		Timestamp:  time.Now().Unix(),
		Success:    err == nil,
		MoveNumber: gs.TotalMoves + 1,
	}
	if err != nil {
		entry.Reason = err.Error()
	}
	// Append to cumulative history (never cleared by reset) and increment total
	gs.MoveHistory = append(gs.MoveHistory, entry)
	gs.TotalMoves++

	// Append to current segment history and increment its counter
	gs.CurrentMoves = append(gs.CurrentMoves, entry)
	gs.CurrentMovesCount++
}

func turnMessage(config *GameConfig, turn gomoku.Stone) string {
	if config.Messages.Turn == "" {
		return ""
	}
	return fmt.Sprintf(config.Messages.Turn, capitalize(turn.Name()))
}

func formatRule(format string, rule gomoku.Rule) string {
	if format == "" {
		return fmt.Sprintf("Forbidden move: %s", rule)
	}
	return fmt.Sprintf(format, rule)
}
