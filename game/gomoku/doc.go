// Package gomoku implements read-only pattern detection for 15x15 Gomoku
// boards: open threes, double threes, fours, overlines and five-in-a-row.
//
// Every check takes a board snapshot, a focal cell and the player whose
// stone is (or would be) on that cell. Cells outside the board never match,
// so checks near the edge simply report fewer shapes. No function in this
// package returns an error for a legal board; absence of a shape is a
// negative result.
//
// Open threes:
//
// A continuous open three is one of three five-cell templates along a
// direction, each reading empty, P, P, P, empty:
//
//	A  offsets -2..2   _PPP_ with the focal cell in the middle
//	B  offsets -1..3   _PPP_ with the focal cell first
//	C  offsets -3..1   _PPP_ with the focal cell last
//
// The shape counts only when exactly one template matches. Detector can
// additionally look for split ("jump") threes such as _PP_P_.
//
// Forbidden moves:
//
// RuleChecker applies a Rules set (three_three, four_four, long_connection)
// to a candidate move for the constrained colour.
//
// All functions are pure and safe for concurrent use.
package gomoku
