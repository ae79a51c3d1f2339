package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aigallery/gallery/game/gomoku"
)

// PlaneCount is the number of input planes of the policy network.
const PlaneCount = 4

// EncodePlanes lays out r as four 15x15 planes: black stones, white
// stones, the last move and the side to move (all ones when black moves).
func EncodePlanes(r Request) []float32 {
	const area = gomoku.Size * gomoku.Size
	in := make([]float32, PlaneCount*area)
	for row := range gomoku.Size {
		for col := range gomoku.Size {
			idx := row*gomoku.Size + col
			switch r.Board[row][col] {
			case gomoku.Black:
				in[idx] = 1
			case gomoku.White:
				in[area+idx] = 1
			}
			if r.ToMove == gomoku.Black {
				in[3*area+idx] = 1
			}
		}
	}
	if r.LastMove != nil && r.LastMove.InBounds() {
		in[2*area+r.LastMove.Row*gomoku.Size+r.LastMove.Col] = 1
	}
	return in
}

type inferenceRequest struct {
	Input []float32 `json:"input"`
	Shape []int     `json:"shape"`
}

type inferenceResponse struct {
	Policy []float32 `json:"policy_output"`
	Value  []float32 `json:"value_output"`
}

// Remote queries an inference sidecar that serves the policy/value model.
type Remote struct {
	Endpoint string
	Client   *http.Client
}

// NewRemote returns a client for endpoint with a bounded request timeout.
func NewRemote(endpoint string) *Remote {
	return &Remote{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Suggest implements Suggester. The move is the empty cell with the
// highest policy output; the confidence is the value head output.
func (m *Remote) Suggest(ctx context.Context, r Request) (Suggestion, error) {
	if err := r.Validate(); err != nil {
		return Suggestion{}, err
	}
	if m == nil || m.Endpoint == "" {
		return Suggestion{}, fmt.Errorf("%w: no inference endpoint configured", ErrModelUnavailable)
	}

	body, err := json.Marshal(inferenceRequest{
		Input: EncodePlanes(r),
		Shape: []int{1, PlaneCount, gomoku.Size, gomoku.Size},
	})
	if err != nil {
		return Suggestion{}, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Suggestion{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Suggestion{}, ctx.Err()
		}
		return Suggestion{}, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Suggestion{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusNotFound {
		return Suggestion{}, fmt.Errorf("%w: sidecar returned %d", ErrModelUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return Suggestion{}, fmt.Errorf("inference error (%d): %s", resp.StatusCode, string(data))
	}

	var out inferenceResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return Suggestion{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Policy) < gomoku.Size*gomoku.Size {
		return Suggestion{}, fmt.Errorf("policy output has %d entries, want %d", len(out.Policy), gomoku.Size*gomoku.Size)
	}

	best, found := gomoku.Point{}, false
	var bestProb float32
	for row := range gomoku.Size {
		for col := range gomoku.Size {
			if r.Board[row][col] != gomoku.Empty {
				continue
			}
			prob := out.Policy[row*gomoku.Size+col]
			if !found || prob > bestProb {
				best, bestProb, found = gomoku.Point{Row: row, Col: col}, prob, true
			}
		}
	}
	if !found {
		return Suggestion{}, ErrNoMove
	}
	confidence := 0.0
	if len(out.Value) > 0 {
		confidence = float64(out.Value[0])
	}
	return Suggestion{Move: best, Confidence: confidence, Source: "model"}, nil
}
