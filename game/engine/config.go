package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aigallery/gallery/game/gomoku"
)

// ConfigExtensions lists the preset file extensions in lookup order.
var ConfigExtensions = []string{".json", ".yaml", ".yml"}

// ValidateGameConfig validates a rule preset for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	for _, r := range config.Rules {
		if _, err := gomoku.ParseRule(r); err != nil {
			return fmt.Errorf("config validation: rules: %w", err)
		}
	}

	switch config.EnforceFor {
	case "", EnforceBlack, EnforceWhite, EnforceBoth:
	default:
		return fmt.Errorf("config validation: enforce_for must be black, white or both, got '%s'", config.EnforceFor)
	}

	if config.FirstPlayer != "" {
		if s, err := gomoku.ParseStone(config.FirstPlayer); err != nil || s == gomoku.Empty {
			return fmt.Errorf("config validation: first_player must be black or white, got '%s'", config.FirstPlayer)
		}
	}
	if config.AI.Color != "" {
		if s, err := gomoku.ParseStone(config.AI.Color); err != nil || s == gomoku.Empty {
			return fmt.Errorf("config validation: ai.color must be black or white, got '%s'", config.AI.Color)
		}
	}

	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.BlackWin == "" || config.Messages.WhiteWin == "" {
		return fmt.Errorf("config validation: messages.black_win and messages.white_win are required")
	}
	if config.Messages.Turn != "" && !strings.Contains(config.Messages.Turn, "%s") {
		return fmt.Errorf("config validation: messages.turn must contain %%s for the colour")
	}
	if config.Messages.Forbidden != "" && !strings.Contains(config.Messages.Forbidden, "%s") {
		return fmt.Errorf("config validation: messages.forbidden must contain %%s for the rule")
	}

	return nil
}

// RuleChecker builds the forbidden-move checker of the preset.
func (c *GameConfig) RuleChecker() gomoku.RuleChecker {
	checker := gomoku.RuleChecker{Detector: gomoku.Detector{IncludeJump: c.JumpThrees}}
	for _, name := range c.Rules {
		if r, err := gomoku.ParseRule(name); err == nil {
			checker.Rules = append(checker.Rules, r)
		}
	}
	return checker
}

// Constrained returns the colours bound by the rules.
func (c *GameConfig) Constrained() []gomoku.Stone {
	switch c.EnforceFor {
	case EnforceWhite:
		return []gomoku.Stone{gomoku.White}
	case EnforceBoth:
		return []gomoku.Stone{gomoku.Black, gomoku.White}
	}
	return []gomoku.Stone{gomoku.Black}
}

// First returns the colour that opens the game, black unless configured.
func (c *GameConfig) First() gomoku.Stone {
	if s, err := gomoku.ParseStone(c.FirstPlayer); err == nil && s != gomoku.Empty {
		return s
	}
	return gomoku.Black
}

// DecodeGameConfig parses data as YAML when ext is .yaml or .yml and as
// JSON otherwise.
func DecodeGameConfig(data []byte, ext string) (*GameConfig, error) {
	var config GameConfig
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}
	return &config, nil
}

// LoadGameConfig loads a preset from a JSON or YAML file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	config, err := DecodeGameConfig(data, filepath.Ext(configPath))
	if err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadConfigByName loads a preset by name from dir, trying each of
// ConfigExtensions when name has none.
func LoadConfigByName(dir, configName string) (*GameConfig, error) {
	candidates := []string{configName}
	if filepath.Ext(configName) == "" {
		candidates = candidates[:0]
		for _, ext := range ConfigExtensions {
			candidates = append(candidates, configName+ext)
		}
	}

	for _, name := range candidates {
		configPath := filepath.Join(dir, name)
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			continue
		}
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %v", name, err)
		}
		config, err := DecodeGameConfig(data, filepath.Ext(name))
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file '%s': %v", name, err)
		}
		if err := ValidateGameConfig(config); err != nil {
			return nil, fmt.Errorf("invalid config '%s': %v", name, err)
		}
		return config, nil
	}

	return nil, fmt.Errorf("config file '%s' not found", configName)
}

// DefaultConfig returns the built-in preset: black opens and may not play
// a double three.
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:        "standard",
		Description: "Black opens; double threes are forbidden for black",
		Rules:       []string{string(gomoku.ThreeThree)},
		EnforceFor:  EnforceBlack,
		FirstPlayer: "black",
		Messages: Messages{
			Welcome:     "New game. Black to move.",
			Turn:        "%s to move",
			BlackWin:    "Black wins!",
			WhiteWin:    "White wins!",
			Draw:        "The board is full. Draw!",
			Forbidden:   "Forbidden move for black: %s",
			Occupied:    "That cell is taken",
			OutOfBounds: "That cell is off the board",
			GameOver:    "The game is over. Reset to play again",
		},
	}
}

// InitGameStateFromConfig creates a new game state using the provided configuration
func InitGameStateFromConfig(config *GameConfig) *GameState {
	if config == nil {
		config = DefaultConfig()
	}

	return &GameState{
		Turn:              config.First(),
		Message:           config.Messages.Welcome,
		ConfigName:        config.Name,
		Stones:            []gomoku.Point{},
		MoveHistory:       []MoveHistoryEntry{},
		CurrentMoves:      []MoveHistoryEntry{},
		TotalMoves:        0,
		CurrentMovesCount: 0,
	}
}
