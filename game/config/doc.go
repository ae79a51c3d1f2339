// Package config provides rule preset management for Gomoku sessions.
//
// The config package handles:
//   - Loading presets from JSON or YAML files
//   - Preset validation
//   - Default preset selection
//   - Preset discovery and listing
//   - Cache invalidation when preset files change (Watcher)
//
// Preset Format:
//
// Presets live in the configs directory as name.json, name.yaml or
// name.yml. Each preset defines:
//   - rules: any of three_three, four_four, long_connection, no_restriction
//   - enforce_for: the colour the rules bind (black, white or both)
//   - jump_threes: whether split threes count toward a double three
//   - first_player and an optional ai opponent (color, rank, endpoint)
//   - messages shown to players
//
// The preset named "standard" is the default; without it the first valid
// preset is used, and without any the built-in engine preset.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	renju, err := manager.LoadConfig("renju")
//
//	watcher, err := config.NewWatcher(manager, logger, nil)
//	go watcher.Run(ctx)
package config
