package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/aigallery/gallery/game/gomoku"
)

func TestConstants(t *testing.T) {
	assert.Equal(t, "1.0.0", Version)
	assert.Equal(t, "AI Gallery Server", AppName)
}

func TestAppCommands(t *testing.T) {
	app := newApp()

	names := make([]string, 0, len(app.Commands))
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"serve", "mcp", "validate", "check"}, names)
	assert.NotNil(t, app.Action, "serve should be the default action")
}

// runApp runs the command tree with args and returns what it wrote.
func runApp(t *testing.T, extra *cli.Command, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	if extra != nil {
		app.Commands = append(app.Commands, extra)
	}
	var out bytes.Buffer
	app.Writer = &out
	err := app.Run(context.Background(), append([]string{"gallery"}, args...))
	return out.String(), err
}

func TestFlagDefaults(t *testing.T) {
	var got map[string]any
	probe := &cli.Command{
		Name: "probe",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			got = map[string]any{
				"port":        cmd.Int("port"),
				"host":        cmd.String("host"),
				"persistence": cmd.String("persistence"),
				"records":     cmd.String("records"),
				"ttl":         cmd.Duration("session-ttl").String(),
			}
			return nil
		},
	}

	t.Setenv("PORT", "9191")
	_, err := runApp(t, probe, "--host", "0.0.0.0", "probe")
	require.NoError(t, err)

	assert.Equal(t, 9191, got["port"])
	assert.Equal(t, "0.0.0.0", got["host"])
	assert.Equal(t, persistenceFile, got["persistence"])
	assert.Equal(t, "records.db", got["records"])
	assert.Equal(t, "24h0m0s", got["ttl"])
}

func TestUnknownPersistence(t *testing.T) {
	probe := &cli.Command{
		Name:   "probe",
		Action: func(ctx context.Context, cmd *cli.Command) error { return nil },
	}
	_, err := runApp(t, probe, "--persistence", "postgres", "probe")
	assert.Error(t, err)
}

func TestNewStack(t *testing.T) {
	tests := []struct {
		name        string
		persistence string
		records     bool
	}{
		{"file with archive", persistenceFile, true},
		{"badger", persistenceBadger, false},
		{"memory only", persistenceNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			recordsPath := ""
			if tt.records {
				recordsPath = filepath.Join(dir, "records.db")
			}

			probe := &cli.Command{
				Name: "probe",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					st, err := newStack(cmd, zap.NewNop())
					if err != nil {
						return err
					}
					defer st.Close()

					info, err := st.service.CreateSession(ctx, "standard")
					if err != nil {
						return err
					}
					result, err := st.service.Place(ctx, info.ID, gomoku.Point{Row: 7, Col: 7})
					if err != nil {
						return err
					}
					assert.True(t, result.Success)
					assert.Equal(t, tt.records, st.records != nil)
					return nil
				},
			}

			_, err := runApp(t, probe,
				"--config-dir", "configs",
				"--persistence", tt.persistence,
				"--sessions-dir", filepath.Join(dir, "sessions"),
				"--records", recordsPath,
				"probe")
			require.NoError(t, err)
		})
	}
}

func TestNewStack_InvalidConfigDir(t *testing.T) {
	probe := &cli.Command{
		Name: "probe",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, err := newStack(cmd, zap.NewNop())
			return err
		},
	}
	_, err := runApp(t, probe, "--config-dir", "/non/existent/path", "--persistence", persistenceNone, "probe")
	assert.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	out, err := runApp(t, nil, "validate", "configs")
	require.NoError(t, err)

	assert.Contains(t, out, "standard.json")
	assert.Contains(t, out, "renju.yaml")
	assert.Contains(t, out, "All presets are valid!")
}

func TestCheckCommand(t *testing.T) {
	board := strings.Join([]string{
		"...............",
		"...............",
		"...............",
		"...............",
		"...............",
		"...............",
		".......B.......",
		"......B.B......",
		".......B.......",
	}, "\n")
	path := filepath.Join(t.TempDir(), "board.txt")
	require.NoError(t, os.WriteFile(path, []byte(board), 0644))

	out, err := runApp(t, nil, "--config-dir", "configs", "check", "--preset", "standard", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Standard: black to move")
	assert.Contains(t, out, "(7,7) three_three")
}

func TestNewStack_DefaultPreset(t *testing.T) {
	var name string
	probe := &cli.Command{
		Name: "probe",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			st, err := newStack(cmd, zap.NewNop())
			if err != nil {
				return err
			}
			defer st.Close()
			name = st.configs.GetDefault().Name
			return nil
		},
	}

	_, err := runApp(t, probe, "--config-dir", "configs", "--persistence", persistenceNone,
		"--records", "", "--default-preset", "renju", "probe")
	require.NoError(t, err)
	assert.Equal(t, "Renju", name)

	_, err = runApp(t, probe, "--config-dir", "configs", "--persistence", persistenceNone,
		"--records", "", "--default-preset", "missing", "probe")
	assert.Error(t, err)
}
