// Command gallery runs the Gomoku and trie gallery server.
//
// Commands:
//  1. "serve" (default): runs the HTTP server exposing the REST API, WebSocket
//     updates and a streamable /mcp endpoint, with an optional ngrok tunnel
//  2. "mcp": runs an MCP stdio server against a running API, or starts an
//     internal one on a loopback port when none answers
//  3. "validate": checks the rule presets in a directory
//  4. "check": prints the forbidden-move analysis of a board file
//
// Flags read their defaults from the environment, and a .env file in the
// working directory is loaded first.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/aigallery/gallery/api"
	"github.com/aigallery/gallery/game/config"
	"github.com/aigallery/gallery/game/gomoku"
	"github.com/aigallery/gallery/game/records"
	"github.com/aigallery/gallery/game/service"
	"github.com/aigallery/gallery/game/session"
	"github.com/aigallery/gallery/logging"
	"github.com/aigallery/gallery/transport/mcp"
	"github.com/aigallery/gallery/transport/websocket"
	"github.com/aigallery/gallery/validate"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "AI Gallery Server"
)

// Persistence backends for --persistence
const (
	persistenceFile   = "file"
	persistenceBadger = "badger"
	persistenceNone   = "none"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newApp builds the command tree. Flags on the root, the serve flags
// included, are inherited by every subcommand.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "gallery",
		Usage:   AppName,
		Version: Version,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing rule presets",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
		}, serveFlags()...),
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server with API, WebSocket and MCP endpoint",
				Action: runServe,
			},
			{
				Name:  "mcp",
				Usage: "Run an MCP stdio server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "api-url",
						Usage:   "REST API to proxy; probes localhost:<port> and starts an internal server when empty",
						Sources: cli.EnvVars("API_URL"),
					},
				},
				Action: runMCP,
			},
			{
				Name:      "validate",
				Usage:     "Validate the rule presets in a directory",
				ArgsUsage: "[dir]",
				Action:    runValidate,
			},
			{
				Name:      "check",
				Usage:     "Analyse forbidden moves on a board file ('-' reads stdin)",
				ArgsUsage: "<board-file>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "preset",
						Value: "standard",
						Usage: "Rule preset to apply",
					},
					&cli.StringFlag{
						Name:  "player",
						Value: "black",
						Usage: "Colour to analyse (black or white)",
					},
				},
				Action: runCheck,
			},
		},
	}
}

// serveFlags are the flags that shape the running service.
func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "persistence",
			Value:   persistenceFile,
			Usage:   "Session persistence backend: file, badger or none",
			Sources: cli.EnvVars("PERSISTENCE"),
			Validator: func(v string) error {
				switch v {
				case persistenceFile, persistenceBadger, persistenceNone:
					return nil
				}
				return fmt.Errorf("unknown persistence backend %q", v)
			},
		},
		&cli.StringFlag{
			Name:    "default-preset",
			Usage:   "Preset used when a session names none",
			Sources: cli.EnvVars("DEFAULT_PRESET"),
		},
		&cli.StringFlag{
			Name:    "sessions-dir",
			Value:   "sessions",
			Usage:   "Directory for persisted sessions",
			Sources: cli.EnvVars("SESSIONS_DIR"),
		},
		&cli.StringFlag{
			Name:    "records",
			Value:   "records.db",
			Usage:   "SQLite file for finished matches; empty disables the archive",
			Sources: cli.EnvVars("RECORDS_DB"),
		},
		&cli.DurationFlag{
			Name:    "session-ttl",
			Value:   24 * time.Hour,
			Usage:   "Idle time after which sessions leave memory",
			Sources: cli.EnvVars("SESSION_TTL"),
		},
		&cli.DurationFlag{
			Name:  "cleanup-interval",
			Value: time.Hour,
			Usage: "How often idle sessions are removed",
		},
		&cli.DurationFlag{
			Name:  "sync-interval",
			Value: 5 * time.Second,
			Usage: "How often sessions whose persisted copy was deleted are dropped",
		},
		&cli.StringFlag{
			Name:  "static",
			Usage: "Directory of static files served at /",
		},
		&cli.BoolFlag{
			Name:    "ngrok",
			Usage:   "Enable ngrok tunnel",
			Sources: cli.EnvVars("NGROK_ENABLED"),
		},
		&cli.StringFlag{
			Name:    "ngrok-auth",
			Usage:   "Ngrok auth token",
			Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "ngrok-domain",
			Usage:   "Custom ngrok domain (optional)",
			Sources: cli.EnvVars("NGROK_DOMAIN"),
		},
	}
}

// stack is the wired service layer shared by serve and mcp.
type stack struct {
	logger   *zap.Logger
	configs  *config.Manager
	sessions *session.Manager
	records  *records.Store
	service  service.GameService
	closers  []io.Closer
}

func (s *stack) Close() {
	if err := s.sessions.SaveAllSessions(); err != nil {
		s.logger.Warn("failed to save sessions", zap.Error(err))
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			s.logger.Warn("close failed", zap.Error(err))
		}
	}
}

// newStack wires config, session persistence, the match archive and the
// game service from the command's flags.
func newStack(cmd *cli.Command, logger *zap.Logger) (*stack, error) {
	configs, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	if preset := cmd.String("default-preset"); preset != "" {
		if err := configs.SetDefault(preset); err != nil {
			return nil, err
		}
	}

	st := &stack{logger: logger, configs: configs}

	var persistence session.SessionPersistence
	switch cmd.String("persistence") {
	case persistenceBadger:
		bp, err := session.NewBadgerPersistence(cmd.String("sessions-dir"), configs, cmd.Duration("session-ttl"))
		if err != nil {
			return nil, fmt.Errorf("failed to open badger sessions: %w", err)
		}
		st.closers = append(st.closers, bp)
		persistence = bp
	case persistenceFile:
		fp, err := session.NewFilePersistence(cmd.String("sessions-dir"), configs)
		if err != nil {
			return nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		persistence = fp
	}

	if persistence != nil {
		st.sessions = session.NewManagerWithPersistence(persistence, logger)
		if err := st.sessions.LoadPersistedSessions(); err != nil {
			logger.Warn("failed to load persisted sessions", zap.Error(err))
		}
	} else {
		st.sessions = session.NewManager()
	}

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithSuggesters(service.DefaultSuggesters(logger)),
	}
	if path := cmd.String("records"); path != "" {
		store, err := records.Open(path)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to open match archive: %w", err)
		}
		st.records = store
		st.closers = append(st.closers, store)
		opts = append(opts, service.WithRecorder(store))
	}

	st.service = service.NewGameService(st.sessions, configs, opts...)
	return st, nil
}

func (s *stack) apiServer(hub *websocket.Hub, static string) *api.Server {
	opts := []api.Option{api.WithLogger(s.logger)}
	if s.records != nil {
		opts = append(opts, api.WithRecords(s.records))
	}
	if static != "" {
		opts = append(opts, api.WithStatic(static))
	}
	return api.NewServer(s.service, hub, opts...)
}

// runServe starts the HTTP server, the WebSocket hub, the preset watcher and
// session cleanup, and stops them together on SIGINT or SIGTERM.
func runServe(ctx context.Context, cmd *cli.Command) error {
	logger, err := logging.New(cmd.Bool("debug"))
	if err != nil {
		return err
	}
	defer logger.Sync()

	st, err := newStack(cmd, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(logger)
	apiServer := st.apiServer(hub, cmd.String("static"))
	defer apiServer.Close()

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	mcpClient := mcp.NewClient("http://" + addr)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.Handle("/mcp", server.NewStreamableHTTPServer(mcpClient.GetMCPServer()))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	watcher, err := config.NewWatcher(st.configs, logger, nil)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(ctx) })
	g.Go(func() error { return watcher.Run(ctx) })
	g.Go(func() error {
		return st.sessions.RunCleanup(ctx, cmd.Duration("cleanup-interval"), cmd.Duration("session-ttl"))
	})
	if cmd.String("persistence") != persistenceNone {
		g.Go(func() error { return st.sessions.RunSync(ctx, cmd.Duration("sync-interval")) })
	}
	g.Go(func() error { return reloadOnHangup(ctx, st.configs, logger) })
	g.Go(func() error {
		logger.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.String("api", "http://"+addr+"/api"),
			zap.String("websocket", "ws://"+addr+"/ws?session=<session_id>"),
			zap.String("mcp", "http://"+addr+"/mcp"))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if cmd.Bool("ngrok") {
		g.Go(func() error {
			return runNgrok(ctx, cmd, logger, mainRouter)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// reloadOnHangup clears the preset cache on every SIGHUP until ctx is done.
func reloadOnHangup(ctx context.Context, configs *config.Manager, logger *zap.Logger) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hup:
			if err := configs.RefreshCache(); err != nil {
				logger.Warn("failed to reload presets", zap.Error(err))
				continue
			}
			logger.Info("presets reloaded")
		}
	}
}

// runNgrok serves handler through an ngrok tunnel until ctx is done. A
// missing token or a failed tunnel is logged and leaves the local server
// running.
func runNgrok(ctx context.Context, cmd *cli.Command, logger *zap.Logger, handler http.Handler) error {
	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return nil
	}

	var tunnel ngrokConfig.Tunnel
	if domain := cmd.String("ngrok-domain"); domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Info("using custom ngrok domain", zap.String("domain", domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", zap.Error(err))
		return nil
	}

	url := tun.URL()
	logger.Info("ngrok tunnel established",
		zap.String("url", url),
		zap.String("api", url+"/api"),
		zap.String("mcp", url+"/mcp"))

	tunnelServer := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		tunnelServer.Close()
	}()
	if err := tunnelServer.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("ngrok server error", zap.Error(err))
	}
	logger.Info("ngrok tunnel closed")
	return nil
}

// apiAvailable reports whether a REST API answers at baseURL.
func apiAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// runMCP runs an MCP stdio server. Without --api-url it reuses an API on
// localhost:<port>; if none answers it starts an internal API bound to a
// random loopback port.
func runMCP(ctx context.Context, cmd *cli.Command) error {
	logger, err := logging.New(cmd.Bool("debug"))
	if err != nil {
		return err
	}
	defer logger.Sync()

	baseURL := cmd.String("api-url")
	if baseURL == "" {
		external := fmt.Sprintf("http://localhost:%d", cmd.Int("port"))
		if apiAvailable(ctx, external) {
			logger.Info("using external API server", zap.String("url", external))
			baseURL = external
		}
	}

	if baseURL == "" {
		st, err := newStack(cmd, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		hub := websocket.NewHub(logger)
		apiServer := st.apiServer(hub, "")
		defer apiServer.Close()
		httpServer := &http.Server{Handler: apiServer}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error { return hub.Run(ctx) })
		g.Go(func() error {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		defer func() {
			httpServer.Close()
			cancel()
			if err := g.Wait(); err != nil {
				logger.Warn("internal HTTP server error", zap.Error(err))
			}
		}()

		baseURL = "http://" + listener.Addr().String()
		logger.Info("started internal API server", zap.String("url", baseURL))
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info("MCP stdio server ready", zap.String("api", baseURL))
	return server.ServeStdio(mcpClient.GetMCPServer())
}

// runValidate validates the presets in the argument directory, or in
// --config-dir when none is given.
func runValidate(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.Args().First()
	if dir == "" {
		dir = cmd.String("config-dir")
	}

	results, err := validate.Dir(dir)
	if err != nil {
		return err
	}
	if !validate.Report(cmd.Root().Writer, results) {
		return cli.Exit("", 1)
	}
	return nil
}

// runCheck prints the forbidden-move analysis of a board file.
func runCheck(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return cli.Exit("check: board file required", 2)
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.Root().Reader)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}

	configs, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return fmt.Errorf("failed to create config manager: %w", err)
	}
	preset, err := configs.LoadConfig(cmd.String("preset"))
	if err != nil {
		return err
	}
	player, err := gomoku.ParseStone(cmd.String("player"))
	if err != nil {
		return err
	}

	report, err := analyzeBoard(string(data), preset, player)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.Root().Writer, report.Render())
	return nil
}
