// Command maze-game serves perfect mazes to people and AI agents.
//
// It supports three commands:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "generate" – prints a maze and its statistics
//
// Flags control host/port, storage locations, logging, and optional ngrok
// tunneling for easy external access during development. Every flag can also
// be set from the environment or a .env file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/maze-game/api"
	"github.com/wricardo/maze-game/game/config"
	"github.com/wricardo/maze-game/game/maze"
	"github.com/wricardo/maze-game/game/records"
	"github.com/wricardo/maze-game/game/service"
	"github.com/wricardo/maze-game/game/session"
	"github.com/wricardo/maze-game/internal/observability"
	"github.com/wricardo/maze-game/transport/mcp"
	"github.com/wricardo/maze-game/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Maze Game Server"
)

const (
	cleanupInterval = 10 * time.Minute
	syncInterval    = 5 * time.Second
)

// settings holds the process configuration resolved from flags and environment
type settings struct {
	host        string
	port        int
	configDir   string
	defaultCfg  string
	sessionsDir string
	recordsFile string
	redisAddr   string
	sessionTTL  time.Duration

	ngrokEnabled bool
	ngrokAuth    string
	ngrokDomain  string
}

func (s settings) addr() string {
	return fmt.Sprintf("%s:%d", s.host, s.port)
}

func settingsFrom(cmd *cli.Command) settings {
	return settings{
		host:         cmd.String("host"),
		port:         int(cmd.Int("port")),
		configDir:    cmd.String("config-dir"),
		defaultCfg:   cmd.String("default-config"),
		sessionsDir:  cmd.String("sessions-dir"),
		recordsFile:  cmd.String("records-file"),
		redisAddr:    cmd.String("redis-addr"),
		sessionTTL:   cmd.Duration("session-ttl"),
		ngrokEnabled: cmd.Bool("ngrok"),
		ngrokAuth:    cmd.String("ngrok-auth"),
		ngrokDomain:  cmd.String("ngrok-domain"),
	}
}

func main() {
	// Load .env file if it exists
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp()
	app.Metadata = map[string]any{"dotenv": envErr}

	if err := app.Run(ctx, os.Args); err != nil {
		observability.GetLogger().Error("command failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newApp builds the command tree
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "maze-game",
		Usage:   "Perfect maze game with REST, WebSocket and MCP interfaces",
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing maze presets", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "default-config", Usage: "Preset used when a session names none (default classic)", Sources: cli.EnvVars("DEFAULT_CONFIG")},
			&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "Directory for persisted sessions", Sources: cli.EnvVars("SESSIONS_DIR")},
			&cli.StringFlag{Name: "records-file", Value: "records.json", Usage: "File for best records", Sources: cli.EnvVars("RECORDS_FILE")},
			&cli.StringFlag{Name: "redis-addr", Usage: "Store sessions and records in Redis at this address", Sources: cli.EnvVars("REDIS_ADDR")},
			&cli.DurationFlag{Name: "session-ttl", Value: time.Hour, Usage: "Drop sessions idle for longer than this", Sources: cli.EnvVars("SESSION_TTL")},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "Log level (debug, info, warn, error)", Sources: cli.EnvVars("LOG_LEVEL")},
			&cli.StringFlag{Name: "log-format", Value: "console", Usage: "Log format (console or json)", Sources: cli.EnvVars("LOG_FORMAT")},
			&cli.StringFlag{Name: "log-file", Usage: "Also write JSON logs to this rotating file", Sources: cli.EnvVars("LOG_FILE")},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Before: setupLogging,
		After: func(ctx context.Context, cmd *cli.Command) error {
			observability.Sync()
			return nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Present() {
				return fmt.Errorf("unknown command %q, use 'server' (default), 'stdio-mcp' or 'generate'", cmd.Args().First())
			}
			return serverAction(ctx, cmd)
		},
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  serverAction,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action:  stdioAction,
			},
			generateCommand(),
		},
	}
}

// setupLogging initializes the global logger before any command runs
func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg := observability.DefaultConfig()
	cfg.Level = cmd.String("log-level")
	cfg.Format = cmd.String("log-format")
	cfg.LogFile = cmd.String("log-file")
	if cmd.Bool("debug") {
		cfg.Level = "debug"
		cfg.AddSource = true
	}
	observability.InitializeLogger(cfg)

	// main records the .env load result; a missing file is normal
	logger := observability.GetLogger()
	if loaded, ok := cmd.Metadata["dotenv"]; ok {
		if err, _ := loaded.(error); err == nil {
			logger.Debug("loaded environment variables from .env file")
		} else if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("error loading .env file", zap.Error(err))
		}
	}
	return ctx, nil
}

func serverAction(ctx context.Context, cmd *cli.Command) error {
	s := settingsFrom(cmd)
	observability.GetLogger().Info("starting", zap.String("app", AppName), zap.String("version", Version), zap.String("mode", "server"))

	svc, err := initializeServices(ctx, s)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.Close()

	return runHTTPServer(ctx, s, svc.game)
}

func stdioAction(ctx context.Context, cmd *cli.Command) error {
	s := settingsFrom(cmd)
	observability.GetLogger().Info("starting", zap.String("app", AppName), zap.String("version", Version), zap.String("mode", "stdio-mcp"))

	svc, err := initializeServices(ctx, s)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.Close()

	return runStdioMCPWithInternalServer(ctx, s, svc.game)
}

// mcpHandler serves MCP JSON-RPC messages over plain HTTP POST
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)
		if response == nil {
			// Notifications have no response
			w.WriteHeader(http.StatusAccepted)
			return
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	}
}

// newRootHandler mounts the /mcp endpoint next to the REST API routes
func newRootHandler(apiServer *api.Server, mcpClient *mcp.Client) http.Handler {
	apiServer.Router().Handle("/mcp", mcpHandler(mcpClient))
	return apiServer
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel. It returns when ctx is cancelled.
func runHTTPServer(ctx context.Context, s settings, gameService service.GameService) error {
	logger := observability.GetLogger()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	apiServer := api.NewServer(gameService, hub)

	addr := s.addr()
	mcpClient := mcp.NewClient("http://" + addr)
	mainRouter := newRootHandler(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.String("api", "http://"+addr+"/api"),
			zap.String("websocket", "ws://"+addr+"/ws?session=<session_id>"),
			zap.String("mcp", "http://"+addr+"/mcp"))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			cancel()
		}
	}()

	if s.ngrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, s, mainRouter)
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(err))
	}

	wg.Wait()
	logger.Info("server stopped")

	select {
	case err := <-serveErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	default:
		return nil
	}
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx is done
func runNgrokTunnel(ctx context.Context, s settings, handler http.Handler) {
	logger := observability.GetLogger().Named("ngrok")

	if s.ngrokAuth == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if s.ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(s.ngrokDomain))
		logger.Info("using custom ngrok domain", zap.String("domain", s.ngrokDomain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(s.ngrokAuth))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", zap.Error(err))
		return
	}

	// Closing the listener stops http.Serve
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", zap.Error(err))
		}
	}()

	ngrokURL := tun.URL()
	logger.Info("ngrok tunnel established",
		zap.String("url", ngrokURL),
		zap.String("api", ngrokURL+"/api"),
		zap.String("websocket", ngrokURL+"/ws?session=<session_id>"),
		zap.String("mcp", ngrokURL+"/mcp"))

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Warn("ngrok server error", zap.Error(err))
	}
	logger.Info("ngrok tunnel closed")
}

// services bundles the wired game service with the resources it owns
type services struct {
	game        service.GameService
	sessions    *session.Manager
	persistence session.SessionPersistence
	records     records.Store
}

// Close flushes sessions and releases storage
func (s *services) Close() {
	logger := observability.GetLogger()
	if err := s.sessions.Flush(); err != nil {
		logger.Warn("failed to save sessions on shutdown", zap.Error(err))
	}
	if err := s.records.Close(); err != nil {
		logger.Warn("failed to close record store", zap.Error(err))
	}
}

// initializeServices wires session/config managers, storage and the game service.
// It also starts background routines that prune stale sessions until ctx is done.
func initializeServices(ctx context.Context, s settings) (*services, error) {
	logger := observability.GetLogger()

	// Create config manager first (needed for persistence)
	configManager, err := config.NewManager(s.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	if s.defaultCfg != "" {
		if err := configManager.SetDefault(s.defaultCfg); err != nil {
			return nil, fmt.Errorf("failed to set default config: %w", err)
		}
	}

	var (
		persistence session.SessionPersistence
		store       records.Store
	)

	if s.redisAddr != "" {
		client, err := records.DialRedis(ctx, s.redisAddr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		// The record store owns the shared client
		store = records.NewRedisStore(client, "")
		persistence = session.NewRedisPersistence(client, session.DefaultRedisPrefix, s.sessionTTL, configManager)
		logger.Info("using redis storage", zap.String("addr", s.redisAddr))
	} else {
		fp, err := session.NewFilePersistence(s.sessionsDir, configManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		persistence = fp

		fs, err := records.NewFileStore(s.recordsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open record store: %w", err)
		}
		store = fs
	}

	sessionManager := session.NewManager(
		session.WithPersistence(persistence),
		session.WithIdleTTL(s.sessionTTL),
		session.WithLogger(logger.Named("session")))

	// Stale stored sessions are dropped rather than restored
	if err := sessionManager.Restore(); err != nil {
		logger.Warn("failed to load persisted sessions", zap.Error(err))
	}

	gameService := service.NewGameService(sessionManager, configManager,
		service.WithRecordStore(store),
		service.WithLogger(logger.Named("service")))

	go sessionCleanupRoutine(ctx, sessionManager, cleanupInterval)
	go persistenceSyncRoutine(ctx, sessionManager, syncInterval)

	return &services{
		game:        gameService,
		sessions:    sessionManager,
		persistence: persistence,
		records:     store,
	}, nil
}

// sessionCleanupRoutine periodically expires idle sessions
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.Expire(); removed > 0 {
				observability.GetLogger().Info("cleaned up expired sessions", zap.Int("removed", removed))
			}
		}
	}
}

// persistenceSyncRoutine removes sessions from memory once their stored copy
// is gone, e.g. a deleted file or an expired Redis key.
func persistenceSyncRoutine(ctx context.Context, manager *session.Manager, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := manager.PruneOrphans(); pruned > 0 {
				observability.GetLogger().Info("pruned orphaned sessions from memory", zap.Int("pruned", pruned))
			}
		}
	}
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It reuses an API already listening on the configured address; if none answers,
// it starts an internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, s settings, gameService service.GameService) error {
	logger := observability.GetLogger()
	externalURL := "http://" + s.addr()

	baseURL := externalURL
	if !apiAvailable(externalURL) {
		logger.Info("no external API server found, starting internal HTTP server", zap.String("checked", externalURL))

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		hub := websocket.NewHub()
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("internal HTTP server error", zap.Error(err))
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info("MCP stdio server ready", zap.String("api", baseURL))

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// apiAvailable reports whether a maze API answers at baseURL
func apiAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// generateCommand prints a maze without starting any server
func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Print a maze and its statistics",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "cols", Value: 15, Usage: fmt.Sprintf("Maze width (%d-%d)", maze.MinSize, maze.MaxSize)},
			&cli.IntFlag{Name: "rows", Value: 15, Usage: fmt.Sprintf("Maze height (%d-%d)", maze.MinSize, maze.MaxSize)},
			&cli.Uint64Flag{Name: "seed", Usage: "Seed for a reproducible layout"},
			&cli.BoolFlag{Name: "json", Usage: "Print the grid and statistics as JSON"},
		},
		Action: generateAction,
	}
}

func generateAction(ctx context.Context, cmd *cli.Command) error {
	cols, rows := int(cmd.Int("cols")), int(cmd.Int("rows"))

	var (
		rng  maze.RandomSource
		seed *uint64
	)
	if cmd.IsSet("seed") {
		v := cmd.Uint64("seed")
		seed = &v
		rng = maze.NewSeededSource(v)
	}

	grid, err := maze.Generate(cols, rows, rng)
	if err != nil {
		return err
	}
	stats := grid.ComputeStats()

	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Seed  *uint64    `json:"seed,omitempty"`
			Grid  *maze.Grid `json:"grid"`
			Stats maze.Stats `json:"stats"`
		}{seed, grid, stats})
	}

	title := fmt.Sprintf("Maze %dx%d", cols, rows)
	if seed != nil {
		title += fmt.Sprintf(" (seed %d)", *seed)
	}
	fmt.Fprintln(out, title)
	fmt.Fprint(out, grid.Render(maze.Position{}, maze.Position{X: cols - 1, Y: rows - 1}))
	fmt.Fprintf(out, "Cells: %d  Open edges: %d  Dead ends: %d  Corridors: %d  Junctions: %d\n",
		stats.Cells, stats.OpenEdges, stats.DeadEnds, stats.Corridors, stats.Junctions)
	return nil
}
