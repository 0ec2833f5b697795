package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"termpanel/internal/config"
	"termpanel/internal/connect"
	"termpanel/internal/logger"
	"termpanel/internal/monitor"
	"termpanel/internal/session"
	"termpanel/internal/ui"
	"termpanel/internal/ui/router"
	"termpanel/internal/ui/screen"
	"termpanel/internal/ui/state"
	"termpanel/internal/wallet"
)

// AppModel is the top level TUI model. It owns the router, handles
// navigation and relays bus messages into the active screen.
type AppModel struct {
	router    *router.Router
	dashboard *screen.DashboardScreen
	buffer    *logger.LogBuffer
	cache     *state.SnapshotCache
}

// NewAppModel creates the application model rooted at the dashboard
func NewAppModel(dashboard *screen.DashboardScreen, buffer *logger.LogBuffer, cache *state.SnapshotCache) *AppModel {
	return &AppModel{
		router:    router.New(dashboard),
		dashboard: dashboard,
		buffer:    buffer,
		cache:     cache,
	}
}

// Init starts the router and the bus listener
func (a *AppModel) Init() tea.Cmd {
	return tea.Batch(a.router.Init(), ui.ListenBus())
}

// Update handles global messages and forwards the rest to the router
func (a *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

	case ui.RouterMsg:
		return a, a.navigate(msg.To)

	case ui.SnapshotMsg:
		// Keep the cache current even when the dashboard is not on top
		a.cache.Upsert(msg.Snapshot)
	}

	var cmds []tea.Cmd
	r, cmd := a.router.Update(msg)
	a.router = r
	if cmd != nil {
		cmds = append(cmds, cmd)
	}

	// Re-arm the bus listener after consuming a bus-born message
	switch msg.(type) {
	case ui.SnapshotMsg, ui.AccountsChangedMsg, ui.StreamStateMsg, ui.LogMsg:
		cmds = append(cmds, ui.ListenBus())
	}

	return a, tea.Batch(cmds...)
}

// View renders the active screen
func (a *AppModel) View() string {
	return a.router.View()
}

func (a *AppModel) navigate(to ui.Route) tea.Cmd {
	switch to {
	case ui.RouteLogs:
		return a.router.Push(screen.NewLogsScreen(a.buffer))
	default:
		if a.router.Depth() > 1 {
			return a.router.Pop()
		}
		return a.router.Replace(a.dashboard)
	}
}

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	// .env values feed the TERMPANEL_* overrides picked up by viper
	_ = godotenv.Load()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	startupLogger, err := logger.CreatePrettyLogger(cfg.DebugLogging)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	startupLogger.Info("Starting terminal panel", zap.String("server", cfg.ServerURL))

	buffer, err := logger.NewLogBuffer(1024, "logs/termpanel.jsonl", zap.NewNop())
	if err != nil {
		startupLogger.Fatal("Failed to init log buffer", zap.Error(err))
	}
	defer func() { _ = buffer.Close() }()

	flushDone := buffer.StartPeriodicFlush(5 * time.Second)
	defer close(flushDone)

	// The TUI owns stdout, so application logs go to the buffer only
	appLogger, err := logger.CreateTUILoggerWithBuffer(cfg.DebugLogging, buffer)
	if err != nil {
		startupLogger.Fatal("Failed to init TUI logger", zap.Error(err))
	}
	defer func() { _ = appLogger.Sync() }()

	sessions := session.NewClient(cfg.ServerURL, appLogger)
	provider := buildProvider(cfg, startupLogger, appLogger)
	mgr := connect.NewManager(provider, sessions, appLogger)

	cache := state.NewSnapshotCache(appLogger)
	streamClient := monitor.NewStreamClient(
		cfg.ServerURL,
		time.Duration(cfg.ReconnectDelay)*time.Millisecond,
		appLogger,
	)
	streamClient.OnState = ui.PublishStreamState

	dashboard := screen.NewDashboardScreen(cfg, mgr, cache, streamClient, appLogger)
	app := NewAppModel(dashboard, buffer, cache)

	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		err := streamClient.Run(ctx, ui.PublishSnapshot)
		if ctx.Err() != nil {
			return nil
		}
		return err
	})

	g.Go(func() error {
		if provider == nil {
			<-ctx.Done()
			return nil
		}
		ch, err := provider.Watch(ctx)
		if err != nil {
			appLogger.Warn("wallet account watch unavailable", zap.Error(err))
			<-ctx.Done()
			return nil
		}
		for {
			select {
			case <-ctx.Done():
				return nil
			case accts, ok := <-ch:
				if !ok {
					return nil
				}
				ui.PublishAccountsChanged(accts)
			}
		}
	})

	g.Go(func() error {
		defer stop()
		_, err := program.Run()
		return err
	})

	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	if err := g.Wait(); err != nil {
		startupLogger.Error("Terminal panel exited with error", zap.Error(err))
		os.Exit(1)
	}
	startupLogger.Info("Terminal panel stopped")
}

// buildProvider picks the wallet capability: a keystore directory when
// configured, a raw private key from the environment otherwise, or
// none at all. A missing capability is not an error; connect becomes
// a no-op.
func buildProvider(cfg *config.Config, startupLogger, appLogger *zap.Logger) wallet.Provider {
	if cfg.KeystoreDir != "" {
		p, err := wallet.NewKeystoreProvider(cfg.KeystoreDir, appLogger)
		if err == nil {
			startupLogger.Info("Using keystore wallet provider", zap.String("dir", cfg.KeystoreDir))
			return p
		}
		startupLogger.Warn("Keystore provider unavailable", zap.Error(err))
	}

	if keyHex := os.Getenv("TERMPANEL_PRIVATE_KEY"); keyHex != "" {
		p, err := wallet.NewKeyProvider(keyHex)
		if err == nil {
			startupLogger.Info("Using private key wallet provider")
			return p
		}
		startupLogger.Warn("Private key provider unavailable", zap.Error(err))
	}

	startupLogger.Info("No wallet capability configured, connect will be a no-op")
	return nil
}
