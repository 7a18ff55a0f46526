package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/linanwx/tripbot/channel"
	"github.com/linanwx/tripbot/config"
	"github.com/linanwx/tripbot/internal/health"
	"github.com/linanwx/tripbot/logger"
	"github.com/linanwx/tripbot/planner"
	"github.com/linanwx/tripbot/schedule"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start tripbot with terminal and/or browser channels",
	Long: `Start tripbot as a long-running service that listens on one or more channels.

Supported channels:
  - cli: Interactive terminal UI (default)
  - web: Browser chat UI (http + websocket)

Examples:
  tripbot serve              # Start with the terminal channel
  tripbot serve --web        # Start the browser channel only
  tripbot serve --all        # Start all channels`,
	RunE: runServe,
}

var (
	serveAll bool
	serveCLI bool
	serveWeb bool
)

func init() {
	serveCmd.Flags().BoolVar(&serveWeb, "web", false, "Enable Web chat channel")
	serveCmd.Flags().BoolVar(&serveAll, "all", false, "Enable all channels")
	serveCmd.Flags().BoolVar(&serveCLI, "cli", true, "Enable CLI channel (default: true)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cli, web, err := resolveServeTargets(cmd)
	if err != nil {
		return err
	}
	return runService(cfg, cli, web, nil)
}

// runService runs the dispatcher with the selected channels until
// interrupted. seed, when set, prepares the terminal session before the
// channels start.
func runService(cfg *config.Config, cli, web bool, seed func(*planner.Session) error) error {
	sched := schedule.New()
	defer sched.Stop()

	base, err := sessionOptions(cfg, sched)
	if err != nil {
		return err
	}
	manager := channel.NewManager()
	dispatcher := NewDispatcher(manager, base, cfg.Sessions.IdleTTL)
	if dir, err := config.ConfigDir(); err == nil {
		dispatcher.SetExportDir(filepath.Join(dir, "exports"))
	}

	healthOpts := health.Options{
		Sessions:  dispatcher.Sessions(),
		Channels:  serveChannelNames(cli, web),
		ExportDir: dispatcher.exportDir,
	}
	if _, err := sched.Every("session-sweep", cfg.Sessions.Sweep, func() {
		dispatcher.Sessions().Sweep()
		snap := health.Collect(healthOpts)
		logger.Debug("health", "sessions", snap.Sessions.Total, "goroutines", snap.Goroutines, "allocMB", snap.Memory.AllocMB)
	}); err != nil {
		return err
	}
	sched.Start()
	defer dispatcher.Sessions().CloseAll()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if web {
		manager.Register(channel.NewWebChannel(channel.WebConfig{
			Addr:   cfg.Channels.Web.Addr,
			State:  dispatcher.State,
			Health: func() health.Snapshot { return health.Collect(healthOpts) },
		}))
		logger.Info("web channel enabled", "addr", cfg.Channels.Web.Addr)
	}
	if cli {
		manager.Register(channel.NewCLIChannel(channel.CLIConfig{
			State:  dispatcher.State,
			OnExit: cancel,
		}))
		logger.Info("cli channel enabled")
	}
	if seed != nil {
		if err := seed(dispatcher.Sessions().Get("cli")); err != nil {
			return err
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			logger.Info("shutdown signal received")
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := manager.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start channels: %w", err)
	}
	if cli {
		dispatcher.Greet(ctx, "cli")
	}

	logger.Info("tripbot service started")
	if !cli {
		fmt.Printf("tripbot is running at http://%s. Press Ctrl+C to stop.\n", cfg.Channels.Web.Addr)
	}

	// Blocks until ctx is done.
	dispatcher.Run(ctx)

	if err := manager.StopAll(); err != nil {
		logger.Error("error stopping channels", "err", err)
	}
	logger.Info("tripbot service stopped")
	return nil
}

func resolveServeTargets(cmd *cobra.Command) (finalCLI, finalWeb bool, err error) {
	if cmd == nil {
		return false, false, fmt.Errorf("serve command is nil")
	}
	if serveAll {
		return true, true, nil
	}

	flags := cmd.Flags()
	cliChanged := flags.Changed("cli")
	webChanged := flags.Changed("web")

	// No explicit channel flags -> default to CLI only.
	if !cliChanged && !webChanged {
		return true, false, nil
	}

	// --web alone implies no terminal channel.
	if cliChanged {
		finalCLI = serveCLI
	}
	if webChanged {
		finalWeb = serveWeb
	}

	if !finalCLI && !finalWeb {
		return false, false, fmt.Errorf("no channels enabled; use --cli, --web, or --all")
	}
	return finalCLI, finalWeb, nil
}

func serveChannelNames(cli, web bool) []string {
	var names []string
	if cli {
		names = append(names, "cli")
	}
	if web {
		names = append(names, "web")
	}
	return names
}
