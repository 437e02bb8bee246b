package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tiendactl/tiendactl/internal/api"
	"github.com/tiendactl/tiendactl/internal/auth"
	"github.com/tiendactl/tiendactl/internal/catalog"
	"github.com/tiendactl/tiendactl/internal/config"
	"github.com/tiendactl/tiendactl/internal/history"
	"github.com/tiendactl/tiendactl/internal/logging"
	"github.com/tiendactl/tiendactl/internal/mock"
	"github.com/tiendactl/tiendactl/internal/tui"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tiendactl",
	Short: "Terminal admin dashboard for the store backend",
	Long: `tiendactl is a terminal dashboard for managing the store catalog:
categories, subcategories, attributes, brands, products, agents, offers
and orders, against any configured backend profile.

Examples:
  tiendactl                  # Start the dashboard with the active profile
  tiendactl -p staging       # Start against the 'staging' profile
  tiendactl mock --seed      # Run a local mock backend
  tiendactl --help           # Show help`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run a local in-memory backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMock()
	},
}

var (
	flagProfile  string
	flagMockAddr string
	flagMockSeed bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagProfile, "profile", "p", "", "Profile to use")
	mockCmd.Flags().StringVar(&flagMockAddr, "addr", "127.0.0.1:8080", "Listen address")
	mockCmd.Flags().BoolVar(&flagMockSeed, "seed", false, "Seed sample data")
	rootCmd.AddCommand(mockCmd)
}

func runTUI() error {
	// .env may carry TIENDACTL_TOKEN for local development
	_ = godotenv.Load()

	if err := config.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logFile := cfg.LogFile
	if logFile == "" {
		logFile = config.LogFile
	}
	log := logging.Discard()
	if f, err := logging.Open(logFile); err == nil {
		defer f.Close()
		log = logging.New(f, cfg.LogLevel)
	}

	sessionMgr := auth.NewManager()
	if err := sessionMgr.Load(); err != nil {
		return err
	}
	if flagProfile != "" {
		if err := sessionMgr.SetActiveProfile(flagProfile); err != nil {
			return err
		}
	}
	profile := sessionMgr.GetActiveProfile()

	client := api.New(sessionMgr.BaseURL(cfg.BaseURL), sessionMgr.TokenSource(), cfg.Timeout(), log)

	ui := tui.NewUIState()

	var histMgr *history.Manager
	if cfg.IsHistoryEnabled() {
		histMgr, err = history.NewManager(config.DatabasePath, profile.Name)
		if err != nil {
			log.Warn("history disabled", "error", err)
			histMgr = nil
		}
	}

	deps := catalog.Deps{
		Client:   client,
		Effects:  ui,
		Log:      log,
		PageSize: cfg.PageSize,
	}
	if histMgr != nil {
		deps.Recorder = histMgr
	}

	model := tui.NewModel(catalog.All(deps), ui, client, histMgr, log, version, profile.Name)
	defer model.Cleanup()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}

func runMock() error {
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logging.New(os.Stdout, cfg.LogLevel)

	srv := mock.NewServer(flagMockAddr, log)
	if flagMockSeed {
		srv.Seed()
	}
	if err := srv.Start(); err != nil {
		return err
	}
	log.Info("mock backend listening", "addr", srv.Addr(), "seeded", flagMockSeed)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	return srv.Stop()
}
