package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/tgienger/tkrm/internal/api"
	"github.com/tgienger/tkrm/internal/auth"
	"github.com/tgienger/tkrm/internal/config"
	"github.com/tgienger/tkrm/internal/db"
	"github.com/tgienger/tkrm/internal/devserver"
	"github.com/tgienger/tkrm/internal/logger"
	"github.com/tgienger/tkrm/internal/session"
	"github.com/tgienger/tkrm/internal/ui"
	"github.com/tgienger/tkrm/internal/ui/styles"
	"github.com/tgienger/tkrm/internal/ui/views"
	"go.uber.org/zap"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type flags struct {
	configPath     string
	apiURL         string
	persistSession bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:          "tkrm",
		Short:        "Role-based task manager for the terminal",
		SilenceUsage: true,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(f)
			if err != nil {
				return err
			}
			if f.persistSession && cfg.Session.Path == "" {
				if cfg.Session.Path, err = db.DefaultPath(); err != nil {
					return err
				}
			}
			return runTUI(cfg)
		},
	}
	cmd.PersistentFlags().StringVar(&f.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/tkrm/config.yml)")
	cmd.PersistentFlags().StringVar(&f.apiURL, "api-url", "", "backend base URL, overrides the config file")
	cmd.Flags().BoolVar(&f.persistSession, "persist-session", false, "keep the session on disk between runs")

	cmd.AddCommand(newDevServerCmd(f), newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tkrm %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func newDevServerCmd(f *flags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Serve the task API in memory with seeded users",
		Long: `Serve the task API in memory. Sign in from the terminal client with
one of the seeded addresses:

  admin@example.com     Admin
  manager@example.com   Manager
  erin@example.com      Employee
  eli@example.com       Employee`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(f)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.DevServer.Addr
			}

			// the dev server has no screen to protect, so it logs to stderr
			if err := logger.Init(logger.Options{File: "stderr", Level: cfg.Logging.Level, Development: true}); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return devserver.Run(ctx, addr, devserver.NewSeededStore())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :5000)")
	return cmd
}

func loadConfig(f *flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.apiURL != "" {
		cfg.API.BaseURL = f.apiURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func runTUI(cfg *config.Config) error {
	logFile := cfg.Logging.File
	if logFile == "" {
		p, err := logger.DefaultFile()
		if err != nil {
			return fmt.Errorf("resolve log file: %w", err)
		}
		logFile = p
	}
	if err := logger.Init(logger.Options{File: logFile, Level: cfg.Logging.Level, Development: cfg.Logging.Development}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	database, err := db.Open(cfg.Session.Path)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer database.Close()
	sessions := session.NewStore(database)

	if err := styles.Use(cfg.UI.Theme); err != nil {
		return err
	}

	identity, err := identityProvider(cfg.Identity)
	if err != nil {
		return err
	}

	client := api.New(cfg.API.BaseURL, sessions, api.WithTimeout(cfg.API.Timeout))
	logger.Info("tkrm: starting",
		zap.String("version", version),
		zap.String("api", cfg.API.BaseURL),
		zap.String("identity", identity.Name()),
	)

	app := ui.NewApp(views.Deps{
		API:      client,
		Sessions: sessions,
		Identity: identity,
		Timeout:  cfg.API.Timeout + 5*time.Second,
		Now:      time.Now,
	}, auth.NewGate(sessions, auth.DefaultPolicy))

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("tkrm: program exited", err)
		return fmt.Errorf("run application: %w", err)
	}
	return nil
}

func identityProvider(cfg config.IdentityConfig) (auth.IdentityProvider, error) {
	if cfg.Provider == config.ProviderGoogle {
		p, err := auth.NewGoogleProvider(cfg.ClientSecrets, cfg.CallbackPort)
		if err != nil {
			return nil, fmt.Errorf("google identity: %w", err)
		}
		return p, nil
	}
	return auth.DevProvider{}, nil
}
