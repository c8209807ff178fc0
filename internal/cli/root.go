package cli

import (
	"fmt"
	"os"

	cmdpkg "github.com/berrythewa/quicklaunch/internal/cli/cmd"
	"github.com/berrythewa/quicklaunch/internal/common"
	"github.com/berrythewa/quicklaunch/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags that apply to all commands
	logLevel   string
	cfgFile    string
	noFileLog  bool
	verbose    bool
	socketPath string

	// Flags for the launcher itself
	frontend  string
	noSuggest bool

	// The loaded configuration
	cfg *config.Config

	// Logger instance
	logger *zap.Logger

	// Version information - set by main
	Version   = "dev"
	BuildTime = "unknown"
	Commit    = "none"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "qlaunch [target]",
	Short: "qlaunch is a keyboard launcher for URLs and commands",
	Long: `qlaunch opens a small launcher window. Pick a target, type an argument
and press enter to open the target's URL or run its command.

Only one launcher runs at a time: starting qlaunch while one is open
brings the existing window forward with the given target.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLauncher(cmd, args)
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		// Load config first
		cfg, err = config.Load(cfgFile)
		if err != nil {
			// edit has to work on a broken file
			if cmd.Name() != "edit" {
				return fmt.Errorf("failed to load config: %w", err)
			}
			paths, perr := config.GetConfigPaths()
			if perr != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg = config.DefaultConfig()
			cfg.SystemPaths = *paths
			if cfgFile != "" {
				cfg.SystemPaths.ActiveConfig = cfgFile
			}
		}

		// Override config with flags
		if socketPath != "" {
			cfg.IPC.SocketPath = socketPath
		}
		if frontend != "" {
			cfg.Frontend = frontend
		}
		if noSuggest {
			cfg.Suggest.Enabled = false
		}
		if noFileLog {
			cfg.Log.EnableFileLogging = false
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		logger, err = common.NewLogger(cfg, common.LoggerOptions{
			Verbose: verbose,
			Level:   logLevel,
		})
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}

		logger.Debug("Configuration loaded",
			zap.String("config", cfg.SystemPaths.ActiveConfig),
			zap.String("data_dir", cfg.SystemPaths.DataDir),
			zap.Int("targets", len(cfg.Targets)),
			zap.String("frontend", cfg.Frontend))

		// Share cfg and logger with cmd package
		cmdpkg.SetConfig(cfg)
		cmdpkg.SetZapLogger(logger)

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		cleanup()
	},
}

// cleanup flushes the logger before exit
func cleanup() {
	if logger != nil {
		_ = logger.Sync()
	}
}

// Execute runs the root command. It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		cleanup()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetVersionInfo sets the version information used by the version command
func SetVersionInfo(version, buildTime, commit string) {
	Version = version
	BuildTime = buildTime
	Commit = commit
	RootCmd.Version = version
	cmdpkg.SetVersionInfo(version, buildTime, commit)
}

// AddCommand adds a command to the root command
func AddCommand(cmd *cobra.Command) {
	RootCmd.AddCommand(cmd)
}

func init() {
	// Global flags for all commands
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <config dir>/qlaunch/config.yaml)")
	RootCmd.PersistentFlags().BoolVar(&noFileLog, "no-file-log", false, "Disable logging to file")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose development logging")
	RootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "Single instance socket path")

	// Flags for the launcher (the default command)
	RootCmd.Flags().StringVar(&frontend, "frontend", "", "Frontend to use (tui, gui, line)")
	RootCmd.Flags().BoolVar(&noSuggest, "no-suggest", false, "Start with remote suggestions disabled")
}
