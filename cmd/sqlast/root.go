package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pthm/sqlast/internal/cli"
	"github.com/pthm/sqlast/internal/logging"
)

var (
	// Global state set during PersistentPreRunE
	cfg        *cli.Config
	configPath string
	logger     = logging.Nop()

	// Persistent flags
	cfgFile string
	verbose int
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "sqlast",
	Short: "Structurally validated SQL from statement documents",
	Long: `sqlast - structurally validated SQL from statement documents

sqlast builds SELECT, INSERT, UPDATE and DELETE statements from YAML or JSON
documents, compiles them for PostgreSQL or SQL Server, and binds parameters
in placeholder order.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for help/completion/version commands
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, configPath, err = cli.LoadConfig(cfgFile)
		if err != nil {
			return cli.ConfigError("loading configuration", err)
		}

		level := logging.Verbosity(logging.ParseLevel(cfg.Log.Level), verbose, quiet)
		l, err := logging.New().FromWriter(cmd.ErrOrStderr()).Level(level).Console(true).Make()
		if err != nil {
			return cli.GeneralError("creating logger", err)
		}
		logger = l.Logger
		logger.Debug().Str("config", configPath).Str("dialect", cfg.Dialect).Msg("configuration loaded")

		return nil
	},
	SilenceUsage:  true, // Don't show usage on errors
	SilenceErrors: true, // We handle errors ourselves
}

// Command group IDs
const (
	groupStatement = "statement"
	groupDatabase  = "database"
	groupUtility   = "utility"
)

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: auto-discover sqlast.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase verbosity (can be repeated)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupStatement, Title: "Statements:"},
		&cobra.Group{ID: groupDatabase, Title: "Database:"},
		&cobra.Group{ID: groupUtility, Title: "Utility:"},
	)

	renderCmd.GroupID = groupStatement
	validateCmd.GroupID = groupStatement
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(validateCmd)

	execCmd.GroupID = groupDatabase
	rootCmd.AddCommand(execCmd)

	configCmd.GroupID = groupUtility
	versionCmd.GroupID = groupUtility
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cli.ExitWithError(err)
	}
}

// resolveString returns the first non-empty string from the provided values.
// Used to implement precedence: flag > config > default.
func resolveString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// statementLogger returns the logger scoped to one document.
func statementLogger(name string) zerolog.Logger {
	return logger.With().Str("statement", name).Logger()
}
