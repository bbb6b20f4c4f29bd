package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"code-atlas/src/config"
	"code-atlas/src/util"
)

// Handler handles CLI commands
type Handler struct {
	cfg        *config.Config
	configPath string
	logLevel   string
	rootCmd    *cobra.Command
}

// New creates a new CLI handler
func New() *Handler {
	h := &Handler{}
	h.rootCmd = &cobra.Command{
		Use:           "code-atlas",
		Short:         "Static code health analysis",
		Long:          "Analyzes source files for complexity, size and duplication smells, then scores health and plans refactors",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return h.loadConfig()
		},
	}

	flags := h.rootCmd.PersistentFlags()
	flags.StringVarP(&h.configPath, "config", "c", "", "Path to configuration file")
	flags.StringVar(&h.logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")

	h.rootCmd.AddCommand(h.analyzeCmd(), h.versionCmd(), h.detectorsCmd())
	return h
}

// loadConfig reads the configuration file, applies --log-level and installs
// the logger before any command runs
func (h *Handler) loadConfig() error {
	cfg, err := config.NewLoader().Load(h.configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if h.logLevel != "" {
		cfg.Logging.Level = h.logLevel
	}
	h.cfg = cfg

	util.SetDefaultLogger(cfg.Logging)
	util.Debug("Configuration loaded (log level %s)", cfg.Logging.Level)
	return nil
}

// override binds a changed flag to the config field it replaces
type override struct {
	flag  string
	apply func(cfg *config.Config)
}

// applyOverrides copies explicitly set flags into the loaded config and
// revalidates it, listing every rejected value
func (h *Handler) applyOverrides(cmd *cobra.Command, overrides []override) error {
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			o.apply(h.cfg)
			util.Debug("Flag --%s overrides configuration", o.flag)
		}
	}
	if err := h.cfg.Validate(); err != nil {
		return invalidOptions(err)
	}
	return nil
}

// invalidOptions flattens a joined validation error into one line per problem
func invalidOptions(err error) error {
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		return fmt.Errorf("invalid options: %w", err)
	}
	var lines []string
	for _, e := range joined.Unwrap() {
		lines = append(lines, "  - "+e.Error())
	}
	return fmt.Errorf("invalid options:\n%s", strings.Join(lines, "\n"))
}

// Execute runs the CLI
func (h *Handler) Execute() error {
	return h.rootCmd.Execute()
}

// Run is the main entry point
func Run() {
	if err := New().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
