// Package cli implements the ragkit command line interface. Commands
// talk to the core through the driving ports; the concrete services are
// injected once at startup via Wire.
package cli

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/quaystone-labs/ragkit/internal/core/ports/driving"
	"github.com/quaystone-labs/ragkit/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose     bool
	flagConfig  string
	flagDataDir string
)

// Injected services. Commands nil-check these so a partially wired
// binary degrades with a clear error instead of a panic.
var (
	ingestService driving.Ingestor
	askService    driving.Orchestrator
	searchService driving.Searcher
	usageService  driving.UsageReporter

	// supportsFile reports whether a path has an ingestible extension.
	supportsFile func(path string) bool

	// configPath is where config changes are persisted. Empty disables
	// persistence.
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "ragkit",
	Short: "Ask questions over your own documents",
	Long: `ragkit ingests local documents, indexes them for similarity
search and answers questions grounded in the retrieved passages.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	registerGlobalFlags(rootCmd.PersistentFlags())
}

func registerGlobalFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	fs.StringVar(&flagConfig, "config", "", "config file (default ~/.ragkit/config.toml)")
	fs.StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.ragkit/data)")
}

// GlobalPaths pre-parses the global flags so the composition root can
// honour --config and --data-dir before the command runs. Unknown
// flags are ignored; cobra parses the full set again afterwards.
func GlobalPaths(args []string) (cfgPath, dataDir string) {
	fs := pflag.NewFlagSet("ragkit", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	registerGlobalFlags(fs)
	_ = fs.Parse(args)
	return flagConfig, flagDataDir
}

// Services bundles everything the commands need.
type Services struct {
	Ingestor     driving.Ingestor
	Orchestrator driving.Orchestrator
	Searcher     driving.Searcher
	Usage        driving.UsageReporter

	// SupportsFile filters paths for the watch mode.
	SupportsFile func(path string) bool

	// ConfigPath is where "config set" persists changes.
	ConfigPath string
}

// Wire injects the services the commands run against.
func Wire(s Services) {
	ingestService = s.Ingestor
	askService = s.Orchestrator
	searchService = s.Searcher
	usageService = s.Usage
	supportsFile = s.SupportsFile
	configPath = s.ConfigPath
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
