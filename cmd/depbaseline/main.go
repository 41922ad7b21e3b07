package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artagon/depbaseline/internal/utils/logger"
)

// Global command flags
var (
	cfgFile  string // Path to the YAML config file
	logLevel string // Explicit log level, wins over --verbose
	verbose  bool   // Shorthand for --log-level debug
)

// createRootCommand creates the depbaseline root command
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "depbaseline",
		Short: "Record and verify dependency integrity baselines",
		Long: `depbaseline records a cryptographic baseline of a project's resolved
build dependencies (a SHA-256 digest and a trusted PGP signing-key
fingerprint per artifact), protects the baseline files with SHA-256/SHA-512
self-integrity sidecars, and later verifies both the baseline's own
authenticity and the live dependency set against it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Path to the YAML config file")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(createGenerateCommand())
	rootCmd.AddCommand(createVerifyCommand())
	rootCmd.AddCommand(createValidateCommand())

	attachLoggingHooks(rootCmd)
	return rootCmd
}

// resolveRequestedLogLevel picks the effective log level: an explicit
// --log-level wins, --verbose falls back to debug, otherwise empty (the
// logger's default).
func resolveRequestedLogLevel(cmd *cobra.Command) string {
	if logLevel != "" {
		return logLevel
	}
	if cmd != nil {
		if v, err := cmd.Flags().GetBool("verbose"); err == nil && v {
			return "debug"
		}
	}
	return ""
}

// attachLoggingHooks installs the logger bootstrap on every subcommand so
// logging is configured after flags are parsed but before any work runs.
func attachLoggingHooks(root *cobra.Command) {
	for _, cmd := range root.Commands() {
		cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
			return logger.Init(resolveRequestedLogLevel(cmd))
		}
	}
}

func main() {
	defer logger.Sync()

	rootCmd := createRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
