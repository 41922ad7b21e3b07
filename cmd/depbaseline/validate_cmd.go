package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artagon/depbaseline/internal/config"
	"github.com/artagon/depbaseline/internal/utils/logger"
)

// createValidateCommand creates the validate subcommand
func createValidateCommand() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate [flags] CONFIG_FILE",
		Short: "Validate a depbaseline config file",
		Long: `Validate checks a YAML config file against the embedded schema without
running anything. This allows catching config errors before committing to a
full generate or verify run.`,
		Args: cobra.ExactArgs(1),
		RunE: executeValidate,
	}
	return validateCmd
}

// executeValidate handles the validate command logic
func executeValidate(cmd *cobra.Command, args []string) error {
	log := logger.Logger()
	configFile := args[0]

	log.Infof("validating config file: %s", configFile)

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "config valid: %s:%s (format %s, %d scopes)\n",
		cfg.Project.Group, cfg.Project.Artifact, cfg.Format, len(cfg.Scopes))
	return nil
}
