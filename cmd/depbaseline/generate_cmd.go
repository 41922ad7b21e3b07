package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/artagon/depbaseline/internal/snapshot"
	"github.com/artagon/depbaseline/internal/utils/logger"
)

// createGenerateCommand creates the generate subcommand
func createGenerateCommand() *cobra.Command {
	flags := &commonFlags{}

	generateCmd := &cobra.Command{
		Use:   "generate [flags]",
		Short: "Record a fresh dependency integrity baseline",
		Long: `Generate resolves the project's dependency coordinates, fetches each
artifact and its detached signature, and records one SHA-256 digest and one
signing-key fingerprint per coordinate. The two baseline files are rewritten
wholesale and protected with SHA-256/SHA-512 sidecar digests. An interrupted
run leaves the previous baseline intact.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeGenerate(cmd, flags)
		},
	}

	flags.register(generateCmd.Flags())
	return generateCmd
}

// executeGenerate handles the generate command logic
func executeGenerate(cmd *cobra.Command, flags *commonFlags) error {
	log := logger.Logger()

	cfg, err := flags.effectiveConfig(cmd)
	if err != nil {
		return err
	}
	proj, format, err := baselineTarget(cfg)
	if err != nil {
		return err
	}
	collector, err := newCollector(cfg, true)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log.Infof("generate run %s for %s:%s", runID, proj.Group, proj.Artifact)

	result, err := snapshot.Generate(cmd.Context(), snapshot.GenerateOptions{
		OutputDir:  cfg.OutputDir,
		Project:    proj,
		Format:     format,
		Scopes:     cfg.Scopes,
		Transitive: cfg.IncludeTransitive(),
	}, flags.newResolver(cfg), collector)
	if err != nil {
		return fmt.Errorf("generate failed: %w", err)
	}

	log.Infof("recorded %d coordinates (%d unsigned)", result.Coordinates, result.Unsigned)
	fmt.Fprintf(cmd.OutOrStdout(), "baseline written:\n  %s\n  %s\n",
		result.ChecksumPath, result.TrustPath)
	for _, sc := range result.SidecarPaths {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", sc)
	}
	return nil
}
