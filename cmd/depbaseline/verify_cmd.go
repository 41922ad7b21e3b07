package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artagon/depbaseline/internal/utils/logger"
	"github.com/artagon/depbaseline/internal/verify"
)

// createVerifyCommand creates the verify subcommand
func createVerifyCommand() *cobra.Command {
	flags := &commonFlags{}
	var reportOut string

	verifyCmd := &cobra.Command{
		Use:   "verify [flags]",
		Short: "Verify the live dependency set against the recorded baseline",
		Long: `Verify first recomputes the SHA-256/SHA-512 sidecar digests of both
baseline files; any mismatch fails immediately, because the ground truth
itself may be compromised. It then re-resolves the live coordinate set and
compares every digest and signing-key fingerprint against the baseline,
collecting all discrepancies into one report.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeVerify(cmd, flags, reportOut)
		},
	}

	flags.register(verifyCmd.Flags())
	verifyCmd.Flags().StringVar(&reportOut, "report-out", "", "Also write the verification report to this file")
	return verifyCmd
}

// executeVerify handles the verify command logic
func executeVerify(cmd *cobra.Command, flags *commonFlags, reportOut string) error {
	log := logger.Logger()

	cfg, err := flags.effectiveConfig(cmd)
	if err != nil {
		return err
	}
	proj, format, err := baselineTarget(cfg)
	if err != nil {
		return err
	}
	collector, err := newCollector(cfg, false)
	if err != nil {
		return err
	}

	runner := verify.NewRunner(verify.Options{
		OutputDir:  cfg.OutputDir,
		Project:    proj,
		Format:     format,
		Scopes:     cfg.Scopes,
		Transitive: cfg.IncludeTransitive(),
	}, flags.newResolver(cfg), collector)

	report, err := runner.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("verification could not run: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), report.Render())
	if reportOut != "" {
		if err := report.WriteFile(reportOut); err != nil {
			return err
		}
		log.Infof("report written to %s", reportOut)
	}

	if !report.Passed() {
		return fmt.Errorf("verification failed with %d findings", len(report.Findings))
	}
	log.Infof("baseline verified: %s:%s", proj.Group, proj.Artifact)
	return nil
}
