package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"folio-hq/relay/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load and validate a configuration file without starting the server.

All validation errors are reported at once, so a broken config can be
fixed in one pass.

Examples:
  # Validate the default config resolution (env overrides included)
  relay validate

  # Validate a specific file
  relay validate --config /etc/relay/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			fmt.Println("✗ Configuration invalid:")
			for _, fe := range verr.Errors {
				fmt.Printf("  - %s: %s\n", fe.Field, fe.Message)
			}
			return fmt.Errorf("%d validation error(s)", len(verr.Errors))
		}
		return err
	}

	fmt.Println("✓ Configuration valid")
	fmt.Printf("  listen address: %s\n", cfg.Server.ListenAddress)
	fmt.Printf("  github user:    %s\n", cfg.Upstreams.GitHub.DefaultUser)
	fmt.Printf("  snapshots:      %t (%s)\n", cfg.Snapshot.Enabled, cfg.Snapshot.Path)
	fmt.Printf("  metrics:        %t\n", cfg.Telemetry.Metrics.Enabled)
	return nil
}
