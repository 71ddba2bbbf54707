// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and prysm contributors
//
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cobaltcore-dev/license-watchdog/pkg/watchdog"
)

func hostArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return ""
}

func newCheckLicenseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check-license [url]",
		Short: "Show license quota and today's usage",
		Long: `Retrieves license information from the given Splunk node, or the configured
licensing server. protocol://host:port is required, e.g. https://your.server.com:8089`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, false, hostArg(args))
			if err != nil {
				return err
			}
			client, err := newSplunkClient(cfg)
			if err != nil {
				return err
			}

			log.Info().Str("host", cfg.LicensingServer).Msg("checking license info")
			usage, err := client.LicenseUsage(cmd.Context(), cfg.LicensingServer)
			if err != nil {
				return fmt.Errorf("getting license data: %w", err)
			}
			snapshot, err := watchdog.NewUsageSnapshot(usage.Used, usage.Quota)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Licensing quota: %0.3f GiB\n", snapshot.Quota)
			fmt.Fprintf(out, "Used today: %0.3f GiB (%0.1f%%)\n", snapshot.Used, snapshot.PercentUsed)
			return nil
		},
	}
}

