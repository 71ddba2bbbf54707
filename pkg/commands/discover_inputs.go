// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and prysm contributors
//
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const discoverGuidance = `
Review links above. Identify which ones you want to disable when you are approaching
license limit, then add them to the inputs list of your configuration.

Generally, you don't want to disable any internal indexing. You also need to consider if
data loss is what you can tolerate or want to achieve (e.g. disabling file input past its
rotation schedule will lead to loss of data between disabling and enabling). If you're
using Splunk forwarders, though, they have their own cache, so disabling tcp input they
pipe to should be safe.`

func newDiscoverInputsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "discover-inputs [url]",
		Short: "List inputs that can be enabled or disabled, with their state",
		Long: `Discovers all inputs and their current state on the given Splunk node, or the
configured licensing server. protocol://host:port is required, e.g. https://your.server.com:8089`,
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

			log.Info().Str("host", cfg.LicensingServer).Msg("discovering inputs")
			inputs, err := client.DiscoverInputs(cmd.Context(), cfg.LicensingServer)
			if err != nil {
				return fmt.Errorf("discovering inputs: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, in := range inputs {
				status := "Enabled: "
				if in.Disabled {
					status = "Disabled: "
				}
				fmt.Fprintln(out, status+in.URL)
			}
			fmt.Fprintln(out, discoverGuidance)
			return nil
		},
	}
}
