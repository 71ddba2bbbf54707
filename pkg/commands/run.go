// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and prysm contributors
//
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/spf13/cobra"

	"github.com/cobaltcore-dev/license-watchdog/pkg/watchdog"
)

func runCycle(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(opts, true, "")
	if err != nil {
		return err
	}
	loop, cleanup, err := newLoop(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	_, err = loop.RunCycle(cmd.Context())
	return err
}

func newForceCmd(opts *options, enable bool) *cobra.Command {
	use, short, decision := "disable-all", "Disable all inputs that have been configured", watchdog.DisableAll
	if enable {
		use, short, decision = "enable-all", "Enable all inputs that have been configured", watchdog.EnableAll
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, true, "")
			if err != nil {
				return err
			}
			loop, cleanup, err := newLoop(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			_, err = loop.Force(cmd.Context(), decision)
			return err
		},
	}
}
