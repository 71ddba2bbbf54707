// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and prysm contributors
//
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/rs/zerolog/log"

	"github.com/cobaltcore-dev/license-watchdog/pkg/config"
	"github.com/cobaltcore-dev/license-watchdog/pkg/splunk"
	"github.com/cobaltcore-dev/license-watchdog/pkg/watchdog"
)

// loadConfig builds and validates the configuration. host, when set,
// replaces the licensing server for helper commands.
func loadConfig(opts *options, requireInputs bool, host string) (config.Config, error) {
	cfg, err := config.Load(opts.v, opts.configPath, opts.envFile)
	if err != nil {
		return config.Config{}, err
	}
	if host != "" {
		cfg.LicensingServer = host
	}
	if cfg.NodeName == "" {
		cfg.NodeName = defaultNodeName()
	}

	if err := cfg.Validate(requireInputs); err != nil {
		return config.Config{}, err
	}

	event := log.Info()
	event.Str("licensing_server", cfg.LicensingServer)
	event.Str("username", cfg.Username)
	event.Int("inputs", len(cfg.Inputs))
	event.Float64("enable_threshold", cfg.EnableThreshold)
	event.Float64("disable_threshold", cfg.DisableThreshold)
	event.Dur("timeout", cfg.Timeout)
	event.Bool("use_nats", cfg.NatsURL != "")
	if cfg.NatsURL != "" {
		event.Str("nats_url", cfg.NatsURL)
		event.Str("nats_subject", cfg.NatsSubject)
	}
	event.Bool("use_pushgateway", cfg.PushgatewayURL != "")
	event.Str("node_name", cfg.NodeName)
	event.Msg("configuration_loaded")

	return cfg, nil
}

func newSplunkClient(cfg config.Config) (*splunk.API, error) {
	return splunk.New(splunk.Options{
		Endpoint:           cfg.LicensingServer,
		Username:           cfg.Username,
		Password:           cfg.Password,
		SearchApp:          cfg.SearchApp,
		Timeout:            cfg.Timeout,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	})
}

// newReporters returns the configured cycle reporters and a function that
// releases their connections. Reporters that cannot be set up are skipped.
func newReporters(cfg config.Config) ([]watchdog.Reporter, func()) {
	var reporters []watchdog.Reporter
	var closers []func()

	if cfg.NatsURL != "" {
		nr, err := watchdog.NewNATSReporter(cfg.NatsURL, cfg.NatsSubject)
		if err != nil {
			log.Error().Err(err).Str("nats_url", cfg.NatsURL).Msg("error connecting to nats")
		} else {
			reporters = append(reporters, nr)
			closers = append(closers, nr.Close)
		}
	}

	if cfg.PushgatewayURL != "" {
		reporters = append(reporters, watchdog.NewPushReporter(cfg.PushgatewayURL, cfg.PushgatewayJob, cfg.NodeName, cfg.Timeout, watchdog.NewMetrics()))
	}

	return reporters, func() {
		for _, c := range closers {
			c()
		}
	}
}

func newLoop(cfg config.Config) (*watchdog.Loop, func(), error) {
	client, err := newSplunkClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	reporters, cleanup := newReporters(cfg)

	loop := watchdog.NewLoop(watchdog.WatchdogConfig{
		LicensingServer:  cfg.LicensingServer,
		Inputs:           cfg.Inputs,
		EnableThreshold:  cfg.EnableThreshold,
		DisableThreshold: cfg.DisableThreshold,
		NodeName:         cfg.NodeName,
	}, client, reporters...)
	return loop, cleanup, nil
}
