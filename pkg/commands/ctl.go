// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and prysm contributors
//
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cobaltcore-dev/license-watchdog/pkg/config"
)

type options struct {
	v          *viper.Viper
	configPath string
	envFile    string
	verbosity  string
	logFormat  string
	logFile    string
	verbose    bool
	quiet      bool
}

func newRootCmd() *cobra.Command {
	opts := &options{v: config.NewViper()}

	rootCmd := &cobra.Command{
		Use:   "license-watchdog",
		Short: "Keep Splunk license usage within quota by toggling inputs",
		Long: `Checks today's Splunk license usage and disables the configured inputs when
usage crosses the disable threshold. Inputs are enabled again once usage drops
under the enable threshold (a new license day) or once the quota has already
been exceeded. Running without a subcommand executes one cycle; schedule it
with cron or a Kubernetes CronJob.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setUpLogs(opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCycle(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to configuration file (yaml, json or toml)")
	flags.StringVar(&opts.envFile, "env-file", "", "Path to a .env file with "+config.EnvPrefix+"_* variables")
	flags.StringVar(&opts.verbosity, "verbosity", zerolog.InfoLevel.String(), "Log level (debug, info, warn, error, fatal, panic)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output, including Splunk queries and responses")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Quiet mode, errors and input changes only")
	flags.StringVar(&opts.logFormat, "log-format", "json", "Log format (json, console)")
	flags.StringVar(&opts.logFile, "log-file", "", "Write logs to this file, rotated by size, instead of stdout")
	bindConfigFlags(flags, opts.v)

	rootCmd.AddCommand(newCheckLicenseCmd(opts))
	rootCmd.AddCommand(newDiscoverInputsCmd(opts))
	rootCmd.AddCommand(newForceCmd(opts, true))
	rootCmd.AddCommand(newForceCmd(opts, false))

	return rootCmd
}

// bindConfigFlags registers one flag per configuration key.
func bindConfigFlags(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("licensing-server", "", "Splunk server holding license pool info, e.g. https://splunk.example.com:8089")
	flags.String("username", "", "Splunk username")
	flags.String("password", "", "Splunk password")
	flags.StringSlice("input", []string{}, "Input URL to toggle (repeatable)")
	flags.Float64("enable-threshold", 30, "Enable inputs when usage is under this percentage")
	flags.Float64("disable-threshold", 90, "Disable inputs when usage is over this percentage")
	flags.Duration("timeout", 30*time.Second, "Timeout of each request to Splunk")
	flags.Bool("insecure-skip-verify", true, "Accept self-signed Splunk certificates")
	flags.String("search-app", "search", "Splunk app namespace used for the license search")
	flags.String("nats-url", "", "NATS server URL to publish cycle reports to")
	flags.String("nats-subject", "license.watchdog.cycles", "NATS subject for cycle reports")
	flags.String("pushgateway-url", "", "Prometheus Pushgateway URL to push cycle metrics to")
	flags.String("pushgateway-job", "license_watchdog", "Pushgateway job name")
	flags.String("node-name", "", "Name reported with cycle reports (default $NODE_NAME or hostname)")

	for key, name := range configFlags {
		mustBindPFlag(v, key, flags.Lookup(name))
	}
}

// configFlags maps configuration keys to the flags that set them.
var configFlags = map[string]string{
	"licensing_server":     "licensing-server",
	"username":             "username",
	"password":             "password",
	"inputs":               "input",
	"enable_threshold":     "enable-threshold",
	"disable_threshold":    "disable-threshold",
	"timeout":              "timeout",
	"insecure_skip_verify": "insecure-skip-verify",
	"search_app":           "search-app",
	"nats_url":             "nats-url",
	"nats_subject":         "nats-subject",
	"pushgateway_url":      "pushgateway-url",
	"pushgateway_job":      "pushgateway-job",
	"node_name":            "node-name",
}

// mustBindPFlag panics when the flag does not exist, which is a programming
// error in configFlags.
func mustBindPFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if flag == nil {
		panic(fmt.Sprintf("no flag registered for configuration key %q", key))
	}
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "license-watchdog: %s\n", err)
		os.Exit(1)
	}
}

// setUpLogs sets the log output and the log level
func setUpLogs(opts *options) error {
	lvl, err := zerolog.ParseLevel(opts.verbosity)
	if err != nil {
		return err
	}
	switch {
	case opts.verbose:
		lvl = zerolog.DebugLevel
	case opts.quiet:
		lvl = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var out io.Writer = os.Stdout
	if opts.logFile != "" {
		out = &lumberjack.Logger{
			Filename:   opts.logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
	}

	switch opts.logFormat {
	case "json", "":
	case "console":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.DateTime, NoColor: opts.logFile != ""}
	default:
		return fmt.Errorf("unknown log format %q", opts.logFormat)
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// defaultNodeName follows the Kubernetes downward API convention first.
func defaultNodeName() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = ""
	}
	return getEnv("NODE_NAME", hostname)
}
