// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and prysm contributors
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "LICENSE_WATCHDOG"

// Shipped placeholder credentials; a config still carrying them was never
// edited.
const (
	placeholderUsername = "user"
	placeholderPassword = "pass"
)

// Config is the full runtime configuration. It is built once and passed by
// value.
type Config struct {
	LicensingServer    string        `mapstructure:"licensing_server"`
	Username           string        `mapstructure:"username"`
	Password           string        `mapstructure:"password"`
	Inputs             []string      `mapstructure:"inputs"`
	EnableThreshold    float64       `mapstructure:"enable_threshold"`
	DisableThreshold   float64       `mapstructure:"disable_threshold"`
	Timeout            time.Duration `mapstructure:"timeout"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
	SearchApp          string        `mapstructure:"search_app"`
	NatsURL            string        `mapstructure:"nats_url"`
	NatsSubject        string        `mapstructure:"nats_subject"`
	PushgatewayURL     string        `mapstructure:"pushgateway_url"`
	PushgatewayJob     string        `mapstructure:"pushgateway_job"`
	NodeName           string        `mapstructure:"node_name"`
}

// NewViper returns a viper instance with defaults and environment binding
// set up. Flags are bound by the caller.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("licensing_server", "")
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("inputs", []string{})
	v.SetDefault("enable_threshold", 30.0)
	v.SetDefault("disable_threshold", 90.0)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("insecure_skip_verify", true)
	v.SetDefault("search_app", "search")
	v.SetDefault("nats_url", "")
	v.SetDefault("nats_subject", "license.watchdog.cycles")
	v.SetDefault("pushgateway_url", "")
	v.SetDefault("pushgateway_job", "license_watchdog")
	v.SetDefault("node_name", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional env file and config file into v and decodes the
// result. Environment values already set win over the env file.
func Load(v *viper.Viper, configPath, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, &ValidationError{Problems: []string{fmt.Sprintf("error reading env file %s: %v", envFile, err)}}
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, &ValidationError{Problems: []string{fmt.Sprintf("error reading config file: %v", err)}}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, &ValidationError{Problems: []string{fmt.Sprintf("unable to decode into struct: %v", err)}}
	}
	cfg.Inputs = normalizeInputs(cfg.Inputs)
	cfg.LicensingServer = strings.TrimRight(strings.TrimSpace(cfg.LicensingServer), "/")
	return cfg, nil
}

// normalizeInputs accepts comma separated entries, as environment values
// arrive, and drops blanks and duplicates while keeping order.
func normalizeInputs(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	inputs := []string{}
	for _, entry := range raw {
		for _, in := range strings.Split(entry, ",") {
			in = strings.TrimSpace(in)
			if in == "" {
				continue
			}
			if _, dup := seen[in]; dup {
				continue
			}
			seen[in] = struct{}{}
			inputs = append(inputs, in)
		}
	}
	return inputs
}

// Validate checks the configuration before any network activity. Inputs are
// only required by commands that toggle them.
func (c Config) Validate(requireInputs bool) error {
	var problems []string

	if c.LicensingServer == "" {
		problems = append(problems, "licensing server is missing (--licensing-server or "+EnvPrefix+"_LICENSING_SERVER)")
	} else if err := validateURL(c.LicensingServer); err != nil {
		problems = append(problems, fmt.Sprintf("licensing server %q: %v", c.LicensingServer, err))
	}

	switch {
	case c.Username == "" || c.Password == "":
		problems = append(problems, "username and password must be set to access your Splunk instance")
	case c.Username == placeholderUsername && c.Password == placeholderPassword:
		problems = append(problems, "please update user and password to access your Splunk instance")
	}

	if requireInputs {
		if len(c.Inputs) == 0 {
			problems = append(problems, "input list is missing (--input or "+EnvPrefix+"_INPUTS); run discover-inputs to find candidates")
		}
		for _, in := range c.Inputs {
			if err := validateURL(in); err != nil {
				problems = append(problems, fmt.Sprintf("input %q: %v", in, err))
			}
		}
	}

	if c.EnableThreshold <= 0 || c.EnableThreshold >= 100 {
		problems = append(problems, fmt.Sprintf("enable threshold must be between 0 and 100, got %v", c.EnableThreshold))
	}
	if c.DisableThreshold <= 0 || c.DisableThreshold >= 100 {
		problems = append(problems, fmt.Sprintf("disable threshold must be between 0 and 100, got %v", c.DisableThreshold))
	}
	if c.EnableThreshold >= c.DisableThreshold {
		problems = append(problems, fmt.Sprintf("enable threshold (%v) must be lower than disable threshold (%v)", c.EnableThreshold, c.DisableThreshold))
	}
	if c.Timeout <= 0 {
		problems = append(problems, "timeout must be greater than 0")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("protocol://host:port required")
	}
	if u.Host == "" {
		return fmt.Errorf("host is missing")
	}
	return nil
}
