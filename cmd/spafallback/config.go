// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config configures the SPA server. It can be read from a YAML file, such as:
//
//	root: /opt/data/myspa
//	listen: ":8080"
//	maxAge: 10m
//	apiPrefix: /api
//
// Explicitly set command line flags take precedence over the YAML file.
type Config struct {
	Root        string        `yaml:"root"`
	Listen      string        `yaml:"listen"`
	MaxAge      time.Duration `yaml:"maxAge"`
	APIPrefix   string        `yaml:"apiPrefix"`
	MetricsPath string        `yaml:"metricsPath"`
	HealthPath  string        `yaml:"healthPath"`
	Verbose     bool          `yaml:"verbose"`
}

// defaultConfig returns the configuration in absence of any YAML file and
// flags.
func defaultConfig() Config {
	return Config{
		Root:        ".",
		Listen:      ":8080",
		APIPrefix:   "/api",
		MetricsPath: "/metrics",
		HealthPath:  "/healthz",
	}
}

// parseConfig returns the configuration from the specified command line
// arguments, reading the YAML file passed in "--config", if any.
func parseConfig(args []string) (*Config, error) {
	cfg := defaultConfig()
	fset := flag.NewFlagSet("spafallback", flag.ContinueOnError)
	configPath := fset.StringP("config", "c", "", "YAML configuration file")
	root := fset.StringP("root", "r", cfg.Root, "directory to serve the SPA from")
	listen := fset.StringP("listen", "l", cfg.Listen, "address to listen on")
	maxAge := fset.Duration("max-age", cfg.MaxAge, "caching duration for static assets other than the root document")
	apiPrefix := fset.String("api-prefix", cfg.APIPrefix, "path prefix never falling back to the root document")
	metricsPath := fset.String("metrics-path", cfg.MetricsPath, "path of the Prometheus metrics endpoint")
	healthPath := fset.String("health-path", cfg.HealthPath, "path of the health check endpoint")
	verbose := fset.BoolP("verbose", "v", cfg.Verbose, "verbose logging")
	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	if *configPath != "" {
		if err := cfg.load(*configPath); err != nil {
			return nil, err
		}
	}
	override := func(name string, apply func()) {
		if fset.Changed(name) {
			apply()
		}
	}
	override("root", func() { cfg.Root = *root })
	override("listen", func() { cfg.Listen = *listen })
	override("max-age", func() { cfg.MaxAge = *maxAge })
	override("api-prefix", func() { cfg.APIPrefix = *apiPrefix })
	override("metrics-path", func() { cfg.MetricsPath = *metricsPath })
	override("health-path", func() { cfg.HealthPath = *healthPath })
	override("verbose", func() { cfg.Verbose = *verbose })

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// load reads the YAML file at the specified path into the configuration,
// leaving fields not present in the file untouched.
func (c *Config) load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read configuration: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Root == "" {
		return errors.New("missing root directory")
	}
	if c.Listen == "" {
		return errors.New("missing listen address")
	}
	if c.MaxAge < 0 {
		return fmt.Errorf("negative max age %s", c.MaxAge)
	}
	for name, path := range map[string]string{
		"API prefix":   c.APIPrefix,
		"metrics path": c.MetricsPath,
		"health path":  c.HealthPath,
	} {
		if path != "" && !strings.HasPrefix(path, "/") {
			return fmt.Errorf("%s %q must start with \"/\"", name, path)
		}
	}
	return nil
}
