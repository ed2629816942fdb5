// Package config defines the run configuration for the denormalizer and
// resolves it from layered sources.
//
// Precedence, lowest to highest:
//
//  1. built-in defaults (Default)
//  2. an optional denorm.yaml in the config directory
//  3. DENORM_* environment variables (DENORM_PATH, DENORM_OUTDIR,
//     DENORM_METRICS_BACKEND, ...)
//  4. command-line flags that were explicitly set
//
// Example denorm.yaml:
//
//	path: ../northwind-mongo
//	outdir: ./out
//	job: northwind
//	metrics:
//	  backend: pushgateway
//	  pushgateway_url: http://localhost:9091
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Defaults applied before any other source.
const (
	DefaultInputDir       = "../northwind-mongo"
	DefaultOutputDir      = "."
	DefaultJob            = "northwind"
	DefaultMetricsBackend = "none"
	DefaultPushgatewayURL = "http://localhost:9091"
	DefaultStatsdAddr     = "127.0.0.1:8125"

	// EnvPrefix namespaces the environment overrides.
	EnvPrefix = "DENORM"
	// FileName is the config file base name looked up in the config directory.
	FileName = "denorm"
)

// Keys understood by Load. Flag names match the top-level keys.
const (
	KeyInputDir       = "path"
	KeyOutputDir      = "outdir"
	KeyJob            = "job"
	KeyMetricsBackend = "metrics.backend"
	KeyPushgatewayURL = "metrics.pushgateway_url"
	KeyStatsdAddr     = "metrics.statsd_addr"
)

// Metrics backend names.
const (
	BackendNone        = "none"
	BackendPushgateway = "pushgateway"
	BackendDatadog     = "datadog"
)

// Config is the fully resolved run configuration. It is built once at process
// entry and passed explicitly to every component.
type Config struct {
	// InputDir holds the delimited source tables.
	InputDir string
	// OutputDir receives the document files.
	OutputDir string
	// Job labels metrics and log lines for the run.
	Job string

	Metrics Metrics
}

// Metrics selects and configures the optional metrics backend.
type Metrics struct {
	// Backend is one of none, pushgateway, datadog.
	Backend        string
	PushgatewayURL string
	StatsdAddr     string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		InputDir:  DefaultInputDir,
		OutputDir: DefaultOutputDir,
		Job:       DefaultJob,
		Metrics: Metrics{
			Backend:        DefaultMetricsBackend,
			PushgatewayURL: DefaultPushgatewayURL,
			StatsdAddr:     DefaultStatsdAddr,
		},
	}
}

// Load resolves the configuration. configDir is searched for denorm.yaml (an
// empty configDir skips the file). flags may be nil; only flags the user
// actually set override the lower layers.
//
// A missing config file is not an error. A malformed one is.
func Load(configDir string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault(KeyInputDir, def.InputDir)
	v.SetDefault(KeyOutputDir, def.OutputDir)
	v.SetDefault(KeyJob, def.Job)
	v.SetDefault(KeyMetricsBackend, def.Metrics.Backend)
	v.SetDefault(KeyPushgatewayURL, def.Metrics.PushgatewayURL)
	v.SetDefault(KeyStatsdAddr, def.Metrics.StatsdAddr)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configDir != "" {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return def, fmt.Errorf("read config: %w", err)
			}
		} else {
			log.Printf("config: loaded %s", v.ConfigFileUsed())
		}
	}

	if flags != nil {
		for _, key := range []string{KeyInputDir, KeyOutputDir, KeyJob} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return def, fmt.Errorf("bind flag %s: %w", key, err)
				}
			}
		}
	}

	cfg := Config{
		InputDir:  v.GetString(KeyInputDir),
		OutputDir: v.GetString(KeyOutputDir),
		Job:       v.GetString(KeyJob),
		Metrics: Metrics{
			Backend:        strings.ToLower(strings.TrimSpace(v.GetString(KeyMetricsBackend))),
			PushgatewayURL: v.GetString(KeyPushgatewayURL),
			StatsdAddr:     v.GetString(KeyStatsdAddr),
		},
	}
	return cfg, nil
}

// String renders the configuration for the startup log line.
func (c Config) String() string {
	return fmt.Sprintf("path=%s outdir=%s job=%s metrics=%s", c.InputDir, c.OutputDir, c.Job, c.Metrics.Backend)
}
