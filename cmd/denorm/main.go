// Command denorm turns the Northwind CSV export into denormalized
// newline-delimited JSON document files: products.json, employees.json,
// orders.json, and customers.json.
//
// Usage:
//
//	denorm [--path|-p DIR] [--outdir|-o DIR]
//
// Settings may also come from ./denorm.yaml and DENORM_* environment
// variables (see internal/config). Diagnostics go to standard output and the
// process exits 0 whether or not every table loaded.
package main

import (
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"denorm/internal/config"
	"denorm/internal/metrics"
	"denorm/internal/metrics/datadog"
	"denorm/internal/metrics/prompush"
	"denorm/internal/schema"
)

func main() {
	log.SetOutput(os.Stdout)
	if err := newRootCmd().Execute(); err != nil {
		log.Printf("denorm: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "denorm",
		Short:         "Denormalize the Northwind CSV export into NDJSON documents",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(".", cmd.Flags())
			if err != nil {
				return err
			}

			runID := uuid.NewString()
			log.Printf("denorm: run=%s %s", runID, cfg)

			issues := config.Validate(cfg, inputFiles())
			for _, iss := range issues {
				log.Printf("config: %s: %s: %s", iss.Severity, iss.Path, iss.Message)
			}
			if config.HasErrors(issues) {
				log.Printf("config: errors found; affected tables and files will fail")
			}

			flush := setupMetrics(cfg, runID)
			defer flush()

			run(cmd.Context(), cfg).log()
			return nil
		},
	}

	cmd.Flags().StringP(config.KeyInputDir, "p", config.DefaultInputDir, "directory holding the CSV tables")
	cmd.Flags().StringP(config.KeyOutputDir, "o", config.DefaultOutputDir, "directory receiving the JSON document files")
	return cmd
}

// inputFiles lists every table file the run reads.
func inputFiles() []string {
	tables := schema.Northwind()
	names := make([]string, 0, len(tables))
	for _, t := range tables {
		names = append(names, t.File)
	}
	return names
}

// setupMetrics installs the configured metrics backend and returns the
// function that flushes it at the end of the run.
func setupMetrics(cfg config.Config, runID string) (flush func()) {
	var (
		b   metrics.Backend
		err error
	)
	switch cfg.Metrics.Backend {
	case config.BackendPushgateway:
		b, err = newPromBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
	case config.BackendDatadog:
		b, err = newDatadogBackend(datadog.Config{
			Addr:       cfg.Metrics.StatsdAddr,
			GlobalTags: []string{"job:" + cfg.Job, "run:" + runID},
		})
	case "", config.BackendNone:
		return func() {}
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", cfg.Metrics.Backend)
		return func() {}
	}
	if err != nil {
		log.Printf("metrics: failed to init %s backend: %v; using nop", cfg.Metrics.Backend, err)
		return func() {}
	}

	log.Printf("metrics: backend=%s job=%s", cfg.Metrics.Backend, cfg.Job)
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}

// Constructors are variables so tests can observe backend selection without
// a live Pushgateway or agent.
var (
	newPromBackend = func(job, url string) (metrics.Backend, error) {
		return prompush.NewBackend(job, url)
	}
	newDatadogBackend = func(cfg datadog.Config) (metrics.Backend, error) {
		return datadog.NewBackend(cfg)
	}
)
