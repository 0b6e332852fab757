// Command quarry runs the object selection described by a configuration file
// over event files and writes a YAML summary of the yields.
package main

import (
	"context"
	"errors"

	"github.com/ridge/parallel"
	"github.com/ridge/quarry/analysis"
	"github.com/ridge/quarry/run"
	"github.com/ridge/quarry/thttp"
	"github.com/ridge/quarry/tlog"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	configPath := pflag.String("config", "", "Analysis configuration file (YAML)")
	output := pflag.StringP("output", "o", "summary.yaml", "Summary output file")
	metricsAddr := pflag.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	maxEvents := pflag.Int64("max-events", -1, "Read at most this many events per file (negative: all)")
	pflag.Parse()

	run.Tool(func(ctx context.Context) error {
		if *configPath == "" {
			return errors.New("--config is required")
		}
		config, err := analysis.LoadConfig(*configPath)
		if err != nil {
			return err
		}
		if pflag.CommandLine.Changed("max-events") {
			config.MaxEvents = *maxEvents
			if config.MaxEvents < -1 {
				config.MaxEvents = -1
			}
		}

		return parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
			if *metricsAddr != "" {
				server, err := thttp.Listen(*metricsAddr, thttp.Metrics())
				if err != nil {
					return err
				}
				spawn("metrics", parallel.Fail, server.Run)
			}
			spawn("analysis", parallel.Exit, func(ctx context.Context) error {
				summary, err := analysis.Run(ctx, config)
				if err != nil {
					return err
				}
				if err := summary.WriteFile(*output); err != nil {
					return err
				}
				tlog.Get(ctx).Info("Summary written", zap.String("path", *output), zap.String("runID", summary.RunID))
				return nil
			})
			return nil
		})
	})
}
