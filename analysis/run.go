package analysis

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ridge/parallel"
	"github.com/ridge/quarry/branch"
	"github.com/ridge/quarry/corrections"
	"github.com/ridge/quarry/tlog"
	"go.uber.org/zap"
)

// Run processes every input file and returns the merged summary.
//
// Files are processed concurrently by up to config.Workers workers (the
// number of CPUs if 0). The first failing file stops the run.
func Run(ctx context.Context, config *Config) (*Summary, error) {
	logger := tlog.Get(ctx)

	corr := corrections.Defaults()
	if config.Corrections != "" {
		var err error
		corr, err = corrections.LoadFile(config.Corrections)
		if err != nil {
			return nil, err
		}
	}

	// fail on a bad selection configuration before any file is opened
	if _, err := NewSelector(config, corr, logger); err != nil {
		return nil, err
	}

	workers := config.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	summary := NewSummary()
	var mu sync.Mutex
	sem := make(chan struct{}, workers)
	started := time.Now()

	err := parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		for _, path := range config.Inputs {
			path := path
			spawn(path, parallel.Continue, func(ctx context.Context) error {
				select {
				case sem <- struct{}{}:
				case <-ctx.Done():
					return ctx.Err()
				}
				defer func() { <-sem }()

				s, err := processFile(ctx, config, corr, path)
				if err != nil {
					filesDone.WithLabelValues("failed").Inc()
					return err
				}
				filesDone.WithLabelValues("done").Inc()

				mu.Lock()
				defer mu.Unlock()
				summary.Merge(s)
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Run finished",
		zap.String("runID", summary.RunID),
		zap.Int("files", len(summary.Files)),
		zap.String("events", humanize.Comma(summary.Events)),
		zap.Duration("elapsed", time.Since(started)))
	return summary, nil
}

func processFile(ctx context.Context, config *Config, corr *corrections.Set, path string) (*Summary, error) {
	logger := tlog.Get(ctx).With(zap.String("file", path))

	if info, err := os.Stat(path); err == nil {
		logger.Debug("Opening", zap.String("size", humanize.Bytes(uint64(info.Size()))))
	}

	tree, err := branch.OpenFiltered(path, config.Tree, UsesBranch)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	selector, err := NewSelector(config, corr, logger)
	if err != nil {
		return nil, err
	}

	summary := NewSummary()
	summary.Files = []string{path}
	err = tree.Each(ctx, config.MaxEvents, func(entry int64) error {
		res := selector.Process(tree)
		summary.Add(res)
		observe(path, res)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to process %s: %w", path, err)
	}

	logger.Info("File processed",
		zap.String("events", humanize.Comma(summary.Events)),
		zap.Int64("oneLepton", summary.OneLepton),
		zap.Int64("twoLeptons", summary.TwoLeptons))
	return summary, nil
}
