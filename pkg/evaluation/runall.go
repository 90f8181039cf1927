package evaluation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/transit-evaluation/pkg/archiver"
	"github.com/travigo/transit-evaluation/pkg/config"
)

// RunAll runs jobs concurrently, at most cfg.Parallelism at a time when it is
// set. Each job owns its own source, state tables and sink. The first failure
// cancels the remaining jobs. Summaries are returned in job order.
func RunAll(ctx context.Context, cfg *config.AppConfig, jobs []Job) ([]*Summary, error) {
	summaries := make([]*Summary, len(jobs))

	basePool := pool.New()
	if cfg.Parallelism > 0 {
		basePool = basePool.WithMaxGoroutines(cfg.Parallelism)
	}
	p := basePool.WithContext(ctx).WithCancelOnError().WithFirstError()

	for i, job := range jobs {
		p.Go(func(ctx context.Context) error {
			summary, err := Run(ctx, cfg, job)
			if err != nil {
				return fmt.Errorf("%s: %w", job, err)
			}

			summaries[i] = summary
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}

	if cfg.MetricsFile != "" {
		if err := WriteMetrics(cfg.MetricsFile, summaries); err != nil {
			return nil, err
		}
	}

	if cfg.Archive {
		if err := Archive(cfg, summaries); err != nil {
			return nil, err
		}
	}

	return summaries, nil
}

// Archive bundles the tables and summaries of each scenario
func Archive(cfg *config.AppConfig, summaries []*Summary) error {
	for _, scenario := range cfg.Scenarios {
		var files []string
		for _, summary := range summaries {
			if summary == nil || summary.Scenario != scenario.Name {
				continue
			}

			files = append(files, summary.Output)
			if cfg.WritesSummary() {
				files = append(files, SummaryPath(summary.Output))
			}
		}
		if len(files) == 0 {
			continue
		}

		bundle := &archiver.Archiver{
			OutputDirectory: scenario.Output,
			BundleName:      scenario.Name,
		}
		if err := bundle.Perform(files); err != nil {
			return err
		}
	}

	return nil
}

// WriteMetrics exports the counters of every run as a Prometheus textfile
func WriteMetrics(path string, summaries []*Summary) error {
	gatherers := make(prometheus.Gatherers, 0, len(summaries))
	for _, summary := range summaries {
		if summary != nil && summary.Registry != nil {
			gatherers = append(gatherers, summary.Registry)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(path, gatherers); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}

	log.Info().Str("path", path).Int("runs", len(gatherers)).Msg("Saved metrics")

	return nil
}
