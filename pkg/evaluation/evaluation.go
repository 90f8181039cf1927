// Package evaluation runs the configured reconstructions over simulation
// scenarios and writes their tables and run summaries.
package evaluation

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/travigo/transit-evaluation/pkg/config"
	"github.com/travigo/transit-evaluation/pkg/correlation"
	"github.com/travigo/transit-evaluation/pkg/events"
	"github.com/travigo/transit-evaluation/pkg/punctuality"
	"github.com/travigo/transit-evaluation/pkg/ridership"
	"github.com/travigo/transit-evaluation/pkg/tables"
	"github.com/travigo/transit-evaluation/pkg/vehicles"
)

type Reconstruction string

const (
	ReconstructionRidership   Reconstruction = "ridership"
	ReconstructionPunctuality Reconstruction = "punctuality"
)

// Job is one reconstruction over one scenario
type Job struct {
	Scenario       config.Scenario
	Reconstruction Reconstruction
}

func (j Job) String() string {
	return fmt.Sprintf("%s/%s", j.Scenario.Name, j.Reconstruction)
}

// Jobs lists every enabled reconstruction for every scenario in config order
func Jobs(cfg *config.AppConfig) []Job {
	var jobs []Job

	for _, scenario := range cfg.Scenarios {
		if cfg.Ridership.IsEnabled() {
			jobs = append(jobs, Job{Scenario: scenario, Reconstruction: ReconstructionRidership})
		}
		if cfg.Punctuality.IsEnabled() {
			jobs = append(jobs, Job{Scenario: scenario, Reconstruction: ReconstructionPunctuality})
		}
	}

	return jobs
}

type Summary struct {
	RunID          uuid.UUID      `json:"runId"`
	Scenario       string         `json:"scenario"`
	Reconstruction Reconstruction `json:"reconstruction"`
	Output         string         `json:"output"`
	Events         int64          `json:"events"`
	Records        int64          `json:"records"`
	InFlight       int64          `json:"inFlight"`
	// Anomalies["excluded"] counts events, ExcludedEntities the distinct ids behind them
	Anomalies        map[string]int64 `json:"anomalies"`
	ExcludedEntities int64            `json:"excludedEntities"`
	Timestamp        time.Time        `json:"timestamp"`
	Duration         string           `json:"duration"`

	Registry *prometheus.Registry `json:"-"`
}

// OutputPath is where the table of job is written
func OutputPath(cfg *config.AppConfig, job Job) string {
	name := cfg.Ridership.Output
	if job.Reconstruction == ReconstructionPunctuality {
		name = cfg.Punctuality.Output
	}

	return filepath.Join(job.Scenario.Output, name)
}

// SummaryPath derives the summary file name from the table file name,
// eg. out/otp.csv becomes out/otp.summary.json
func SummaryPath(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + ".summary.json"
}

// Run reconstructs job and writes its table, and its summary when enabled.
// Nothing is written unless the whole event log was consumed.
func Run(ctx context.Context, cfg *config.AppConfig, job Job) (*Summary, error) {
	runID := uuid.New()
	startTime := time.Now()

	logger := log.With().
		Str("run", runID.String()).
		Str("scenario", job.Scenario.Name).
		Str("reconstruction", string(job.Reconstruction)).
		Logger()

	lookup, err := vehicles.Load(job.Scenario.Vehicles)
	if err != nil {
		return nil, err
	}

	source, err := events.Open(job.Scenario.Events, cfg.Events.Root)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	stats := correlation.NewStats(prometheus.Labels{
		"scenario":       job.Scenario.Name,
		"reconstruction": string(job.Reconstruction),
	})

	output := OutputPath(cfg, job)

	logger.Info().Str("events", job.Scenario.Events).Msg("Starting reconstruction")

	switch job.Reconstruction {
	case ReconstructionRidership:
		records, err := ridership.Reconstruct(ctx, source.All(), lookup, cfg.RidershipOptions(), stats)
		if err != nil {
			return nil, err
		}
		if err := tables.WriteCSV(output, records); err != nil {
			return nil, err
		}
	case ReconstructionPunctuality:
		fleet := lookup.Fleet(cfg.Fleet.Match)
		logger.Info().Str("match", cfg.Fleet.Match).Int("vehicles", fleet.Len()).Msg("Monitoring fleet")

		options := punctuality.Options{StrictFacility: cfg.Punctuality.StrictFacility}
		records, err := punctuality.Reconstruct(ctx, source.All(), fleet, options, stats)
		if err != nil {
			return nil, err
		}
		if err := tables.WriteCSV(output, records); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown reconstruction %q", job.Reconstruction)
	}

	summary := &Summary{
		RunID:            runID,
		Scenario:         job.Scenario.Name,
		Reconstruction:   job.Reconstruction,
		Output:           output,
		Events:           stats.Events(),
		Records:          stats.Emitted(),
		InFlight:         stats.Count(correlation.AnomalyUnfinished),
		Anomalies:        stats.Counts(),
		ExcludedEntities: stats.ExcludedEntities(),
		Timestamp:        startTime,
		Duration:         time.Since(startTime).String(),
		Registry:         stats.Registry(),
	}

	if cfg.WritesSummary() {
		if err := tables.WriteJSON(SummaryPath(output), summary); err != nil {
			return nil, err
		}
	}

	event := logger.Info().
		Int64("events", summary.Events).
		Int64("records", summary.Records).
		Int64("inflight", summary.InFlight).
		Int64("excluded_entities", summary.ExcludedEntities)
	for _, anomaly := range stats.Anomalies() {
		event = event.Int64(string(anomaly), stats.Count(anomaly))
	}
	event.Msgf("Reconstruction took %s", summary.Duration)

	return summary, nil
}
