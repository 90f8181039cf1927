// Package punctuality reconstructs vehicle dwells at stops, the input for
// on-time performance scoring.
package punctuality

import (
	"context"
	"iter"

	"github.com/rs/zerolog/log"
	"github.com/travigo/transit-evaluation/pkg/correlation"
	"github.com/travigo/transit-evaluation/pkg/events"
	"github.com/travigo/transit-evaluation/pkg/tables"
)

const (
	AnomalyMissingDelay     correlation.Anomaly = "missing_delay"
	AnomalyFacilityMismatch correlation.Anomaly = "facility_mismatch"
)

// Fleet is the set of monitored vehicles
type Fleet interface {
	Contains(vehicle string) bool
}

type Options struct {
	// StrictFacility discards dwells whose departure facility differs from
	// the arrival facility instead of only counting them
	StrictFacility bool
}

// Record is a finished dwell of one vehicle at one stop
type Record struct {
	VehicleID      string         `csv:"vehicleId"`
	StopID         string         `csv:"stopId"`
	ArrivalDelay   tables.Seconds `csv:"arrDelay"`
	DepartureDelay tables.Seconds `csv:"depDelay"`
	ArrivalTime    tables.Seconds `csv:"arrivalTime"`
	DepartureTime  tables.Seconds `csv:"departureTime"`
}

type stopVisit struct {
	stopID       string
	arrivalTime  float64
	arrivalDelay float64
}

// Rules implement correlation.Rules for stop dwells
type Rules struct {
	fleet   Fleet
	options Options
	stats   *correlation.Stats
}

func NewRules(fleet Fleet, options Options, stats *correlation.Stats) *Rules {
	return &Rules{
		fleet:   fleet,
		options: options,
		stats:   stats,
	}
}

func (r *Rules) Classify(event events.Event) correlation.Step {
	switch event.Kind {
	case events.KindVehicleArrivesAtFacility:
		return correlation.StepOpen
	case events.KindVehicleDepartsAtFacility:
		return correlation.StepClose
	default:
		return correlation.StepIgnore
	}
}

func (r *Rules) Key(event events.Event) (string, bool) {
	vehicle := event.Vehicle()
	if !r.fleet.Contains(vehicle) {
		return vehicle, false
	}

	return vehicle, true
}

// A second arrival before a departure replaces the first one
func (r *Rules) OpenPolicy() correlation.OpenPolicy {
	return correlation.Replace
}

func (r *Rules) Open(event events.Event) *stopVisit {
	return &stopVisit{
		stopID:       event.Facility(),
		arrivalTime:  event.Time,
		arrivalDelay: r.delay(event),
	}
}

// Dwells have no intermediate events
func (r *Rules) Extend(state *stopVisit, _ events.Event) *stopVisit {
	return state
}

func (r *Rules) Assemble(vehicle string, state *stopVisit, event events.Event) (Record, correlation.Anomaly) {
	if facility := event.Facility(); facility != state.stopID {
		r.stats.Record(AnomalyFacilityMismatch)
		log.Debug().
			Str("vehicle", vehicle).
			Str("arrival", state.stopID).
			Str("departure", facility).
			Float64("time", event.Time).
			Msg("Departure facility differs from arrival facility")

		if r.options.StrictFacility {
			return Record{}, correlation.AnomalyDiscarded
		}
	}

	return Record{
		VehicleID:      vehicle,
		StopID:         state.stopID,
		ArrivalDelay:   tables.Seconds(state.arrivalDelay),
		DepartureDelay: tables.Seconds(r.delay(event)),
		ArrivalTime:    tables.Seconds(state.arrivalTime),
		DepartureTime:  tables.Seconds(event.Time),
	}, ""
}

// Not every log producer writes delays, missing ones count as on time
func (r *Rules) delay(event events.Event) float64 {
	delay, ok := event.Float("delay")
	if !ok {
		r.stats.Record(AnomalyMissingDelay)
		return 0
	}

	return delay
}

func NewCorrelator(fleet Fleet, options Options, stats *correlation.Stats) *correlation.Correlator[*stopVisit, Record] {
	return correlation.NewCorrelator[*stopVisit, Record]("punctuality", NewRules(fleet, options, stats), stats)
}

// Reconstruct consumes stream and returns the finished dwells in departure order
func Reconstruct(ctx context.Context, stream iter.Seq2[events.Event, error], fleet Fleet, options Options, stats *correlation.Stats) ([]Record, error) {
	correlator := NewCorrelator(fleet, options, stats)

	if err := correlator.Consume(ctx, stream); err != nil {
		return nil, err
	}

	return correlator.Sink().Drain(), nil
}
