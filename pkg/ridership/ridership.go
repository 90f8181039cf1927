// Package ridership reconstructs passenger trips from simulation events.
//
// A trip starts with a departure event, collects every vehicle the traveler
// boards and finishes at the next activity that is not a transit interaction.
// Trips without any vehicle are walking legs and are never emitted, they are
// counted as walking_only.
package ridership

import (
	"context"
	"iter"
	"strings"

	"github.com/travigo/transit-evaluation/pkg/correlation"
	"github.com/travigo/transit-evaluation/pkg/events"
	"github.com/travigo/transit-evaluation/pkg/tables"
)

const (
	DefaultOperatorPrefix   = "pt_"
	DefaultTransferActivity = "pt interaction"
)

const AnomalyWalkingOnly correlation.Anomaly = "walking_only"

// ClassResolver resolves a vehicle id to its vehicle class
type ClassResolver interface {
	ClassOf(vehicle string) string
}

type Options struct {
	// Travelers with this id prefix are transit operators, not passengers
	OperatorPrefix string
	// Activities of this type are transfers inside a trip
	TransferActivity string
}

func DefaultOptions() Options {
	return Options{
		OperatorPrefix:   DefaultOperatorPrefix,
		TransferActivity: DefaultTransferActivity,
	}
}

// Record is a finished passenger trip
type Record struct {
	PersonID       string          `csv:"personId"`
	VehicleClasses tables.PipeList `csv:"vehTypeList"`
	VehicleIDs     tables.PipeList `csv:"vehIDList"`
	MainMode       string          `csv:"mainMode"`
	StartTime      tables.Seconds  `csv:"startTime"`
	TravelTime     tables.Seconds  `csv:"travelTime"`
}

type trip struct {
	start          float64
	mainMode       string
	vehicleIDs     []string
	vehicleClasses []string
}

// Rules implement correlation.Rules for passenger trips
type Rules struct {
	classes ClassResolver
	options Options
}

func NewRules(classes ClassResolver, options Options) *Rules {
	return &Rules{
		classes: classes,
		options: options,
	}
}

func (r *Rules) Classify(event events.Event) correlation.Step {
	switch event.Kind {
	case events.KindDeparture:
		return correlation.StepOpen
	case events.KindPersonEntersVehicle:
		return correlation.StepExtend
	case events.KindActivityStart:
		if event.ActivityType() == r.options.TransferActivity {
			return correlation.StepIgnore
		}
		return correlation.StepClose
	default:
		return correlation.StepIgnore
	}
}

func (r *Rules) Key(event events.Event) (string, bool) {
	person := event.Person()
	if person == "" {
		return "", false
	}
	if r.options.OperatorPrefix != "" && strings.HasPrefix(person, r.options.OperatorPrefix) {
		return person, false
	}

	return person, true
}

// A second departure while a trip is open keeps the first trip
func (r *Rules) OpenPolicy() correlation.OpenPolicy {
	return correlation.KeepFirst
}

// The main mode is the routing mode of the whole trip. The leg mode of the
// first departure is usually the walk to the stop, so it is not used.
func (r *Rules) Open(event events.Event) *trip {
	return &trip{
		start:    event.Time,
		mainMode: event.RoutingMode(),
	}
}

func (r *Rules) Extend(state *trip, event events.Event) *trip {
	vehicle := event.Vehicle()

	state.vehicleIDs = append(state.vehicleIDs, vehicle)
	state.vehicleClasses = append(state.vehicleClasses, r.classes.ClassOf(vehicle))

	return state
}

func (r *Rules) Assemble(person string, state *trip, event events.Event) (Record, correlation.Anomaly) {
	if len(state.vehicleIDs) == 0 {
		return Record{}, AnomalyWalkingOnly
	}

	return Record{
		PersonID:       person,
		VehicleClasses: tables.PipeList(state.vehicleClasses),
		VehicleIDs:     tables.PipeList(state.vehicleIDs),
		MainMode:       state.mainMode,
		StartTime:      tables.Seconds(state.start),
		TravelTime:     tables.Seconds(event.Time - state.start),
	}, ""
}

func NewCorrelator(classes ClassResolver, options Options, stats *correlation.Stats) *correlation.Correlator[*trip, Record] {
	return correlation.NewCorrelator[*trip, Record]("ridership", NewRules(classes, options), stats)
}

// Reconstruct consumes stream and returns the finished trips in the order
// their closing activities appeared
func Reconstruct(ctx context.Context, stream iter.Seq2[events.Event, error], classes ClassResolver, options Options, stats *correlation.Stats) ([]Record, error) {
	correlator := NewCorrelator(classes, options, stats)

	if err := correlator.Consume(ctx, stream); err != nil {
		return nil, err
	}

	return correlator.Sink().Drain(), nil
}
