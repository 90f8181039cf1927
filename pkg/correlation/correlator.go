package correlation

import (
	"context"
	"iter"

	"github.com/rs/zerolog/log"
	"github.com/travigo/transit-evaluation/pkg/events"
)

// Step is the role an event plays in the lifecycle of an in-flight entity
type Step int

const (
	StepIgnore Step = iota
	StepOpen
	StepExtend
	StepClose
)

func (s Step) String() string {
	switch s {
	case StepOpen:
		return "open"
	case StepExtend:
		return "extend"
	case StepClose:
		return "close"
	default:
		return "ignore"
	}
}

// OpenPolicy decides what an open event does when its key is already in flight
type OpenPolicy int

const (
	// KeepFirst leaves the existing entity in place and drops the new open
	KeepFirst OpenPolicy = iota
	// Replace overwrites the existing entity, which is never emitted
	Replace
)

// Rules specialise the Correlator for one kind of reconstructed entity.
// S is the in-flight state and R the finished record.
type Rules[S any, R any] interface {
	// Classify is called first for every event
	Classify(event events.Event) Step
	// Key returns false for entities that are excluded from processing, along
	// with their id when there is one. It runs before any state table lookup.
	Key(event events.Event) (string, bool)
	OpenPolicy() OpenPolicy
	Open(event events.Event) S
	Extend(state S, event events.Event) S
	// Assemble turns a closed entity into a record. A non-empty anomaly
	// discards the entity and is counted under that name.
	Assemble(key string, state S, event events.Event) (R, Anomaly)
}

const cancellationCheckInterval = 4096

// Correlator drives the open/extend/close state machine for one run.
// Events must be handled sequentially in stream order.
type Correlator[S any, R any] struct {
	name  string
	rules Rules[S, R]
	table *StateTable[S]
	sink  *Sink[R]
	stats *Stats
}

func NewCorrelator[S any, R any](name string, rules Rules[S, R], stats *Stats) *Correlator[S, R] {
	return &Correlator[S, R]{
		name:  name,
		rules: rules,
		table: NewStateTable[S](),
		sink:  NewSink[R](),
		stats: stats,
	}
}

// Handle fully processes a single event before returning
func (c *Correlator[S, R]) Handle(event events.Event) {
	c.stats.observeEvent()

	step := c.rules.Classify(event)
	if step == StepIgnore {
		return
	}

	key, ok := c.rules.Key(event)
	if !ok {
		c.stats.exclude(key)
		return
	}

	switch step {
	case StepOpen:
		c.open(key, event)
	case StepExtend:
		extended := c.table.Update(key, func(state S) S {
			return c.rules.Extend(state, event)
		})
		if !extended {
			c.stats.Record(AnomalyOrphanExtend)
		}
	case StepClose:
		c.close(key, event)
	}
}

func (c *Correlator[S, R]) open(key string, event events.Event) {
	if c.rules.OpenPolicy() == Replace {
		if replaced := c.table.Put(key, c.rules.Open(event)); replaced {
			c.stats.Record(AnomalyReplacedOpen)
			log.Debug().Str("correlator", c.name).Str("key", key).Float64("time", event.Time).Msg("Replaced in-flight entity")
		}
		return
	}

	_, created := c.table.CreateIfAbsent(key, func() S {
		return c.rules.Open(event)
	})
	if !created {
		c.stats.Record(AnomalyDuplicateOpen)
		log.Debug().Str("correlator", c.name).Str("key", key).Float64("time", event.Time).Msg("Ignored open for in-flight entity")
	}
}

func (c *Correlator[S, R]) close(key string, event events.Event) {
	state, exists := c.table.Remove(key)
	if !exists {
		c.stats.Record(AnomalyOrphanClose)
		return
	}

	record, discarded := c.rules.Assemble(key, state, event)
	if discarded != "" {
		c.stats.Record(discarded)
		return
	}

	c.sink.Push(record)
	c.stats.observeRecord()
}

// Consume handles every event of stream in order. The first stream error or
// context cancellation stops consumption and is returned. Entities left in
// flight at the end of a complete stream are counted as unfinished.
func (c *Correlator[S, R]) Consume(ctx context.Context, stream iter.Seq2[events.Event, error]) error {
	var handled int64

	for event, err := range stream {
		if err != nil {
			return err
		}

		if handled%cancellationCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		c.Handle(event)
		handled += 1
	}

	c.stats.Add(AnomalyUnfinished, int64(c.table.Len()))

	log.Debug().
		Str("correlator", c.name).
		Int64("events", handled).
		Int64("records", c.stats.Emitted()).
		Int("inflight", c.table.Len()).
		Msg("Finished consuming events")

	return nil
}

// InFlight is the number of entities currently waiting for their close event
func (c *Correlator[S, R]) InFlight() int {
	return c.table.Len()
}

func (c *Correlator[S, R]) Sink() *Sink[R] {
	return c.sink
}

func (c *Correlator[S, R]) Stats() *Stats {
	return c.stats
}
