package correlation

import (
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/exp/slices"
)

// Anomaly names a non-fatal condition seen while correlating events
type Anomaly string

const (
	// AnomalyExcluded counts events of excluded entities, see
	// Stats.ExcludedEntities for the number of entities
	AnomalyExcluded      Anomaly = "excluded"
	AnomalyDuplicateOpen Anomaly = "duplicate_open"
	AnomalyReplacedOpen  Anomaly = "replaced_open"
	AnomalyOrphanExtend  Anomaly = "orphan_extend"
	AnomalyOrphanClose   Anomaly = "orphan_close"
	AnomalyDiscarded     Anomaly = "discarded"
	AnomalyUnfinished    Anomaly = "unfinished"
)

// Stats counts processed events, emitted records and anomalies for one run.
// Every run gets its own Prometheus registry so runs can be gathered
// together without sharing collectors.
type Stats struct {
	counts   map[Anomaly]int64
	excluded map[string]struct{}
	events   int64
	emitted  int64

	registry  *prometheus.Registry
	processed prometheus.Counter
	records   prometheus.Counter
	anomalies *prometheus.CounterVec
}

func NewStats(labels prometheus.Labels) *Stats {
	s := &Stats{
		counts:   map[Anomaly]int64{},
		excluded: map[string]struct{}{},
		registry: prometheus.NewRegistry(),
		processed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "transit_eval_events_total",
			Help:        "Events read from the simulation log.",
			ConstLabels: labels,
		}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "transit_eval_records_total",
			Help:        "Records emitted by the correlator.",
			ConstLabels: labels,
		}),
		anomalies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "transit_eval_anomalies_total",
			Help:        "Non-fatal anomalies seen while correlating events.",
			ConstLabels: labels,
		}, []string{"kind"}),
	}

	s.registry.MustRegister(s.processed, s.records, s.anomalies)

	return s
}

func (s *Stats) Record(anomaly Anomaly) {
	s.Add(anomaly, 1)
}

func (s *Stats) Add(anomaly Anomaly, n int64) {
	if n <= 0 {
		return
	}

	s.counts[anomaly] += n
	s.anomalies.WithLabelValues(string(anomaly)).Add(float64(n))
}

// exclude counts an event of an excluded entity. Events without an id
// count as events only.
func (s *Stats) exclude(key string) {
	s.Record(AnomalyExcluded)

	if key != "" {
		s.excluded[key] = struct{}{}
	}
}

func (s *Stats) observeEvent() {
	s.events += 1
	s.processed.Inc()
}

func (s *Stats) observeRecord() {
	s.emitted += 1
	s.records.Inc()
}

func (s *Stats) Count(anomaly Anomaly) int64 {
	return s.counts[anomaly]
}

// Counts returns a copy of the anomaly counters keyed by name
func (s *Stats) Counts() map[string]int64 {
	counts := make(map[string]int64, len(s.counts))
	for anomaly, count := range s.counts {
		counts[string(anomaly)] = count
	}

	return counts
}

// Anomalies lists the anomalies seen so far in name order
func (s *Stats) Anomalies() []Anomaly {
	anomalies := make([]Anomaly, 0, len(s.counts))
	for anomaly := range s.counts {
		anomalies = append(anomalies, anomaly)
	}
	slices.Sort(anomalies)

	return anomalies
}

// ExcludedEntities is the number of distinct excluded ids
func (s *Stats) ExcludedEntities() int64 {
	return int64(len(s.excluded))
}

func (s *Stats) Events() int64 {
	return s.events
}

func (s *Stats) Emitted() int64 {
	return s.emitted
}

func (s *Stats) Registry() *prometheus.Registry {
	return s.registry
}
