package correlation

// Sink collects finished records in the order they were emitted
type Sink[R any] struct {
	records []R
}

func NewSink[R any]() *Sink[R] {
	return &Sink[R]{}
}

func (s *Sink[R]) Push(record R) {
	s.records = append(s.records, record)
}

func (s *Sink[R]) Len() int {
	return len(s.records)
}

// Drain hands over every collected record and leaves the sink empty.
// An empty sink drains to a non-nil, zero length slice.
func (s *Sink[R]) Drain() []R {
	records := s.records
	if records == nil {
		records = []R{}
	}
	s.records = nil

	return records
}
