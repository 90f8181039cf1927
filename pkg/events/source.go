package events

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/rs/zerolog/log"
	"github.com/travigo/transit-evaluation/pkg/inputs"
	"golang.org/x/net/html/charset"
)

const (
	DefaultRoot  = "events"
	eventElement = "event"
)

var ErrClosed = errors.New("event source is closed")

// Source is a lazy, forward-only reader of simulation events. Only the
// current event element is held in memory.
type Source struct {
	name    string
	root    string
	decoder *xml.Decoder
	closers []io.Closer

	started bool
	done    bool
	closed  bool
	err     error
	count   int64
}

// Open opens an event log, transparently decompressing it based on the file suffix.
func Open(path string, root string) (*Source, error) {
	file, err := inputs.Open(path)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("path", path).Str("compression", string(file.Compression)).Msg("Opened event log")

	source := newSource(path, file, root)
	source.closers = []io.Closer{file}

	return source, nil
}

// NewSource reads events from an already opened stream. Closing the Source
// does not close reader.
func NewSource(name string, reader io.Reader, root string) *Source {
	return newSource(name, reader, root)
}

func newSource(name string, reader io.Reader, root string) *Source {
	if root == "" {
		root = DefaultRoot
	}

	d := xml.NewDecoder(reader)
	d.CharsetReader = charset.NewReaderLabel

	return &Source{
		name:    name,
		root:    root,
		decoder: d,
	}
}

// Next returns the next event in document order, or io.EOF once the root
// element has been fully consumed.
func (s *Source) Next() (Event, error) {
	if s.err != nil {
		return Event{}, s.err
	}
	if s.closed {
		return Event{}, ErrClosed
	}
	if s.done {
		return Event{}, io.EOF
	}

	for {
		tok, err := s.decoder.Token()
		if err == io.EOF {
			if !s.started {
				return Event{}, s.fail(fmt.Errorf("no <%s> root element", s.root))
			}
			s.done = true
			return Event{}, io.EOF
		} else if err != nil {
			return Event{}, s.fail(err)
		}

		switch ty := tok.(type) {
		case xml.StartElement:
			if !s.started {
				if ty.Name.Local != s.root {
					return Event{}, s.fail(fmt.Errorf("expected <%s> root element, found <%s>", s.root, ty.Name.Local))
				}
				s.started = true
				continue
			}

			if ty.Name.Local != eventElement {
				if err := s.decoder.Skip(); err != nil {
					return Event{}, s.fail(err)
				}
				continue
			}

			event, err := s.decodeEvent(ty)
			if err != nil {
				return Event{}, s.fail(err)
			}
			s.count += 1

			return event, nil
		case xml.EndElement:
			if ty.Name.Local == s.root {
				s.done = true
				return Event{}, io.EOF
			}
		default:
		}
	}
}

func (s *Source) decodeEvent(start xml.StartElement) (Event, error) {
	attributes := make(map[string]string, len(start.Attr))
	for _, attr := range start.Attr {
		attributes[attr.Name.Local] = attr.Value
	}

	// Event elements carry everything in attributes, any children are dropped
	if err := s.decoder.Skip(); err != nil {
		return Event{}, err
	}

	eventType := attributes["type"]

	rawTime, exists := attributes["time"]
	if !exists {
		return Event{}, fmt.Errorf("%s event without time attribute", eventType)
	}
	event := Event{
		Kind:       KindOf(eventType),
		Type:       eventType,
		Attributes: attributes,
	}

	var ok bool
	if event.Time, ok = event.Float("time"); !ok {
		return Event{}, fmt.Errorf("%s event has invalid time %q", eventType, rawTime)
	}

	return event, nil
}

func (s *Source) fail(err error) error {
	s.err = &inputs.ParseError{
		Source: s.name,
		Offset: s.decoder.InputOffset(),
		Err:    err,
	}

	return s.err
}

// All yields every remaining event. Iteration stops after the first error,
// which is yielded once. Breaking out early is allowed, the caller still
// has to Close the Source.
func (s *Source) All() iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		for {
			event, err := s.Next()
			if err == io.EOF {
				return
			}
			if !yield(event, err) || err != nil {
				return
			}
		}
	}
}

// Count is the number of events produced so far
func (s *Source) Count() int64 {
	return s.count
}

func (s *Source) Name() string {
	return s.name
}

// Close releases the decompressor and the underlying file. It is safe to
// call more than once and at any point of the iteration.
func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for _, closer := range s.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil

	return errors.Join(errs...)
}
