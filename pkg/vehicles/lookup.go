package vehicles

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/travigo/transit-evaluation/pkg/inputs"
	"golang.org/x/exp/slices"
)

const UnknownClass = "unknown"

// Lookup maps vehicle ids to their vehicle class. It is built once before
// any events are processed and never modified afterwards.
type Lookup struct {
	classes map[string]string
}

func NewLookup(rows []Vehicle) *Lookup {
	classes := make(map[string]string, len(rows))
	for _, row := range rows {
		classes[row.ID] = row.TypeID
	}

	return &Lookup{classes: classes}
}

// ClassOf returns the class of vehicle, or UnknownClass
func (l *Lookup) ClassOf(vehicle string) string {
	if class, exists := l.classes[vehicle]; exists {
		return class
	}

	return UnknownClass
}

func (l *Lookup) Len() int {
	return len(l.classes)
}

// Fleet builds the membership set of every vehicle whose class contains
// match, ignoring case
func (l *Lookup) Fleet(match string) *Fleet {
	needle := strings.ToLower(match)
	members := map[string]struct{}{}

	for vehicle, class := range l.classes {
		if strings.Contains(strings.ToLower(class), needle) {
			members[vehicle] = struct{}{}
		}
	}

	return &Fleet{match: match, members: members}
}

// Fleet is an immutable set of monitored vehicle ids
type Fleet struct {
	match   string
	members map[string]struct{}
}

func NewFleet(vehicles ...string) *Fleet {
	members := make(map[string]struct{}, len(vehicles))
	for _, vehicle := range vehicles {
		members[vehicle] = struct{}{}
	}

	return &Fleet{members: members}
}

func (f *Fleet) Contains(vehicle string) bool {
	_, exists := f.members[vehicle]
	return exists
}

func (f *Fleet) Len() int {
	return len(f.members)
}

// Members lists the fleet in id order
func (f *Fleet) Members() []string {
	members := make([]string, 0, len(f.members))
	for vehicle := range f.members {
		members = append(members, vehicle)
	}
	slices.Sort(members)

	return members
}

// FormatForPath picks the parser for a vehicle file from its name
func FormatForPath(path string) Format {
	lower := strings.ToLower(path)
	for _, suffix := range []string{".gz", ".zst", ".xz"} {
		lower = strings.TrimSuffix(lower, suffix)
	}

	if strings.HasSuffix(lower, ".xml") {
		return &Definitions{}
	}

	return &Table{}
}

// ReadFile parses a vehicle table (CSV) or vehicle definitions (XML) file
func ReadFile(path string) ([]Vehicle, error) {
	file, err := inputs.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	format := FormatForPath(path)
	if err := format.ParseFile(path, file); err != nil {
		return nil, err
	}

	return format.Rows(), nil
}

// Load reads path into a Lookup
func Load(path string) (*Lookup, error) {
	rows, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	lookup := NewLookup(rows)
	log.Info().Str("path", path).Int("vehicles", lookup.Len()).Msg("Loaded vehicle classes")

	return lookup, nil
}
