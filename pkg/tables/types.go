package tables

import (
	"strconv"
	"strings"
)

const listSeparator = "|"

// PipeList is written to CSV as a single pipe delimited cell
type PipeList []string

func (l PipeList) MarshalCSV() (string, error) {
	return strings.Join(l, listSeparator), nil
}

func (l *PipeList) UnmarshalCSV(value string) error {
	if value == "" {
		*l = PipeList{}
		return nil
	}

	*l = strings.Split(value, listSeparator)
	return nil
}

// Seconds is a simulation time or duration. It is always written in the
// shortest exact decimal form so output files are reproducible.
type Seconds float64

func (s Seconds) MarshalCSV() (string, error) {
	return strconv.FormatFloat(float64(s), 'f', -1, 64), nil
}

func (s *Seconds) UnmarshalCSV(value string) error {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}

	*s = Seconds(parsed)
	return nil
}
