package vehicles

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/travigo/transit-evaluation/pkg/inputs"
	"golang.org/x/exp/slices"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// Table is a two column vehicle class table, normally the output of the
// vehicles command
type Table struct {
	Vehicles []Vehicle
}

func (t *Table) ParseFile(name string, reader io.Reader) error {
	t.Vehicles = []Vehicle{}

	body, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	body = bytes.TrimPrefix(body, utf8BOM)

	headerReader := newCSVReader(body)
	header, err := headerReader.Read()
	if err == io.EOF {
		log.Warn().Str("file", name).Msg("Vehicle table is empty")
		return nil
	} else if err != nil {
		return &inputs.ParseError{Source: name, Offset: headerReader.InputOffset(), Err: err}
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	if slices.Contains(header, "id") && slices.Contains(header, "type_id") {
		if err := gocsv.UnmarshalCSV(newCSVReader(body), &t.Vehicles); err != nil {
			return &inputs.ParseError{Source: name, Err: err}
		}
	} else if len(header) >= 2 {
		log.Warn().Str("file", name).Strs("header", header).Msg("Columns id and type_id not found, using the first two columns")

		for {
			record, err := headerReader.Read()
			if err == io.EOF {
				break
			} else if err != nil {
				return &inputs.ParseError{Source: name, Offset: headerReader.InputOffset(), Err: err}
			}

			if len(record) < 2 {
				continue
			}
			t.Vehicles = append(t.Vehicles, Vehicle{ID: record[0], TypeID: record[1]})
		}
	} else {
		log.Warn().Str("file", name).Strs("header", header).Msg("Vehicle table has fewer than two columns")
	}

	return nil
}

func (t *Table) Rows() []Vehicle {
	return t.Vehicles
}

// Allow rows with missing trailing columns
func newCSVReader(body []byte) *csv.Reader {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	return r
}
