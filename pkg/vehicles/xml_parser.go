package vehicles

import (
	"encoding/xml"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/travigo/transit-evaluation/pkg/inputs"
	"golang.org/x/net/html/charset"
)

// Definitions is a MATSim vehicle definitions document
type Definitions struct {
	Vehicles []Vehicle
	Types    int
}

func (v *Definitions) ParseFile(name string, reader io.Reader) error {
	v.Vehicles = []Vehicle{}

	d := xml.NewDecoder(reader)
	d.CharsetReader = charset.NewReaderLabel
	for {
		tok, err := d.Token()
		if err == io.EOF {
			// EOF means we're done.
			break
		} else if err != nil {
			return &inputs.ParseError{Source: name, Offset: d.InputOffset(), Err: err}
		}

		switch ty := tok.(type) {
		case xml.StartElement:
			if ty.Name.Local == "vehicle" {
				var vehicle Vehicle

				if err = d.DecodeElement(&vehicle, &ty); err != nil {
					return &inputs.ParseError{Source: name, Offset: d.InputOffset(), Err: err}
				}
				v.Vehicles = append(v.Vehicles, vehicle)
			} else if ty.Name.Local == "vehicleType" {
				v.Types += 1
				if err = d.Skip(); err != nil {
					return &inputs.ParseError{Source: name, Offset: d.InputOffset(), Err: err}
				}
			}
		default:
		}
	}

	log.Debug().Str("file", name).Int("vehicles", len(v.Vehicles)).Int("types", v.Types).Msg("Parsed vehicle definitions")

	return nil
}

func (v *Definitions) Rows() []Vehicle {
	return v.Vehicles
}
