package vehicles

import "io"

// Vehicle is one row of the vehicle class table
type Vehicle struct {
	ID     string `csv:"id" xml:"id,attr"`
	TypeID string `csv:"type_id" xml:"type,attr"`
}

// Format is an input that can be parsed into vehicle rows
type Format interface {
	ParseFile(name string, reader io.Reader) error
	Rows() []Vehicle
}
