package inputs

import "fmt"

// NotFoundError is returned when a referenced input file does not exist.
// It unwraps to the underlying fs.ErrNotExist.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("input file %s not found", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// ParseError is returned for any structural problem in an input file,
// an event log or a vehicle table. Runs that hit one are aborted.
type ParseError struct {
	Source string
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed input %s at offset %d: %v", e.Source, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
