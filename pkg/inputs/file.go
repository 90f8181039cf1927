// Package inputs opens the files a run reads: event logs, vehicle tables and
// configuration. It owns the error types shared by every reader.
package inputs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// File is an opened input, read through the decompressor matching its suffix
type File struct {
	io.Reader

	Path        string
	Compression Compression

	file         *os.File
	decompressor io.Closer
}

// Open opens path for reading. A missing file is reported as a NotFoundError
// and an unreadable compressed header as a ParseError.
func Open(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, notFound(path, err)
	}

	compression := CompressionFromPath(path)
	reader, decompressor, err := Decompress(file, compression)
	if err != nil {
		file.Close()
		return nil, &ParseError{Source: path, Err: fmt.Errorf("open %s stream: %w", compression, err)}
	}

	return &File{
		Reader:       reader,
		Path:         path,
		Compression:  compression,
		file:         file,
		decompressor: decompressor,
	}, nil
}

// Close releases the decompressor and then the file
func (f *File) Close() error {
	return errors.Join(f.decompressor.Close(), f.file.Close())
}

// ReadFile reads a small uncompressed file such as a configuration document
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, notFound(path, err)
	}

	return data, nil
}

func notFound(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return &NotFoundError{Path: path, Err: err}
	}

	return err
}
