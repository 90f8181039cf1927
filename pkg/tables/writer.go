package tables

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

// MarshalCSV writes records, including the header row, to writer
func MarshalCSV[R any](records []R, writer io.Writer) error {
	if records == nil {
		records = []R{}
	}

	return gocsv.Marshal(&records, writer)
}

// WriteCSV writes records to path, creating parent directories as needed.
// The file is written to a temporary name first so a failed write never
// leaves a partial table behind.
func WriteCSV[R any](path string, records []R) error {
	var buffer bytes.Buffer
	if err := MarshalCSV(records, &buffer); err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}

	if err := writeFile(path, buffer.Bytes()); err != nil {
		return err
	}

	log.Info().Str("path", path).Int("rows", len(records)).Msg("Saved table")

	return nil
}

// WriteJSON writes value as indented JSON to path
func WriteJSON(path string, value any) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	encoded = append(encoded, '\n')

	return writeFile(path, encoded)
}

func writeFile(path string, contents []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-")
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile.Name())

	if err := tmpFile.Chmod(0o644); err != nil {
		tmpFile.Close()
		return err
	}
	if _, err := tmpFile.Write(contents); err != nil {
		tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpFile.Name(), path)
}
