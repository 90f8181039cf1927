package inputs

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, contents []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, contents, 0o644))

	return path
}

func TestCompressionFromPath(t *testing.T) {
	assert.Equal(t, CompressionGZ, CompressionFromPath("output_events.xml.gz"))
	assert.Equal(t, CompressionZSTD, CompressionFromPath("output_events.xml.ZST"))
	assert.Equal(t, CompressionXZ, CompressionFromPath("output_events.xml.xz"))
	assert.Equal(t, CompressionNone, CompressionFromPath("output_events.xml"))
}

func TestOpenDecompresses(t *testing.T) {
	var buffer bytes.Buffer
	writer := gzip.NewWriter(&buffer)
	_, err := writer.Write([]byte("id,type_id\nbus_1,bus\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	file, err := Open(writeFile(t, "vehicles.csv.gz", buffer.Bytes()))
	require.NoError(t, err)

	contents, err := io.ReadAll(file)
	require.NoError(t, err)

	assert.Equal(t, "id,type_id\nbus_1,bus\n", string(contents))
	assert.Equal(t, CompressionGZ, file.Compression)
	assert.NoError(t, file.Close())
}

func TestOpenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.xml")

	_, err := Open(path)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, path, notFound.Path)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestOpenCorruptCompressedFile(t *testing.T) {
	path := writeFile(t, "events.xml.gz", []byte("not gzip at all"))

	_, err := Open(path)

	var parseError *ParseError
	require.ErrorAs(t, err, &parseError)
	assert.Equal(t, path, parseError.Source)
	assert.ErrorContains(t, err, "open gz stream")
}

func TestReadFile(t *testing.T) {
	data, err := ReadFile(writeFile(t, "transit-eval.yaml", []byte("parallelism: 2\n")))
	require.NoError(t, err)
	assert.Equal(t, "parallelism: 2\n", string(data))

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))

	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestParseErrorMessage(t *testing.T) {
	err := &ParseError{Source: "vehicles.csv", Offset: 12, Err: io.ErrUnexpectedEOF}

	assert.Equal(t, "malformed input vehicles.csv at offset 12: unexpected EOF", err.Error())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
