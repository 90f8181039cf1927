package tables

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Name  string   `csv:"name"`
	Stops PipeList `csv:"stops"`
	Time  Seconds  `csv:"time"`
}

func TestMarshalCSV(t *testing.T) {
	var buffer bytes.Buffer
	err := MarshalCSV([]row{
		{Name: "a", Stops: PipeList{"s1", "s2"}, Time: 21600},
		{Name: "b", Stops: PipeList{}, Time: 0.25},
		{Name: "c,d", Stops: PipeList{"s3"}, Time: -1.5},
	}, &buffer)
	require.NoError(t, err)

	assert.Equal(t, "name,stops,time\na,s1|s2,21600\nb,,0.25\n\"c,d\",s3,-1.5\n", buffer.String())
}

func TestMarshalCSVEmpty(t *testing.T) {
	var buffer bytes.Buffer
	require.NoError(t, MarshalCSV[row](nil, &buffer))

	assert.Equal(t, "name,stops,time\n", buffer.String())
}

func TestUnmarshalCSV(t *testing.T) {
	var rows []row
	require.NoError(t, gocsv.UnmarshalBytes([]byte("name,stops,time\na,s1|s2,21600.5\nb,,0\n"), &rows))

	require.Len(t, rows, 2)
	assert.Equal(t, row{Name: "a", Stops: PipeList{"s1", "s2"}, Time: 21600.5}, rows[0])
	assert.Equal(t, "b", rows[1].Name)
	assert.Empty(t, rows[1].Stops)
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.csv")

	require.NoError(t, WriteCSV(path, []row{{Name: "a", Stops: PipeList{"s1"}, Time: 1}}))
	// rewriting replaces the file
	require.NoError(t, WriteCSV(path, []row{{Name: "b", Stops: PipeList{"s2"}, Time: 2}}))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name,stops,time\nb,s2,2\n", string(contents))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")

	require.NoError(t, WriteJSON(path, map[string]int{"b": 2, "a": 1}))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": 2\n}\n", string(contents))
}
