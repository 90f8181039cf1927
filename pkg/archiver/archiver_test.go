package archiver

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func TestPerform(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"ridership.csv":          "personId\np1\n",
		"ridership.summary.json": "{}\n",
	}
	var paths []string
	for name, contents := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
		paths = append(paths, path)
	}

	archiver := &Archiver{OutputDirectory: filepath.Join(dir, "bundles"), BundleName: "base"}
	require.NoError(t, archiver.Perform(paths))
	assert.Equal(t, filepath.Join(dir, "bundles", "base.tar.xz"), archiver.BundlePath())

	bundle, err := os.Open(archiver.BundlePath())
	require.NoError(t, err)
	defer bundle.Close()

	xzReader, err := xz.NewReader(bundle)
	require.NoError(t, err)
	tarReader := tar.NewReader(xzReader)

	found := map[string]string{}
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		contents, err := io.ReadAll(tarReader)
		require.NoError(t, err)
		found[header.Name] = string(contents)
	}

	assert.Equal(t, files, found)
}

func TestPerformMissingFile(t *testing.T) {
	dir := t.TempDir()

	archiver := &Archiver{OutputDirectory: dir, BundleName: "base"}
	err := archiver.Perform([]string{filepath.Join(dir, "missing.csv")})

	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoFileExists(t, archiver.BundlePath())
}
