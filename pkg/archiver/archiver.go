// Package archiver bundles the tables of an evaluated scenario into a single
// tar.xz file so before and after runs can be shipped around together.
package archiver

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/ulikunitz/xz"
)

type Archiver struct {
	OutputDirectory string
	BundleName      string
}

// BundlePath is the file Perform writes
func (a *Archiver) BundlePath() string {
	return filepath.Join(a.OutputDirectory, fmt.Sprintf("%s.tar.xz", a.BundleName))
}

// Perform writes every file of files into the bundle, flattened to its base name
func (a *Archiver) Perform(files []string) error {
	log.Info().Str("bundle", a.BundlePath()).Int("files", len(files)).Msg("Running archive process")

	if err := os.MkdirAll(a.OutputDirectory, 0o755); err != nil {
		return err
	}

	bundleFile, err := os.CreateTemp(a.OutputDirectory, "."+a.BundleName+"-")
	if err != nil {
		return err
	}
	defer os.Remove(bundleFile.Name())

	if err := a.writeBundle(bundleFile, files); err != nil {
		bundleFile.Close()
		return err
	}
	if err := bundleFile.Chmod(0o644); err != nil {
		bundleFile.Close()
		return err
	}
	if err := bundleFile.Close(); err != nil {
		return err
	}

	if err := os.Rename(bundleFile.Name(), a.BundlePath()); err != nil {
		return err
	}

	log.Info().Str("bundle", a.BundlePath()).Msg("Archive generation complete")

	return nil
}

func (a *Archiver) writeBundle(writer io.Writer, files []string) error {
	xzWriter, err := xz.NewWriter(writer)
	if err != nil {
		return err
	}
	tarWriter := tar.NewWriter(xzWriter)

	for _, file := range files {
		if err := addFile(tarWriter, file); err != nil {
			return fmt.Errorf("archive %s: %w", file, err)
		}
	}

	if err := tarWriter.Close(); err != nil {
		return err
	}

	return xzWriter.Close()
}

func addFile(tarWriter *tar.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = filepath.Base(path)

	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	_, err = io.Copy(tarWriter, file)
	return err
}
