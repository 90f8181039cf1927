package inputs

import (
	"bufio"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGZ   Compression = "gz"
	CompressionZSTD Compression = "zst"
	CompressionXZ   Compression = "xz"
)

const readAheadSize = 1 << 20

// CompressionFromPath detects the compression of a file from its name suffix
func CompressionFromPath(path string) Compression {
	lower := strings.ToLower(path)

	switch {
	case strings.HasSuffix(lower, ".gz"):
		return CompressionGZ
	case strings.HasSuffix(lower, ".zst"):
		return CompressionZSTD
	case strings.HasSuffix(lower, ".xz"):
		return CompressionXZ
	default:
		return CompressionNone
	}
}

// Decompress wraps reader with a read-ahead buffer and the matching decompressor.
// The returned closer releases the decompressor only, the caller still owns reader.
func Decompress(reader io.Reader, compression Compression) (io.Reader, io.Closer, error) {
	buffered := bufio.NewReaderSize(reader, readAheadSize)

	switch compression {
	case CompressionGZ:
		gzipReader, err := gzip.NewReader(buffered)
		if err != nil {
			return nil, nil, err
		}
		return gzipReader, gzipReader, nil
	case CompressionZSTD:
		zstdReader, err := zstd.NewReader(buffered)
		if err != nil {
			return nil, nil, err
		}
		readCloser := zstdReader.IOReadCloser()
		return readCloser, readCloser, nil
	case CompressionXZ:
		xzReader, err := xz.NewReader(buffered)
		if err != nil {
			return nil, nil, err
		}
		return xzReader, io.NopCloser(nil), nil
	default:
		return buffered, io.NopCloser(nil), nil
	}
}
