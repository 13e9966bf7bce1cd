package trajectory

import (
	"compress/gzip"
	"encoding/gob"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// Recognised file suffixes. Compression is chosen by the outermost suffix,
// the remaining suffix must be ".gob".
const (
	ExtGob    = ".gob"
	ExtGzip   = ".gz"
	ExtSnappy = ".sz"
)

// ErrUnknownFormat is returned for paths whose suffix has no codec.
var ErrUnknownFormat = errors.New("unknown trajectory file format")

// HasTrajectoryExt reports whether path names a file this package can decode.
func HasTrajectoryExt(path string) bool {
	p := strings.TrimSuffix(strings.TrimSuffix(path, ExtGzip), ExtSnappy)
	return strings.HasSuffix(p, ExtGob)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// decompress wraps r according to the suffix of path.
func decompress(r io.Reader, path string) (io.Reader, func() error, error) {
	switch {
	case strings.HasSuffix(path, ExtGzip):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return gz, gz.Close, nil
	case strings.HasSuffix(path, ExtSnappy):
		return snappy.NewReader(r), func() error { return nil }, nil
	}
	return r, func() error { return nil }, nil
}

// compress wraps w according to the suffix of path.
func compress(w io.Writer, path string) io.WriteCloser {
	switch {
	case strings.HasSuffix(path, ExtGzip):
		return gzip.NewWriter(w)
	case strings.HasSuffix(path, ExtSnappy):
		return snappy.NewBufferedWriter(w)
	}
	return nopWriteCloser{w}
}

// decodeFile decodes a single gob value from path into v.
func decodeFile(path string, v any) error {
	if !HasTrajectoryExt(path) {
		return errors.Wrapf(ErrUnknownFormat, "decoding %s", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	r, closeFn, err := decompress(f, path)
	if err != nil {
		return errors.Wrapf(err, "decompressing %s", path)
	}
	defer closeFn()

	if err := gob.NewDecoder(r).Decode(v); err != nil {
		return errors.Wrapf(err, "decoding %s", path)
	}
	return nil
}

// encodeFile writes v as a single gob value to path, creating parent
// directories as needed.
func encodeFile(path string, v any) (err error) {
	if !HasTrajectoryExt(path) {
		return errors.Wrapf(ErrUnknownFormat, "encoding %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "closing %s", path)
		}
	}()

	w := compress(f, path)
	if err := gob.NewEncoder(w).Encode(v); err != nil {
		return errors.Wrapf(err, "encoding %s", path)
	}
	if err := w.Close(); err != nil {
		return errors.Wrapf(err, "flushing %s", path)
	}
	return nil
}
