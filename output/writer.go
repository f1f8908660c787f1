// Package output writes fetched reports to their destination: a local file
// path or an s3:// object URL.
package output

import (
	"context"
	"errors"
	"os"
	"sync"
)

// Writer stores a fetched report at one destination.
type Writer interface {
	// Exists reports whether the destination already holds an artifact.
	Exists(ctx context.Context) (bool, error)
	// Write stores data at the destination, replacing any existing artifact.
	Write(ctx context.Context, data []byte) error
	// Destination returns the destination in display form (path or URL).
	Destination() string
}

// For resolves a rendered destination into a Writer. Destinations with an
// s3:// scheme go to object storage; everything else is a local file path.
func For(ctx context.Context, dest, contentType string, cfg S3Config) (Writer, error) {
	if IsS3URL(dest) {
		return NewS3Writer(ctx, dest, contentType, cfg)
	}
	return NewFileWriter(dest), nil
}

// fileWriter writes to the local filesystem. Parent directories must exist;
// pointing a report at a missing directory is a caller mistake worth
// surfacing, not papering over.
type fileWriter struct {
	path string
}

// NewFileWriter returns a Writer for a local file path.
func NewFileWriter(path string) Writer {
	return &fileWriter{path: path}
}

func (w *fileWriter) Exists(context.Context) (bool, error) {
	_, err := os.Stat(w.path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (w *fileWriter) Write(_ context.Context, data []byte) error {
	return os.WriteFile(w.path, data, 0o644)
}

func (w *fileWriter) Destination() string {
	return w.path
}

// Verify fileWriter implements Writer.
var _ Writer = (*fileWriter)(nil)

// StubWriter records writes for testing.
type StubWriter struct {
	mu sync.Mutex

	// Dest is returned by Destination.
	Dest string
	// Existing is returned by Exists.
	Existing bool
	// ExistsErr and WriteErr force failures.
	ExistsErr error
	WriteErr  error

	// Written holds every Write payload in call order.
	Written [][]byte
}

func (w *StubWriter) Exists(context.Context) (bool, error) {
	return w.Existing, w.ExistsErr
}

func (w *StubWriter) Write(_ context.Context, data []byte) error {
	if w.WriteErr != nil {
		return w.WriteErr
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Written = append(w.Written, data)
	return nil
}

func (w *StubWriter) Destination() string {
	return w.Dest
}

// Verify StubWriter implements Writer.
var _ Writer = (*StubWriter)(nil)
