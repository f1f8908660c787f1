// Package journal keeps an append-only log of completed fetches as
// length-prefixed msgpack records, one frame per fetch.
package journal

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pithecene-io/toggl-fetch/iox"
	"github.com/pithecene-io/toggl-fetch/types"
)

const (
	// fileName is the journal file inside the data directory.
	fileName = "journal.bin"

	// MaxRecordSize caps one encoded record (1 MiB). Records are small
	// metadata; anything larger means a corrupt length prefix.
	MaxRecordSize = 1 << 20

	// lengthPrefixSize is the size of the big-endian length prefix in bytes.
	lengthPrefixSize = 4
)

// ErrTruncated indicates the journal ends mid-record, typically from a crash
// during an append. The records before the torn tail are still valid.
var ErrTruncated = errors.New("journal truncated")

// Journal reads and appends fetch records under one data directory.
type Journal struct {
	Dir string
}

// New returns a Journal rooted at dir.
func New(dir string) *Journal {
	return &Journal{Dir: dir}
}

// Path returns the journal file path.
func (j *Journal) Path() string {
	return filepath.Join(j.Dir, fileName)
}

// Append encodes rec and appends it as a single frame. One Write call per
// record keeps concurrent appenders from interleaving frames.
func (j *Journal) Append(rec types.FetchRecord) error {
	payload, err := msgpack.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode journal record: %w", err)
	}
	if len(payload) > MaxRecordSize {
		return fmt.Errorf("journal record size %d exceeds maximum %d", len(payload), MaxRecordSize)
	}

	frame := make([]byte, lengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(frame[:lengthPrefixSize], uint32(len(payload)))
	copy(frame[lengthPrefixSize:], payload)

	if err := os.MkdirAll(j.Dir, 0700); err != nil {
		return fmt.Errorf("create data dir %s: %w", j.Dir, err)
	}
	f, err := os.OpenFile(j.Path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	if _, err := f.Write(frame); err != nil {
		iox.DiscardClose(f)
		return fmt.Errorf("append journal record: %w", err)
	}
	return f.Close()
}

// Records returns every journal record in append order. A missing journal is
// empty, not an error. A torn tail returns the valid prefix together with
// ErrTruncated so callers can keep the history they have.
func (j *Journal) Records() ([]types.FetchRecord, error) {
	f, err := os.Open(j.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer iox.DiscardClose(f)

	var out []types.FetchRecord
	r := bufio.NewReader(f)
	for {
		payload, err := readFrame(r)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}

		var rec types.FetchRecord
		if err := msgpack.Unmarshal(payload, &rec); err != nil {
			return out, fmt.Errorf("decode journal record: %w", err)
		}
		out = append(out, rec)
	}
}

// readFrame reads one length-prefixed frame. io.EOF means a clean record
// boundary; a partial prefix or payload is ErrTruncated.
func readFrame(r io.Reader) ([]byte, error) {
	var lengthBuf [lengthPrefixSize]byte
	if _, err := io.ReadFull(r, lengthBuf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncated
		}
		return nil, err
	}

	size := binary.BigEndian.Uint32(lengthBuf[:])
	if size > MaxRecordSize {
		return nil, fmt.Errorf("journal record size %d exceeds maximum %d", size, MaxRecordSize)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncated
		}
		return nil, err
	}
	return payload, nil
}
