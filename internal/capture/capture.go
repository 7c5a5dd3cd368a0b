// Package capture records received chunks to a file and replays them later.
// Records carry the same (bytes, arrival, transport, address) tuple the live
// byte sources deliver, so replaying a capture drives the framing and decode
// pipeline to bit-identical outcomes.
package capture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	"example.com/radgate/internal/icd"
)

// Record is one received chunk as stored on disk. Chunks are recorded as they
// arrived off the socket, before framing, so the assembler's boundary
// decisions are reproduced on replay rather than baked into the file.
type Record struct {
	Transport uint8  `cbor:"1,keyasint"`
	Addr      string `cbor:"2,keyasint"`
	UnixMicro int64  `cbor:"3,keyasint"`
	Data      []byte `cbor:"4,keyasint"`
}

// Writer appends CBOR-encoded records to a capture file. Safe for concurrent
// use by both reception paths.
type Writer struct {
	mu  sync.Mutex
	f   *os.File
	enc *cbor.Encoder
	n   uint64
}

// NewWriter creates or truncates the capture file at path.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create capture: %w", err)
	}
	return &Writer{f: f, enc: cbor.NewEncoder(f)}, nil
}

// Append records one received chunk.
func (w *Writer) Append(transport icd.Transport, data []byte, arrival time.Time, addr string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return errors.New("capture writer closed")
	}
	rec := Record{
		Transport: uint8(transport),
		Addr:      addr,
		UnixMicro: arrival.UnixMicro(),
		Data:      data,
	}
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("encode capture record: %w", err)
	}
	w.n++
	return nil
}

// Count returns how many records have been written.
func (w *Writer) Count() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.n
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}

// Reader iterates the records of a capture file in order.
type Reader struct {
	f   *os.File
	dec *cbor.Decoder
}

// OpenReader opens the capture file at path.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	return &Reader{f: f, dec: cbor.NewDecoder(f)}, nil
}

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (Record, error) {
	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return rec, io.EOF
		}
		return rec, fmt.Errorf("decode capture record: %w", err)
	}
	return rec, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}

// Replay reads every record from path and hands it to fn in file order.
// Replay stops at the first fn error.
func Replay(path string, fn func(transport icd.Transport, data []byte, arrival time.Time, addr string) error) error {
	r, err := OpenReader(path)
	if err != nil {
		return err
	}
	defer r.Close()
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		arrival := time.UnixMicro(rec.UnixMicro)
		if err := fn(icd.Transport(rec.Transport), rec.Data, arrival, rec.Addr); err != nil {
			return err
		}
	}
}
