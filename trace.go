// Lock transition tracing.
//
// When Config.TraceDepth is positive, every Lock, Unlock and CheckReserved
// appends an event to a fixed-depth ring on the handle. The ring is cheap
// enough to leave on in production and is the first thing to look at when
// two processes disagree about who holds what: the File field is identical
// across processes that opened the same path, so traces from both sides can
// be interleaved by timestamp.
//
// TraceSnapshot renders the ring as Zstd-compressed, Ascii85-encoded JSON: a
// single printable string that can be embedded directly in a log line or a
// bug report without escaping, and decoded later with DecodeSnapshot.
package latch

import (
	"bytes"
	"encoding/ascii85"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
)

// Trace operation markers.
const (
	opLock   = "lock"
	opUnlock = "unlock"
	opCheck  = "check"
)

// Event records one lock operation on a handle.
type Event struct {
	File string `json:"_f"`  // 16 hex chars, same for every handle on this path
	Op   string `json:"_op"` // lock, unlock or check
	From Level  `json:"_lf"` // level before the operation
	To   Level  `json:"_lt"` // level after the operation
	OK   bool   `json:"_ok"` // success; for check, the probe's answer
	TS   int64  `json:"_ts"` // unix milliseconds
}

// Shared encoder/decoder, allocated once because zstd construction is
// expensive relative to the tiny payloads a trace ring produces. Both are
// documented as safe for concurrent use.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// record appends an event to the ring, dropping the oldest entry once the
// ring is full. Caller holds f.mu.
func (f *File) record(op string, from, to Level, ok bool) {
	if f.config.TraceDepth <= 0 {
		return
	}
	ev := Event{File: f.id, Op: op, From: from, To: to, OK: ok, TS: now()}
	if len(f.events) >= f.config.TraceDepth {
		copy(f.events, f.events[1:])
		f.events[len(f.events)-1] = ev
		return
	}
	f.events = append(f.events, ev)
}

// Trace returns a copy of the ring, oldest first. Nil when tracing is
// disabled or nothing has happened yet.
func (f *File) Trace() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return nil
	}
	out := make([]Event, len(f.events))
	copy(out, f.events)
	return out
}

// TraceSnapshot returns the ring as a single printable string.
func (f *File) TraceSnapshot() (string, error) {
	if f.config.TraceDepth <= 0 {
		return "", ErrTraceDisabled
	}

	data, err := json.Marshal(f.Trace())
	if err != nil {
		return "", err
	}
	compressed := zstdEncoder.EncodeAll(data, nil)

	var encoded bytes.Buffer
	enc := ascii85.NewEncoder(&encoded)
	// bytes.Buffer.Write never errors; enc.Close flushes trailing padding.
	_, _ = enc.Write(compressed)
	_ = enc.Close()

	return encoded.String(), nil
}

// DecodeSnapshot reverses TraceSnapshot.
func DecodeSnapshot(s string) ([]Event, error) {
	dec := ascii85.NewDecoder(strings.NewReader(s))
	compressed, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: ascii85: %w", ErrSnapshot, err)
	}

	data, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %w", ErrSnapshot, err)
	}

	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("%w: json: %w", ErrSnapshot, err)
	}
	return events, nil
}
