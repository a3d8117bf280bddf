// Package wire defines the structured, transportable terminator record
// that par and chunkio fall back to when a worker or producer failure
// must cross a boundary that cannot carry an arbitrary Go error value.
// The record shape and the gob.Register idiom used to validate it are
// lifted from exec/bigmachine.go's own use of gob.Register for RPC
// payloads (invocationRef, *worker); cbor is used for the payload
// encoding itself since it gives a compact, self-describing format
// suitable for a value that might eventually cross a real process or
// network boundary, rather than just gob's Go-specific wire format.
package wire

import (
	"encoding/gob"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Record is the single terminator value posted when a source access
// fails: a structured {kind, message, where} triple, never two separate
// positional arguments (see the spec's Open Question on this point).
type Record struct {
	// Kind is a short machine-readable label, e.g. "panic" or the
	// %T of the original error.
	Kind string
	// Message is the original error's Error() text.
	Message string
	// Where is an optional free-form location hint (e.g. "index 2").
	Where string

	// cause is the original error, kept around for in-process callers so
	// errors.Is/errors.As can still reach it via Unwrap. It is
	// unexported, so it never crosses Encode/Decode: a Record rebuilt
	// from the wire has Kind/Message/Where only, same as it would after
	// actually crossing a process boundary.
	cause error
}

func init() {
	gob.Register(Record{})
}

// NewRecord builds a Record from an error and an optional location hint.
func NewRecord(err error, where string) Record {
	return Record{Kind: fmt.Sprintf("%T", err), Message: err.Error(), Where: where, cause: err}
}

func (r Record) Error() string {
	if r.Where != "" {
		return fmt.Sprintf("%s: %s", r.Where, r.Message)
	}
	return r.Message
}

// Unwrap returns the original error NewRecord was built from, or nil for
// a Record that arrived via Decode rather than NewRecord.
func (r Record) Unwrap() error { return r.cause }

// Encode serializes r with cbor, the format used if this record needs to
// cross a real process or network boundary.
func Encode(r Record) ([]byte, error) {
	return cbor.Marshal(r)
}

// Decode is the inverse of Encode.
func Decode(b []byte) (Record, error) {
	var r Record
	err := cbor.Unmarshal(b, &r)
	return r, err
}

// CheckTransportable verifies that v can be encoded with gob (it does
// not decode the result back), as a check that it satisfies the spec's requirement that "any transported
// value or error must be representable on the wire". It is intended for
// use in tests of Indexable/Source implementations that are meant to
// cross a process boundary in a caller's own transport layer; par and
// chunkio do not call it themselves since their workers are goroutines
// sharing the host process's memory.
func CheckTransportable(v interface{}) error {
	var buf gobBuffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("value is not gob-transportable: %w", err)
	}
	return nil
}

// gobBuffer is a minimal io.Writer so CheckTransportable doesn't need to
// import bytes just to discard encoder output.
type gobBuffer struct{ n int }

func (b *gobBuffer) Write(p []byte) (int, error) {
	b.n += len(p)
	return len(p), nil
}
