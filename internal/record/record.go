// Package record is the codec boundary of the transform pipeline: it turns a
// byte stream into a lazy sequence of records and records back into bytes.
// The pipeline treats records as opaque values and never re-implements a
// wire format itself.
package record

import (
	"fmt"
	"io"
)

// Record is one decoded value from the input stream: a scalar, an ordered
// list, or a string-keyed mapping.
type Record = any

// Decoder yields records one at a time from an underlying stream. Decode
// returns io.EOF once the stream is exhausted. Decoders are single-pass and
// not restartable.
type Decoder interface {
	Decode() (Record, error)
}

// Encoder serializes records to an underlying stream. Flush must be called
// exactly once, after the last Encode.
type Encoder interface {
	Encode(Record) error
	Flush() error
}

// Codec pairs a decoder and an encoder for one wire format.
type Codec interface {
	Name() string
	Ext() string // output file extension, dot included
	NewDecoder(io.Reader) Decoder
	NewEncoder(io.Writer) Encoder
}

/*──────── registry ───────*/

type factory = func() Codec

var reg = map[string]factory{}

// Register is called from the host's main (or a test) for each codec.
func Register(name string, f factory) { reg[name] = f }

func New(name string) (Codec, error) {
	if f, ok := reg[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}
