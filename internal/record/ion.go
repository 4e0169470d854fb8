package record

import (
	"bufio"
	"errors"
	"io"

	"github.com/amazon-ion/ion-go/ion"
)

// IonCodec reads and writes Amazon Ion text, one top-level value per line.
type IonCodec struct{}

func (IonCodec) Name() string { return "ion" }
func (IonCodec) Ext() string  { return ".ion" }

func (IonCodec) NewDecoder(r io.Reader) Decoder {
	return &ionDecoder{dec: ion.NewDecoder(ion.NewReader(r))}
}

func (IonCodec) NewEncoder(w io.Writer) Encoder {
	return &ionEncoder{w: bufio.NewWriter(w)}
}

type ionDecoder struct{ dec *ion.Decoder }

func (d *ionDecoder) Decode() (Record, error) {
	v, err := d.dec.Decode()
	if errors.Is(err, ion.ErrNoInput) || errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

type ionEncoder struct{ w *bufio.Writer }

func (e *ionEncoder) Encode(rec Record) error {
	b, err := ion.MarshalText(rec)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(b); err != nil {
		return err
	}
	return e.w.WriteByte('\n')
}

func (e *ionEncoder) Flush() error { return e.w.Flush() }
