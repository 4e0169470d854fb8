package record

import (
	"bufio"
	"io"

	json "github.com/goccy/go-json"
)

// JSONLCodec reads and writes JSON Lines: one JSON value per line.
type JSONLCodec struct{}

func (JSONLCodec) Name() string { return "jsonl" }
func (JSONLCodec) Ext() string  { return ".jsonl" }

func (JSONLCodec) NewDecoder(r io.Reader) Decoder {
	return &jsonlDecoder{dec: json.NewDecoder(r)}
}

func (JSONLCodec) NewEncoder(w io.Writer) Encoder {
	bw := bufio.NewWriter(w)
	return &jsonlEncoder{w: bw, enc: json.NewEncoder(bw)}
}

type jsonlDecoder struct{ dec *json.Decoder }

func (d *jsonlDecoder) Decode() (Record, error) {
	var v Record
	if err := d.dec.Decode(&v); err != nil {
		return nil, err // io.EOF passes through at end of stream
	}
	return v, nil
}

type jsonlEncoder struct {
	w   *bufio.Writer
	enc *json.Encoder
}

func (e *jsonlEncoder) Encode(rec Record) error { return e.enc.Encode(rec) }
func (e *jsonlEncoder) Flush() error            { return e.w.Flush() }
