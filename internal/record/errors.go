package record

// DecodeError marks malformed input. It is fatal to the run and surfaces
// before any writer activity for the offending record.
type DecodeError struct{ Err error }

func (e *DecodeError) Error() string { return "decode: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError marks a serialization failure while writing the output.
type EncodeError struct{ Err error }

func (e *EncodeError) Error() string { return "encode: " + e.Err.Error() }
func (e *EncodeError) Unwrap() error { return e.Err }
