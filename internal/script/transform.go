package script

import (
	"context"

	"rowmill/internal/record"
)

// RowVar is the scope slot the current record is bound to before evaluation
// and read back from afterwards. A script alters row in place, replaces it,
// or sets it to null to drop the record.
const RowVar = "row"

// Transform applies one compiled program to one record at a time.
type Transform struct {
	eng  Engine
	prog Program
}

// NewTransform compiles source once. The returned Transform is safe for
// concurrent Apply calls: every call evaluates the shared program against
// its own fresh scope.
func NewTransform(eng Engine, name, source string) (*Transform, error) {
	prog, err := eng.Compile(name, source)
	if err != nil {
		return nil, err
	}
	return &Transform{eng: eng, prog: prog}, nil
}

// Apply binds rec to the row slot, evaluates the program, and reads the
// slot back. ok == false means the program nulled the slot and the record
// is dropped. Evaluation failures surface as *EvalError.
func (t *Transform) Apply(ctx context.Context, rec record.Record) (record.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	scope, err := t.eng.NewScope()
	if err != nil {
		return nil, false, err
	}
	if err := scope.Set(RowVar, rec); err != nil {
		return nil, false, err
	}
	if err := scope.Eval(t.prog); err != nil {
		return nil, false, err
	}
	out, ok := scope.Get(RowVar)
	if !ok {
		return nil, false, nil
	}
	return out, true, nil
}
