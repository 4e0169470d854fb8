// Package script is the transform-engine boundary: compile a script source
// once, then evaluate it many times, each time against a fresh binding
// scope that carries one record in and out.
package script

import "fmt"

// Program is the reusable compiled form of a transform script. A Program is
// immutable and safe to evaluate concurrently from many scopes.
type Program interface{}

// Scope is the per-invocation binding set a program runs against. A scope
// belongs to exactly one in-flight record and is never shared.
type Scope interface {
	Set(name string, v any) error
	Get(name string) (any, bool) // ok == false when the slot is absent or null
	Eval(Program) error
}

// Engine compiles script source and mints fresh scopes.
type Engine interface {
	Compile(name, source string) (Program, error)
	NewScope() (Scope, error)
}

// EvalError marks a failure raised by the program for one record. It is
// fatal to the whole run.
type EvalError struct{ Err error }

func (e *EvalError) Error() string { return "script: " + e.Err.Error() }
func (e *EvalError) Unwrap() error { return e.Err }

/*──────── registry ───────*/

type factory = func() Engine

var reg = map[string]factory{}

// Register is called from the host's main (or a test) for each engine.
func Register(name string, f factory) { reg[name] = f }

func New(name string) (Engine, error) {
	if f, ok := reg[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown script engine %q", name)
}
