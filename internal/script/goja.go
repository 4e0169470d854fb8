package script

import (
	"fmt"

	"github.com/dop251/goja"
)

// JSEngine evaluates transform scripts as ECMAScript via goja. A compiled
// *goja.Program is shareable across runtimes, so the one-program,
// many-scopes contract maps directly: each scope owns a private runtime.
type JSEngine struct{}

func (JSEngine) Compile(name, source string) (Program, error) {
	p, err := goja.Compile(name, source, false)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	return &jsProgram{prog: p}, nil
}

func (JSEngine) NewScope() (Scope, error) {
	return &jsScope{vm: goja.New()}, nil
}

type jsProgram struct{ prog *goja.Program }

type jsScope struct{ vm *goja.Runtime }

func (s *jsScope) Set(name string, v any) error { return s.vm.Set(name, v) }

// Get treats null and undefined alike as an absent slot.
func (s *jsScope) Get(name string) (any, bool) {
	v := s.vm.Get(name)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, false
	}
	return v.Export(), true
}

func (s *jsScope) Eval(p Program) error {
	jp, ok := p.(*jsProgram)
	if !ok {
		return fmt.Errorf("script: program %T was not compiled by the js engine", p)
	}
	if _, err := s.vm.RunProgram(jp.prog); err != nil {
		return &EvalError{Err: err}
	}
	return nil
}
