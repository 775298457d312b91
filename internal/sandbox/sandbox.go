// Copyright 2024 The Jsclean Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sandbox hosts the disposable JS runtime spec.md §5/§6 describes:
// decoder definitions are injected into it by side effect, and decoder
// calls are later evaluated against it, for exactly one optimize() call.
// This mirrors how ytv1's Decipherer falls back to a real goja.Runtime
// when its regex-based operation parser can't model a signature-cipher
// function directly (see other_examples/..._decipher.go.go's
// evalJavascript/buildRuntimeDecipherer): spin up goja.New(), inject
// source, call a named function, read back a plain value.
package sandbox

import (
	"errors"
	"time"

	"github.com/dop251/goja"

	"github.com/jsclean/jsclean/internal/config"
)

// Host is the one host evaluation scope for a single optimize() call.
// Every decoder side-loaded during Stage 1 lives in it, and Stage 2
// resolves decoder calls against it, for as long as the call lasts —
// spec.md §5: "Its lifecycle is for the duration of one optimization
// call." It is never reused across calls.
type Host struct {
	vm     *goja.Runtime
	limits config.SandboxLimits
}

// New creates a Host bounded by limits.
func New(limits config.SandboxLimits) *Host {
	vm := goja.New()
	vm.SetMaxCallStackSize(limits.MaxCallStackSize)
	return &Host{vm: vm, limits: limits}
}

// Inject runs src for its side effects — typically a decoder's
// support-array declaration, shuffler IIFE, and function definition,
// concatenated per spec.md §4.1's addEncryptFunction. Per spec.md §6,
// re-injecting a name already defined must not be treated as an error;
// goja's var/function redeclaration semantics already allow this.
func (h *Host) Inject(src string) error {
	_, err := h.run(src)
	return err
}

// Has reports whether name is defined and callable in the host scope.
func (h *Host) Has(name string) bool {
	v := h.vm.Get(name)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return false
	}
	_, ok := goja.AssertFunction(v)
	return ok
}

// Call invokes the host-scope function named name with args (each a Go
// bool/float64/string, converted with vm.ToValue) and returns its result
// exported to a Go value (bool, int64 for an integral number, float64 for
// any other number, string, or nil).
func (h *Host) Call(name string, args ...interface{}) (interface{}, error) {
	fn, ok := goja.AssertFunction(h.vm.Get(name))
	if !ok {
		return nil, errors.New("sandbox: not callable: " + name)
	}
	jsArgs := make([]goja.Value, len(args))
	for i, a := range args {
		jsArgs[i] = h.vm.ToValue(a)
	}
	result, err := h.callTimed(fn, jsArgs)
	if err != nil {
		return nil, err
	}
	return result.Export(), nil
}

// Eval runs the expression src and returns its value exported to a Go
// value. Used by constant folding (spec.md §4.2): the operator semantics
// are JavaScript's, not the host language's, so folding genuinely
// evaluates rather than reimplementing JS arithmetic in Go.
func (h *Host) Eval(src string) (interface{}, error) {
	v, err := h.run(src)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.Export(), nil
}

func (h *Host) run(src string) (goja.Value, error) {
	timer := time.AfterFunc(h.limits.EvalTimeout, func() {
		h.vm.Interrupt("sandbox: evaluation exceeded time budget")
	})
	defer timer.Stop()
	v, err := h.vm.RunString(src)
	h.vm.ClearInterrupt()
	return v, err
}

func (h *Host) callTimed(fn goja.Callable, args []goja.Value) (goja.Value, error) {
	timer := time.AfterFunc(h.limits.EvalTimeout, func() {
		h.vm.Interrupt("sandbox: evaluation exceeded time budget")
	})
	defer timer.Stop()
	v, err := fn(goja.Undefined(), args...)
	h.vm.ClearInterrupt()
	return v, err
}
