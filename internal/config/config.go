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

// Package config holds the few knobs the sandboxed decoder evaluator needs.
// There is no layered configuration (file + env + flags) to manage here —
// unlike CUE's own build flags, jsclean has a single caller-controlled
// input, so a plain struct populated straight from CLI flags (see
// cmd/jsclean) covers it; pulling in viper or koanf for two fields would
// add a dependency with nothing for it to layer.
package config

import "time"

// SandboxLimits bounds the sandbox's evaluations (spec.md §5): every
// decoder side-load, decoder call and constant fold gets its own
// EvalTimeout, and MaxCallStackSize applies to the whole runtime. The
// limits exist to contain obfuscated code that loops or recurses instead
// of behaving like the string-array initializer it is expected to be.
type SandboxLimits struct {
	// EvalTimeout aborts the sandboxed run if it has not returned by then.
	EvalTimeout time.Duration
	// MaxCallStackSize bounds recursion depth inside the sandbox.
	MaxCallStackSize int
}

// DefaultSandboxLimits matches what a decoder builder legitimately needs:
// a handful of milliseconds and ordinary call depth.
func DefaultSandboxLimits() SandboxLimits {
	return SandboxLimits{
		EvalTimeout:      500 * time.Millisecond,
		MaxCallStackSize: 256,
	}
}
