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

package sandbox

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/jsclean/jsclean/internal/config"
)

func TestEvalArithmetic(t *testing.T) {
	h := New(config.DefaultSandboxLimits())
	v, err := h.Eval("2 + true")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v.(int64), 3))
}

func TestInjectAndCall(t *testing.T) {
	h := New(config.DefaultSandboxLimits())
	err := h.Inject(`function decode(a, b) { return a + b; }`)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(h.Has("decode")))

	v, err := h.Call("decode", "hel", "lo")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v.(string), "hello"))
}

func TestHasFalseForNonFunction(t *testing.T) {
	h := New(config.DefaultSandboxLimits())
	qt.Assert(t, qt.IsFalse(h.Has("undeclaredName")))

	err := h.Inject(`var notAFunction = 1;`)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(h.Has("notAFunction")))
}

func TestCallUnknownFunctionErrors(t *testing.T) {
	h := New(config.DefaultSandboxLimits())
	_, err := h.Call("missing")
	qt.Assert(t, qt.IsNotNil(err))
}
