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
	"strings"
	"testing"

	"github.com/go-quicktest/qt"
)

func TestExtractFunctionSource(t *testing.T) {
	src := `var x = 1;
function decode(a) {
  if (a) { return "{}"; }
  return a;
}
var y = 2;`
	offset := strings.Index(src, `return a;`)
	got, err := ExtractFunctionSource(src, offset)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(strings.HasPrefix(got, "function decode(a)")))
	qt.Assert(t, qt.IsTrue(strings.HasSuffix(got, "}")))
	// the brace inside the string literal "{}" must not desynchronize the
	// depth counter.
	qt.Assert(t, qt.Equals(strings.Count(got, "function"), 1))
}

func TestExtractFunctionSourceNoEnclosingFunction(t *testing.T) {
	_, err := ExtractFunctionSource("var x = 1;", 5)
	qt.Assert(t, qt.IsNotNil(err))
}

func TestExtractFunctionSourceOffsetOutOfRange(t *testing.T) {
	_, err := ExtractFunctionSource("var x = 1;", -1)
	qt.Assert(t, qt.IsNotNil(err))
	_, err = ExtractFunctionSource("var x = 1;", 100)
	qt.Assert(t, qt.IsNotNil(err))
}
