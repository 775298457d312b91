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

package parser

import (
	"strings"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/jsclean/jsclean/internal/js/ast"
	"github.com/jsclean/jsclean/internal/js/printer"
)

func TestParseFileRoundTrip(t *testing.T) {
	sources := []string{
		`var x = 1 + 2;`,
		`function f(a, b) { return a + b; }`,
		`if (x) { a(); } else { b(); }`,
		`while (true) { switch (x) { case 1: a(); break; } }`,
		`var o = {a: 1, b: "two", c: [1, 2, 3]};`,
		`try { a(); } catch (e) { b(e); } finally { c(); }`,
	}
	for _, src := range sources {
		prog, err := ParseFile("test.js", src)
		qt.Assert(t, qt.IsNil(err))
		qt.Assert(t, qt.IsTrue(len(prog.Body) > 0))

		out := printer.Print(prog)
		reparsed, err := ParseFile("test.js", out)
		qt.Assert(t, qt.IsNil(err))
		qt.Assert(t, qt.Equals(printer.Print(reparsed), out))
	}
}

func TestParseHexLiteral(t *testing.T) {
	prog, err := ParseFile("test.js", `var _0xabc = 0x7b;`)
	qt.Assert(t, qt.IsNil(err))
	decl := prog.Body[0].(*ast.VarDecl)
	lit := decl.Decls[0].Init.(*ast.Literal)
	qt.Assert(t, qt.Equals(lit.Kind, ast.NumberLiteral))
	qt.Assert(t, qt.Equals(lit.Value, "123"))
	qt.Assert(t, qt.Equals(lit.Raw, "0x7b"))
}

func TestParseErrorOnMalformedSource(t *testing.T) {
	_, err := ParseFile("test.js", "var = ;")
	qt.Assert(t, qt.IsNotNil(err))
	qt.Assert(t, qt.IsTrue(strings.Contains(err.Error(), "test.js")))
}
