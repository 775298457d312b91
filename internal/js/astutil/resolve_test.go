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

package astutil

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/jsclean/jsclean/internal/js/ast"
	"github.com/jsclean/jsclean/internal/js/parser"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.ParseFile("test.js", src)
	qt.Assert(t, qt.IsNil(err))
	return prog
}

func TestResolveReferencesAndViolations(t *testing.T) {
	prog := mustParse(t, `var x = 1;
x = x + 1;
x++;`)
	root, _ := Resolve(prog)

	b := root.GetBinding("x")
	qt.Assert(t, qt.IsNotNil(b))
	// one reference from the read on the right of `x = x + 1`, not from
	// the assignment's own left side (a violation) or the increment's
	// operand (also a violation).
	qt.Assert(t, qt.HasLen(b.References, 1))
	qt.Assert(t, qt.HasLen(b.Violations, 2))
}

func TestResolveObjectKeysAreNotReferences(t *testing.T) {
	prog := mustParse(t, `var y = 2;
var p = {y: y};`)
	root, _ := Resolve(prog)

	b := root.GetBinding("y")
	qt.Assert(t, qt.IsNotNil(b))
	// exactly one reference: the property *value* `y`, not the
	// non-computed key `y:`.
	qt.Assert(t, qt.HasLen(b.References, 1))
}

func TestResolveFunctionParamsOwnScope(t *testing.T) {
	prog := mustParse(t, `function f(a) {
	return a + a;
}`)
	root, scopes := Resolve(prog)

	fnDecl := prog.Body[0].(*ast.FunctionDecl)
	bodyScope := scopes[fnDecl.Body]
	qt.Assert(t, qt.IsNotNil(bodyScope))

	b := bodyScope.GetBinding("a")
	qt.Assert(t, qt.IsNotNil(b))
	qt.Assert(t, qt.HasLen(b.References, 2))

	// the parameter isn't visible from the root scope.
	qt.Assert(t, qt.IsNil(root.GetBinding("a")))
}

func TestGenerateUniqueIdentifierAvoidsCollisions(t *testing.T) {
	sc := NewScope(nil)
	sc.Declare("obj", nil)
	sc.Declare("obj2", nil)
	got := sc.GenerateUniqueIdentifier("obj")
	qt.Assert(t, qt.Equals(got, "obj3"))
}

func TestRenameUpdatesDeclAndReferences(t *testing.T) {
	prog := mustParse(t, `var _0xabc = 1;
console.log(_0xabc);`)
	root, _ := Resolve(prog)
	root.Rename("_0xabc", "count")

	b := root.GetBinding("count")
	qt.Assert(t, qt.IsNotNil(b))
	qt.Assert(t, qt.Equals(b.Decl.Name, "count"))
	qt.Assert(t, qt.IsNil(root.GetBinding("_0xabc")))
}
