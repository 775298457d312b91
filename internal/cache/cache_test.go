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

package cache

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/jsclean/jsclean/internal/js/ast"
)

func ident(name string) *ast.Ident { return &ast.Ident{Name: name} }

func strLit(v string) *ast.Literal {
	return &ast.Literal{Kind: ast.StringLiteral, Value: v, Raw: `"` + v + `"`}
}

// TestMutualExclusion covers invariant 1: a name already recorded under any
// of core/confirmed-proxy/doubted-proxy can't be claimed by another.
func TestMutualExclusion(t *testing.T) {
	c := New()
	stmt := &ast.ExprStmt{}

	c.AddCore("_0xabc", stmt)
	qt.Assert(t, qt.IsTrue(c.IsCore("_0xabc")))

	c.NewDoubted("_0xabc", stmt)
	qt.Assert(t, qt.IsFalse(c.IsValidProxy("_0xabc")))

	c.AddConfirmedProxy("_0xabc", stmt, &ast.ObjectExpr{})
	qt.Assert(t, qt.IsFalse(c.IsValidProxy("_0xabc")))
}

func TestAddCoreIgnoresSecondCall(t *testing.T) {
	c := New()
	first := &ast.ExprStmt{}
	second := &ast.ExprStmt{}
	c.AddCore("decode", first)
	c.AddCore("decode", second)
	qt.Assert(t, qt.Equals(c.CorePaths()["decode"], ast.Stmt(first)))
}

func TestConfirmedProxyLookup(t *testing.T) {
	c := New()
	obj := &ast.ObjectExpr{Properties: []*ast.Property{
		{Key: ident("aaaaa"), Value: &ast.Literal{Kind: ast.NumberLiteral, Value: "1"}},
	}}
	c.AddConfirmedProxy("p", &ast.ExprStmt{}, obj)

	qt.Assert(t, qt.IsTrue(c.IsValidProxy("p")))
	prop, ok := c.LookupProperty("p", "aaaaa")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(prop.Value.(*ast.Literal).Value, "1"))

	_, ok = c.LookupProperty("p", "missing")
	qt.Assert(t, qt.IsFalse(ok))
}

// TestDoubtedProxyLifecycle walks the incremental discovery path: empty
// object, then accumulated assignments, confirming the first-observed key
// length is kept, that LookupProperty finds an accumulated property, and
// that Invalidate removes the doubted entry outright.
func TestDoubtedProxyLifecycle(t *testing.T) {
	c := New()
	objStmt := &ast.ExprStmt{}
	c.NewDoubted("p", objStmt)
	qt.Assert(t, qt.IsTrue(c.IsValidProxy("p")))

	assignStmt := &ast.ExprStmt{}
	prop := &ast.Property{Key: strLit("aaaaa"), Value: &ast.Literal{Kind: ast.NumberLiteral, Value: "1"}}
	c.AppendDoubted("p", 5, prop, assignStmt)

	d := c.Doubted("p")
	qt.Assert(t, qt.Equals(d.FirstObservedKeyLength, 5))
	qt.Assert(t, qt.HasLen(d.Properties, 1))

	// A second assignment at the same key length doesn't overwrite the
	// first-observed length.
	prop2 := &ast.Property{Key: strLit("bbbbb"), Value: &ast.Literal{Kind: ast.NumberLiteral, Value: "2"}}
	c.AppendDoubted("p", 5, prop2, &ast.ExprStmt{})
	qt.Assert(t, qt.Equals(c.Doubted("p").FirstObservedKeyLength, 5))

	got, ok := c.LookupProperty("p", "bbbbb")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(got.Value.(*ast.Literal).Value, "2"))

	c.Invalidate("p")
	qt.Assert(t, qt.IsFalse(c.IsValidProxy("p")))
	qt.Assert(t, qt.IsNil(c.Doubted("p")))
}

func TestCoreRefPathsPreservesOrder(t *testing.T) {
	c := New()
	a, b := &ast.ExprStmt{}, &ast.ExprStmt{}
	c.AddCoreRef(a)
	c.AddCoreRef(b)
	qt.Assert(t, qt.DeepEquals(c.CoreRefPaths(), []ast.Stmt{a, b}))
}
