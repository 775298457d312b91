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

package deobfuscate

import (
	"github.com/jsclean/jsclean/internal/js/ast"
	"github.com/jsclean/jsclean/internal/js/astutil"
)

// detectProxy is spec.md §4.2's "Proxy-object detection and update" arm,
// fired on exit of a variable declarator's initializer.
func (r *rewriteStage) detectProxy(p *astutil.Path, name string, obj *ast.ObjectExpr, stmt ast.Stmt) {
	if len(obj.Properties) == 0 {
		r.cache.NewDoubted(name, stmt)
		return
	}
	if isConfirmedProxyShape(obj) {
		r.cache.AddConfirmedProxy(name, stmt, obj)
	}
}

// isConfirmedProxyShape reports whether every property key is a 5-character
// string- or identifier-typed key, all sharing that one length.
func isConfirmedProxyShape(obj *ast.ObjectExpr) bool {
	for _, p := range obj.Properties {
		if proxyKeyLen(p) != 5 {
			return false
		}
	}
	return true
}

func proxyKeyLen(p *ast.Property) int {
	switch k := p.Key.(type) {
	case *ast.Ident:
		return len(k.Name)
	case *ast.Literal:
		if k.Kind == ast.StringLiteral {
			return len(k.Value)
		}
	}
	return -1
}

// updateDoubtedProxy is the assignment half of the same arm: `obj[key] =
// value` against a doubted entry.
func (r *rewriteStage) updateDoubtedProxy(assign *ast.AssignExpr, stmt ast.Stmt) {
	member, ok := assign.Left.(*ast.MemberExpr)
	if !ok || !member.Computed {
		return
	}
	obj, ok := member.Object.(*ast.Ident)
	if !ok {
		return
	}
	d := r.cache.Doubted(obj.Name)
	if d == nil {
		return
	}
	keyLit, ok := member.Property.(*ast.Literal)
	if !ok || keyLit.Kind != ast.StringLiteral {
		r.cache.Invalidate(obj.Name)
		return
	}
	keyLen := len(keyLit.Value)
	if keyLen != 5 || (d.FirstObservedKeyLength != 0 && keyLen != d.FirstObservedKeyLength) {
		r.cache.Invalidate(obj.Name)
		return
	}
	prop := &ast.Property{Key: keyLit, Value: assign.Right}
	r.cache.AppendDoubted(obj.Name, keyLen, prop, stmt)
}

// resolveProxyMember is the member-expression half of "Proxy dispatch
// replacement": obj.prop / obj["prop"], not on an assignment LHS.
func (r *rewriteStage) resolveProxyMember(p *astutil.Path, m *ast.MemberExpr) {
	if isAssignmentTarget(p, m) {
		return
	}
	obj, ok := m.Object.(*ast.Ident)
	if !ok || !r.cache.IsValidProxy(obj.Name) {
		return
	}
	key, ok := memberPropertyName(m)
	if !ok {
		return
	}
	prop, ok := r.cache.LookupProperty(obj.Name, key)
	if !ok {
		return
	}
	switch prop.Value.(type) {
	case *ast.Literal, *ast.Ident:
		p.Replace(prop.Value)
	}
}

// resolveProxyCall is the call-expression half: obj.prop(args).
func (r *rewriteStage) resolveProxyCall(p *astutil.Path, call *ast.CallExpr) {
	member, ok := call.Callee.(*ast.MemberExpr)
	if !ok {
		return
	}
	obj, ok := member.Object.(*ast.Ident)
	if !ok || !r.cache.IsValidProxy(obj.Name) {
		return
	}
	key, ok := memberPropertyName(member)
	if !ok {
		return
	}
	prop, ok := r.cache.LookupProperty(obj.Name, key)
	if !ok {
		return
	}
	switch v := prop.Value.(type) {
	case *ast.Literal:
		p.Replace(v)
	case *ast.FunctionExpr:
		if replacement, ok := inlineFunctionCall(v.Params, v.Body, call.Args); ok {
			p.Replace(replacement)
		}
	}
}

// isAssignmentTarget reports whether m is the left-hand side of its
// immediately enclosing assignment expression.
func isAssignmentTarget(p *astutil.Path, m *ast.MemberExpr) bool {
	if p.Parent == nil {
		return false
	}
	assign, ok := p.Parent.Node.(*ast.AssignExpr)
	return ok && assign.Left == ast.Expr(m)
}

// memberPropertyName returns the static property name a member expression
// addresses, whether written as obj.prop or obj["prop"].
func memberPropertyName(m *ast.MemberExpr) (string, bool) {
	if !m.Computed {
		if id, ok := m.Property.(*ast.Ident); ok {
			return id.Name, true
		}
		return "", false
	}
	if lit, ok := m.Property.(*ast.Literal); ok && lit.Kind == ast.StringLiteral {
		return lit.Value, true
	}
	return "", false
}
