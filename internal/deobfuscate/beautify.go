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
	"strings"

	"github.com/jsclean/jsclean/internal/js/ast"
	"github.com/jsclean/jsclean/internal/js/astutil"
)

// beautifyStage is Stage 3 (spec.md §4.3): rename every hex-pattern
// identifier by a hint inferred from its declaration context.
type beautifyStage struct {
	scope  *astutil.Scope
	scopes astutil.ScopeMap
}

func (b *beautifyStage) run(prog *ast.Program, scopes astutil.ScopeMap) {
	b.scopes = scopes
	astutil.Traverse(prog, scopes, nil, b.exit)
}

func (b *beautifyStage) effectiveScope(p *astutil.Path) *astutil.Scope {
	if s := p.Scope(); s != nil {
		return s
	}
	return b.scope
}

func (b *beautifyStage) exit(p *astutil.Path) {
	switch n := p.Node.(type) {
	case *ast.VarDecl:
		b.renameDeclarators(p, n)
	case *ast.FunctionDecl:
		b.renameFunction(p, n.Name, n.Params, n.Body)
	case *ast.FunctionExpr:
		b.renameFunction(p, n.Name, n.Params, n.Body)
	case *ast.TryStmt:
		b.renameCatchParam(p, n)
	case *ast.ObjectExpr:
		b.renameShadowedValues(p, n)
	case *ast.AssignExpr:
		b.renameLibraryObject(p, n)
	}
}

func (b *beautifyStage) renameDeclarators(p *astutil.Path, n *ast.VarDecl) {
	sc := b.effectiveScope(p)
	if sc == nil || len(n.Decls) != 1 {
		return
	}
	d := n.Decls[0]
	if !ast.IsHexIdent(d.Name.Name) {
		return
	}
	hint, ok := hintForInit(d.Init)
	if !ok {
		return
	}
	rename(sc, d.Name.Name, hint)
}

func (b *beautifyStage) renameFunction(p *astutil.Path, name *ast.Ident, params []*ast.Ident, body *ast.BlockStmt) {
	if sc := b.effectiveScope(p); sc != nil && name != nil && ast.IsHexIdent(name.Name) {
		rename(sc, name.Name, "func")
	}
	bodyScope := b.scopes[body]
	if bodyScope == nil {
		return
	}
	for _, param := range params {
		if ast.IsHexIdent(param.Name) {
			rename(bodyScope, param.Name, "param")
		}
	}
}

func (b *beautifyStage) renameCatchParam(p *astutil.Path, n *ast.TryStmt) {
	if n.Handler == nil || n.Handler.Param == nil {
		return
	}
	sc := b.effectiveScope(p)
	if sc == nil || !ast.IsHexIdent(n.Handler.Param.Name) {
		return
	}
	rename(sc, n.Handler.Param.Name, "error")
}

// renameShadowedValues is the first "Additional beautification" rule: an
// object property with a plain-named key whose value is a hex identifier.
func (b *beautifyStage) renameShadowedValues(p *astutil.Path, n *ast.ObjectExpr) {
	sc := b.effectiveScope(p)
	if sc == nil {
		return
	}
	for _, prop := range n.Properties {
		if prop.Computed {
			continue
		}
		key, ok := prop.Key.(*ast.Ident)
		if !ok || strings.HasPrefix(key.Name, "_") {
			continue
		}
		value, ok := prop.Value.(*ast.Ident)
		if !ok || !strings.HasPrefix(value.Name, "_") {
			continue
		}
		rename(sc, value.Name, key.Name)
	}
}

// renameLibraryObject is the second "Additional beautification" rule:
// `obj.name = "literal"` or `obj.define = …` renames obj itself.
func (b *beautifyStage) renameLibraryObject(p *astutil.Path, n *ast.AssignExpr) {
	member, ok := n.Left.(*ast.MemberExpr)
	if !ok || member.Computed {
		return
	}
	obj, ok := member.Object.(*ast.Ident)
	if !ok {
		return
	}
	prop, ok := member.Property.(*ast.Ident)
	if !ok {
		return
	}
	var hint string
	switch prop.Name {
	case "name":
		lit, ok := n.Right.(*ast.Literal)
		if !ok || lit.Kind != ast.StringLiteral {
			return
		}
		hint = lit.Value
	case "define":
		hint = "lib"
	default:
		return
	}
	sc := b.effectiveScope(p)
	if sc == nil {
		return
	}
	rename(sc, obj.Name, hint)
}

func rename(sc *astutil.Scope, old, hint string) {
	next := sc.GenerateUniqueIdentifier(hint)
	sc.Rename(old, next)
}

// hintForInit is spec.md §4.3's declaration-context hint table.
func hintForInit(init ast.Expr) (string, bool) {
	switch v := init.(type) {
	case *ast.ArrayExpr:
		return "array", true
	case *ast.ObjectExpr:
		return "obj", true
	case *ast.ThisExpr:
		return "self", true
	case *ast.FunctionExpr:
		return "func", true
	case *ast.Literal:
		switch v.Kind {
		case ast.BoolLiteral:
			return "bool", true
		case ast.NumberLiteral:
			return "num", true
		case ast.StringLiteral:
			return "str", true
		}
	case *ast.MemberExpr:
		if !v.Computed {
			if id, ok := v.Property.(*ast.Ident); ok {
				return id.Name, true
			}
			return "", false
		}
		if lit, ok := v.Property.(*ast.Literal); ok && lit.Kind == ast.StringLiteral {
			return lit.Value, true
		}
	case *ast.NewExpr:
		if id, ok := v.Callee.(*ast.Ident); ok {
			return strings.ToLower(id.Name), true
		}
	case *ast.CallExpr:
		switch callee := v.Callee.(type) {
		case *ast.Ident:
			return strings.ToLower(callee.Name), true
		case *ast.FunctionExpr:
			return "funcValue", true
		}
	}
	return "", false
}
