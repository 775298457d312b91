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

import "github.com/jsclean/jsclean/internal/js/ast"

// Traverse walks prog depth-first, calling enter when a node is first
// reached and exit after its children have been visited. exit is not called
// for a node that enter replaced or removed. Either callback may be nil. A rewrite stage is ordinarily a single big
// type switch inside enter or exit — spec.md §9 explicitly favors that
// "tagged union + match" shape over a map of per-kind closures, the same
// choice cue/ast/walk.go makes with its plain before/after function pair.
//
// scopes is the ScopeMap Resolve returned for prog; it may be nil, in which
// case Path.Scope() is nil throughout.
func Traverse(prog *ast.Program, scopes ScopeMap, enter, exit func(*Path)) {
	t := &traverser{enter: enter, exit: exit, scopes: scopes}
	prog.Body = t.stmtList(prog.Body, nil)
}

// ScopeMap associates each function body with the Scope Resolve built for
// it, so Traverse can make Path.Scope() track the current function without
// re-deriving bindings during the rewrite walk.
type ScopeMap map[*ast.BlockStmt]*Scope

type traverser struct {
	enter, exit func(*Path)
	scopes      ScopeMap
	scope       *Scope
}

func (t *traverser) fire(cb func(*Path), p *Path) {
	if cb != nil {
		cb(p)
	}
}

// stmtList visits each statement in list independently: every element's
// fate (kept as-is, replaced, removed, or expanded into several statements)
// is decided from the list's original shape, then spliced together. This
// keeps per-element decisions free of index drift from a sibling's own
// removal or splice, matching spec.md §9's "order of arms within one node
// exit is unspecified but idempotent" guarantee.
func (t *traverser) stmtList(list []ast.Stmt, parent *Path) []ast.Stmt {
	out := make([]ast.Stmt, 0, len(list))
	for i, s := range list {
		path := &Path{Node: s, Parent: parent, scope: t.scope, siblings: list, index: i}
		t.fire(t.enter, path)
		if path.act == actionRemove {
			continue
		}
		if path.act == actionReplace {
			out = append(out, path.replacement.(ast.Stmt))
			continue
		}
		if path.act == actionReplaceMany {
			out = append(out, path.many...)
			continue
		}
		if !path.skip {
			s = t.stmt(s, path)
		}
		path.Node = s
		t.fire(t.exit, path)
		switch path.act {
		case actionRemove:
			// no-op: drop s
		case actionReplace:
			out = append(out, path.replacement.(ast.Stmt))
		case actionReplaceMany:
			out = append(out, path.many...)
		default:
			out = append(out, s)
		}
	}
	return out
}

// stmt visits s's children in place and returns s (statements are never
// replaced from within stmt itself — only via the enclosing stmtList, which
// is where Replace/Remove/ReplaceWithStmts take effect).
func (t *traverser) stmt(s ast.Stmt, path *Path) ast.Stmt {
	switch n := s.(type) {
	case *ast.ExprStmt:
		n.X = t.expr(n.X, path)
	case *ast.VarDecl:
		for _, d := range n.Decls {
			if d.Init != nil {
				d.Init = t.expr(d.Init, path)
			}
		}
	case *ast.FunctionDecl:
		t.pushFunctionScope(n.Body)
		n.Body.List = t.stmtList(n.Body.List, path)
		t.popScope()
	case *ast.BlockStmt:
		n.List = t.stmtList(n.List, path)
	case *ast.IfStmt:
		n.Test = t.expr(n.Test, path)
		n.Consequent = t.stmtSingle(n.Consequent, path)
		if n.Alternate != nil {
			n.Alternate = t.stmtSingle(n.Alternate, path)
		}
	case *ast.WhileStmt:
		n.Test = t.expr(n.Test, path)
		n.Body = t.stmtSingle(n.Body, path)
	case *ast.SwitchStmt:
		n.Discriminant = t.expr(n.Discriminant, path)
		for _, c := range n.Cases {
			if c.Test != nil {
				c.Test = t.expr(c.Test, path)
			}
			c.Consequent = t.stmtList(c.Consequent, path)
		}
	case *ast.ReturnStmt:
		if n.Argument != nil {
			n.Argument = t.expr(n.Argument, path)
		}
	case *ast.ThrowStmt:
		n.Argument = t.expr(n.Argument, path)
	case *ast.TryStmt:
		n.Block = t.stmtSingle(n.Block, path)
		if n.Handler != nil {
			n.Handler.Body = t.stmtSingle(n.Handler.Body, path).(*ast.BlockStmt)
		}
		if n.Finally != nil {
			n.Finally = t.stmtSingle(n.Finally, path).(*ast.BlockStmt)
		}
	case *ast.BreakStmt, *ast.ContinueStmt, *ast.EmptyStmt:
		// leaves
	}
	return s
}

// stmtSingle visits a statement that occupies a single-slot field (IfStmt's
// branches, WhileStmt's body, TryStmt's block/handler/finally) rather than
// a list slot. Replace still applies and Remove collapses to an EmptyStmt;
// ReplaceWithStmts has no effect here, since there is no list to splice
// into, and the statement is kept as it is.
func (t *traverser) stmtSingle(s ast.Stmt, parent *Path) ast.Stmt {
	path := &Path{Node: s, Parent: parent, scope: t.scope}
	t.fire(t.enter, path)
	if path.act == actionReplace {
		return path.replacement.(ast.Stmt)
	}
	if path.act == actionRemove {
		return &ast.EmptyStmt{}
	}
	if !path.skip {
		s = t.stmt(s, path)
	}
	path.Node = s
	t.fire(t.exit, path)
	switch path.act {
	case actionReplace:
		return path.replacement.(ast.Stmt)
	case actionRemove:
		return &ast.EmptyStmt{}
	default:
		return s
	}
}

func (t *traverser) expr(e ast.Expr, parent *Path) ast.Expr {
	if e == nil {
		return nil
	}
	path := &Path{Node: e, Parent: parent, scope: t.scope}
	t.fire(t.enter, path)
	if path.act == actionReplace {
		return path.replacement.(ast.Expr)
	}
	if !path.skip {
		e = t.descendExpr(e, path)
	}
	path.Node = e
	t.fire(t.exit, path)
	if path.act == actionReplace {
		return path.replacement.(ast.Expr)
	}
	return e
}

func (t *traverser) descendExpr(e ast.Expr, path *Path) ast.Expr {
	switch n := e.(type) {
	case *ast.Ident, *ast.Literal, *ast.ThisExpr:
		// leaves
	case *ast.ArrayExpr:
		for i, el := range n.Elements {
			if el != nil {
				n.Elements[i] = t.expr(el, path)
			}
		}
	case *ast.ObjectExpr:
		for _, p := range n.Properties {
			if p.Computed {
				p.Key = t.expr(p.Key, path)
			}
			p.Value = t.expr(p.Value, path)
		}
	case *ast.FunctionExpr:
		t.pushFunctionScope(n.Body)
		n.Body.List = t.stmtList(n.Body.List, path)
		t.popScope()
	case *ast.MemberExpr:
		n.Object = t.expr(n.Object, path)
		if n.Computed {
			n.Property = t.expr(n.Property, path)
		}
	case *ast.CallExpr:
		n.Callee = t.expr(n.Callee, path)
		for i, a := range n.Args {
			n.Args[i] = t.expr(a, path)
		}
	case *ast.NewExpr:
		n.Callee = t.expr(n.Callee, path)
		for i, a := range n.Args {
			n.Args[i] = t.expr(a, path)
		}
	case *ast.UnaryExpr:
		n.Argument = t.expr(n.Argument, path)
	case *ast.UpdateExpr:
		n.Argument = t.expr(n.Argument, path)
	case *ast.BinaryExpr:
		n.Left = t.expr(n.Left, path)
		n.Right = t.expr(n.Right, path)
	case *ast.LogicalExpr:
		n.Left = t.expr(n.Left, path)
		n.Right = t.expr(n.Right, path)
	case *ast.AssignExpr:
		n.Left = t.expr(n.Left, path)
		n.Right = t.expr(n.Right, path)
	case *ast.ConditionalExpr:
		n.Test = t.expr(n.Test, path)
		n.Consequent = t.expr(n.Consequent, path)
		n.Alternate = t.expr(n.Alternate, path)
	case *ast.SeqExpr:
		for i, x := range n.Expressions {
			n.Expressions[i] = t.expr(x, path)
		}
	}
	return e
}

func (t *traverser) pushFunctionScope(body *ast.BlockStmt) {
	if t.scopes == nil {
		return
	}
	t.scope = t.scopes[body]
}

func (t *traverser) popScope() {
	if t.scope != nil {
		t.scope = t.scope.Parent()
	}
}
