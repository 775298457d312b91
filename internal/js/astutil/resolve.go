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

// Resolve walks prog once and builds the scope tree: every declaration
// (var/let/const, function, parameter, catch binding) is registered, every
// identifier *use* is recorded as a reference, and every assignment target
// is recorded as a violation. It returns the root (program-level) scope and
// a ScopeMap keyed by function body, so Traverse can track which scope is
// current without re-deriving bindings during the rewrite walk.
//
// This mirrors cuelang.org/go/cue/ast/astutil.Resolve's role for CUE:
// a single dedicated pass, not a generic tree walk, because only this pass
// knows which Ident occurrences are bindings, which are uses, and which
// (object keys, non-computed member properties) are not variables at all.
func Resolve(prog *ast.Program) (*Scope, ScopeMap) {
	root := NewScope(nil)
	r := &resolver{scopes: ScopeMap{}}
	for _, s := range prog.Body {
		r.stmt(s, root)
	}
	return root, r.scopes
}

type resolver struct {
	scopes ScopeMap
}

func (r *resolver) stmt(s ast.Stmt, sc *Scope) {
	switch n := s.(type) {
	case *ast.VarDecl:
		for _, d := range n.Decls {
			sc.Declare(d.Name.Name, d.Name)
			if d.Init != nil {
				r.expr(d.Init, sc)
			}
		}
	case *ast.FunctionDecl:
		if n.Name != nil {
			sc.Declare(n.Name.Name, n.Name)
		}
		r.function(n.Params, n.Body, sc)
	case *ast.ExprStmt:
		r.expr(n.X, sc)
	case *ast.BlockStmt:
		for _, st := range n.List {
			r.stmt(st, sc)
		}
	case *ast.IfStmt:
		r.expr(n.Test, sc)
		r.stmt(n.Consequent, sc)
		if n.Alternate != nil {
			r.stmt(n.Alternate, sc)
		}
	case *ast.WhileStmt:
		r.expr(n.Test, sc)
		r.stmt(n.Body, sc)
	case *ast.SwitchStmt:
		r.expr(n.Discriminant, sc)
		for _, c := range n.Cases {
			if c.Test != nil {
				r.expr(c.Test, sc)
			}
			for _, st := range c.Consequent {
				r.stmt(st, sc)
			}
		}
	case *ast.ReturnStmt:
		if n.Argument != nil {
			r.expr(n.Argument, sc)
		}
	case *ast.ThrowStmt:
		r.expr(n.Argument, sc)
	case *ast.TryStmt:
		r.stmt(n.Block, sc)
		if n.Handler != nil {
			if n.Handler.Param != nil {
				sc.Declare(n.Handler.Param.Name, n.Handler.Param)
			}
			r.stmt(n.Handler.Body, sc)
		}
		if n.Finally != nil {
			r.stmt(n.Finally, sc)
		}
	case *ast.BreakStmt, *ast.ContinueStmt, *ast.EmptyStmt:
		// no identifiers
	}
}

func (r *resolver) function(params []*ast.Ident, body *ast.BlockStmt, outer *Scope) *Scope {
	fn := NewScope(outer)
	r.scopes[body] = fn
	for _, p := range params {
		fn.Declare(p.Name, p)
	}
	for _, s := range body.List {
		r.stmt(s, fn)
	}
	return fn
}

func (r *resolver) expr(e ast.Expr, sc *Scope) {
	switch n := e.(type) {
	case *ast.Ident:
		sc.AddReference(n.Name, n)
	case *ast.Literal, *ast.ThisExpr:
		// no identifiers
	case *ast.ArrayExpr:
		for _, el := range n.Elements {
			if el != nil {
				r.expr(el, sc)
			}
		}
	case *ast.ObjectExpr:
		for _, p := range n.Properties {
			if p.Computed {
				r.expr(p.Key, sc)
			}
			// non-computed keys are property names, not variable uses
			if !p.Shorthand {
				r.expr(p.Value, sc)
			} else if id, ok := p.Value.(*ast.Ident); ok {
				sc.AddReference(id.Name, id)
			}
		}
	case *ast.FunctionExpr:
		if n.Name != nil {
			// a named function expression's own name is visible only to
			// itself; approximated here as a reference-less local binding.
		}
		r.function(n.Params, n.Body, sc)
	case *ast.MemberExpr:
		r.expr(n.Object, sc)
		if n.Computed {
			r.expr(n.Property, sc)
		}
		// non-computed property is a property name, not a variable use
	case *ast.CallExpr:
		r.expr(n.Callee, sc)
		for _, a := range n.Args {
			r.expr(a, sc)
		}
	case *ast.NewExpr:
		r.expr(n.Callee, sc)
		for _, a := range n.Args {
			r.expr(a, sc)
		}
	case *ast.UnaryExpr:
		r.expr(n.Argument, sc)
	case *ast.UpdateExpr:
		if id, ok := n.Argument.(*ast.Ident); ok {
			sc.AddViolation(id.Name, id)
		} else {
			r.expr(n.Argument, sc)
		}
	case *ast.BinaryExpr:
		r.expr(n.Left, sc)
		r.expr(n.Right, sc)
	case *ast.LogicalExpr:
		r.expr(n.Left, sc)
		r.expr(n.Right, sc)
	case *ast.AssignExpr:
		if id, ok := n.Left.(*ast.Ident); ok {
			sc.AddViolation(id.Name, id)
		} else {
			r.expr(n.Left, sc)
		}
		r.expr(n.Right, sc)
	case *ast.ConditionalExpr:
		r.expr(n.Test, sc)
		r.expr(n.Consequent, sc)
		r.expr(n.Alternate, sc)
	case *ast.SeqExpr:
		for _, x := range n.Expressions {
			r.expr(x, sc)
		}
	}
}
