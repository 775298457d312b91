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
	"strconv"
	"strings"

	"github.com/jsclean/jsclean/internal/js/ast"
	"github.com/jsclean/jsclean/internal/js/astutil"
	"github.com/jsclean/jsclean/internal/js/token"
)

// tryUnflattenWhile is "Control-flow unflattening (switch statement)"
// (spec.md §4.2). It fires on the while loop itself, not the switch inside
// it, because the replacement is the whole loop — path.go's ReplaceWithStmts
// doc comment names this arm directly as the reason that method exists.
func (r *rewriteStage) tryUnflattenWhile(p *astutil.Path, w *ast.WhileStmt, prog *ast.Program) {
	body, ok := w.Body.(*ast.BlockStmt)
	if !ok || len(body.List) != 2 {
		return
	}
	sw, ok := body.List[0].(*ast.SwitchStmt)
	if !ok {
		return
	}
	if _, ok := body.List[1].(*ast.BreakStmt); !ok {
		return
	}

	arrayName, counterName, ok := dispatchArrayAndCounter(sw.Discriminant)
	if !ok {
		return
	}
	sc := r.effectiveScope(p)
	if sc == nil || sc.GetBinding(arrayName) == nil || sc.GetBinding(counterName) == nil {
		return
	}
	arrayDecl, ok := r.varDecls[arrayName]
	if !ok {
		return
	}
	counterDecl, ok := r.varDecls[counterName]
	if !ok {
		return
	}
	arr, ok := arrayDecl.Decls[0].Init.(*ast.ArrayExpr)
	if !ok {
		return
	}

	pad, sep, ok := recoverPadSeparator(prog, arrayName, arr)
	if !ok {
		return
	}
	labels := strings.Split(pad, sep)

	var flat []ast.Stmt
	for _, label := range labels {
		c := findSwitchCase(sw, label)
		if c == nil {
			continue
		}
		for _, s := range c.Consequent {
			if _, isContinue := s.(*ast.ContinueStmt); isContinue {
				continue
			}
			flat = append(flat, s)
		}
	}

	// No Skip() call here: it fires on exit, by which point this node's own
	// children have already been visited, and the replacement statements are
	// never independently re-descended into.
	p.ReplaceWithStmts(flat)
	r.cache.AddCoreRef(arrayDecl)
	r.cache.AddCoreRef(counterDecl)
}

// dispatchArrayAndCounter recognizes the `array[counter++]` discriminant
// shape and returns both names.
func dispatchArrayAndCounter(e ast.Expr) (array, counter string, ok bool) {
	m, ok := e.(*ast.MemberExpr)
	if !ok || !m.Computed {
		return "", "", false
	}
	arr, ok := m.Object.(*ast.Ident)
	if !ok {
		return "", "", false
	}
	upd, ok := m.Property.(*ast.UpdateExpr)
	if !ok || upd.Op != token.INC || upd.Prefix {
		return "", "", false
	}
	cnt, ok := upd.Argument.(*ast.Ident)
	if !ok {
		return "", "", false
	}
	return arr.Name, cnt.Name, true
}

func findSwitchCase(sw *ast.SwitchStmt, label string) *ast.SwitchCase {
	for _, c := range sw.Cases {
		lit, ok := c.Test.(*ast.Literal)
		if !ok || lit.Kind != ast.StringLiteral {
			continue
		}
		if lit.Value == label {
			return c
		}
	}
	return nil
}

// recoverPadSeparator locates the pad and separator string literals per
// spec.md §4.2: the pad is the string used in a member-expression position
// (the receiver of a `.split(...)` call), the separator is the one used in
// a call-expression position (that call's argument). Each is read either
// from a string literal written in place or through an indexed access into
// the dispatch array (`array[i]`), the form the obfuscator's own generated
// code uses. When no such call is found in the program and the array holds
// exactly two string elements, those two are taken as (pad, separator) in
// declaration order.
func recoverPadSeparator(prog *ast.Program, arrayName string, arr *ast.ArrayExpr) (pad, sep string, ok bool) {
	var found bool
	ast.Walk(prog, func(n ast.Node) bool {
		if found {
			return false
		}
		call, isCall := n.(*ast.CallExpr)
		if !isCall {
			return true
		}
		member, isMember := call.Callee.(*ast.MemberExpr)
		if !isMember || member.Computed || len(call.Args) != 1 {
			return true
		}
		name, isIdent := member.Property.(*ast.Ident)
		if !isIdent || name.Name != "split" {
			return true
		}
		padStr, padOK := resolveArrayIndexedString(member.Object, arrayName, arr)
		if !padOK {
			return true
		}
		sepStr, sepOK := resolveArrayIndexedString(call.Args[0], arrayName, arr)
		if !sepOK {
			return true
		}
		pad, sep, found = padStr, sepStr, true
		return false
	}, nil)
	if found {
		return pad, sep, true
	}

	var lits []string
	for _, el := range arr.Elements {
		if lit, ok := el.(*ast.Literal); ok && lit.Kind == ast.StringLiteral {
			lits = append(lits, lit.Value)
		}
	}
	if len(lits) == 2 {
		return lits[0], lits[1], true
	}
	return "", "", false
}

func resolveArrayIndexedString(e ast.Expr, arrayName string, arr *ast.ArrayExpr) (string, bool) {
	if lit, ok := e.(*ast.Literal); ok && lit.Kind == ast.StringLiteral {
		return lit.Value, true
	}
	member, ok := e.(*ast.MemberExpr)
	if !ok || !member.Computed {
		return "", false
	}
	id, ok := member.Object.(*ast.Ident)
	if !ok || id.Name != arrayName {
		return "", false
	}
	idxLit, ok := member.Property.(*ast.Literal)
	if !ok || idxLit.Kind != ast.NumberLiteral {
		return "", false
	}
	idx, err := strconv.Atoi(idxLit.Value)
	if err != nil || idx < 0 || idx >= len(arr.Elements) {
		return "", false
	}
	lit, ok := arr.Elements[idx].(*ast.Literal)
	if !ok || lit.Kind != ast.StringLiteral {
		return "", false
	}
	return lit.Value, true
}

