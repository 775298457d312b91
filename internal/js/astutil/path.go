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

type action int

const (
	actionNone action = iota
	actionReplace
	actionRemove
	actionReplaceMany
)

// Path wraps one AST node occurrence with the mutation primitives spec.md
// §3 and §6 ask for: replace, remove, skip, find(predicate) over ancestors,
// and the enclosing Scope. It is the value enter/exit callbacks passed to
// Traverse receive.
type Path struct {
	Node   ast.Node
	Parent *Path
	scope  *Scope

	act         action
	replacement ast.Node
	many        []ast.Stmt
	skip        bool

	// populated only when Node sits in a statement list (BlockStmt.List,
	// SwitchCase.Consequent, Program.Body).
	siblings []ast.Stmt
	index    int
}

// Scope returns the lexical scope enclosing this node.
func (p *Path) Scope() *Scope { return p.scope }

// Replace swaps this node for n. For expression nodes this takes effect
// immediately; for a statement in a list it is equivalent to
// ReplaceWithStmts with a single element, and unlike ReplaceWithStmts it
// also applies to a statement in a single-statement slot.
func (p *Path) Replace(n ast.Node) {
	p.act = actionReplace
	p.replacement = n
}

// ReplaceWithStmts swaps a single statement for zero or more statements —
// used by sequence flattening (spec.md §4.1) and switch unflattening
// (spec.md §4.2), both of which turn one node into a run of siblings. It
// only takes effect for a statement in a list; in a single-statement slot
// (an if branch, a while body) the call has no effect.
func (p *Path) ReplaceWithStmts(stmts []ast.Stmt) {
	p.act = actionReplaceMany
	p.many = stmts
}

// Remove deletes this node from its container.
func (p *Path) Remove() { p.act = actionRemove }

// Skip prevents Traverse from descending into this node's children.
func (p *Path) Skip() { p.skip = true }

// Find walks this path and its ancestors (innermost first) and returns the
// first one for which pred returns true, or nil.
func (p *Path) Find(pred func(*Path) bool) *Path {
	for cur := p; cur != nil; cur = cur.Parent {
		if pred(cur) {
			return cur
		}
	}
	return nil
}

// GetAllPrevSiblings returns the statements preceding this one in its
// enclosing list, in source order. Empty if Node is not list-resident.
func (p *Path) GetAllPrevSiblings() []ast.Stmt {
	if p.siblings == nil {
		return nil
	}
	out := make([]ast.Stmt, p.index)
	copy(out, p.siblings[:p.index])
	return out
}

// GetAllNextSiblings returns the statements following this one in its
// enclosing list, in source order.
func (p *Path) GetAllNextSiblings() []ast.Stmt {
	if p.siblings == nil {
		return nil
	}
	rest := p.siblings[p.index+1:]
	out := make([]ast.Stmt, len(rest))
	copy(out, rest)
	return out
}
