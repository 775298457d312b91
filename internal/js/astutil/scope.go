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

// Package astutil provides the Path/Scope/Binding facade spec.md §3 and §6
// describe as an external collaborator: for any identifier, what is its
// binding and where is it referenced, plus the mutation primitives
// (replace/remove/skip/find) a rewrite pass needs. cuelang.org/go/cue/ast/
// astutil plays the same role for CUE's own AST (see resolve.go there);
// this package is that same shape, retargeted at the JS subset.
package astutil

import (
	"fmt"

	"github.com/jsclean/jsclean/internal/js/ast"
)

// Binding is everything known about one declared name within a Scope.
type Binding struct {
	Name       string
	Decl       *ast.Ident   // the identifier at the declaration site
	References []*ast.Ident // every use of the name, excluding the declaration
	Violations []*ast.Ident // identifiers on the left of a re-assignment
}

// Scope maintains the bindings declared directly within one function (or
// the top-level program) and a link to the enclosing scope, plus the links
// needed the other direction: every scope nested inside it, and (on the
// root scope only) the set of names referenced somewhere in the program
// that never resolved to any binding (globals/builtins such as `console`
// or `window`). GenerateUniqueIdentifier needs both: a rename must avoid
// shadowing a nested declaration as much as it avoids colliding with one
// already visible from the rename site. Block-level let/const scoping is
// intentionally approximated as function scoping: the obfuscation patterns
// spec.md targets never rely on block shadowing, and modeling true block
// scope would cost far more than it buys here (see DESIGN.md's Open
// Question log).
type Scope struct {
	parent   *Scope
	root     *Scope
	names    map[string]*Binding
	children []*Scope

	// unresolved is non-nil only on the root scope: every name AddReference
	// or AddViolation saw that didn't resolve to any binding.
	unresolved map[string]bool
}

// NewScope creates a scope nested inside parent (nil for the root/program
// scope).
func NewScope(parent *Scope) *Scope {
	s := &Scope{parent: parent, names: map[string]*Binding{}}
	if parent == nil {
		s.root = s
		s.unresolved = map[string]bool{}
	} else {
		s.root = parent.root
		parent.children = append(parent.children, s)
	}
	return s
}

// Parent returns the enclosing scope, or nil for the root scope.
func (s *Scope) Parent() *Scope { return s.parent }

// Declare registers name as bound in s by decl, returning the (possibly
// pre-existing) Binding. Re-declaring the same name in the same scope
// reuses the existing binding, matching `var` redeclaration semantics.
func (s *Scope) Declare(name string, decl *ast.Ident) *Binding {
	if b, ok := s.names[name]; ok {
		return b
	}
	b := &Binding{Name: name, Decl: decl}
	s.names[name] = b
	return b
}

// GetBinding looks up name in s and its ancestors, innermost first.
func (s *Scope) GetBinding(name string) *Binding {
	for sc := s; sc != nil; sc = sc.parent {
		if b, ok := sc.names[name]; ok {
			return b
		}
	}
	return nil
}

// AddReference records id as a use of name, if name resolves to a binding
// reachable from s. An unresolved name (global, builtin) is recorded on the
// root scope instead, so a later rename still knows not to collide with it.
func (s *Scope) AddReference(name string, id *ast.Ident) {
	if b := s.GetBinding(name); b != nil {
		b.References = append(b.References, id)
		return
	}
	s.root.unresolved[name] = true
}

// AddViolation records id (the LHS of a re-assignment) against name's
// binding, if any, or as an unresolved global otherwise (see AddReference).
func (s *Scope) AddViolation(name string, id *ast.Ident) {
	if b := s.GetBinding(name); b != nil {
		b.Violations = append(b.Violations, id)
		return
	}
	s.root.unresolved[name] = true
}

// Rename rewrites every bound use of old to new: the declaration
// identifier and every recorded reference. It is a no-op if old has no
// binding reachable from s.
func (s *Scope) Rename(old, new string) {
	for sc := s; sc != nil; sc = sc.parent {
		b, ok := sc.names[old]
		if !ok {
			continue
		}
		b.Name = new
		b.Decl.Name = new
		for _, ref := range b.References {
			ref.Name = new
		}
		for _, v := range b.Violations {
			v.Name = new
		}
		delete(sc.names, old)
		sc.names[new] = b
		return
	}
}

// Remove deletes name's binding from the scope that owns it, if any. Used
// when a declarator is deleted outright (identifier-alias removal, dead
// proxy cleanup) so a stale binding cannot shadow a later Declare of the
// same name.
func (s *Scope) Remove(name string) {
	for sc := s; sc != nil; sc = sc.parent {
		if _, ok := sc.names[name]; ok {
			delete(sc.names, name)
			return
		}
	}
}

// GenerateUniqueIdentifier returns a name derived from hint that does not
// collide with any binding visible from s, trying hint, then hint2, hint3,
// ... . hint is sanitized to a valid identifier start first.
func (s *Scope) GenerateUniqueIdentifier(hint string) string {
	hint = sanitizeHint(hint)
	if !s.collides(hint) {
		return hint
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s%d", hint, i)
		if !s.collides(candidate) {
			return candidate
		}
	}
}

// collides reports whether name is already taken anywhere a rename at s
// could conflict with: a binding in s or an enclosing scope (GetBinding), a
// binding in a nested scope (which the rename would shadow), or a name
// referenced somewhere as a global/builtin that never resolved to any
// binding at all. All three are collisions spec.md §8.5's "no shadowing"
// property rules out.
func (s *Scope) collides(name string) bool {
	if s.GetBinding(name) != nil {
		return true
	}
	if s.root.unresolved[name] {
		return true
	}
	return s.shadowsDescendant(name)
}

func (s *Scope) shadowsDescendant(name string) bool {
	for _, c := range s.children {
		if _, ok := c.names[name]; ok {
			return true
		}
		if c.shadowsDescendant(name) {
			return true
		}
	}
	return false
}

func sanitizeHint(hint string) string {
	if hint == "" {
		return "_v"
	}
	out := make([]rune, 0, len(hint))
	for i, r := range hint {
		switch {
		case r == '_' || r == '$':
			out = append(out, r)
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			out = append(out, r)
		case r >= '0' && r <= '9':
			if i == 0 {
				out = append(out, '_')
			}
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "_v"
	}
	return string(out)
}
