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

// Package cache implements the Analysis Cache spec.md §3 describes: the
// bookkeeping a single optimize() call threads through Stage 1 (Decoder
// Detection), Stage 2 (Rewriter) and Stage 4 (Cleanup). It is owned
// exclusively by the call that creates it — nothing here is safe, or
// needs to be safe, for concurrent use (spec.md §5).
package cache

import "github.com/jsclean/jsclean/internal/js/ast"

// DoubtedProxy is the incremental record for `let p = {}; p['aaaaa'] = …;`
// — a proxy whose shape is only known after its assignments accumulate.
type DoubtedProxy struct {
	FirstObservedKeyLength int
	ObjectStmt             ast.Stmt // the `let p = {}` declaration
	Properties             []*ast.Property
	AssignmentStmts        []ast.Stmt // each `p['aaaaa'] = …` origin statement
}

// Cache is the Analysis Cache for one optimize() call. Deletion targets are
// recorded as the plain ast.Stmt node they were found on: all of this
// module's AST node types are represented as pointers, so Go interface
// equality on an ast.Node/ast.Stmt value is pointer identity, and Cleanup
// can recognize a cached node again by simple membership in a set built
// from these fields — no separate path/handle type is needed to delete a
// node after the traversal that discovered it has already finished.
type Cache struct {
	corePaths      map[string]ast.Stmt
	coreRefPaths   []ast.Stmt
	proxyPaths     map[string]*ast.ObjectExpr
	proxyStmts     map[string]ast.Stmt
	doubtedProxies map[string]*DoubtedProxy
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{
		corePaths:      map[string]ast.Stmt{},
		proxyPaths:     map[string]*ast.ObjectExpr{},
		proxyStmts:     map[string]ast.Stmt{},
		doubtedProxies: map[string]*DoubtedProxy{},
	}
}

// taken reports whether name is already recorded under any of the three
// categories invariant 1 says are mutually exclusive.
func (c *Cache) taken(name string) bool {
	_, core := c.corePaths[name]
	_, proxy := c.proxyPaths[name]
	_, doubted := c.doubtedProxies[name]
	return core || proxy || doubted
}

// AddCore records name as a decoder identifier, per the invariant that name
// must already be defined in the host evaluation scope at this point.
func (c *Cache) AddCore(name string, stmt ast.Stmt) {
	if c.taken(name) {
		return
	}
	c.corePaths[name] = stmt
}

// IsCore reports whether name is a known decoder identifier.
func (c *Cache) IsCore(name string) bool {
	_, ok := c.corePaths[name]
	return ok
}

// CorePaths exposes the decoder-name set for Cleanup.
func (c *Cache) CorePaths() map[string]ast.Stmt { return c.corePaths }

// AddCoreRef records a statement that must be deleted at cleanup once
// whatever made it dead (a side-loaded decoder, an unflattened switch) has
// taken effect — support/shuffler statements (Stage 1) and pad-array/
// counter bindings (Stage 2's switch unflattening) both land here.
func (c *Cache) AddCoreRef(stmt ast.Stmt) {
	c.coreRefPaths = append(c.coreRefPaths, stmt)
}

// CoreRefPaths returns every recorded support/shuffler statement, in the
// order recorded.
func (c *Cache) CoreRefPaths() []ast.Stmt { return c.coreRefPaths }

// AddConfirmedProxy records name as a proxy whose property set is already
// fully known (every key present, 5 characters, uniform length).
func (c *Cache) AddConfirmedProxy(name string, stmt ast.Stmt, obj *ast.ObjectExpr) {
	if c.taken(name) {
		return
	}
	c.proxyPaths[name] = obj
	c.proxyStmts[name] = stmt
}

// ProxyStmts exposes the confirmed-proxy statement set for Cleanup.
func (c *Cache) ProxyStmts() map[string]ast.Stmt { return c.proxyStmts }

// NewDoubted starts tracking name as a doubted proxy: declared empty,
// properties to be discovered from later assignments.
func (c *Cache) NewDoubted(name string, objStmt ast.Stmt) {
	if c.taken(name) {
		return
	}
	c.doubtedProxies[name] = &DoubtedProxy{ObjectStmt: objStmt}
}

// Doubted returns name's doubted-proxy record, or nil.
func (c *Cache) Doubted(name string) *DoubtedProxy {
	return c.doubtedProxies[name]
}

// DoubtedProxies exposes every surviving doubted-proxy record for Cleanup.
func (c *Cache) DoubtedProxies() map[string]*DoubtedProxy { return c.doubtedProxies }

// AppendDoubted records a newly observed `name[key] = value` assignment
// against a doubted proxy. keyLen must already have been checked equal to
// 5 and equal to the entry's first observed length by the caller — a
// mismatch invalidates the entry instead (see Invalidate).
func (c *Cache) AppendDoubted(name string, keyLen int, prop *ast.Property, assignStmt ast.Stmt) {
	d, ok := c.doubtedProxies[name]
	if !ok {
		return
	}
	if d.FirstObservedKeyLength == 0 {
		d.FirstObservedKeyLength = keyLen
	}
	d.Properties = append(d.Properties, prop)
	d.AssignmentStmts = append(d.AssignmentStmts, assignStmt)
}

// Invalidate removes name's doubted-proxy entry outright: an assignment
// broke the uniform-5-character-key rule.
func (c *Cache) Invalidate(name string) {
	delete(c.doubtedProxies, name)
}

// IsValidProxy reports whether name resolves to either a confirmed proxy or
// a non-invalidated doubted proxy — invariant 2's union.
func (c *Cache) IsValidProxy(name string) bool {
	if _, ok := c.proxyPaths[name]; ok {
		return true
	}
	_, ok := c.doubtedProxies[name]
	return ok
}

// LookupProperty resolves key against name's proxy properties, checking
// confirmed proxies before doubted ones per invariant 2's stated order.
func (c *Cache) LookupProperty(name, key string) (*ast.Property, bool) {
	if obj, ok := c.proxyPaths[name]; ok {
		for _, p := range obj.Properties {
			if propertyKeyName(p) == key {
				return p, true
			}
		}
		return nil, false
	}
	if d, ok := c.doubtedProxies[name]; ok {
		for _, p := range d.Properties {
			if propertyKeyName(p) == key {
				return p, true
			}
		}
	}
	return nil, false
}

func propertyKeyName(p *ast.Property) string {
	switch k := p.Key.(type) {
	case *ast.Ident:
		return k.Name
	case *ast.Literal:
		if k.Kind == ast.StringLiteral {
			return k.Value
		}
	}
	return ""
}
