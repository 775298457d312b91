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
	"log/slog"
	"strings"

	"github.com/jsclean/jsclean/internal/cache"
	"github.com/jsclean/jsclean/internal/js/ast"
	"github.com/jsclean/jsclean/internal/js/astutil"
	"github.com/jsclean/jsclean/internal/js/printer"
	"github.com/jsclean/jsclean/internal/js/token"
	"github.com/jsclean/jsclean/internal/sandbox"
)

// base64Charset and its inverse-case variant are Fingerprint 2 (spec.md
// §4.1): their literal presence anywhere in the tree means "there is a
// decoder function nearby".
const (
	base64Charset     = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789+/="
	base64ChartsetInv = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/="
)

// the two hard-coded anti-tamper substitutions spec.md §4.1 step 3 names,
// byte-for-byte: `"\x5cw+\x20*\x5c(\x5c)\x20*{\x5cw+\x20*"` and
// `"[\x27|\x22].+[\x27|\x22];?\x20*}"`, where \x20 is a literal space, not a
// \s regex class — these are substrings for strings.ReplaceAll, not regular
// expressions, so they must match the anti-tamper check's own source text
// exactly.
var antiTamperPatterns = []struct{ from, to string }{
	{`\w+ *\(\) *{\w+ *`, ""},
	{`['|"].+['|"];? *}`, "."},
}

type decoderStage struct {
	host   *sandbox.Host
	cache  *cache.Cache
	log    *slog.Logger
	source string
}

// run executes Stage 1: pre-normalization followed by decoder detection.
func (d *decoderStage) run(prog *ast.Program) {
	astutil.Traverse(prog, nil, d.normalize, nil)
	astutil.Traverse(prog, nil, nil, d.detect)
}

// normalize implements the two pre-normalization arms (spec.md §4.1):
// sequence flattening and multi-declarator split. ReplaceWithStmts only
// takes effect for a node that sits directly in a statement list; a
// sequence statement or multi-declarator in a single-statement slot (an
// unbraced if/while body) is left as it is.
func (d *decoderStage) normalize(p *astutil.Path) {
	switch s := p.Node.(type) {
	case *ast.ExprStmt:
		seq, ok := s.X.(*ast.SeqExpr)
		if !ok {
			return
		}
		stmts := make([]ast.Stmt, len(seq.Expressions))
		for i, e := range seq.Expressions {
			stmts[i] = &ast.ExprStmt{From: e.Pos(), X: e}
		}
		p.ReplaceWithStmts(stmts)
	case *ast.VarDecl:
		if len(s.Decls) <= 1 {
			return
		}
		stmts := make([]ast.Stmt, len(s.Decls))
		for i, decl := range s.Decls {
			stmts[i] = &ast.VarDecl{From: s.From, To: s.To, Kind: s.Kind, Decls: []*ast.VarDeclarator{decl}}
		}
		p.ReplaceWithStmts(stmts)
	}
}

// detect implements the Fingerprint 1 and Fingerprint 2 detection arms.
func (d *decoderStage) detect(p *astutil.Path) {
	switch n := p.Node.(type) {
	case *ast.FunctionDecl:
		if isEncryptFunctionShape(n.Params, n.Body) {
			d.addEncryptFunction(p, n.Name.Name, n.Body)
		}
	case *ast.VarDecl:
		if len(n.Decls) != 1 {
			return
		}
		fn, ok := n.Decls[0].Init.(*ast.FunctionExpr)
		if !ok || !isEncryptFunctionShape(fn.Params, fn.Body) {
			return
		}
		d.addEncryptFunction(p, n.Decls[0].Name.Name, fn.Body)
	case *ast.Literal:
		if n.Kind != ast.StringLiteral {
			return
		}
		if n.Value != base64Charset && n.Value != base64ChartsetInv {
			return
		}
		fn := p.Find(func(anc *astutil.Path) bool {
			switch a := anc.Node.(type) {
			case *ast.FunctionDecl:
				return len(a.Params) == 2
			case *ast.VarDecl:
				if len(a.Decls) != 1 {
					return false
				}
				fe, ok := a.Decls[0].Init.(*ast.FunctionExpr)
				return ok && len(fe.Params) == 2
			}
			return false
		})
		if fn == nil {
			return
		}
		switch a := fn.Node.(type) {
		case *ast.FunctionDecl:
			d.addEncryptFunction(fn, a.Name.Name, a.Body)
		case *ast.VarDecl:
			fe := a.Decls[0].Init.(*ast.FunctionExpr)
			d.addEncryptFunction(fn, a.Decls[0].Name.Name, fe.Body)
		}
	}
}

// isEncryptFunctionShape is Fingerprint 1: a two-parameter function whose
// body is exactly `return (X = <expr>, X(<args>))`.
func isEncryptFunctionShape(params []*ast.Ident, body *ast.BlockStmt) bool {
	if len(params) != 2 || len(body.List) != 1 {
		return false
	}
	ret, ok := body.List[0].(*ast.ReturnStmt)
	if !ok || ret.Argument == nil {
		return false
	}
	seq, ok := ret.Argument.(*ast.SeqExpr)
	if !ok || len(seq.Expressions) != 2 {
		return false
	}
	assign, ok := seq.Expressions[0].(*ast.AssignExpr)
	if !ok || assign.Op != token.ASSIGN {
		return false
	}
	lhs, ok := assign.Left.(*ast.Ident)
	if !ok {
		return false
	}
	call, ok := seq.Expressions[1].(*ast.CallExpr)
	if !ok {
		return false
	}
	callee, ok := call.Callee.(*ast.Ident)
	if !ok {
		return false
	}
	return lhs.Name == callee.Name
}

// addEncryptFunction implements spec.md §4.1's addEncryptFunction: locate
// the support array and shuffler among fnPath's siblings, side-load the
// concatenated decoder text into the host scope, and record the cache
// entries Stage 2/4 depend on.
func (d *decoderStage) addEncryptFunction(fnPath *astutil.Path, name string, body *ast.BlockStmt) {
	if d.cache.IsCore(name) {
		return
	}

	supportStmt, supportSrc := findSupportArray(fnPath)
	var shufflerStmt ast.Stmt
	var shufflerSrc string
	if supportStmt != nil {
		shufflerStmt, shufflerSrc = findShuffler(fnPath, supportArrayName(supportStmt))
	}

	decoderSrc := d.reconstructSource(fnPath, name)
	if decoderSrc == "" {
		d.log.Warn("deobfuscate: could not reconstruct decoder source", "name", name)
		return
	}

	full := supportSrc + shufflerSrc + decoderSrc
	for _, sub := range antiTamperPatterns {
		full = strings.ReplaceAll(full, sub.from, sub.to)
	}

	if err := d.host.Inject(full); err != nil {
		d.log.Warn("deobfuscate: decoder side-load failed", "name", name, "error", err)
		return
	}
	if !d.host.Has(name) {
		d.log.Warn("deobfuscate: decoder not callable after side-load", "name", name)
		return
	}

	if supportStmt != nil {
		d.cache.AddCoreRef(supportStmt)
	}
	if shufflerStmt != nil {
		d.cache.AddCoreRef(shufflerStmt)
	}
	d.cache.AddCore(name, fnPath.Node.(ast.Stmt))
	// "Mark the decoder path as do not descend" (spec.md §4.1) is enforced
	// by the Rewriter (rewrite.go), which checks cache.IsCore before
	// descending into any FunctionDecl/VarDecl — Stage 1's own traversal
	// has already finished with this node by the time detect (an exit
	// arm) runs, so a Path.Skip() here would have nothing left to affect.
}

// findSupportArray is spec.md §4.1 step 1: the nearest previous sibling
// that is a single-declarator variable declaration initialized to an
// array expression.
func findSupportArray(fnPath *astutil.Path) (ast.Stmt, string) {
	for _, s := range reversed(fnPath.GetAllPrevSiblings()) {
		decl, ok := s.(*ast.VarDecl)
		if !ok || len(decl.Decls) != 1 {
			continue
		}
		if _, ok := decl.Decls[0].Init.(*ast.ArrayExpr); ok {
			return decl, printer.Print(&ast.Program{Body: []ast.Stmt{decl}})
		}
	}
	return nil, ""
}

func supportArrayName(supportStmt ast.Stmt) string {
	if decl, ok := supportStmt.(*ast.VarDecl); ok && len(decl.Decls) == 1 {
		return decl.Decls[0].Name.Name
	}
	return ""
}

// findShuffler is spec.md §4.1 step 2: an expression statement calling an
// IIFE of two parameters, whose first argument is supportName.
func findShuffler(fnPath *astutil.Path, supportName string) (ast.Stmt, string) {
	if supportName == "" {
		return nil, ""
	}
	candidates := append(reversed(fnPath.GetAllPrevSiblings()), fnPath.GetAllNextSiblings()...)
	for _, s := range candidates {
		es, ok := s.(*ast.ExprStmt)
		if !ok {
			continue
		}
		call, ok := es.X.(*ast.CallExpr)
		if !ok || len(call.Args) != 2 {
			continue
		}
		fe, ok := call.Callee.(*ast.FunctionExpr)
		if !ok || len(fe.Params) != 2 {
			continue
		}
		if id, ok := call.Args[0].(*ast.Ident); !ok || id.Name != supportName {
			continue
		}
		return es, printer.Print(&ast.Program{Body: []ast.Stmt{es}})
	}
	return nil, ""
}

// reconstructSource renders fnPath's underlying declaration as standalone
// source text for injection. The printer round-trip is expected to always
// succeed for a tree built by this module's own parser; ExtractFunctionSource
// is an additive fallback (SPEC_FULL.md §C) for the case where fnPath's node
// shape fails to print, and the text it recovers is side-loaded just like
// printed source — kept in reserve for decoder
// definitions reached through positions that drifted from the original
// source, never consulted for a tree produced entirely by Stage 1 itself.
func (d *decoderStage) reconstructSource(fnPath *astutil.Path, name string) (out string) {
	defer func() {
		if recover() != nil {
			out = d.reconstructFromSourceText(fnPath)
		}
	}()
	switch n := fnPath.Node.(type) {
	case *ast.FunctionDecl:
		return printer.Print(&ast.Program{Body: []ast.Stmt{n}})
	case *ast.VarDecl:
		return printer.Print(&ast.Program{Body: []ast.Stmt{n}})
	}
	return ""
}

func (d *decoderStage) reconstructFromSourceText(fnPath *astutil.Path) string {
	src, err := sandbox.ExtractFunctionSource(d.source, int(fnPath.Node.Pos()))
	if err != nil {
		return ""
	}
	return src
}

func reversed(s []ast.Stmt) []ast.Stmt {
	out := make([]ast.Stmt, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}
