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

// Package parser implements a recursive-descent parser for the JavaScript
// subset defined by internal/js/ast. It is one of the "external collaborator"
// boundaries spec.md §6 describes (parse source -> AST); this module
// provides a concrete, from-scratch implementation rather than shelling out
// to a JS engine, so the rewriter in internal/deobfuscate has a real AST to
// mutate.
package parser

import (
	"fmt"

	"github.com/jsclean/jsclean/internal/js/ast"
	"github.com/jsclean/jsclean/internal/js/scanner"
	"github.com/jsclean/jsclean/internal/js/token"
	"github.com/jsclean/jsclean/internal/jserrors"
)

// ParseFile parses src (named filename, for diagnostics) into a Program.
// A non-nil error is a jserrors.Error (one failure) or jserrors.List
// (several); per spec.md §7 a parse error aborts — there is no partial-AST
// recovery.
func ParseFile(filename, src string) (*ast.Program, error) {
	file := token.NewFile(filename, []byte(src))
	var errs jserrors.List
	p := &parser{file: file}
	p.scanner.Init(file, []byte(src), func(pos token.Position, msg string) {
		errs = append(errs, jserrors.New(pos, msg))
	})
	p.next()

	prog := &ast.Program{}
	func() {
		defer func() {
			if r := recover(); r != nil {
				if pe, ok := r.(parseError); ok {
					errs = append(errs, jserrors.New(p.file.Position(pe.pos), pe.msg))
					return
				}
				panic(r)
			}
		}()
		for p.tok.Kind != token.EOF {
			prog.Body = append(prog.Body, p.parseStmt())
		}
	}()

	if len(errs) > 0 {
		return nil, errs.AsError()
	}
	return prog, nil
}

type parseError struct {
	pos token.Pos
	msg string
}

type parser struct {
	file    *token.File
	scanner scanner.Scanner
	tok     scanner.Token
}

func (p *parser) next() { p.tok = p.scanner.Scan() }

func (p *parser) fail(format string, args ...interface{}) {
	panic(parseError{pos: p.tok.Pos, msg: fmt.Sprintf(format, args...)})
}

func (p *parser) expect(k token.Kind) scanner.Token {
	if p.tok.Kind != k {
		p.fail("expected %s, got %q", k, p.tok.Lit)
	}
	t := p.tok
	p.next()
	return t
}

// consumeSemi swallows an optional trailing ';' — ASI is approximated by
// simply treating ';' as optional wherever a statement ends, which is
// sufficient for obfuscator output (near-universally semicolon-terminated).
func (p *parser) consumeSemi() {
	if p.tok.Kind == token.SEMI {
		p.next()
	}
}

// ---------------------------------------------------------------------------
// Statements

func (p *parser) parseStmt() ast.Stmt {
	switch p.tok.Kind {
	case token.VAR, token.LET, token.CONST:
		d := p.parseVarDecl()
		p.consumeSemi()
		return d
	case token.FUNCTION:
		return p.parseFunctionDecl()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.SWITCH:
		return p.parseSwitch()
	case token.LBRACE:
		return p.parseBlock()
	case token.RETURN:
		return p.parseReturn()
	case token.BREAK:
		pos := p.tok.Pos
		p.next()
		p.consumeSemi()
		return &ast.BreakStmt{From: pos}
	case token.CONTINUE:
		pos := p.tok.Pos
		p.next()
		p.consumeSemi()
		return &ast.ContinueStmt{From: pos}
	case token.SEMI:
		pos := p.tok.Pos
		p.next()
		return &ast.EmptyStmt{From: pos}
	case token.THROW:
		pos := p.tok.Pos
		p.next()
		x := p.parseExpr()
		p.consumeSemi()
		return &ast.ThrowStmt{From: pos, Argument: x}
	case token.TRY:
		return p.parseTry()
	default:
		pos := p.tok.Pos
		x := p.parseExpr()
		p.consumeSemi()
		return &ast.ExprStmt{From: pos, X: x}
	}
}

// parseVarDecl parses `var a = 1, b, c = f();` as a single ast.VarDecl with
// multiple declarators. Splitting these into siblings is a rewrite-stage
// concern (spec.md §4.1 "multi-declarator split"), not a parser concern.
func (p *parser) parseVarDecl() *ast.VarDecl {
	pos := p.tok.Pos
	var kind ast.DeclKind
	switch p.tok.Kind {
	case token.VAR:
		kind = ast.Var
	case token.LET:
		kind = ast.Let
	case token.CONST:
		kind = ast.Const
	}
	p.next()

	var decls []*ast.VarDeclarator
	for {
		name := p.parseIdent()
		var init ast.Expr
		if p.tok.Kind == token.ASSIGN {
			p.next()
			init = p.parseAssign()
		}
		decls = append(decls, &ast.VarDeclarator{Name: name, Init: init})
		if p.tok.Kind != token.COMMA {
			break
		}
		p.next()
	}
	return &ast.VarDecl{From: pos, To: p.tok.Pos, Kind: kind, Decls: decls}
}

func (p *parser) parseIdent() *ast.Ident {
	if p.tok.Kind != token.IDENT {
		p.fail("expected identifier, got %q", p.tok.Lit)
	}
	id := &ast.Ident{From: p.tok.Pos, Name: p.tok.Lit}
	p.next()
	return id
}

func (p *parser) parseFunctionDecl() *ast.FunctionDecl {
	pos := p.tok.Pos
	p.expect(token.FUNCTION)
	name := p.parseIdent()
	params := p.parseParams()
	body := p.parseBlock()
	return &ast.FunctionDecl{From: pos, To: body.End(), Name: name, Params: params, Body: body}
}

func (p *parser) parseParams() []*ast.Ident {
	p.expect(token.LPAREN)
	var params []*ast.Ident
	for p.tok.Kind != token.RPAREN {
		params = append(params, p.parseIdent())
		if p.tok.Kind == token.COMMA {
			p.next()
			continue
		}
		break
	}
	p.expect(token.RPAREN)
	return params
}

func (p *parser) parseBlock() *ast.BlockStmt {
	pos := p.expect(token.LBRACE).Pos
	var list []ast.Stmt
	for p.tok.Kind != token.RBRACE && p.tok.Kind != token.EOF {
		list = append(list, p.parseStmt())
	}
	end := p.expect(token.RBRACE).Pos
	return &ast.BlockStmt{From: pos, To: end + 1, List: list}
}

func (p *parser) parseIf() *ast.IfStmt {
	pos := p.tok.Pos
	p.next()
	p.expect(token.LPAREN)
	test := p.parseExpr()
	p.expect(token.RPAREN)
	cons := p.parseStmt()
	var alt ast.Stmt
	if p.tok.Kind == token.ELSE {
		p.next()
		alt = p.parseStmt()
	}
	return &ast.IfStmt{From: pos, Test: test, Consequent: cons, Alternate: alt}
}

func (p *parser) parseWhile() *ast.WhileStmt {
	pos := p.tok.Pos
	p.next()
	p.expect(token.LPAREN)
	test := p.parseExpr()
	p.expect(token.RPAREN)
	body := p.parseStmt()
	return &ast.WhileStmt{From: pos, Test: test, Body: body}
}

func (p *parser) parseSwitch() *ast.SwitchStmt {
	pos := p.tok.Pos
	p.next()
	p.expect(token.LPAREN)
	disc := p.parseExpr()
	p.expect(token.RPAREN)
	p.expect(token.LBRACE)
	var cases []*ast.SwitchCase
	for p.tok.Kind != token.RBRACE && p.tok.Kind != token.EOF {
		c := &ast.SwitchCase{}
		if p.tok.Kind == token.CASE {
			p.next()
			c.Test = p.parseExpr()
		} else {
			p.expect(token.DEFAULT)
		}
		p.expect(token.COLON)
		for p.tok.Kind != token.CASE && p.tok.Kind != token.DEFAULT && p.tok.Kind != token.RBRACE && p.tok.Kind != token.EOF {
			c.Consequent = append(c.Consequent, p.parseStmt())
		}
		cases = append(cases, c)
	}
	end := p.expect(token.RBRACE).Pos
	return &ast.SwitchStmt{From: pos, To: end + 1, Discriminant: disc, Cases: cases}
}

func (p *parser) parseReturn() *ast.ReturnStmt {
	pos := p.tok.Pos
	p.next()
	var arg ast.Expr
	if p.tok.Kind != token.SEMI && p.tok.Kind != token.RBRACE && p.tok.Kind != token.EOF {
		arg = p.parseExpr()
	}
	p.consumeSemi()
	return &ast.ReturnStmt{From: pos, Argument: arg}
}

func (p *parser) parseTry() *ast.TryStmt {
	pos := p.tok.Pos
	p.next()
	block := p.parseBlock()
	t := &ast.TryStmt{From: pos, Block: block}
	if p.tok.Kind == token.CATCH {
		p.next()
		h := &ast.CatchClause{}
		if p.tok.Kind == token.LPAREN {
			p.next()
			h.Param = p.parseIdent()
			p.expect(token.RPAREN)
		}
		h.Body = p.parseBlock()
		t.Handler = h
	}
	if p.tok.Kind == token.FINALLY {
		p.next()
		t.Finally = p.parseBlock()
	}
	return t
}

// ---------------------------------------------------------------------------
// Expressions
//
// parseExpr   := comma-joined sequence of parseAssign
// parseAssign := conditional (= conditional)?
// parseCond   := logicalOr (? assign : assign)?
// binary climbing over token.Kind.Precedence()
// unary, postfix (call/member chains), primary

func (p *parser) parseExpr() ast.Expr {
	first := p.parseAssign()
	if p.tok.Kind != token.COMMA {
		return first
	}
	pos := first.Pos()
	exprs := []ast.Expr{first}
	for p.tok.Kind == token.COMMA {
		p.next()
		exprs = append(exprs, p.parseAssign())
	}
	return &ast.SeqExpr{From: pos, To: exprs[len(exprs)-1].End(), Expressions: exprs}
}

func (p *parser) parseAssign() ast.Expr {
	left := p.parseConditional()
	switch p.tok.Kind {
	case token.ASSIGN, token.ADD_A, token.SUB_A, token.MUL_A, token.QUO_A:
		op := p.tok.Kind
		p.next()
		right := p.parseAssign()
		return &ast.AssignExpr{Left: left, Op: op, Right: right}
	}
	return left
}

func (p *parser) parseConditional() ast.Expr {
	test := p.parseBinary(1)
	if p.tok.Kind != token.QUESTION {
		return test
	}
	p.next()
	cons := p.parseAssign()
	p.expect(token.COLON)
	alt := p.parseAssign()
	return &ast.ConditionalExpr{Test: test, Consequent: cons, Alternate: alt}
}

func (p *parser) parseBinary(minPrec int) ast.Expr {
	left := p.parseUnary()
	for {
		prec := p.tok.Kind.Precedence()
		if prec < minPrec || prec == 0 {
			return left
		}
		op := p.tok.Kind
		p.next()
		right := p.parseBinary(prec + 1)
		if op == token.LAND || op == token.LOR || op == token.NULLISH {
			left = &ast.LogicalExpr{Left: left, Op: op, Right: right}
		} else {
			left = &ast.BinaryExpr{Left: left, Op: op, Right: right}
		}
	}
}

func (p *parser) parseUnary() ast.Expr {
	switch p.tok.Kind {
	case token.NOT, token.ADD, token.SUB, token.TYPEOF, token.VOID, token.DELETE:
		pos := p.tok.Pos
		op := p.tok.Kind
		p.next()
		return &ast.UnaryExpr{From: pos, Op: op, Argument: p.parseUnary()}
	case token.INC, token.DEC:
		pos := p.tok.Pos
		op := p.tok.Kind
		p.next()
		arg := p.parseUnary()
		return &ast.UpdateExpr{From: pos, To: arg.End(), Op: op, Argument: arg, Prefix: true}
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() ast.Expr {
	x := p.parseCallChain()
	if p.tok.Kind == token.INC || p.tok.Kind == token.DEC {
		op := p.tok.Kind
		end := p.tok.Pos + 2
		p.next()
		return &ast.UpdateExpr{From: x.Pos(), To: end, Op: op, Argument: x, Prefix: false}
	}
	return x
}

func (p *parser) parseCallChain() ast.Expr {
	x := p.parseNewOrPrimary()
	for {
		switch p.tok.Kind {
		case token.DOT:
			p.next()
			prop := p.parseIdent()
			x = &ast.MemberExpr{Object: x, Property: prop, Computed: false, To: prop.End()}
		case token.LBRACKET:
			p.next()
			prop := p.parseExpr()
			end := p.expect(token.RBRACKET).Pos
			x = &ast.MemberExpr{Object: x, Property: prop, Computed: true, To: end + 1}
		case token.LPAREN:
			args, end := p.parseArgs()
			x = &ast.CallExpr{Callee: x, Args: args, To: end}
		default:
			return x
		}
	}
}

func (p *parser) parseArgs() ([]ast.Expr, token.Pos) {
	p.expect(token.LPAREN)
	var args []ast.Expr
	for p.tok.Kind != token.RPAREN {
		args = append(args, p.parseAssign())
		if p.tok.Kind == token.COMMA {
			p.next()
			continue
		}
		break
	}
	end := p.expect(token.RPAREN).Pos
	return args, end + 1
}

func (p *parser) parseNewOrPrimary() ast.Expr {
	if p.tok.Kind == token.NEW {
		pos := p.tok.Pos
		p.next()
		callee := p.parseCallChainNoCall()
		var args []ast.Expr
		end := callee.End()
		if p.tok.Kind == token.LPAREN {
			args, end = p.parseArgs()
		}
		return &ast.NewExpr{From: pos, Callee: callee, Args: args, To: end}
	}
	return p.parsePrimary()
}

// parseCallChainNoCall parses a member-access chain without consuming a
// trailing call, so `new a.b.c(x)` attaches `(x)` to the NewExpr rather
// than to `c`.
func (p *parser) parseCallChainNoCall() ast.Expr {
	x := p.parseNewOrPrimary()
	for {
		switch p.tok.Kind {
		case token.DOT:
			p.next()
			prop := p.parseIdent()
			x = &ast.MemberExpr{Object: x, Property: prop, Computed: false, To: prop.End()}
		case token.LBRACKET:
			p.next()
			prop := p.parseExpr()
			end := p.expect(token.RBRACKET).Pos
			x = &ast.MemberExpr{Object: x, Property: prop, Computed: true, To: end + 1}
		default:
			return x
		}
	}
}

func (p *parser) parsePrimary() ast.Expr {
	tok := p.tok
	switch tok.Kind {
	case token.NUMBER:
		p.next()
		return &ast.Literal{From: tok.Pos, Kind: ast.NumberLiteral, Value: canonicalNumber(tok.Lit), Raw: tok.Lit}
	case token.STRING:
		p.next()
		return &ast.Literal{From: tok.Pos, Kind: ast.StringLiteral, Value: unquote(tok.Lit), Raw: tok.Lit}
	case token.TRUE:
		p.next()
		return &ast.Literal{From: tok.Pos, Kind: ast.BoolLiteral, Value: "true", Raw: "true"}
	case token.FALSE:
		p.next()
		return &ast.Literal{From: tok.Pos, Kind: ast.BoolLiteral, Value: "false", Raw: "false"}
	case token.NULL:
		p.next()
		return &ast.Literal{From: tok.Pos, Kind: ast.NullLiteral, Value: "", Raw: "null"}
	case token.UNDEFINED:
		p.next()
		return &ast.Ident{From: tok.Pos, Name: "undefined"}
	case token.THIS:
		p.next()
		return &ast.ThisExpr{From: tok.Pos}
	case token.IDENT:
		return p.parseIdent()
	case token.LPAREN:
		p.next()
		x := p.parseExpr()
		p.expect(token.RPAREN)
		return x
	case token.LBRACKET:
		return p.parseArray()
	case token.LBRACE:
		return p.parseObject()
	case token.FUNCTION:
		return p.parseFunctionExpr()
	default:
		p.fail("unexpected token %q in expression", tok.Lit)
		return nil
	}
}

func (p *parser) parseArray() *ast.ArrayExpr {
	pos := p.expect(token.LBRACKET).Pos
	var elems []ast.Expr
	for p.tok.Kind != token.RBRACKET {
		elems = append(elems, p.parseAssign())
		if p.tok.Kind == token.COMMA {
			p.next()
			continue
		}
		break
	}
	end := p.expect(token.RBRACKET).Pos
	return &ast.ArrayExpr{From: pos, To: end + 1, Elements: elems}
}

func (p *parser) parseObject() *ast.ObjectExpr {
	pos := p.expect(token.LBRACE).Pos
	var props []*ast.Property
	for p.tok.Kind != token.RBRACE {
		props = append(props, p.parseProperty())
		if p.tok.Kind == token.COMMA {
			p.next()
			continue
		}
		break
	}
	end := p.expect(token.RBRACE).Pos
	return &ast.ObjectExpr{From: pos, To: end + 1, Properties: props}
}

func (p *parser) parseProperty() *ast.Property {
	var key ast.Expr
	computed := false
	switch p.tok.Kind {
	case token.STRING:
		key = &ast.Literal{From: p.tok.Pos, Kind: ast.StringLiteral, Value: unquote(p.tok.Lit), Raw: p.tok.Lit}
		p.next()
	case token.NUMBER:
		key = &ast.Literal{From: p.tok.Pos, Kind: ast.NumberLiteral, Value: canonicalNumber(p.tok.Lit), Raw: p.tok.Lit}
		p.next()
	case token.LBRACKET:
		p.next()
		key = p.parseAssign()
		p.expect(token.RBRACKET)
		computed = true
	default:
		key = p.parseIdent()
	}
	if p.tok.Kind != token.COLON {
		// shorthand { x } -- only valid when key is an *ast.Ident
		id, _ := key.(*ast.Ident)
		return &ast.Property{Key: key, Value: id, Shorthand: true}
	}
	p.next()
	value := p.parseAssign()
	return &ast.Property{Key: key, Computed: computed, Value: value}
}

func (p *parser) parseFunctionExpr() *ast.FunctionExpr {
	pos := p.tok.Pos
	p.expect(token.FUNCTION)
	var name *ast.Ident
	if p.tok.Kind == token.IDENT {
		name = p.parseIdent()
	}
	params := p.parseParams()
	body := p.parseBlock()
	return &ast.FunctionExpr{From: pos, To: body.End(), Name: name, Params: params, Body: body}
}
