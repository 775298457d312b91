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

// Package printer regenerates JavaScript source text from an internal/js/ast
// tree — the other half of the parser/generator collaborator spec.md §6
// describes. Per spec.md's non-goals, it makes no attempt to preserve the
// original source's whitespace or comments; it emits a consistent,
// readable layout instead.
package printer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jsclean/jsclean/internal/js/ast"
	"github.com/jsclean/jsclean/internal/js/token"
)

// Print renders prog as JavaScript source text.
func Print(prog *ast.Program) string {
	p := &printer{}
	for _, s := range prog.Body {
		p.stmt(s, 0)
	}
	return p.b.String()
}

type printer struct {
	b strings.Builder
}

func (p *printer) indent(n int) {
	for i := 0; i < n; i++ {
		p.b.WriteString("  ")
	}
}

func (p *printer) stmt(s ast.Stmt, depth int) {
	p.indent(depth)
	switch n := s.(type) {
	case *ast.ExprStmt:
		p.expr(n.X, 0)
		p.b.WriteString(";\n")
	case *ast.VarDecl:
		p.b.WriteString(n.Kind.String())
		p.b.WriteByte(' ')
		for i, d := range n.Decls {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.b.WriteString(d.Name.Name)
			if d.Init != nil {
				p.b.WriteString(" = ")
				p.expr(d.Init, 0)
			}
		}
		p.b.WriteString(";\n")
	case *ast.FunctionDecl:
		p.b.WriteString("function ")
		p.b.WriteString(n.Name.Name)
		p.params(n.Params)
		p.b.WriteString(" ")
		p.block(n.Body, depth)
		p.b.WriteString("\n")
	case *ast.BlockStmt:
		p.block(n, depth)
		p.b.WriteString("\n")
	case *ast.IfStmt:
		p.b.WriteString("if (")
		p.expr(n.Test, 0)
		p.b.WriteString(") ")
		p.stmtInline(n.Consequent, depth)
		if n.Alternate != nil {
			p.indent(depth)
			p.b.WriteString("else ")
			if elseIf, ok := n.Alternate.(*ast.IfStmt); ok {
				p.b.WriteString("if (")
				p.expr(elseIf.Test, 0)
				p.b.WriteString(") ")
				p.stmtInline(elseIf.Consequent, depth)
				if elseIf.Alternate != nil {
					p.indent(depth)
					p.b.WriteString("else ")
					p.stmtInline(elseIf.Alternate, depth)
				}
			} else {
				p.stmtInline(n.Alternate, depth)
			}
		}
	case *ast.WhileStmt:
		p.b.WriteString("while (")
		p.expr(n.Test, 0)
		p.b.WriteString(") ")
		p.stmtInline(n.Body, depth)
	case *ast.SwitchStmt:
		p.b.WriteString("switch (")
		p.expr(n.Discriminant, 0)
		p.b.WriteString(") {\n")
		for _, c := range n.Cases {
			p.indent(depth + 1)
			if c.Test != nil {
				p.b.WriteString("case ")
				p.expr(c.Test, 0)
				p.b.WriteString(":\n")
			} else {
				p.b.WriteString("default:\n")
			}
			for _, cs := range c.Consequent {
				p.stmt(cs, depth+2)
			}
		}
		p.indent(depth)
		p.b.WriteString("}\n")
	case *ast.ReturnStmt:
		p.b.WriteString("return")
		if n.Argument != nil {
			p.b.WriteByte(' ')
			p.expr(n.Argument, 0)
		}
		p.b.WriteString(";\n")
	case *ast.BreakStmt:
		p.b.WriteString("break;\n")
	case *ast.ContinueStmt:
		p.b.WriteString("continue;\n")
	case *ast.EmptyStmt:
		p.b.WriteString(";\n")
	case *ast.ThrowStmt:
		p.b.WriteString("throw ")
		p.expr(n.Argument, 0)
		p.b.WriteString(";\n")
	case *ast.TryStmt:
		p.b.WriteString("try ")
		p.block(n.Block, depth)
		if n.Handler != nil {
			p.b.WriteString(" catch ")
			if n.Handler.Param != nil {
				p.b.WriteString("(" + n.Handler.Param.Name + ") ")
			}
			p.block(n.Handler.Body, depth)
		}
		if n.Finally != nil {
			p.b.WriteString(" finally ")
			p.block(n.Finally, depth)
		}
		p.b.WriteString("\n")
	default:
		panic(fmt.Sprintf("printer: unhandled statement %T", s))
	}
}

// stmtInline prints a statement that follows `if (...) ` / `while (...) `
// on the same line when it is a block, or indented on the next line
// otherwise.
func (p *printer) stmtInline(s ast.Stmt, depth int) {
	if b, ok := s.(*ast.BlockStmt); ok {
		p.block(b, depth)
		p.b.WriteString("\n")
		return
	}
	p.b.WriteString("\n")
	p.stmt(s, depth+1)
}

func (p *printer) block(b *ast.BlockStmt, depth int) {
	p.b.WriteString("{\n")
	for _, s := range b.List {
		p.stmt(s, depth+1)
	}
	p.indent(depth)
	p.b.WriteString("}")
}

func (p *printer) params(params []*ast.Ident) {
	p.b.WriteByte('(')
	for i, id := range params {
		if i > 0 {
			p.b.WriteString(", ")
		}
		p.b.WriteString(id.Name)
	}
	p.b.WriteByte(')')
}

// expr prints an expression, parenthesizing when its precedence is lower
// than the surrounding context requires.
func (p *printer) expr(e ast.Expr, parentPrec int) {
	prec := exprPrec(e)
	needParen := prec != 0 && prec < parentPrec
	if needParen {
		p.b.WriteByte('(')
	}
	p.exprInner(e, prec)
	if needParen {
		p.b.WriteByte(')')
	}
}

func (p *printer) exprInner(e ast.Expr, prec int) {
	switch n := e.(type) {
	case *ast.Ident:
		p.b.WriteString(n.Name)
	case *ast.ThisExpr:
		p.b.WriteString("this")
	case *ast.Literal:
		p.literal(n)
	case *ast.ArrayExpr:
		p.b.WriteByte('[')
		for i, el := range n.Elements {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.expr(el, 0)
		}
		p.b.WriteByte(']')
	case *ast.ObjectExpr:
		p.b.WriteString("{")
		for i, prop := range n.Properties {
			if i > 0 {
				p.b.WriteString(",")
			}
			p.b.WriteByte(' ')
			p.propertyKey(prop)
			if !prop.Shorthand {
				p.b.WriteString(": ")
				p.expr(prop.Value, 0)
			}
		}
		if len(n.Properties) > 0 {
			p.b.WriteByte(' ')
		}
		p.b.WriteString("}")
	case *ast.FunctionExpr:
		p.b.WriteString("function")
		if n.Name != nil {
			p.b.WriteByte(' ')
			p.b.WriteString(n.Name.Name)
		}
		p.params(n.Params)
		p.b.WriteString(" ")
		p.block(n.Body, 0)
	case *ast.MemberExpr:
		p.expr(n.Object, 18)
		if n.Computed {
			p.b.WriteByte('[')
			p.expr(n.Property, 0)
			p.b.WriteByte(']')
		} else {
			p.b.WriteByte('.')
			p.b.WriteString(n.Property.(*ast.Ident).Name)
		}
	case *ast.CallExpr:
		p.expr(n.Callee, 18)
		p.b.WriteByte('(')
		for i, a := range n.Args {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.expr(a, 2)
		}
		p.b.WriteByte(')')
	case *ast.NewExpr:
		p.b.WriteString("new ")
		p.expr(n.Callee, 18)
		p.b.WriteByte('(')
		for i, a := range n.Args {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.expr(a, 2)
		}
		p.b.WriteByte(')')
	case *ast.UnaryExpr:
		p.b.WriteString(opText(n.Op))
		if isWordOp(n.Op) {
			p.b.WriteByte(' ')
		}
		p.expr(n.Argument, 15)
	case *ast.UpdateExpr:
		if n.Prefix {
			p.b.WriteString(opText(n.Op))
			p.expr(n.Argument, 15)
		} else {
			p.expr(n.Argument, 16)
			p.b.WriteString(opText(n.Op))
		}
	case *ast.BinaryExpr:
		p.expr(n.Left, prec)
		p.b.WriteByte(' ')
		p.b.WriteString(opText(n.Op))
		p.b.WriteByte(' ')
		p.expr(n.Right, prec+1)
	case *ast.LogicalExpr:
		p.expr(n.Left, prec)
		p.b.WriteByte(' ')
		p.b.WriteString(opText(n.Op))
		p.b.WriteByte(' ')
		p.expr(n.Right, prec+1)
	case *ast.AssignExpr:
		p.expr(n.Left, 0)
		p.b.WriteByte(' ')
		p.b.WriteString(opText(n.Op))
		p.b.WriteByte(' ')
		p.expr(n.Right, 2)
	case *ast.ConditionalExpr:
		p.expr(n.Test, 4)
		p.b.WriteString(" ? ")
		p.expr(n.Consequent, 2)
		p.b.WriteString(" : ")
		p.expr(n.Alternate, 2)
	case *ast.SeqExpr:
		for i, x := range n.Expressions {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.expr(x, 2)
		}
	default:
		panic(fmt.Sprintf("printer: unhandled expression %T", e))
	}
}

func (p *printer) propertyKey(prop *ast.Property) {
	if prop.Computed {
		p.b.WriteByte('[')
		p.expr(prop.Key, 0)
		p.b.WriteByte(']')
		return
	}
	switch k := prop.Key.(type) {
	case *ast.Ident:
		p.b.WriteString(k.Name)
	case *ast.Literal:
		p.literal(k)
	}
}

func (p *printer) literal(l *ast.Literal) {
	switch l.Kind {
	case ast.StringLiteral:
		p.b.WriteString(strconv.Quote(l.Value))
	case ast.BoolLiteral, ast.NullLiteral:
		p.b.WriteString(l.Raw)
	case ast.NumberLiteral:
		p.b.WriteString(l.Value)
	}
}

// exprPrec gives the printer's own, compact precedence scale (unrelated to
// token.Kind.Precedence's parser-facing values) so call/member chains never
// gain spurious parentheses while lower-precedence binary chains do when
// nested under higher-precedence siblings.
func exprPrec(e ast.Expr) int {
	switch n := e.(type) {
	case *ast.SeqExpr:
		return 1
	case *ast.AssignExpr:
		return 2
	case *ast.ConditionalExpr:
		return 3
	case *ast.LogicalExpr:
		return logicalPrec(n.Op)
	case *ast.BinaryExpr:
		return binaryPrec(n.Op)
	case *ast.UnaryExpr, *ast.UpdateExpr:
		return 15
	default:
		return 0
	}
}

func logicalPrec(op token.Kind) int {
	switch op {
	case token.NULLISH, token.LOR:
		return 5
	case token.LAND:
		return 6
	}
	return 5
}

func binaryPrec(op token.Kind) int {
	switch op {
	case token.EQL, token.NEQ, token.SEQL, token.SNEQ:
		return 9
	case token.LSS, token.GTR, token.LEQ, token.GEQ, token.IN, token.INSTANCEOF:
		return 10
	case token.ADD, token.SUB:
		return 12
	case token.MUL, token.QUO, token.REM:
		return 13
	}
	return 9
}

func isWordOp(op token.Kind) bool {
	return op == token.TYPEOF || op == token.VOID || op == token.DELETE
}

func opText(op token.Kind) string { return op.String() }
