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

	"github.com/cockroachdb/apd/v3"

	"github.com/jsclean/jsclean/internal/js/ast"
	"github.com/jsclean/jsclean/internal/js/astutil"
	"github.com/jsclean/jsclean/internal/js/token"
)

// foldBinary is spec.md §4.2's constant-folding arm. Both branches evaluate
// in the host scope rather than reimplementing JavaScript's operator
// semantics in Go — the guiding non-goal is soundness relative to a real
// JS engine, not a hand-rolled approximation of one.
func (r *rewriteStage) foldBinary(p *astutil.Path, n *ast.BinaryExpr) {
	switch n.Op {
	case token.ADD, token.SUB, token.MUL, token.QUO, token.SEQL, token.SNEQ:
	default:
		return
	}

	if lit, ok := n.Left.(*ast.Literal); ok {
		if rlit, ok := n.Right.(*ast.Literal); ok && rlit.Kind == lit.Kind {
			if folded := r.evalBinaryLiteral(literalText(lit), n.Op, literalText(rlit)); folded != nil {
				p.Replace(folded)
				return
			}
		}
	}

	switch n.Op {
	case token.ADD, token.SUB, token.MUL, token.QUO:
	default:
		return
	}
	lText, lOK := numericOperandText(n.Left)
	rText, rOK := numericOperandText(n.Right)
	if !lOK || !rOK {
		return
	}
	if folded := r.evalBinaryLiteral(lText, n.Op, rText); folded != nil {
		p.Replace(folded)
	}
}

func (r *rewriteStage) evalBinaryLiteral(leftText string, op token.Kind, rightText string) *ast.Literal {
	src := leftText + " " + op.String() + " " + rightText
	v, err := r.host.Eval(src)
	if err != nil {
		r.log.Warn("deobfuscate: constant fold failed", "expr", src, "error", err)
		return nil
	}
	return literalFromValue(v)
}

// literalText renders a literal operand as JavaScript source text for
// re-evaluation.
func literalText(l *ast.Literal) string {
	switch l.Kind {
	case ast.StringLiteral:
		return strconv.Quote(l.Value)
	case ast.BoolLiteral, ast.NullLiteral:
		return l.Raw
	default:
		return l.Value
	}
}

// numericOperandText accepts a numeric literal, a unary negation of one, or
// a boolean literal. foldBinary applies it to both operands alike, so a
// negated literal is accepted on either side. Booleans are admitted
// alongside numbers because `+ - * /`
// coerce true/false to 1/0 in the host the same way they coerce a negated
// numeric literal, and without this a chain like `!0 + !'' + !false` stalls
// partway through folding once the running total stops being the same
// literal kind as the next operand.
func numericOperandText(e ast.Expr) (string, bool) {
	if lit, ok := e.(*ast.Literal); ok {
		switch lit.Kind {
		case ast.NumberLiteral:
			return lit.Value, true
		case ast.BoolLiteral:
			return lit.Raw, true
		}
	}
	if u, ok := e.(*ast.UnaryExpr); ok && u.Op == token.SUB {
		if lit, ok := u.Argument.(*ast.Literal); ok && lit.Kind == ast.NumberLiteral {
			return "-" + lit.Value, true
		}
	}
	return "", false
}

func literalFromValue(v interface{}) *ast.Literal {
	switch val := v.(type) {
	case bool:
		return newBoolLiteral(val)
	case string:
		return newStringLiteral(val)
	case int64:
		return newNumberLiteral(float64(val))
	case float64:
		return newNumberLiteral(val)
	case nil:
		return newNullLiteral()
	}
	return nil
}

func newBoolLiteral(b bool) *ast.Literal {
	raw := "false"
	if b {
		raw = "true"
	}
	return &ast.Literal{Kind: ast.BoolLiteral, Value: raw, Raw: raw}
}

func newStringLiteral(s string) *ast.Literal {
	return &ast.Literal{Kind: ast.StringLiteral, Value: s, Raw: strconv.Quote(s)}
}

func newNullLiteral() *ast.Literal {
	return &ast.Literal{Kind: ast.NullLiteral, Value: "", Raw: "null"}
}

// newNumberLiteral renders f as the canonical decimal text spec.md §4.2
// requires: no binary floating-point artifacts, no scientific notation for
// the integer-sized values this pipeline actually produces. The value is
// routed through apd the same way cue/export.go renders its own numeric
// literals (d.Text('f')) rather than trusting strconv's shortest-round-trip
// form, which is free to fall back to exponent notation for values outside
// strconv's small-magnitude heuristics.
func newNumberLiteral(f float64) *ast.Literal {
	text := strconv.FormatFloat(f, 'f', -1, 64)
	if d, _, err := apd.NewFromString(text); err == nil {
		text = d.Text('f')
	}
	text = strings.TrimSuffix(text, ".0")
	return &ast.Literal{Kind: ast.NumberLiteral, Value: text, Raw: text}
}

// foldUnary is spec.md §4.2's unary-folding arm.
func (r *rewriteStage) foldUnary(p *astutil.Path, n *ast.UnaryExpr) {
	switch n.Op {
	case token.NOT:
		if truthy, ok := operandTruthy(n.Argument); ok {
			p.Replace(newBoolLiteral(!truthy))
		}
	case token.ADD:
		if lit, ok := n.Argument.(*ast.Literal); ok && lit.Kind == ast.NumberLiteral {
			p.Replace(lit)
		}
	}
}

// operandTruthy implements the JavaScript truthiness spec.md §4.2 enumerates
// for the unary-not arm's operand.
func operandTruthy(e ast.Expr) (bool, bool) {
	switch n := e.(type) {
	case *ast.Literal:
		switch n.Kind {
		case ast.NumberLiteral:
			f, err := strconv.ParseFloat(n.Value, 64)
			if err != nil {
				return false, false
			}
			return f != 0, true
		case ast.StringLiteral:
			return len(n.Value) > 0, true
		case ast.BoolLiteral:
			return n.Value == "true", true
		case ast.NullLiteral:
			return false, true
		}
	case *ast.ArrayExpr:
		if len(n.Elements) == 0 {
			return true, true
		}
	case *ast.ObjectExpr:
		if len(n.Properties) == 0 {
			return true, true
		}
	case *ast.Ident:
		if n.Name == "undefined" {
			return false, true
		}
	}
	return false, false
}

// foldConditional and foldIf are spec.md §4.2's dead-branch arm.
func foldConditional(p *astutil.Path, n *ast.ConditionalExpr) {
	lit, ok := n.Test.(*ast.Literal)
	if !ok || lit.Kind != ast.BoolLiteral {
		return
	}
	if lit.Value == "true" {
		p.Replace(n.Consequent)
	} else {
		p.Replace(n.Alternate)
	}
}

func foldIf(p *astutil.Path, n *ast.IfStmt) {
	lit, ok := n.Test.(*ast.Literal)
	if !ok || lit.Kind != ast.BoolLiteral {
		return
	}
	if lit.Value == "true" {
		p.Replace(n.Consequent)
		return
	}
	if n.Alternate != nil {
		p.Replace(n.Alternate)
		return
	}
	p.Remove()
}
