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

package ast

// Walk traverses an AST in depth-first order. It calls before(node) before
// descending into node's children (skipping the children, and the after
// call for node, if before returns false) and after(node) once all
// children have been visited. Either
// callback may be nil.
func Walk(node Node, before func(Node) bool, after func(Node)) {
	if node == nil {
		return
	}
	if before != nil && !before(node) {
		return
	}
	walkChildren(node, before, after)
	if after != nil {
		after(node)
	}
}

func walkChildren(node Node, before func(Node) bool, after func(Node)) {
	switch n := node.(type) {
	case *Program:
		for _, s := range n.Body {
			Walk(s, before, after)
		}
	case *ExprStmt:
		Walk(n.X, before, after)
	case *BlockStmt:
		for _, s := range n.List {
			Walk(s, before, after)
		}
	case *VarDecl:
		for _, d := range n.Decls {
			Walk(d.Name, before, after)
			if d.Init != nil {
				Walk(d.Init, before, after)
			}
		}
	case *FunctionDecl:
		if n.Name != nil {
			Walk(n.Name, before, after)
		}
		for _, p := range n.Params {
			Walk(p, before, after)
		}
		Walk(n.Body, before, after)
	case *FunctionExpr:
		if n.Name != nil {
			Walk(n.Name, before, after)
		}
		for _, p := range n.Params {
			Walk(p, before, after)
		}
		Walk(n.Body, before, after)
	case *IfStmt:
		Walk(n.Test, before, after)
		Walk(n.Consequent, before, after)
		if n.Alternate != nil {
			Walk(n.Alternate, before, after)
		}
	case *WhileStmt:
		Walk(n.Test, before, after)
		Walk(n.Body, before, after)
	case *SwitchStmt:
		Walk(n.Discriminant, before, after)
		for _, c := range n.Cases {
			if c.Test != nil {
				Walk(c.Test, before, after)
			}
			for _, s := range c.Consequent {
				Walk(s, before, after)
			}
		}
	case *ReturnStmt:
		if n.Argument != nil {
			Walk(n.Argument, before, after)
		}
	case *ThrowStmt:
		Walk(n.Argument, before, after)
	case *TryStmt:
		Walk(n.Block, before, after)
		if n.Handler != nil {
			if n.Handler.Param != nil {
				Walk(n.Handler.Param, before, after)
			}
			Walk(n.Handler.Body, before, after)
		}
		if n.Finally != nil {
			Walk(n.Finally, before, after)
		}
	case *BreakStmt, *ContinueStmt, *EmptyStmt:
		// leaves
	case *ArrayExpr:
		for _, e := range n.Elements {
			if e != nil {
				Walk(e, before, after)
			}
		}
	case *ObjectExpr:
		for _, p := range n.Properties {
			Walk(p.Key, before, after)
			Walk(p.Value, before, after)
		}
	case *MemberExpr:
		Walk(n.Object, before, after)
		Walk(n.Property, before, after)
	case *CallExpr:
		Walk(n.Callee, before, after)
		for _, a := range n.Args {
			Walk(a, before, after)
		}
	case *NewExpr:
		Walk(n.Callee, before, after)
		for _, a := range n.Args {
			Walk(a, before, after)
		}
	case *UnaryExpr:
		Walk(n.Argument, before, after)
	case *UpdateExpr:
		Walk(n.Argument, before, after)
	case *BinaryExpr:
		Walk(n.Left, before, after)
		Walk(n.Right, before, after)
	case *LogicalExpr:
		Walk(n.Left, before, after)
		Walk(n.Right, before, after)
	case *AssignExpr:
		Walk(n.Left, before, after)
		Walk(n.Right, before, after)
	case *ConditionalExpr:
		Walk(n.Test, before, after)
		Walk(n.Consequent, before, after)
		Walk(n.Alternate, before, after)
	case *SeqExpr:
		for _, e := range n.Expressions {
			Walk(e, before, after)
		}
	case *Ident, *Literal, *ThisExpr:
		// leaves
	}
}
