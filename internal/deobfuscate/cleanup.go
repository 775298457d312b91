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
	"github.com/jsclean/jsclean/internal/cache"
	"github.com/jsclean/jsclean/internal/js/ast"
	"github.com/jsclean/jsclean/internal/js/astutil"
)

// cleanup is Stage 4 (spec.md §4.4): delete every node the earlier stages
// recorded as now-dead. It runs its own traversal over the final tree
// rather than threading live Path handles through the earlier stages —
// Path values don't outlive the Traverse call that produced them, but every
// node type here is a pointer, so membership in the sets built below is
// exactly as reliable as a held Path would have been.
func cleanup(prog *ast.Program, c *cache.Cache) {
	dead := map[ast.Stmt]bool{}
	for _, stmt := range c.CorePaths() {
		dead[stmt] = true
	}
	for _, stmt := range c.CoreRefPaths() {
		dead[stmt] = true
	}
	for _, stmt := range c.ProxyStmts() {
		dead[stmt] = true
	}
	for _, d := range c.DoubtedProxies() {
		if len(d.Properties) == 0 {
			continue
		}
		dead[d.ObjectStmt] = true
		for _, stmt := range d.AssignmentStmts {
			dead[stmt] = true
		}
	}
	if len(dead) == 0 {
		return
	}
	astutil.Traverse(prog, nil, func(p *astutil.Path) {
		if dead[asStmt(p.Node)] {
			p.Remove()
		}
	}, nil)
}

func asStmt(n ast.Node) ast.Stmt {
	s, _ := n.(ast.Stmt)
	return s
}
