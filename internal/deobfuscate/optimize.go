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

// Package deobfuscate is the core of jsclean: the multi-pass AST rewriter
// spec.md describes. Everything else in this module — the parser, the
// printer, the CLI — exists to feed this package a tree and take one back.
package deobfuscate

import (
	"log/slog"

	"github.com/jsclean/jsclean/internal/cache"
	"github.com/jsclean/jsclean/internal/config"
	"github.com/jsclean/jsclean/internal/js/astutil"
	"github.com/jsclean/jsclean/internal/js/parser"
	"github.com/jsclean/jsclean/internal/js/printer"
	"github.com/jsclean/jsclean/internal/sandbox"
)

// Optimizer runs the four-stage pipeline (spec.md §2) over one source file.
// A zero-value Optimizer is ready to use: Logger falls back to
// slog.Default() and Limits to config.DefaultSandboxLimits(), the same
// nil-means-default convention internal/httplog.SlogLogger uses for CUE's
// own request logger.
type Optimizer struct {
	Logger *slog.Logger
	Limits config.SandboxLimits
}

// Optimize parses source, runs Decoder Detection, Rewriter, Beautifier and
// Cleanup in sequence over the resulting AST, and regenerates source text
// from the result. A parse failure is the only error Optimize returns
// (spec.md §7); every other failure mode is caught, logged, and recovered
// locally by the stage that hit it.
func (o *Optimizer) Optimize(source string) (string, error) {
	log := o.logger()

	prog, err := parser.ParseFile("input.js", source)
	if err != nil {
		return "", err
	}

	host := sandbox.New(o.limits())
	c := cache.New()

	d := &decoderStage{host: host, cache: c, log: log, source: source}
	d.run(prog)

	scope, scopes := astutil.Resolve(prog)
	r := &rewriteStage{host: host, cache: c, log: log, scope: scope}
	r.run(prog, scopes)

	// Re-resolve: the rewriter renamed/removed/replaced enough of the tree
	// (alias removal, dead-variable pruning, switch unflattening) that
	// stale bindings from before Stage 2 could misdirect the beautifier's
	// renames.
	scope, scopes = astutil.Resolve(prog)
	b := &beautifyStage{scope: scope}
	b.run(prog, scopes)

	cleanup(prog, c)

	return printer.Print(prog), nil
}

func (o *Optimizer) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o *Optimizer) limits() config.SandboxLimits {
	if o.Limits == (config.SandboxLimits{}) {
		return config.DefaultSandboxLimits()
	}
	return o.Limits
}
