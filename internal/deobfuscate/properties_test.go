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
	"strings"
	"testing"

	"github.com/go-quicktest/qt"
)

// scenarioTests covers spec.md §8's S1-S7 table: each input fragment is run
// through the full pipeline once, and the output is checked for the
// substrings the scenario names rather than an exact byte match, since the
// printer's layout isn't part of any scenario's contract.
var scenarioTests = []struct {
	name   string
	source string
	want   []string
}{
	{
		name:   "S1 constant folding",
		source: "var x = 123 + 456;\nconsole.log(x);",
		want:   []string{"579"},
	},
	{
		name:   "S2 dead branch elimination",
		source: "if (true) { a(); } else { b(); }",
		want:   []string{"a()"},
	},
	{
		name:   "S3 unary folding and constant folding",
		source: "var y = !0 + !'' + !false;\nconsole.log(y);",
		want:   []string{"3"},
	},
	{
		name: "S4 confirmed proxy dispatch and dead-variable pruning",
		source: `var p = {aaaaa: 1, bbbbb: 2};
f(p.aaaaa, p['bbbbb']);`,
		want: []string{"f(1, 2)"},
	},
	{
		name: "S4b doubted proxy accumulation and dispatch",
		source: `var p = {};
p['aaaaa'] = 1;
p['bbbbb'] = 2;
f(p.aaaaa, p['bbbbb']);`,
		want: []string{"f(1, 2)"},
	},
	{
		name:   "S5 member-access beautification",
		source: `window['console']['log']('hi');`,
		want:   []string{"window.console.log"},
	},
	{
		name: "S6 switch unflattening",
		source: `var _0xarr = ["1|0", "|"];
_0xarr = _0xarr[0].split(_0xarr[1]);
var _0xi = 0;
while (true) {
	switch (_0xarr[_0xi++]) {
	case '0':
		A;
		continue;
	case '1':
		B;
		continue;
	}
	break;
}`,
		want: []string{"B", "A"},
	},
	{
		name: "S7 decoder invocation",
		source: `function _0xabc(a, b) {
	return (_0xabc = function (c, d) { return "hello"; }, _0xabc(a, b));
}
_0xabc(0);`,
		want: []string{`"hello"`},
	},
}

func TestScenarios(t *testing.T) {
	for _, tt := range scenarioTests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Optimizer{}
			out, err := o.Optimize(tt.source)
			qt.Assert(t, qt.IsNil(err))
			for _, substr := range tt.want {
				if !strings.Contains(out, substr) {
					t.Errorf("output %q does not contain %q", out, substr)
				}
			}
		})
	}
}

// TestIdempotent is the universal "idempotence" property: re-running the
// pipeline over its own output is a no-op once the first pass has already
// removed everything it recognizes.
func TestIdempotent(t *testing.T) {
	for _, tt := range scenarioTests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Optimizer{}
			once, err := o.Optimize(tt.source)
			qt.Assert(t, qt.IsNil(err))
			twice, err := (&Optimizer{}).Optimize(once)
			qt.Assert(t, qt.IsNil(err))
			qt.Assert(t, qt.Equals(twice, once))
		})
	}
}

// TestDeterministic is the universal "deterministic output" property: two
// runs over the same input in fresh sandboxes must agree byte-for-byte.
func TestDeterministic(t *testing.T) {
	for _, tt := range scenarioTests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := (&Optimizer{}).Optimize(tt.source)
			qt.Assert(t, qt.IsNil(err))
			b, err := (&Optimizer{}).Optimize(tt.source)
			qt.Assert(t, qt.IsNil(err))
			qt.Assert(t, qt.Equals(a, b))
		})
	}
}

// TestNoOpOnCleanInput covers the "no-op on clean input" property: a
// program with no hex identifiers, proxies, decoders, dead branches or
// flattened switches round-trips to the same semantics, modulo the
// property-key syntactic normalization spec.md explicitly exempts.
func TestNoOpOnCleanInput(t *testing.T) {
	source := `function add(a, b) {
	return a + b;
}
var total = add(1, 2);
console.log(total);`

	out, err := (&Optimizer{}).Optimize(source)
	qt.Assert(t, qt.IsNil(err))
	for _, want := range []string{"function add", "a + b", "add(1, 2)", "console.log(total)"} {
		if !strings.Contains(out, want) {
			t.Errorf("clean input changed unexpectedly: output %q missing %q", out, want)
		}
	}
}

// TestBindingConsistency is the "binding consistency" universal property:
// every rename the beautifier performs must also update every reference,
// not just the declaration.
func TestBindingConsistency(t *testing.T) {
	source := `function f(_0xabc1) {
	return _0xabc1 + _0xabc1;
}`
	out, err := (&Optimizer{}).Optimize(source)
	qt.Assert(t, qt.IsNil(err))
	if strings.Contains(out, "_0xabc1") {
		t.Errorf("hex identifier survived renaming: %q", out)
	}
}

// TestDoubtedProxyAssignmentSurvivesBeautification guards the doubted-proxy
// update arm specifically: beautifyMemberExpr must leave `p['aaaaa'] = 1`'s
// left-hand side computed so updateDoubtedProxy (which requires
// member.Computed) still sees it and accumulates the property. Without that
// guard the assignment statements and the `var p = {}` declaration survive
// into the output untouched, instead of being inlined away.
func TestDoubtedProxyAssignmentSurvivesBeautification(t *testing.T) {
	source := `var p = {};
p['aaaaa'] = 1;
p['bbbbb'] = 2;
f(p.aaaaa, p['bbbbb']);`
	out, err := (&Optimizer{}).Optimize(source)
	qt.Assert(t, qt.IsNil(err))
	if !strings.Contains(out, "f(1, 2)") {
		t.Errorf("doubted proxy not inlined: output %q", out)
	}
	for _, dead := range []string{"var p", "p['aaaaa']", "p[\"aaaaa\"]", "p.aaaaa ="} {
		if strings.Contains(out, dead) {
			t.Errorf("dead proxy bookkeeping survived cleanup: output %q contains %q", out, dead)
		}
	}
}

func TestOptimizeParseError(t *testing.T) {
	_, err := (&Optimizer{}).Optimize("var = ;")
	qt.Assert(t, qt.IsNotNil(err))
}
