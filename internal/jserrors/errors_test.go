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

package jserrors

import (
	"strings"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/jsclean/jsclean/internal/js/token"
)

func pos(line, col int) token.Position {
	return token.Position{Filename: "test.js", Line: line, Column: col}
}

func TestListAsError(t *testing.T) {
	var l List
	qt.Assert(t, qt.IsNil(l.AsError()))

	l.Append(New(pos(1, 1), "first"))
	qt.Assert(t, qt.Equals(l.AsError().Error(), "test.js:1:1: first"))

	l.Append(New(pos(2, 1), "second"))
	err := l.AsError()
	qt.Assert(t, qt.IsTrue(strings.Contains(err.Error(), "and 1 more errors")))
}

func TestListSortStable(t *testing.T) {
	l := List{
		New(pos(3, 1), "c"),
		New(pos(1, 5), "a2"),
		New(pos(1, 1), "a1"),
		New(pos(2, 1), "b"),
		New(pos(2, 1), "b2"),
	}
	l.Sort()
	var msgs []string
	for _, e := range l {
		msgs = append(msgs, e.Error())
	}
	qt.Assert(t, qt.DeepEquals(msgs, []string{
		"test.js:1:1: a1",
		"test.js:1:5: a2",
		"test.js:2:1: b",
		"test.js:2:1: b2",
		"test.js:3:1: c",
	}))
}

func TestNewfFormats(t *testing.T) {
	err := Newf(pos(4, 2), "unexpected %q", "}")
	qt.Assert(t, qt.Equals(err.Error(), `test.js:4:2: unexpected "}"`))
}
