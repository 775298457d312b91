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

package sandbox

import (
	"errors"
	"strings"
)

// ExtractFunctionSource locates the nearest function literal enclosing
// offset in src and returns its source text, by brace matching rather than
// re-parsing. It exists purely as a fallback (SPEC_FULL.md §C):
// when Stage 1 decoder detection cannot resolve a candidate through the
// AST — the function was itself produced by an earlier, already-applied
// rewrite and a position drifted — this recovers enough source text to
// still attempt a sandboxed evaluation. It never feeds back into the AST.
func ExtractFunctionSource(src string, offset int) (string, error) {
	if offset < 0 || offset > len(src) {
		return "", errors.New("sandbox: offset out of range")
	}
	start := strings.LastIndex(src[:offset], "function")
	if start < 0 {
		return "", errors.New("sandbox: no enclosing function found")
	}
	open := strings.IndexByte(src[start:], '{')
	if open < 0 {
		return "", errors.New("sandbox: malformed function literal")
	}
	open += start

	depth := 0
	inString := byte(0)
	for i := open; i < len(src); i++ {
		c := src[i]
		if inString != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == inString {
				inString = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			inString = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return src[start : i+1], nil
			}
		}
	}
	return "", errors.New("sandbox: unbalanced braces")
}
