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

// Package jserrors defines the position-aware error type the scanner and
// the parser report. Its shape follows cue/errors: a single Error
// interface with a token.Pos, and a List that collects every error a pass
// produces rather than stopping at the first one.
package jserrors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jsclean/jsclean/internal/js/token"
)

// Error is the common error shape produced where source position matters:
// scanning and parsing.
type Error interface {
	error
	Position() token.Position
}

type posError struct {
	pos token.Position
	msg string
}

func (e *posError) Error() string {
	if e.pos.Filename == "" && e.pos.Line == 0 {
		return e.msg
	}
	return fmt.Sprintf("%s: %s", e.pos, e.msg)
}

func (e *posError) Position() token.Position { return e.pos }

// Newf creates an Error for pos with a printf-style message.
func Newf(pos token.Position, format string, args ...interface{}) Error {
	return &posError{pos: pos, msg: fmt.Sprintf(format, args...)}
}

// New creates an Error for pos carrying msg verbatim.
func New(pos token.Position, msg string) Error {
	return &posError{pos: pos, msg: msg}
}

// List accumulates every Error produced during one scan/parse, in the
// order they were appended. A List with zero entries is not an error: use
// AsError to get back either nil or itself.
type List []Error

// Append adds err to the list.
func (l *List) Append(err Error) {
	*l = append(*l, err)
}

// AsError returns nil if l is empty, the sole error if it holds one, or l
// itself (as an error) otherwise.
func (l List) AsError() error {
	switch len(l) {
	case 0:
		return nil
	case 1:
		return l[0]
	default:
		return l
	}
}

// Sort orders the list by position, stabilizing ties by original order.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		a, b := l[i].Position(), l[j].Position()
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

func (l List) Error() string {
	switch len(l) {
	case 0:
		return ""
	case 1:
		return l[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (and %d more errors)", l[0].Error(), len(l)-1)
	return b.String()
}
