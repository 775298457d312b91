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

import "testing"

func TestIsHexIdent(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"_0xabc1", true},
		{"_0xABC1", true},
		{"_0x1", true},
		{"_0x", false},
		{"_0xg", false},
		{"abc", false},
		{"_0xabc1_", false},
		{"x_0xabc1", false},
	}
	for _, tt := range tests {
		if got := IsHexIdent(tt.name); got != tt.want {
			t.Errorf("IsHexIdent(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
