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

package config

import (
	"testing"
	"time"

	"github.com/go-quicktest/qt"
)

func TestDefaultSandboxLimits(t *testing.T) {
	limits := DefaultSandboxLimits()
	qt.Assert(t, qt.Equals(limits.EvalTimeout, 500*time.Millisecond))
	qt.Assert(t, qt.Equals(limits.MaxCallStackSize, 256))
}
