// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package version

import (
	"testing"
)

func BenchmarkParseVersion(b *testing.B) {
	tests := []string{"2.5", "v1.2", "1.2.11", "1.0.2k", "3.6.0-rc1", "10.0.0.1"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ParseVersion(tests[i%len(tests)])
	}
}

func BenchmarkCompare(b *testing.B) {
	a := MustParseVersion("1.0.2j")
	c := MustParseVersion("1.0.2k")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = a.Compare(c)
	}
}
