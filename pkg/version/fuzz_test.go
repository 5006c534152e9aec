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

// FuzzParseVersion performs fuzz testing on ParseVersion to find edge cases
func FuzzParseVersion(f *testing.F) {
	for _, seed := range []string{
		"1", "v1", "1.2", "2.5", "1.2.11", "1.0.2k", "3.6.0-rc1", "1.2.3.4",
		"1.2.3.4.5", "", ".", "..", "1.", ".1", "1..2", "v", "vv1", "-1",
		"a.b.c", "   1.2.3", "1. 2.3", "99999999999999999999",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		v, err := ParseVersion(input)
		if err != nil {
			return
		}
		if n := v.Precision(); n < 1 || n > MaxComponents {
			t.Errorf("ParseVersion(%q) precision = %d", input, n)
		}
		for _, c := range v.Components {
			if c < 0 {
				t.Errorf("ParseVersion(%q) negative component %d", input, c)
			}
		}
		if v.Compare(v) != 0 {
			t.Errorf("ParseVersion(%q) not equal to itself", input)
		}
		again, err := ParseVersion(v.Full())
		if err != nil {
			t.Errorf("reparse of %q failed: %v", v.Full(), err)
			return
		}
		if again.Compare(v) != 0 {
			t.Errorf("reparse of %q changed version: %+v vs %+v", v.Full(), again, v)
		}
	})
}
