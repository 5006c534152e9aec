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
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error types for version parsing failures
var (
	ErrEmptyVersion      = errors.New("version string is empty")
	ErrTooManyComponents = errors.New("version has more than 4 components")
	ErrNonNumeric        = errors.New("version component is not numeric")
	ErrOutOfRange        = errors.New("version component out of range")
)

// MaxComponents is the number of numeric components a version may carry.
const MaxComponents = 4

// Version is an upstream release version: up to four dot-separated numeric
// components followed by free-form extras ("1.0.2k", "3.6.0-rc1", "2.5").
type Version struct {
	Components []int `json:"components" yaml:"components"`

	// Extras holds whatever follows the numeric part, e.g. "k" or "-rc1".
	Extras string `json:"extras,omitempty" yaml:"extras,omitempty"`
}

// String returns the numeric components joined by dots, without extras.
func (v Version) String() string {
	parts := make([]string, len(v.Components))
	for i, c := range v.Components {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ".")
}

// Full returns the version as written, numeric part plus extras.
func (v Version) Full() string {
	return v.String() + v.Extras
}

// Precision returns the number of numeric components.
func (v Version) Precision() int {
	return len(v.Components)
}

// Component returns the i-th numeric component, or 0 when absent.
func (v Version) Component(i int) int {
	if i < 0 || i >= len(v.Components) {
		return 0
	}
	return v.Components[i]
}

// ParseVersion parses an upstream version string.
// A leading "v" is stripped. The numeric part ends at the first character
// that is neither a digit nor a dot following a digit; the rest is Extras.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	if s == "" {
		return Version{}, ErrEmptyVersion
	}

	end := len(s)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch >= '0' && ch <= '9' {
			continue
		}
		if ch == '.' && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9' && i > 0 {
			continue
		}
		end = i
		break
	}

	mainPart, extras := s[:end], s[end:]
	if mainPart == "" {
		return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, s)
	}

	parts := strings.Split(mainPart, ".")
	if len(parts) > MaxComponents {
		return Version{}, ErrTooManyComponents
	}

	v := Version{Components: make([]int, 0, len(parts)), Extras: extras}
	for _, part := range parts {
		num, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
		}
		v.Components = append(v.Components, num)
	}
	return v, nil
}

// MustParseVersion parses a version string and panics if parsing fails.
// Only use this for hardcoded strings or in tests.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(fmt.Sprintf("MustParseVersion: %v", err))
	}
	return v
}

// Compare returns -1, 0 or 1 comparing v to other. Missing numeric
// components count as zero. On a numeric tie a version without extras
// sorts after one with extras ("1.0-rc1" < "1.0"), otherwise extras are
// compared lexically ("1.0.2j" < "1.0.2k").
func (v Version) Compare(other Version) int {
	n := max(len(v.Components), len(other.Components))
	for i := 0; i < n; i++ {
		a, b := v.Component(i), other.Component(i)
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
	}

	switch {
	case v.Extras == other.Extras:
		return 0
	case v.Extras == "":
		return 1
	case other.Extras == "":
		return -1
	default:
		return strings.Compare(v.Extras, other.Extras)
	}
}

// EqualsOrNewer returns true if v is equal to or newer than other.
func (v Version) EqualsOrNewer(other Version) bool {
	return v.Compare(other) >= 0
}

// IsNewer returns true if v is strictly newer than other.
func (v Version) IsNewer(other Version) bool {
	return v.Compare(other) > 0
}

// WiX product and module versions are major.minor.build[.revision] with
// major and minor below 256 and build/revision below 65536.
var wixLimits = [MaxComponents]int{255, 255, 65535, 65535}

// Wix returns v in the numeric form accepted by WiX Version attributes.
// Extras are dropped and a single component is padded to major.minor.
func (v Version) Wix() (string, error) {
	if len(v.Components) == 0 {
		return "", ErrEmptyVersion
	}
	comps := v.Components
	if len(comps) == 1 {
		comps = []int{comps[0], 0}
	}
	for i, c := range comps {
		if c > wixLimits[i] {
			return "", fmt.Errorf("%w: component %d is %d, max %d", ErrOutOfRange, i, c, wixLimits[i])
		}
	}
	return Version{Components: comps}.String(), nil
}

// WixVersion parses s and returns its WiX form.
func WixVersion(s string) (string, error) {
	v, err := ParseVersion(s)
	if err != nil {
		return "", err
	}
	return v.Wix()
}
