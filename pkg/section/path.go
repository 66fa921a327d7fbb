// Copyright 2025 walteh LLC
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

package section

import (
	"strconv"
	"strings"
)

// 🧭 Segment is one traversal step inside a document: a mapping key or heading
// title, or a sequence index.
type Segment struct {
	Key      string
	Index    int
	IsIndex  bool
	Wildcard bool
}

// Key returns a key segment.
func Key(k string) Segment {
	return Segment{Key: k}
}

// Index returns a sequence index segment. Negative values count from the end.
func Index(i int) Segment {
	return Segment{Index: i, IsIndex: true}
}

// Wildcard returns an index segment matching every element of a sequence.
func Wildcard() Segment {
	return Segment{IsIndex: true, Wildcard: true}
}

func (s Segment) String() string {
	switch {
	case s.Wildcard:
		return "[*]"
	case s.IsIndex:
		return "[" + strconv.Itoa(s.Index) + "]"
	case strings.ContainsAny(s.Key, `."'[]\`):
		return strconv.Quote(s.Key)
	default:
		return s.Key
	}
}

// overlaps reports whether two segments may address the same node.
func (s Segment) overlaps(o Segment) bool {
	if s.IsIndex != o.IsIndex {
		return false
	}
	if s.IsIndex {
		return s.Wildcard || o.Wildcard || s.Index == o.Index
	}
	return s.Key == o.Key
}

// 📍 Path addresses a location inside a document. The empty path is the whole document.
type Path []Segment

// Keys builds a path of key segments.
func Keys(keys ...string) Path {
	p := make(Path, 0, len(keys))
	for _, k := range keys {
		p = append(p, Key(k))
	}
	return p
}

// IsRoot reports whether the path addresses the whole document.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// Last returns the final key segment's key, or "" when the path ends in an index or is empty.
func (p Path) Last() string {
	for i := len(p) - 1; i >= 0; i-- {
		if !p[i].IsIndex {
			return p[i].Key
		}
	}
	return ""
}

// Overlaps reports whether one path is a prefix of the other.
func (p Path) Overlaps(o Path) bool {
	n := min(len(p), len(o))
	for i := 0; i < n; i++ {
		if !p[i].overlaps(o[i]) {
			return false
		}
	}
	return true
}

func (p Path) String() string {
	if p.IsRoot() {
		return "."
	}
	var b strings.Builder
	for i, s := range p {
		if i > 0 && !s.IsIndex {
			b.WriteByte('.')
		}
		b.WriteString(s.String())
	}
	return b.String()
}
