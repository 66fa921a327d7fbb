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

package mapping

import (
	"strings"

	"github.com/walteh/filesync/pkg/section"
)

// rawSegment collects one dot-separated token while lexing.
type rawSegment struct {
	key     strings.Builder
	hasKey  bool
	indices []string
}

func (r *rawSegment) empty() bool {
	return !r.hasKey && len(r.indices) == 0
}

func (r *rawSegment) build() (section.Path, error) {
	var out section.Path
	if r.hasKey {
		if r.key.Len() == 0 {
			return nil, fail(CodeEmptySegmentKey, "")
		}
		out = append(out, section.Key(r.key.String()))
	}
	for _, raw := range r.indices {
		seg, err := parseIndex(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, seg)
	}
	return out, nil
}

// 🧭 parsePath lexes a dotted path. Quotes group characters (dots included)
// into a key, a backslash escapes the next character and [N], [-N] or [*]
// add index segments. "." alone is the whole document.
func parsePath(s string) (section.Path, error) {
	if s == "" {
		return nil, fail(CodeEmptyPath, "")
	}
	if s == "." {
		return section.Path{}, nil
	}

	var (
		path    = section.Path{}
		cur     = &rawSegment{}
		quote   rune
		escape  bool
		inIndex bool
		index   strings.Builder
	)

	flush := func() error {
		if cur.empty() {
			return fail(CodeEmptySegment, "")
		}
		segs, err := cur.build()
		if err != nil {
			return err
		}
		path = append(path, segs...)
		cur = &rawSegment{}
		return nil
	}

	for _, r := range s {
		switch {
		case escape:
			escape = false
			if inIndex {
				index.WriteRune(r)
				continue
			}
			if len(cur.indices) > 0 {
				return nil, fail(CodeInvalidIndex, s)
			}
			cur.key.WriteRune(r)
			cur.hasKey = true
		case r == '\\':
			escape = true
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.key.WriteRune(r)
		case inIndex:
			if r == ']' {
				cur.indices = append(cur.indices, index.String())
				index.Reset()
				inIndex = false
				continue
			}
			index.WriteRune(r)
		case r == '.':
			if err := flush(); err != nil {
				return nil, err
			}
		case r == '[':
			inIndex = true
		case len(cur.indices) > 0:
			// nothing but another index may follow an index
			return nil, fail(CodeInvalidIndex, s)
		case r == '"' || r == '\'':
			quote = r
			cur.hasKey = true
		default:
			cur.key.WriteRune(r)
			cur.hasKey = true
		}
	}

	switch {
	case escape:
		return nil, fail(CodeDanglingEscape, "")
	case quote != 0:
		return nil, fail(CodeUnterminatedQuote, "")
	case inIndex:
		return nil, fail(CodeInvalidIndex, "["+index.String())
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return path, nil
}
