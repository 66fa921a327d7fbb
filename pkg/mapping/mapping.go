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

// Package mapping parses section mapping arguments of the form
//
//	[adapter:]source.path->[adapter:]dest.path[?option=value&...]
//
// into Mapping values consumed by the sync orchestrator.
package mapping

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/walteh/filesync/pkg/adapter"
	"github.com/walteh/filesync/pkg/section"
)

const (
	separator       = "->"
	optionSeparator = "?"
	adapterSep      = ":"
)

var validAdapter = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// 🔗 Mapping copies the section at SourcePath into DestPath. An empty path
// addresses the whole document.
type Mapping struct {
	Raw           string
	SourceAdapter string
	SourcePath    section.Path
	DestAdapter   string
	DestPath      section.Path
	Create        bool
	Render        adapter.RenderOptions
}

// Whole returns the implicit mapping of a whole-file sync.
func Whole() Mapping {
	return Mapping{Raw: "."}
}

// IsWhole reports whether m copies the whole source over the whole destination.
func (m Mapping) IsWhole() bool {
	return m.SourcePath.IsRoot() && m.DestPath.IsRoot()
}

func (m Mapping) String() string {
	side := func(a string, p section.Path) string {
		if a == "" {
			return p.String()
		}
		return a + adapterSep + p.String()
	}
	return side(m.SourceAdapter, m.SourcePath) + separator + side(m.DestAdapter, m.DestPath)
}

// 📝 Parse parses one mapping argument against the default adapter registry.
func Parse(raw string) (Mapping, error) {
	return ParseWith(adapter.Default, raw)
}

// ParseWith parses one mapping argument; adapter prefixes must be known to reg.
func ParseWith(reg *adapter.Registry, raw string) (Mapping, error) {
	if strings.TrimSpace(raw) == "" {
		return Mapping{}, fail(CodeEmptyMapping, "")
	}

	body, options, hasOptions := cut(raw, optionSeparator)
	if hasOptions {
		if strings.TrimSpace(body) == "" {
			return Mapping{}, fail(CodeMissingPaths, "")
		}
		if options == "" {
			return Mapping{}, fail(CodeEmptyOptions, "")
		}
	}

	src, dst, ok := cut(body, separator)
	if !ok {
		return Mapping{}, fail(CodeMissingSeparator, "")
	}
	src, dst = strings.TrimSpace(src), strings.TrimSpace(dst)
	if src == "" || dst == "" {
		return Mapping{}, fail(CodeMissingSourceOrDest, "")
	}

	m := Mapping{Raw: raw}
	var err error
	if m.SourceAdapter, m.SourcePath, err = parseSide(reg, src); err != nil {
		return Mapping{}, err
	}
	if m.DestAdapter, m.DestPath, err = parseSide(reg, dst); err != nil {
		return Mapping{}, err
	}
	if hasOptions {
		if err := m.applyOptions(options); err != nil {
			return Mapping{}, err
		}
	}
	return m, nil
}

// ParseAll parses every argument and validates them as one run.
func ParseAll(raws []string) ([]Mapping, error) {
	out := make([]Mapping, 0, len(raws))
	for _, raw := range raws {
		m, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := Validate(adapter.Default, out); err != nil {
		return nil, err
	}
	return out, nil
}

func parseSide(reg *adapter.Registry, token string) (string, section.Path, error) {
	name, rest, ok := cut(token, adapterSep)
	if !ok {
		p, err := parsePath(token)
		return "", p, err
	}

	name, rest = strings.TrimSpace(name), strings.TrimSpace(rest)
	switch {
	case name == "":
		return "", nil, fail(CodeEmptyAdapter, "")
	case !validAdapter.MatchString(name):
		return "", nil, fail(CodeInvalidAdapter, name)
	case !reg.Known(name):
		return "", nil, fail(CodeUnsupportedAdapter, name)
	case rest == "":
		return "", nil, fail(CodeEmptyPathWithAdapter, "")
	}

	p, err := parsePath(rest)
	return name, p, err
}

func (m *Mapping) applyOptions(raw string) error {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return fail(CodeInvalidOptions, err.Error())
	}

	for key, all := range values {
		value := all[len(all)-1]
		switch key {
		case "create":
			if m.Create, err = parseBool(key, value); err != nil {
				return err
			}
		case "include_source_name":
			if m.Render.IncludeSourceName, err = parseBool(key, value); err != nil {
				return err
			}
		case "render":
			if !validRender(value) {
				return fail(CodeInvalidRender, value)
			}
			m.Render.Style = value
		case "language":
			m.Render.Language = value
		default:
			return fail(CodeUnsupportedOption, key)
		}
	}
	return nil
}

func parseBool(key, value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fail(CodeInvalidBool, key+"="+value)
}

func validRender(style string) bool {
	for _, s := range adapter.RenderStyles {
		if s == style {
			return true
		}
	}
	return false
}

// cut splits s around the first sep found outside quotes and escapes.
func cut(s, sep string) (string, string, bool) {
	if i := indexOutside(s, sep); i >= 0 {
		return s[:i], s[i+len(sep):], true
	}
	return s, "", false
}

func indexOutside(s, sep string) int {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case strings.HasPrefix(s[i:], sep):
			return i
		}
	}
	return -1
}

func parseIndex(raw string) (section.Segment, error) {
	switch raw {
	case "":
		return section.Segment{}, fail(CodeEmptyIndexSegment, "")
	case "*":
		return section.Wildcard(), nil
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		return section.Segment{}, fail(CodeInvalidIndex, raw)
	}
	return section.Index(i), nil
}
