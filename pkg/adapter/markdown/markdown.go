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

// Package markdown implements the Markdown document adapter. Sections are ATX
// headings addressed by title (or title slug) from the top-level heading down.
package markdown

import (
	"fmt"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/filesync/pkg/adapter"
	"github.com/walteh/filesync/pkg/section"
)

// Name is the registry name of the Markdown adapter.
const Name = "markdown"

// maxLevel is the deepest ATX heading level.
const maxLevel = 6

func init() {
	adapter.Register(Name, func() adapter.Adapter { return New() }, "*.md", "*.markdown")
	adapter.Default.Alias("md", Name)
}

// Adapter is the Markdown document adapter.
type Adapter struct{}

// 🏭 New returns a Markdown adapter.
func New() *Adapter {
	return &Adapter{}
}

// Name implements adapter.Adapter.
func (a *Adapter) Name() string {
	return Name
}

// RenderComment implements adapter.Adapter.
func (a *Adapter) RenderComment(label string) string {
	return "<!-- " + label + " -->"
}

// 📝 Parse implements adapter.Adapter. Every byte sequence is valid Markdown.
func (a *Adapter) Parse(raw []byte) (adapter.Document, error) {
	return parse(string(raw)), nil
}

// 💾 Serialize implements adapter.Adapter.
func (a *Adapter) Serialize(d adapter.Document) ([]byte, error) {
	doc, err := cast(d)
	if err != nil {
		return nil, err
	}
	return []byte(doc.text()), nil
}

// 🔍 GetSection implements adapter.Adapter. A section's value is the content
// between its heading and the next heading, without surrounding blank lines.
func (a *Adapter) GetSection(d adapter.Document, path section.Path) (section.Value, error) {
	doc, err := cast(d)
	if err != nil {
		return section.Value{}, err
	}
	if path.IsRoot() {
		return section.Block(doc.text()), nil
	}

	idx, depth, err := doc.find(path)
	if err != nil {
		return section.Value{}, err
	}
	if depth < len(path) {
		return section.Value{}, missing(path, depth)
	}

	s := doc.sections[idx]
	return section.Value{
		Text: strings.Join(trimBlank(s.body), "\n"),
		Kind: section.KindBlock,
		Name: s.title,
	}, nil
}

// ✏️ SetSection implements adapter.Adapter. The section body becomes the
// markers and the value as separate blocks; subsections are kept. Without
// markers, heading lines in the value are escaped.
func (a *Adapter) SetSection(d adapter.Document, path section.Path, value section.Value, previous, next string, create bool) (adapter.Document, error) {
	doc, err := cast(d)
	if err != nil {
		return nil, err
	}

	if path.IsRoot() {
		return parse(strings.Join(blocks(previous, value.Text, next), "\n") + "\n"), nil
	}

	idx, depth, err := doc.find(path)
	if err != nil {
		return nil, err
	}

	c := doc.clone()
	if depth < len(path) {
		if !create {
			return nil, missing(path, depth)
		}
		idx = c.create(idx, path[depth:])
	}

	text := value.Text
	if previous == "" && next == "" {
		text = escapeHeadings(text)
	}

	last := idx == len(c.sections)-1
	body := []string{""}
	if b := blocks(previous, text, next); len(b) > 0 {
		body = append(body, b...)
		if !last {
			body = append(body, "")
		}
	} else if last {
		body = nil
	}
	c.sections[idx].body = body
	c.trailingNewline = true

	return parse(c.text()), nil
}

// find walks path from the top-level headings. It returns the deepest matched
// section (-1 for none) and how many segments matched.
func (d *Document) find(path section.Path) (int, int, error) {
	parents := d.parents()
	current := -1
	for depth, seg := range path {
		if seg.IsIndex {
			return 0, 0, &section.NotFoundError{Path: path, Reason: "markdown sections are addressed by heading title"}
		}

		var matches []int
		for i, s := range d.sections {
			if parents[i] == current && titleMatches(s.title, seg.Key) {
				matches = append(matches, i)
			}
		}
		switch len(matches) {
		case 0:
			return current, depth, nil
		case 1:
			current = matches[0]
		default:
			return 0, 0, &section.AmbiguousError{Path: path, Matches: len(matches)}
		}
	}
	return current, len(path), nil
}

// create inserts headings for segs below parent and returns the index of the last one.
func (d *Document) create(parent int, segs section.Path) int {
	level := 0
	if parent >= 0 {
		level = d.sections[parent].level
	}
	pos := d.subtreeEnd(parent)

	for i, seg := range segs {
		level = min(level+1, maxLevel)
		d.ensureBlankBefore(pos)

		h := heading{level: level, title: seg.Key, lines: []string{strings.Repeat("#", level) + " " + seg.Key}}
		if i < len(segs)-1 {
			h.body = []string{""}
		}
		d.sections = append(d.sections[:pos], append([]heading{h}, d.sections[pos:]...)...)
		pos++
	}
	return pos - 1
}

func (d *Document) ensureBlankBefore(pos int) {
	if pos == 0 {
		if n := len(d.preamble); n > 0 && strings.TrimSpace(d.preamble[n-1]) != "" {
			d.preamble = append(d.preamble, "")
		}
		return
	}
	prev := &d.sections[pos-1]
	if n := len(prev.body); n == 0 || strings.TrimSpace(prev.body[n-1]) != "" {
		prev.body = append(prev.body, "")
	}
}

// blocks lays out the non-empty parts as blank-line separated blocks.
func blocks(previous, text, next string) []string {
	var out []string
	for _, part := range []string{previous, strings.Trim(text, "\n"), next} {
		if part == "" {
			continue
		}
		if len(out) > 0 {
			out = append(out, "")
		}
		out = append(out, strings.Split(part, "\n")...)
	}
	return out
}

func missing(path section.Path, depth int) error {
	if depth >= len(path)-1 {
		return &section.NotFoundError{Path: path}
	}
	return &section.NotFoundError{Path: path, Reason: fmt.Sprintf("no heading %q", path[depth].Key)}
}

func cast(d adapter.Document) (*Document, error) {
	doc, ok := d.(*Document)
	if !ok || doc == nil {
		return nil, errors.Errorf("markdown adapter cannot handle %T", d)
	}
	return doc, nil
}
