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

package markdown

import (
	"strings"
	"unicode"
)

// heading is one heading (one ATX line, or setext text plus underline) and the
// raw lines up to the next heading of any level.
type heading struct {
	level int
	title string
	lines []string
	body  []string
}

// 📄 Document is a parsed Markdown file. It keeps every original line, so
// serializing an unedited document reproduces its input exactly.
type Document struct {
	preamble        []string
	sections        []heading
	trailingNewline bool
}

// Format implements adapter.Document.
func (d *Document) Format() string {
	return Name
}

// Headings lists the heading titles in document order.
func (d *Document) Headings() []string {
	out := make([]string, 0, len(d.sections))
	for _, s := range d.sections {
		out = append(out, s.title)
	}
	return out
}

// parse splits content at its top-level headings. Lines between a pair of
// sync markers never start a section.
func parse(content string) *Document {
	doc := &Document{}
	if content == "" {
		return doc
	}
	if strings.HasSuffix(content, "\n") {
		doc.trailingNewline = true
		content = content[:len(content)-1]
	}

	lines := strings.Split(content, "\n")
	next := 0
	for _, sp := range outline(maskSynced(lines)) {
		for ; next < sp.first; next++ {
			doc.appendLine(lines[next])
		}
		doc.sections = append(doc.sections, heading{
			level: sp.level,
			title: sp.title,
			lines: append([]string(nil), lines[sp.first:sp.last+1]...),
		})
		next = sp.last + 1
	}
	for ; next < len(lines); next++ {
		doc.appendLine(lines[next])
	}
	return doc
}

func (d *Document) appendLine(line string) {
	if len(d.sections) == 0 {
		d.preamble = append(d.preamble, line)
		return
	}
	last := &d.sections[len(d.sections)-1]
	last.body = append(last.body, line)
}

func (d *Document) text() string {
	lines := append([]string(nil), d.preamble...)
	for _, s := range d.sections {
		lines = append(lines, s.lines...)
		lines = append(lines, s.body...)
	}
	out := strings.Join(lines, "\n")
	if d.trailingNewline {
		out += "\n"
	}
	return out
}

func (d *Document) clone() *Document {
	c := &Document{
		preamble:        append([]string(nil), d.preamble...),
		sections:        make([]heading, len(d.sections)),
		trailingNewline: d.trailingNewline,
	}
	for i, s := range d.sections {
		s.lines = append([]string(nil), s.lines...)
		s.body = append([]string(nil), s.body...)
		c.sections[i] = s
	}
	return c
}

// parents returns, for every section, the index of the closest preceding
// section with a lower level, or -1.
func (d *Document) parents() []int {
	out := make([]int, len(d.sections))
	var stack []int
	for i, s := range d.sections {
		for len(stack) > 0 && d.sections[stack[len(stack)-1]].level >= s.level {
			stack = stack[:len(stack)-1]
		}
		out[i] = -1
		if len(stack) > 0 {
			out[i] = stack[len(stack)-1]
		}
		stack = append(stack, i)
	}
	return out
}

// subtreeEnd returns the index just past the last descendant of section i.
func (d *Document) subtreeEnd(i int) int {
	if i < 0 {
		return len(d.sections)
	}
	for j := i + 1; j < len(d.sections); j++ {
		if d.sections[j].level <= d.sections[i].level {
			return j
		}
	}
	return len(d.sections)
}

// parseHeading recognises ATX headings: up to three spaces of indentation,
// one to six '#' and a space, tab or end of line. A closing '#' run is dropped.
func parseHeading(line string) (int, string, bool) {
	trimmed := strings.TrimRight(line, "\r")
	rest := strings.TrimLeft(trimmed, " ")
	if len(trimmed)-len(rest) > 3 {
		return 0, "", false
	}

	level := 0
	for level < len(rest) && rest[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0, "", false
	}
	rest = rest[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return 0, "", false
	}

	title := strings.TrimSpace(rest)
	if stripped := strings.TrimRight(title, "#"); stripped != title {
		switch {
		case stripped == "":
			title = ""
		case strings.HasSuffix(stripped, " "), strings.HasSuffix(stripped, "\t"):
			title = strings.TrimSpace(stripped)
		}
	}
	return level, title, true
}

// slug lowercases title, turns spaces into dashes and drops punctuation, the way
// heading anchors are generated.
func slug(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	return b.String()
}

func titleMatches(title, key string) bool {
	return title == key || slug(title) == key
}

func trimBlank(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}
