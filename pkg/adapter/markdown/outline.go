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
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"

	"github.com/walteh/filesync/pkg/hasher"
)

// markerLine matches a sync marker comment on a line of its own.
var markerLine = regexp.MustCompile(`^\s*<!-- ` + regexp.QuoteMeta(hasher.LabelPrefix) + `[0-9a-f]+ -->\s*$`)

// span is one top-level heading: the lines it occupies (first..last, inclusive),
// its level and its title.
type span struct {
	first int
	last  int
	level int
	title string
}

// outline finds the top-level headings of lines with goldmark. Headings inside
// fences, HTML blocks, block quotes and lists are not returned.
func outline(lines []string) []span {
	src := []byte(strings.Join(lines, "\n"))
	root := goldmark.DefaultParser().Parse(gtext.NewReader(src))
	starts := lineStarts(src)
	lineOf := func(off int) int {
		return sort.Search(len(starts), func(i int) bool { return starts[i] > off }) - 1
	}

	var out []span
	cursor := 0
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			if l := lastLine(n, lineOf); l >= cursor {
				cursor = l + 1
			}
			continue
		}

		sp := span{level: h.Level, first: -1}
		segs := h.Lines()
		if segs.Len() == 0 {
			// empty ATX heading such as "#" or "## ##"
			for i := cursor; i < len(lines); i++ {
				if level, _, ok := parseHeading(lines[i]); ok && level == h.Level {
					sp.first, sp.last = i, i
					break
				}
			}
			if sp.first < 0 {
				continue
			}
		} else {
			sp.first = lineOf(segs.At(0).Start)
			if _, title, ok := parseHeading(lines[sp.first]); ok {
				sp.last, sp.title = sp.first, title
			} else {
				parts := make([]string, 0, segs.Len())
				for i := 0; i < segs.Len(); i++ {
					seg := segs.At(i)
					parts = append(parts, strings.TrimSpace(string(seg.Value(src))))
				}
				sp.title = strings.Join(parts, " ")
				sp.last = lineOf(segs.At(segs.Len() - 1).Start)
				if sp.last+1 < len(lines) && underline(lines[sp.last+1]) {
					sp.last++
				}
			}
		}
		out = append(out, sp)
		cursor = sp.last + 1
	}
	return out
}

// underline reports whether line is a setext underline.
func underline(line string) bool {
	line = strings.TrimSpace(line)
	return line != "" && (strings.Trim(line, "=") == "" || strings.Trim(line, "-") == "")
}

func lineStarts(src []byte) []int {
	starts := []int{0}
	for i, c := range src {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lastLine returns the last source line a block node covers, or -1.
func lastLine(n ast.Node, lineOf func(int) int) int {
	if n.Type() != ast.TypeBlock {
		return -1
	}
	last := -1
	if segs := n.Lines(); segs != nil && segs.Len() > 0 {
		last = lineOf(segs.At(segs.Len() - 1).Start)
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		last = max(last, lastLine(c, lineOf))
	}
	return last
}

// maskSynced blanks the lines between each pair of identical sync markers, so a
// synced value is never split into sections of its own.
func maskSynced(lines []string) []string {
	out := append([]string(nil), lines...)
	for i := 0; i < len(out); i++ {
		if !markerLine.MatchString(out[i]) {
			continue
		}
		open := strings.TrimSpace(out[i])
		for j := i + 1; j < len(out); j++ {
			if strings.TrimSpace(out[j]) != open {
				continue
			}
			for k := i + 1; k < j; k++ {
				out[k] = ""
			}
			i = j
			break
		}
	}
	return out
}

// escapeHeadings backslash-escapes every line of text that would start a
// heading, so a value written without markers stays inside its section.
func escapeHeadings(text string) string {
	lines := strings.Split(text, "\n")
	for range lines {
		spans := outline(lines)
		if len(spans) == 0 {
			break
		}
		for _, sp := range spans {
			i := sp.first
			if sp.last != sp.first {
				i = sp.last
			}
			indent := len(lines[i]) - len(strings.TrimLeft(lines[i], " \t"))
			lines[i] = lines[i][:indent] + `\` + lines[i][indent:]
		}
	}
	return strings.Join(lines, "\n")
}
