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
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/walteh/filesync/pkg/adapter"
	"github.com/walteh/filesync/pkg/section"
)

// ErrNotTabular is returned when table rendering gets anything but a sequence of mappings.
var ErrNotTabular = errors.Base("table rendering needs a sequence of mappings")

var _ adapter.ValueRenderer = (*Adapter)(nil)

// 🎨 RenderValue implements adapter.ValueRenderer.
//
// Structured values default to a fenced YAML code block. Plain text passes
// through unless a style is requested.
func (a *Adapter) RenderValue(value section.Value, opts adapter.RenderOptions) (section.Value, error) {
	structured := value.Tree != nil && (value.Tree.Kind == yaml.MappingNode || value.Tree.Kind == yaml.SequenceNode)

	style := opts.Style
	if style == "" {
		if !structured {
			return value, nil
		}
		style = adapter.RenderCodeBlock
	}

	var (
		text string
		err  error
	)
	switch style {
	case adapter.RenderCodeBlock:
		text, err = codeBlock(value, structured, opts)
	case adapter.RenderTable:
		text, err = table(value.Tree, func(s string) string { return s })
	case adapter.RenderTableWithHeadersCapitalized:
		text, err = table(value.Tree, capitalize)
	case adapter.RenderTableWithHeadersTitleCased:
		text, err = table(value.Tree, titleCase)
	default:
		return section.Value{}, errors.Errorf("unknown render style %q", style)
	}
	if err != nil {
		return section.Value{}, err
	}

	return section.Value{Text: text, Kind: section.KindBlock, Name: value.Name}, nil
}

func codeBlock(value section.Value, structured bool, opts adapter.RenderOptions) (string, error) {
	language := opts.Language
	if language == "" {
		language = "yaml"
	}

	content := value.Text
	if structured {
		node := value.Tree
		if opts.IncludeSourceName && node.Kind == yaml.MappingNode && value.Name != "" {
			node = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: []*yaml.Node{
				{Kind: yaml.ScalarNode, Tag: "!!str", Value: value.Name},
				node,
			}}
		}
		out, err := encodeYAML(node)
		if err != nil {
			return "", err
		}
		content = strings.TrimSuffix(out, "\n")
	}

	fence := strings.Repeat("`", max(3, longestRun(content, '`')+1))
	return fence + language + "\n" + content + "\n" + fence, nil
}

func table(tree *yaml.Node, header func(string) string) (string, error) {
	if tree == nil || tree.Kind != yaml.SequenceNode {
		return "", ErrNotTabular
	}
	if len(tree.Content) == 0 {
		return "", nil
	}

	rows := make([]*yaml.Node, 0, len(tree.Content))
	for _, item := range tree.Content {
		if item.Kind != yaml.MappingNode {
			return "", ErrNotTabular
		}
		rows = append(rows, item)
	}

	var keys []string
	for i := 0; i+1 < len(rows[0].Content); i += 2 {
		keys = append(keys, rows[0].Content[i].Value)
	}

	headers := make([]string, len(keys))
	separators := make([]string, len(keys))
	for i, k := range keys {
		headers[i] = cell(header(k))
		separators[i] = strings.Repeat("-", max(1, utf8.RuneCountInString(headers[i])))
	}

	lines := []string{tableRow(headers), tableRow(separators)}
	for _, row := range rows {
		cells := make([]string, len(keys))
		for i, k := range keys {
			v, err := cellValue(row, k)
			if err != nil {
				return "", err
			}
			cells[i] = cell(v)
		}
		lines = append(lines, tableRow(cells))
	}
	return strings.Join(lines, "\n"), nil
}

func tableRow(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}

func cellValue(row *yaml.Node, key string) (string, error) {
	for i := 0; i+1 < len(row.Content); i += 2 {
		if row.Content[i].Value != key {
			continue
		}
		v := row.Content[i+1]
		if v.Kind == yaml.ScalarNode {
			return v.Value, nil
		}
		flow := *v
		flow.Style = yaml.FlowStyle
		out, err := encodeYAML(&flow)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(out), nil
	}
	return "", nil
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if prevLetter {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(unicode.ToUpper(r))
		}
		prevLetter = unicode.IsLetter(r)
	}
	return b.String()
}

func longestRun(s string, ch rune) int {
	longest, run := 0, 0
	for _, r := range s {
		if r == ch {
			run++
			longest = max(longest, run)
			continue
		}
		run = 0
	}
	return longest
}

func encodeYAML(n *yaml.Node) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return "", errors.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", errors.Errorf("closing yaml encoder: %w", err)
	}
	return buf.String(), nil
}
