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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/walteh/filesync/pkg/adapter"
	"github.com/walteh/filesync/pkg/hasher"
	"github.com/walteh/filesync/pkg/section"
)

const guide = `intro

# Project

Overview text.

## Install Guide

Run make.

## Usage

Call it.
`

func mustParse(t *testing.T, content string) adapter.Document {
	t.Helper()
	doc, err := New().Parse([]byte(content))
	require.NoError(t, err, "markdown parsing never fails")
	return doc
}

func mustSerialize(t *testing.T, doc adapter.Document) string {
	t.Helper()
	out, err := New().Serialize(doc)
	require.NoError(t, err, "serializing should succeed")
	return string(out)
}

func TestRenderComment(t *testing.T) {
	assert.Equal(t, "<!-- This is auto-generated section with ID: abc12345 -->", New().RenderComment(hasher.Label("abc12345")))
}

func TestRoundTripIsLossless(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty", content: ""},
		{name: "single_newline", content: "\n"},
		{name: "guide", content: guide},
		{name: "no_trailing_newline", content: "# A\n\ntext"},
		{name: "crlf", content: "# A\r\nbody\r\n## B\r\n"},
		{name: "fenced_heading", content: "# A\n\n```\n# not a heading\n```\n\n~~~md\n## nor this\n~~~\n"},
		{name: "closing_hashes", content: "## Title ##\n\ntext\n"},
		{name: "extra_blank_lines", content: "\n\n# A\n\n\n\ntext\n\n\n"},
		{name: "setext", content: "Usage\n=====\n\nold\n\nOther\n-----\ntext\n"},
		{name: "html_comment", content: "<!--\n# hidden\n-->\n# Shown\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.content, mustSerialize(t, mustParse(t, tt.content)))
		})
	}
}

func TestHeadings(t *testing.T) {
	synced := New().RenderComment(hasher.Label("abc12345"))

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "skips_code_and_invalid",
			content: "# A\n```\n# B\n```\n## C ##\n#D\n    # E\n",
			want:    []string{"A", "C"},
		},
		{
			name:    "setext",
			content: "Usage\n=====\n\ntext\n\nMore Info\n---------\n",
			want:    []string{"Usage", "More Info"},
		},
		{
			name:    "html_comment",
			content: "<!--\n# hidden\n-->\n# Shown\n",
			want:    []string{"Shown"},
		},
		{
			name:    "empty_heading",
			content: "# A\n\n##\n\ntext\n",
			want:    []string{"A", ""},
		},
		{
			name:    "between_sync_markers",
			content: "# A\n\n" + synced + "\n\n## Inner\n\n" + synced + "\n\n## B\n",
			want:    []string{"A", "B"},
		},
		{
			name:    "unpaired_sync_marker",
			content: "# A\n\n" + synced + "\n\n## Inner\n",
			want:    []string{"A", "Inner"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, ok := mustParse(t, tt.content).(*Document)
			require.True(t, ok, "document should be a markdown document")
			assert.Equal(t, tt.want, md.Headings())
		})
	}
}

func TestGetSection(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		path     section.Path
		want     string
		wantName string
		wantErr  any
	}{
		{
			name:     "top_level_by_title",
			content:  guide,
			path:     section.Keys("Project"),
			want:     "Overview text.",
			wantName: "Project",
		},
		{
			name:     "nested_by_title",
			content:  guide,
			path:     section.Keys("Project", "Install Guide"),
			want:     "Run make.",
			wantName: "Install Guide",
		},
		{
			name:     "nested_by_slug",
			content:  guide,
			path:     section.Keys("project", "install-guide"),
			want:     "Run make.",
			wantName: "Install Guide",
		},
		{
			name:     "multi_line_body",
			content:  "# A\n\none\n\ntwo\n",
			path:     section.Keys("A"),
			want:     "one\n\ntwo",
			wantName: "A",
		},
		{
			name:     "body_with_fence",
			content:  "# A\n```\n# code\n```\n",
			path:     section.Keys("A"),
			want:     "```\n# code\n```",
			wantName: "A",
		},
		{
			name:    "child_is_not_top_level",
			content: guide,
			path:    section.Keys("Usage"),
			wantErr: &section.NotFoundError{},
		},
		{
			name:    "missing",
			content: guide,
			path:    section.Keys("Project", "Missing"),
			wantErr: &section.NotFoundError{},
		},
		{
			name:    "index_segment",
			content: guide,
			path:    section.Path{section.Index(0)},
			wantErr: &section.NotFoundError{},
		},
		{
			name:     "setext_heading",
			content:  "Usage\n=====\n\nold\n",
			path:     section.Keys("Usage"),
			want:     "old",
			wantName: "Usage",
		},
		{
			name:    "ambiguous",
			content: "# A\n## X\none\n## X\ntwo\n",
			path:    section.Keys("A", "X"),
			wantErr: &section.AmbiguousError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New().GetSection(mustParse(t, tt.content), tt.path)
			switch want := tt.wantErr.(type) {
			case *section.NotFoundError:
				require.ErrorAs(t, err, &want, "error should be not found")
				return
			case *section.AmbiguousError:
				require.ErrorAs(t, err, &want, "error should be ambiguous")
				assert.Equal(t, 2, want.Matches)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Text)
			assert.Equal(t, section.KindBlock, got.Kind)
			assert.Equal(t, tt.wantName, got.Name)
		})
	}
}

func TestGetRootSection(t *testing.T) {
	got, err := New().GetSection(mustParse(t, guide), nil)
	require.NoError(t, err)
	assert.Equal(t, guide, got.Text)
}

func TestSetSectionWithMarkers(t *testing.T) {
	a := New()
	marker := a.RenderComment(hasher.Label(hasher.Identifier([]byte("New text."))))
	doc := mustParse(t, "# Title\n\n## Usage\n\nOld text.\n\n## Other\n\nKeep.\n")

	out, err := a.SetSection(doc, section.Keys("Title", "Usage"), section.Block("New text."), marker, marker, false)
	require.NoError(t, err)

	want := "# Title\n\n## Usage\n\n" + marker + "\n\nNew text.\n\n" + marker + "\n\n## Other\n\nKeep.\n"
	assert.Equal(t, want, mustSerialize(t, out))

	got, err := a.GetSection(out, section.Keys("Title", "Usage"))
	require.NoError(t, err)
	assert.Equal(t, marker+"\n\nNew text.\n\n"+marker, got.Text)
}

func TestSetSection(t *testing.T) {
	const marker = "<!-- m -->"

	tests := []struct {
		name    string
		content string
		path    section.Path
		value   string
		markers bool
		create  bool
		want    string
		wantErr bool
	}{
		{
			name:    "last_section_with_markers",
			content: "# A\n\nold\n",
			path:    section.Keys("A"),
			value:   "new",
			markers: true,
			want:    "# A\n\n" + marker + "\n\nnew\n\n" + marker + "\n",
		},
		{
			name:    "without_markers",
			content: "# A\n\nold\n\n# B\n\nkeep\n",
			path:    section.Keys("A"),
			value:   "new",
			want:    "# A\n\nnew\n\n# B\n\nkeep\n",
		},
		{
			name:    "subsections_are_kept",
			content: "# A\nold\n## Child\nchild text\n",
			path:    section.Keys("A"),
			value:   "new",
			want:    "# A\n\nnew\n\n## Child\nchild text\n",
		},
		{
			name:    "adds_trailing_newline",
			content: "# A\nold",
			path:    section.Keys("A"),
			value:   "new",
			want:    "# A\n\nnew\n",
		},
		{
			name:    "create_child",
			content: "# Title\n\nIntro.\n",
			path:    section.Keys("Title", "Added"),
			value:   "New",
			create:  true,
			want:    "# Title\n\nIntro.\n\n## Added\n\nNew\n",
		},
		{
			name:    "create_in_empty_document",
			content: "",
			path:    section.Keys("Notes"),
			value:   "hi",
			create:  true,
			want:    "# Notes\n\nhi\n",
		},
		{
			name:    "create_chain",
			content: "intro\n",
			path:    section.Keys("A", "B"),
			value:   "deep",
			create:  true,
			want:    "intro\n\n# A\n\n## B\n\ndeep\n",
		},
		{
			name:    "create_before_next_sibling",
			content: "# A\n\ntext\n\n# B\n\nkeep\n",
			path:    section.Keys("A", "New"),
			value:   "v",
			create:  true,
			want:    "# A\n\ntext\n\n## New\n\nv\n\n# B\n\nkeep\n",
		},
		{
			name:    "escapes_headings_without_markers",
			content: "# A\n\nold\n\n# B\n\nkeep\n",
			path:    section.Keys("A"),
			value:   "## Sub\ntext\n\nTitle\n===",
			want:    "# A\n\n\\## Sub\ntext\n\nTitle\n\\===\n\n# B\n\nkeep\n",
		},
		{
			name:    "leaves_fenced_headings",
			content: "# A\n\nold\n",
			path:    section.Keys("A"),
			value:   "```\n# code\n```",
			want:    "# A\n\n```\n# code\n```\n",
		},
		{
			name:    "setext_section",
			content: "Usage\n=====\n\nold\n",
			path:    section.Keys("Usage"),
			value:   "new",
			want:    "Usage\n=====\n\nnew\n",
		},
		{
			name:    "missing_without_create",
			content: "# A\n",
			path:    section.Keys("B"),
			value:   "v",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev, next := "", ""
			if tt.markers {
				prev, next = marker, marker
			}
			out, err := New().SetSection(mustParse(t, tt.content), tt.path, section.Block(tt.value), prev, next, tt.create)
			if tt.wantErr {
				var nf *section.NotFoundError
				require.ErrorAs(t, err, &nf, "error should be not found")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, mustSerialize(t, out))
		})
	}
}

func TestSetSectionWithHeadingsIsStable(t *testing.T) {
	a := New()
	value := section.Block("## Details\n\nmore")
	marker := a.RenderComment(hasher.Label(hasher.Identifier([]byte(value.Text))))

	first, err := a.SetSection(mustParse(t, "# Usage\n\nold\n"), section.Keys("Usage"), value, marker, marker, false)
	require.NoError(t, err)
	md, ok := first.(*Document)
	require.True(t, ok, "document should be a markdown document")
	assert.Equal(t, []string{"Usage"}, md.Headings(), "synced value should not add sections")

	second, err := a.SetSection(mustParse(t, mustSerialize(t, first)), section.Keys("Usage"), value, marker, marker, false)
	require.NoError(t, err)
	assert.Equal(t, mustSerialize(t, first), mustSerialize(t, second))
}

func TestSetSectionMissingParentReason(t *testing.T) {
	_, err := New().SetSection(mustParse(t, "# X\n"), section.Keys("A", "B", "C"), section.Block("v"), "", "", false)
	var nf *section.NotFoundError
	require.ErrorAs(t, err, &nf, "error should be not found")
	assert.Equal(t, `no heading "A"`, nf.Reason)
}

func TestSetRootSection(t *testing.T) {
	out, err := New().SetSection(mustParse(t, "# Old\n"), nil, section.Block("body"), "<!-- m -->", "<!-- m -->", false)
	require.NoError(t, err)
	assert.Equal(t, "<!-- m -->\n\nbody\n\n<!-- m -->\n", mustSerialize(t, out))
}

func TestSetSectionDoesNotMutateInput(t *testing.T) {
	doc := mustParse(t, guide)

	out, err := New().SetSection(doc, section.Keys("Project", "Usage"), section.Block("changed"), "", "", false)
	require.NoError(t, err)

	assert.Equal(t, guide, mustSerialize(t, doc), "input document should be untouched")
	assert.NotEqual(t, guide, mustSerialize(t, out))
}

func TestSetSectionRoundTrip(t *testing.T) {
	a := New()
	out, err := a.SetSection(mustParse(t, guide), section.Keys("project", "usage"), section.Block("a\n\nb"), "<!-- s -->", "<!-- s -->", false)
	require.NoError(t, err)

	first := mustSerialize(t, out)
	assert.Equal(t, first, mustSerialize(t, mustParse(t, first)))
}

func TestForeignDocument(t *testing.T) {
	_, err := New().Serialize(nil)
	require.Error(t, err)
}

func decodeTree(t *testing.T, content string) *yaml.Node {
	t.Helper()
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(content), &doc), "fixture should be valid yaml")
	return doc.Content[0]
}

func TestRenderValue(t *testing.T) {
	mapping := decodeTree(t, "name: app\nport: 80\n")
	rows := decodeTree(t, "- user name: a\n  port: 1\n- user name: b|c\n  port: 2\n")

	tests := []struct {
		name    string
		value   section.Value
		opts    adapter.RenderOptions
		want    string
		wantErr bool
	}{
		{
			name:  "plain_text_passes_through",
			value: section.Scalar("2.0"),
			want:  "2.0",
		},
		{
			name:  "structured_defaults_to_code_block",
			value: section.Value{Text: "ignored", Tree: mapping, Name: "server"},
			want:  "```yaml\nname: app\nport: 80\n```",
		},
		{
			name:  "include_source_name",
			value: section.Value{Tree: mapping, Name: "server"},
			opts:  adapter.RenderOptions{Style: adapter.RenderCodeBlock, IncludeSourceName: true},
			want:  "```yaml\nserver:\n  name: app\n  port: 80\n```",
		},
		{
			name:  "code_block_language",
			value: section.Block("echo hi"),
			opts:  adapter.RenderOptions{Style: adapter.RenderCodeBlock, Language: "sh"},
			want:  "```sh\necho hi\n```",
		},
		{
			name:  "code_block_longer_fence",
			value: section.Block("a ``` b"),
			opts:  adapter.RenderOptions{Style: adapter.RenderCodeBlock, Language: "text"},
			want:  "````text\na ``` b\n````",
		},
		{
			name:  "table",
			value: section.Value{Tree: rows},
			opts:  adapter.RenderOptions{Style: adapter.RenderTable},
			want:  "| user name | port |\n| --------- | ---- |\n| a | 1 |\n| b\\|c | 2 |",
		},
		{
			name:  "table_capitalized",
			value: section.Value{Tree: rows},
			opts:  adapter.RenderOptions{Style: adapter.RenderTableWithHeadersCapitalized},
			want:  "| User name | Port |\n| --------- | ---- |\n| a | 1 |\n| b\\|c | 2 |",
		},
		{
			name:  "table_title_cased",
			value: section.Value{Tree: rows},
			opts:  adapter.RenderOptions{Style: adapter.RenderTableWithHeadersTitleCased},
			want:  "| User Name | Port |\n| --------- | ---- |\n| a | 1 |\n| b\\|c | 2 |",
		},
		{
			name:    "table_needs_sequence",
			value:   section.Value{Tree: mapping},
			opts:    adapter.RenderOptions{Style: adapter.RenderTable},
			wantErr: true,
		},
		{
			name:    "unknown_style",
			value:   section.Block("x"),
			opts:    adapter.RenderOptions{Style: "fancy"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New().RenderValue(tt.value, tt.opts)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Text)
		})
	}
}

func TestHeaderCasing(t *testing.T) {
	assert.Equal(t, "Hello world", capitalize("hELLO world"))
	assert.Equal(t, "First_Name", titleCase("first_name"))
	assert.Equal(t, "They'Re", titleCase("they're"))
	assert.Equal(t, "", capitalize(""))
}
