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

package yamldoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/walteh/filesync/pkg/adapter"
	"github.com/walteh/filesync/pkg/hasher"
	"github.com/walteh/filesync/pkg/section"
)

func mustParse(t *testing.T, a *Adapter, content string) adapter.Document {
	t.Helper()
	doc, err := a.Parse([]byte(content))
	require.NoError(t, err, "parsing should succeed")
	return doc
}

func mustSerialize(t *testing.T, a *Adapter, doc adapter.Document) string {
	t.Helper()
	out, err := a.Serialize(doc)
	require.NoError(t, err, "serializing should succeed")
	return string(out)
}

func decoded(t *testing.T, content string) any {
	t.Helper()
	var v any
	require.NoError(t, yaml.Unmarshal([]byte(content), &v), "content should be valid yaml")
	return v
}

func TestRenderComment(t *testing.T) {
	assert.Equal(t, "# This is auto-generated section with ID: abc12345", New().RenderComment(hasher.Label("abc12345")))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{name: "mapping", content: "a: 1\n"},
		{name: "empty", content: ""},
		{name: "whitespace_only", content: "\n\n"},
		{name: "malformed", content: "a: [1, 2\n", wantErr: true},
		{name: "multiple_documents", content: "a: 1\n---\nb: 2\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Parse([]byte(tt.content))
			if tt.wantErr {
				var perr *section.ParseError
				require.ErrorAs(t, err, &perr, "error should be a parse error")
				assert.Equal(t, Name, perr.Format)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSerializeUntouchedIsByteIdentical(t *testing.T) {
	a := New()
	content := "# leading comment\napp:\n    version: 1.0   # odd spacing\n"
	assert.Equal(t, content, mustSerialize(t, a, mustParse(t, a, content)))
}

func TestGetSection(t *testing.T) {
	content := `app:
  version: 2.0
  name: demo
  tags:
    - one
    - two
  nested:
    key: value
dup: 1
dup: 2
base: &base
  x: 1
ref: *base
`
	tests := []struct {
		name        string
		path        section.Path
		wantText    string
		wantKind    section.Kind
		wantTag     string
		wantErrType any
	}{
		{name: "scalar", path: section.Keys("app", "version"), wantText: "2.0", wantKind: section.KindScalar, wantTag: "!!float"},
		{name: "string_scalar", path: section.Keys("app", "name"), wantText: "demo", wantKind: section.KindScalar, wantTag: "!!str"},
		{name: "mapping_block", path: section.Keys("app", "nested"), wantText: "key: value", wantKind: section.KindBlock},
		{name: "sequence_index", path: section.Path{section.Key("app"), section.Key("tags"), section.Index(1)}, wantText: "two", wantKind: section.KindScalar, wantTag: "!!str"},
		{name: "negative_index", path: section.Path{section.Key("app"), section.Key("tags"), section.Index(-2)}, wantText: "one", wantKind: section.KindScalar, wantTag: "!!str"},
		{name: "alias_followed", path: section.Keys("ref", "x"), wantText: "1", wantKind: section.KindScalar, wantTag: "!!int"},
		{name: "missing_key", path: section.Keys("app", "missing"), wantErrType: &section.NotFoundError{}},
		{name: "missing_parent", path: section.Keys("nope", "version"), wantErrType: &section.NotFoundError{}},
		{name: "index_out_of_range", path: section.Path{section.Key("app"), section.Key("tags"), section.Index(5)}, wantErrType: &section.NotFoundError{}},
		{name: "key_into_scalar", path: section.Keys("app", "version", "x"), wantErrType: &section.NotFoundError{}},
		{name: "duplicate_keys", path: section.Keys("dup"), wantErrType: &section.AmbiguousError{}},
		{name: "wildcard_many", path: section.Path{section.Key("app"), section.Key("tags"), section.Wildcard()}, wantErrType: &section.AmbiguousError{}},
	}

	a := New()
	doc := mustParse(t, a, content)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.GetSection(doc, tt.path)
			switch tt.wantErrType.(type) {
			case *section.NotFoundError:
				var target *section.NotFoundError
				require.ErrorAs(t, err, &target, "should report a missing section")
				return
			case *section.AmbiguousError:
				var target *section.AmbiguousError
				require.ErrorAs(t, err, &target, "should report an ambiguous section")
				return
			}

			require.NoError(t, err, "get section should succeed")
			assert.Equal(t, tt.wantText, got.Text, "text should match")
			assert.Equal(t, tt.wantKind, got.Kind, "kind should match")
			if tt.wantTag != "" {
				assert.Equal(t, tt.wantTag, got.Tag, "tag should match")
			}
		})
	}
}

func TestGetSectionRootReturnsRawContent(t *testing.T) {
	a := New()
	content := "a: 1\n# trailing\n"
	got, err := a.GetSection(mustParse(t, a, content), nil)
	require.NoError(t, err)
	assert.Equal(t, content, got.Text)
	assert.Equal(t, section.KindBlock, got.Kind)
}

func TestSetSectionWithMarkers(t *testing.T) {
	a := New()
	doc := mustParse(t, a, "app:\n  version: 1.0\n")

	id := hasher.Identifier([]byte("2.0"))
	marker := a.RenderComment(hasher.Label(id))

	updated, err := a.SetSection(doc, section.Keys("app", "version"), section.Value{Text: "2.0", Kind: section.KindScalar, Tag: "!!float"}, marker, marker, false)
	require.NoError(t, err, "set section should succeed")

	want := "app:\n" +
		"  version: |\n" +
		"    " + marker + "\n" +
		"    2.0\n" +
		"    " + marker + "\n"
	assert.Equal(t, want, mustSerialize(t, a, updated), "markers should wrap the value in a literal block")
}

func TestSetSectionWithoutMarkers(t *testing.T) {
	tests := []struct {
		name    string
		content string
		path    section.Path
		value   section.Value
		create  bool
		want    string
	}{
		{
			name:    "scalar_keeps_tag",
			content: "app:\n  version: 1.0\n",
			path:    section.Keys("app", "version"),
			value:   section.Value{Text: "2.0", Kind: section.KindScalar, Tag: "!!float"},
			want:    "app:\n  version: 2.0\n",
		},
		{
			name:    "untagged_text_is_string",
			content: "app:\n  enabled: false\n",
			path:    section.Keys("app", "enabled"),
			value:   section.Scalar("true"),
			want:    "app:\n  enabled: \"true\"\n",
		},
		{
			name:    "multiline_text_is_literal",
			content: "notes: x\n",
			path:    section.Keys("notes"),
			value:   section.Block("line one\nline two"),
			want:    "notes: |-\n  line one\n  line two\n",
		},
		{
			name:    "create_nested_keys",
			content: "app:\n  name: demo\n",
			path:    section.Keys("app", "build", "version"),
			value:   section.Value{Text: "3", Kind: section.KindScalar, Tag: "!!int"},
			create:  true,
			want:    "app:\n  name: demo\n  build:\n    version: 3\n",
		},
		{
			name:    "create_in_empty_document",
			content: "",
			path:    section.Keys("version"),
			value:   section.Value{Text: "1", Kind: section.KindScalar, Tag: "!!int"},
			create:  true,
			want:    "version: 1\n",
		},
		{
			name:    "create_under_null",
			content: "app:\n",
			path:    section.Keys("app", "version"),
			value:   section.Value{Text: "1", Kind: section.KindScalar, Tag: "!!int"},
			create:  true,
			want:    "app:\n  version: 1\n",
		},
		{
			name:    "sequence_element",
			content: "items:\n  - a\n  - b\n",
			path:    section.Path{section.Key("items"), section.Index(-1)},
			value:   section.Scalar("c"),
			want:    "items:\n  - a\n  - c\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New()
			updated, err := a.SetSection(mustParse(t, a, tt.content), tt.path, tt.value, "", "", tt.create)
			require.NoError(t, err, "set section should succeed")
			assert.Equal(t, tt.want, mustSerialize(t, a, updated))
		})
	}
}

func TestSetSectionStructuredValue(t *testing.T) {
	a := New()
	src := mustParse(t, a, "config:\n  retries: 3\n  hosts:\n    - a\n    - b\n")
	value, err := a.GetSection(src, section.Keys("config"))
	require.NoError(t, err)
	require.NotNil(t, value.Tree, "structured values should carry their tree")

	dst := mustParse(t, a, "service:\n  config: {}\n  port: 80\n")
	updated, err := a.SetSection(dst, section.Keys("service", "config"), value, "", "", false)
	require.NoError(t, err)

	out := mustSerialize(t, a, updated)
	assert.Equal(t, decoded(t, "service:\n  config:\n    retries: 3\n    hosts: [a, b]\n  port: 80\n"), decoded(t, out))
}

func TestSetSectionErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		path    section.Path
		create  bool
		target  any
	}{
		{name: "missing_without_create", content: "app: {}\n", path: section.Keys("app", "version"), target: &section.NotFoundError{}},
		{name: "empty_without_create", content: "", path: section.Keys("version"), target: &section.NotFoundError{}},
		{name: "scalar_parent_with_create", content: "app: 1\n", path: section.Keys("app", "version"), create: true, target: &section.NotFoundError{}},
		{name: "duplicate_keys", content: "a: 1\na: 2\n", path: section.Keys("a"), target: &section.AmbiguousError{}},
		{name: "wildcard_write", content: "a: [1, 2]\n", path: section.Path{section.Key("a"), section.Wildcard()}, target: &section.AmbiguousError{}},
		{name: "index_out_of_range", content: "a: [1]\n", path: section.Path{section.Key("a"), section.Index(3)}, create: true, target: &section.NotFoundError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New()
			_, err := a.SetSection(mustParse(t, a, tt.content), tt.path, section.Scalar("x"), "", "", tt.create)
			require.Error(t, err)
			switch tt.target.(type) {
			case *section.NotFoundError:
				var target *section.NotFoundError
				assert.ErrorAs(t, err, &target)
			case *section.AmbiguousError:
				var target *section.AmbiguousError
				assert.ErrorAs(t, err, &target)
			}
		})
	}
}

func TestSetSectionDoesNotMutateInput(t *testing.T) {
	a := New()
	content := "app:\n  version: 1.0\n"
	doc := mustParse(t, a, content)

	_, err := a.SetSection(doc, section.Keys("app", "version"), section.Scalar("2.0"), "# a", "# a", false)
	require.NoError(t, err)
	_, err = a.SetSection(doc, section.Keys("app", "extra"), section.Scalar("x"), "", "", true)
	require.NoError(t, err)

	assert.Equal(t, content, mustSerialize(t, a, doc), "input document should be untouched")
	got, err := a.GetSection(doc, section.Keys("app", "version"))
	require.NoError(t, err)
	assert.Equal(t, "1.0", got.Text)
}

func TestSetSectionRoot(t *testing.T) {
	a := New()
	doc := mustParse(t, a, "old: data\n")

	updated, err := a.SetSection(doc, nil, section.Block("test: value\n"), "# m", "# m", false)
	require.NoError(t, err)
	assert.Equal(t, "# m\ntest: value\n# m\n", mustSerialize(t, a, updated))

	plain, err := a.SetSection(doc, nil, section.Block("test: value"), "", "", false)
	require.NoError(t, err)
	assert.Equal(t, "test: value\n", mustSerialize(t, a, plain))
}

func TestRoundTrip(t *testing.T) {
	a := New()
	marker := a.RenderComment(hasher.Label(hasher.Identifier([]byte("2.0"))))

	docs := []adapter.Document{mustParse(t, a, "a:\n  b: 1\nlist: [1, 2]\n")}

	first, err := a.SetSection(docs[0], section.Keys("a", "b"), section.Scalar("2.0"), marker, marker, false)
	require.NoError(t, err)
	docs = append(docs, first)

	second, err := a.SetSection(first, section.Keys("a", "c", "d"), section.Block("x\ny"), "", "", true)
	require.NoError(t, err)
	docs = append(docs, second)

	for i, doc := range docs {
		out := mustSerialize(t, a, doc)
		again := mustSerialize(t, a, mustParse(t, a, out))
		assert.Equal(t, out, again, "document %d should serialize identically after a round trip", i)
		assert.Equal(t, decoded(t, out), decoded(t, again), "document %d should be structurally equal", i)
	}
}
