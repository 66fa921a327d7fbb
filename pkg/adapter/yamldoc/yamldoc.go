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

// Package yamldoc implements the YAML document adapter on top of yaml.v3 node trees.
package yamldoc

import (
	"bytes"
	"io"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/walteh/filesync/pkg/adapter"
	"github.com/walteh/filesync/pkg/section"
)

// Name is the registry name of the YAML adapter.
const Name = "yaml"

func init() {
	adapter.Register(Name, func() adapter.Adapter { return New() }, "*.yaml", "*.yml")
	adapter.Default.Alias("yml", Name)
}

// 📄 Document is a parsed YAML file.
//
// raw is kept for documents that came straight from Parse so that untouched
// files serialize byte for byte. Edited documents carry only the tree.
type Document struct {
	raw  []byte
	root *yaml.Node
}

// Format implements adapter.Document.
func (d *Document) Format() string {
	return Name
}

// Root returns the document node, or nil for an empty document.
func (d *Document) Root() *yaml.Node {
	return d.root
}

// Adapter is the YAML document adapter.
type Adapter struct{}

// 🏭 New returns a YAML adapter.
func New() *Adapter {
	return &Adapter{}
}

// Name implements adapter.Adapter.
func (a *Adapter) Name() string {
	return Name
}

// RenderComment implements adapter.Adapter.
func (a *Adapter) RenderComment(label string) string {
	return "# " + label
}

// 📝 Parse implements adapter.Adapter. Streams with more than one document are rejected.
func (a *Adapter) Parse(raw []byte) (adapter.Document, error) {
	doc := &Document{raw: append([]byte(nil), raw...)}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return doc, nil
		}
		return nil, &section.ParseError{Format: Name, Err: err}
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, &section.ParseError{Format: Name, Err: err}
		}
		return nil, &section.ParseError{Format: Name, Err: errors.New("multiple documents in one stream are not supported")}
	}

	doc.root = &root
	return doc, nil
}

// 💾 Serialize implements adapter.Adapter.
func (a *Adapter) Serialize(d adapter.Document) ([]byte, error) {
	doc, err := cast(d)
	if err != nil {
		return nil, err
	}
	if doc.raw != nil || doc.root == nil {
		return append([]byte(nil), doc.raw...), nil
	}
	return encode(doc.root)
}

// 🔍 GetSection implements adapter.Adapter.
func (a *Adapter) GetSection(d adapter.Document, path section.Path) (section.Value, error) {
	doc, err := cast(d)
	if err != nil {
		return section.Value{}, err
	}

	if path.IsRoot() {
		raw, err := a.Serialize(doc)
		if err != nil {
			return section.Value{}, err
		}
		return section.Value{Text: string(raw), Kind: section.KindBlock, Tree: detach(doc.content())}, nil
	}

	node, err := lookup(doc.content(), path)
	if err != nil {
		return section.Value{}, err
	}
	return valueOf(node, path)
}

// ✏️ SetSection implements adapter.Adapter.
//
// With markers, the value becomes a literal block scalar holding the marker
// lines around the value lines. Without markers, structured values keep their
// structure and scalars keep their tag.
func (a *Adapter) SetSection(d adapter.Document, path section.Path, value section.Value, previous, next string, create bool) (adapter.Document, error) {
	doc, err := cast(d)
	if err != nil {
		return nil, err
	}

	if path.IsRoot() {
		text := wrapLines(previous, value.Text, next)
		return a.Parse([]byte(text))
	}

	root := deepCopy(doc.root)
	if root == nil {
		if !create {
			return nil, &section.NotFoundError{Path: path, Reason: "document is empty"}
		}
		root = &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	if len(root.Content) == 0 {
		root.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}

	replacement, err := buildNode(value, previous, next)
	if err != nil {
		return nil, err
	}

	if err := assign(root.Content[0], path, replacement, create); err != nil {
		return nil, err
	}
	return &Document{root: root}, nil
}

func (d *Document) content() *yaml.Node {
	if d.root == nil || len(d.root.Content) == 0 {
		return nil
	}
	return d.root.Content[0]
}

func cast(d adapter.Document) (*Document, error) {
	doc, ok := d.(*Document)
	if !ok || doc == nil {
		return nil, errors.Errorf("yaml adapter cannot handle %T", d)
	}
	return doc, nil
}

func encode(n *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return nil, errors.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Errorf("closing yaml encoder: %w", err)
	}
	return buf.Bytes(), nil
}

// wrapLines joins the non-empty markers around text, one per line, with a trailing newline.
func wrapLines(previous, text, next string) string {
	parts := make([]string, 0, 3)
	if previous != "" {
		parts = append(parts, previous)
	}
	parts = append(parts, strings.TrimSuffix(text, "\n"))
	if next != "" {
		parts = append(parts, next)
	}
	return strings.Join(parts, "\n") + "\n"
}
