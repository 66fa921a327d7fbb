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

// Package plaintext implements the adapter for files without section structure.
// The whole file is the only section and there is no comment syntax, so synced
// content is never wrapped in markers.
package plaintext

import (
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/filesync/pkg/adapter"
	"github.com/walteh/filesync/pkg/section"
)

// Name is the registry name of the plain text adapter.
const Name = "text"

func init() {
	adapter.Register(Name, func() adapter.Adapter { return New() }, "*.txt")
	adapter.Default.Alias("txt", Name)
	adapter.Default.SetFallback(Name)
}

// Document is raw text.
type Document struct {
	content string
}

// Format implements adapter.Document.
func (d *Document) Format() string {
	return Name
}

// Adapter is the plain text adapter.
type Adapter struct{}

// 🏭 New returns a plain text adapter.
func New() *Adapter {
	return &Adapter{}
}

func (a *Adapter) Name() string {
	return Name
}

// RenderComment returns "": plain text has no comment syntax.
func (a *Adapter) RenderComment(string) string {
	return ""
}

func (a *Adapter) Parse(raw []byte) (adapter.Document, error) {
	return &Document{content: string(raw)}, nil
}

func (a *Adapter) Serialize(d adapter.Document) ([]byte, error) {
	doc, err := cast(d)
	if err != nil {
		return nil, err
	}
	return []byte(doc.content), nil
}

func (a *Adapter) GetSection(d adapter.Document, path section.Path) (section.Value, error) {
	doc, err := cast(d)
	if err != nil {
		return section.Value{}, err
	}
	if !path.IsRoot() {
		return section.Value{}, unaddressable(path)
	}
	return section.Block(doc.content), nil
}

// SetSection replaces the whole document. Markers, when given anyway, become
// their own lines.
func (a *Adapter) SetSection(d adapter.Document, path section.Path, value section.Value, previous, next string, _ bool) (adapter.Document, error) {
	if _, err := cast(d); err != nil {
		return nil, err
	}
	if !path.IsRoot() {
		return nil, unaddressable(path)
	}

	var lines []string
	for _, part := range []string{previous, strings.TrimSuffix(value.Text, "\n"), next} {
		if part != "" {
			lines = append(lines, part)
		}
	}
	content := strings.Join(lines, "\n")
	if content != "" {
		content += "\n"
	}
	return &Document{content: content}, nil
}

func unaddressable(path section.Path) error {
	return &section.NotFoundError{Path: path, Reason: "plain text files only have the whole-document section"}
}

func cast(d adapter.Document) (*Document, error) {
	doc, ok := d.(*Document)
	if !ok || doc == nil {
		return nil, errors.Errorf("text adapter cannot handle %T", d)
	}
	return doc, nil
}
