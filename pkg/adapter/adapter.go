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

package adapter

import "github.com/walteh/filesync/pkg/section"

// Document is a parsed file owned by the adapter that produced it.
type Document interface {
	// Format names the adapter that produced the document.
	Format() string
}

// 🔌 Adapter translates between raw bytes and an addressable Document.
type Adapter interface {
	// Name returns the registry name of the adapter.
	Name() string

	// Parse builds a Document from raw bytes.
	Parse(raw []byte) (Document, error)

	// GetSection returns the value at path.
	GetSection(doc Document, path section.Path) (section.Value, error)

	// SetSection returns a new Document whose node at path is replaced by
	// previous, value and next. Empty markers are omitted. doc is not modified.
	SetSection(doc Document, path section.Path, value section.Value, previous, next string, create bool) (Document, error)

	// Serialize renders a Document back to bytes.
	Serialize(doc Document) ([]byte, error)

	// RenderComment wraps label in the format's comment syntax. An empty result
	// means the format has no comment syntax.
	RenderComment(label string) string
}

// Render styles understood by ValueRenderer implementations.
const (
	RenderCodeBlock                   = "code_block"
	RenderTable                       = "table"
	RenderTableWithHeadersCapitalized = "table_with_headers_capitalized"
	RenderTableWithHeadersTitleCased  = "table_with_headers_title_cased"
)

// RenderStyles lists every supported render style.
var RenderStyles = []string{
	RenderCodeBlock,
	RenderTable,
	RenderTableWithHeadersCapitalized,
	RenderTableWithHeadersTitleCased,
}

// RenderOptions controls how a destination presents a structured value.
type RenderOptions struct {
	Style             string
	Language          string
	IncludeSourceName bool
}

// 🎨 ValueRenderer is implemented by adapters that present values in their own
// notation before they are written (for example structured data as a table).
type ValueRenderer interface {
	RenderValue(value section.Value, opts RenderOptions) (section.Value, error)
}
