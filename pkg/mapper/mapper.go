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

// Package mapper applies one section mapping: it reads the source section,
// wraps it in content-addressed markers and writes it into the destination
// document. It never touches the filesystem.
package mapper

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/filesync/pkg/adapter"
	"github.com/walteh/filesync/pkg/hasher"
	"github.com/walteh/filesync/pkg/mapping"
	"github.com/walteh/filesync/pkg/section"
)

// Options controls marker insertion.
type Options struct {
	AddComments bool
}

// 📦 Result is the outcome of one applied mapping.
type Result struct {
	// Document is the updated destination document.
	Document adapter.Document
	// Value is what was written, after destination rendering.
	Value section.Value
	// Identifier is the marker identifier, empty when comments are off or the
	// destination has no comment syntax.
	Identifier string
	// Previous is the destination value before the write; PreviousFound is
	// false when the destination path did not exist.
	Previous      section.Value
	PreviousFound bool
}

// 🔄 Apply copies the section m.SourcePath of src into m.DestPath of dst. Adapter
// errors are returned unchanged.
func Apply(ctx context.Context, m mapping.Mapping, src, dst adapter.Document, srcAdapter, dstAdapter adapter.Adapter, opts Options) (*Result, error) {
	logger := zerolog.Ctx(ctx).With().
		Str("source_section", m.SourcePath.String()).
		Str("dest_section", m.DestPath.String()).
		Logger()

	value, err := srcAdapter.GetSection(src, m.SourcePath)
	if err != nil {
		return nil, err
	}

	if r, ok := dstAdapter.(adapter.ValueRenderer); ok {
		if value, err = r.RenderValue(value, m.Render); err != nil {
			return nil, errors.Errorf("rendering %s for %s: %w", m.SourcePath, dstAdapter.Name(), err)
		}
	}

	res := &Result{Value: value}

	var start, end string
	if opts.AddComments {
		id := hasher.Identifier([]byte(value.Text))
		start = dstAdapter.RenderComment(hasher.Label(id))
		end = dstAdapter.RenderComment(hasher.Label(id))
		if start != "" {
			res.Identifier = id
		}
	}

	previous, err := dstAdapter.GetSection(dst, m.DestPath)
	var nf *section.NotFoundError
	switch {
	case err == nil:
		res.Previous, res.PreviousFound = previous, true
	case errors.As(err, &nf):
	default:
		return nil, err
	}

	updated, err := dstAdapter.SetSection(dst, m.DestPath, value, start, end, m.Create)
	if err != nil {
		return nil, err
	}
	res.Document = updated

	logger.Debug().
		Str("identifier", res.Identifier).
		Bool("previous_found", res.PreviousFound).
		Msg("section mapped")

	return res, nil
}
