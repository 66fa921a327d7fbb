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

// Package source reads sync sources. Local paths go through the sync
// filesystem; other locations are dispatched on their URL scheme.
package source

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/filesync/pkg/status"
)

// SchemeFile is the scheme of local sources. Locations without a scheme are local too.
const SchemeFile = "file"

var ErrUnsupportedScheme = errors.Base("unsupported source scheme")

var schemePattern = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9+.-]*)://`)

// 📥 Reader returns the raw content at a location.
type Reader interface {
	Read(ctx context.Context, location string) ([]byte, error)
}

// Scheme returns the URL scheme of location, or "" for plain paths.
func Scheme(location string) string {
	m := schemePattern.FindStringSubmatch(location)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

// IsLocal reports whether location refers to the local filesystem.
func IsLocal(location string) bool {
	s := Scheme(location)
	return s == "" || s == SchemeFile
}

// LocalPath strips a file:// prefix.
func LocalPath(location string) string {
	if Scheme(location) == SchemeFile {
		return location[len(SchemeFile)+len("://"):]
	}
	return location
}

// 🗂️ Registry dispatches locations to readers by scheme
type Registry struct {
	mu      sync.RWMutex
	readers map[string]Reader
}

// 🏭 NewRegistry creates a registry whose local reader uses files.
func NewRegistry(files status.FileManager) *Registry {
	r := &Registry{readers: map[string]Reader{}}
	r.Register(SchemeFile, &FileReader{Files: files})
	return r
}

// Register installs reader for scheme, replacing any previous one.
func (r *Registry) Register(scheme string, reader Reader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readers[strings.ToLower(scheme)] = reader
}

// Schemes lists the registered schemes.
func (r *Registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.readers))
	for s := range r.readers {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Read implements Reader.
func (r *Registry) Read(ctx context.Context, location string) ([]byte, error) {
	scheme := Scheme(location)
	if scheme == "" {
		scheme = SchemeFile
	}

	r.mu.RLock()
	reader, ok := r.readers[scheme]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Errorf("%s: %w", location, ErrUnsupportedScheme)
	}

	zerolog.Ctx(ctx).Debug().Str("location", location).Str("scheme", scheme).Msg("reading source")
	return reader.Read(ctx, location)
}

// FileReader reads local locations through a FileManager.
type FileReader struct {
	Files status.FileManager
}

func (f *FileReader) Read(ctx context.Context, location string) ([]byte, error) {
	return f.Files.ReadFile(ctx, LocalPath(location))
}
