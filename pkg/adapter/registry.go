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

import (
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// ErrUnknownAdapter is returned when no adapter is registered under a name.
var ErrUnknownAdapter = errors.Base("unknown adapter")

// Factory builds a fresh adapter instance.
type Factory func() Adapter

type entry struct {
	name     string
	factory  Factory
	patterns []string
}

type override struct {
	pattern string
	name    string
}

// 🗺️ Registry resolves adapters by name or by file path.
//
// Path resolution checks overrides first, then the patterns given at
// registration, then the fallback adapter. Patterns without a slash match the
// base name of the path, others match the whole slash-separated path.
type Registry struct {
	mu        sync.RWMutex
	entries   []entry
	aliases   map[string]string
	overrides []override
	fallback  string
}

// Default is the registry adapter packages register into.
var Default = NewRegistry()

// 🏭 NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{aliases: map[string]string{}}
}

// Register adds an adapter to the default registry.
func Register(name string, factory Factory, patterns ...string) {
	Default.Register(name, factory, patterns...)
}

// Register adds an adapter under name. Later registrations of the same name replace earlier ones.
func (r *Registry) Register(name string, factory Factory, patterns ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.name == name {
			r.entries[i] = entry{name: name, factory: factory, patterns: patterns}
			return
		}
	}
	r.entries = append(r.entries, entry{name: name, factory: factory, patterns: patterns})
}

// Alias makes alias resolve to the adapter registered as name.
func (r *Registry) Alias(alias, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[alias] = name
}

// SetFallback names the adapter used when no pattern matches a path.
func (r *Registry) SetFallback(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = name
}

// 🎯 Override routes paths matching pattern to the named adapter ahead of the registered patterns.
func (r *Registry) Override(pattern, name string) error {
	if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
		return errors.Errorf("invalid adapter pattern %q", pattern)
	}
	if !r.Known(name) {
		return errors.Errorf("adapter %q for pattern %q: %w", name, pattern, ErrUnknownAdapter)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides = append(r.overrides, override{pattern: filepath.ToSlash(pattern), name: name})
	return nil
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := &Registry{
		entries:   append([]entry(nil), r.entries...),
		aliases:   make(map[string]string, len(r.aliases)),
		overrides: append([]override(nil), r.overrides...),
		fallback:  r.fallback,
	}
	for k, v := range r.aliases {
		c.aliases[k] = v
	}
	return c
}

// Known reports whether name or an alias of it is registered.
func (r *Registry) Known(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.lookup(name)
	return ok
}

// Names lists registered names and aliases in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries)+len(r.aliases))
	for _, e := range r.entries {
		names = append(names, e.name)
	}
	for a := range r.aliases {
		names = append(names, a)
	}
	sort.Strings(names)
	return names
}

// 🔍 ByName returns a new adapter registered as name.
func (r *Registry) ByName(name string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.lookup(name)
	if !ok {
		return nil, errors.Errorf("adapter %q: %w", name, ErrUnknownAdapter)
	}
	return e.factory(), nil
}

// 🔍 ForPath returns a new adapter for the file at p.
func (r *Registry) ForPath(p string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	target := filepath.ToSlash(p)
	for _, o := range r.overrides {
		if matchPattern(o.pattern, target) {
			e, ok := r.lookup(o.name)
			if ok {
				return e.factory(), nil
			}
		}
	}

	for _, e := range r.entries {
		for _, pattern := range e.patterns {
			if matchPattern(pattern, target) {
				return e.factory(), nil
			}
		}
	}

	if e, ok := r.lookup(r.fallback); ok {
		return e.factory(), nil
	}
	return nil, errors.Errorf("no adapter matches %q: %w", p, ErrUnknownAdapter)
}

func (r *Registry) lookup(name string) (entry, bool) {
	if target, ok := r.aliases[name]; ok {
		name = target
	}
	for _, e := range r.entries {
		if e.name == name {
			return e, true
		}
	}
	return entry{}, false
}

func matchPattern(pattern, target string) bool {
	if !strings.Contains(pattern, "/") {
		target = path.Base(target)
	}
	ok, err := doublestar.Match(strings.ToLower(pattern), strings.ToLower(target))
	return err == nil && ok
}
