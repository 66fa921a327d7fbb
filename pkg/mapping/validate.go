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

package mapping

import (
	"fmt"

	"github.com/walteh/filesync/pkg/adapter"
)

// ✅ Validate checks that mappings can run together against one source and one
// destination file: destination paths must not overlap, and explicit adapter
// prefixes must agree per side.
func Validate(reg *adapter.Registry, ms []Mapping) error {
	for i := range ms {
		for j := i + 1; j < len(ms); j++ {
			if ms[i].DestPath.Overlaps(ms[j].DestPath) {
				return fail(CodeOverlappingPaths, fmt.Sprintf("%s and %s", ms[i].DestPath, ms[j].DestPath))
			}
		}
	}

	if err := agree(reg, ms, func(m Mapping) string { return m.SourceAdapter }); err != nil {
		return err
	}
	return agree(reg, ms, func(m Mapping) string { return m.DestAdapter })
}

// SourceAdapter returns the adapter explicitly named by the mappings' source side, if any.
func SourceAdapter(ms []Mapping) string {
	return first(ms, func(m Mapping) string { return m.SourceAdapter })
}

// DestAdapter returns the adapter explicitly named by the mappings' destination side, if any.
func DestAdapter(ms []Mapping) string {
	return first(ms, func(m Mapping) string { return m.DestAdapter })
}

func first(ms []Mapping, side func(Mapping) string) string {
	for _, m := range ms {
		if name := side(m); name != "" {
			return name
		}
	}
	return ""
}

func agree(reg *adapter.Registry, ms []Mapping, side func(Mapping) string) error {
	var seen, seenName string
	for _, m := range ms {
		name := side(m)
		if name == "" {
			continue
		}
		a, err := reg.ByName(name)
		if err != nil {
			return fail(CodeUnsupportedAdapter, name)
		}
		if seen == "" {
			seen, seenName = a.Name(), name
			continue
		}
		if a.Name() != seen {
			return fail(CodeConflictingAdapters, seenName+" and "+name)
		}
	}
	return nil
}
