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

package section

import "fmt"

// ParseError reports input that is malformed for the adapter's format.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s document: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a path that does not resolve.
type NotFoundError struct {
	Path   Path
	Reason string
}

func (e *NotFoundError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("section %q not found: %s", e.Path.String(), e.Reason)
	}
	return fmt.Sprintf("section %q not found", e.Path.String())
}

// AmbiguousError reports a path that matches more than one node.
type AmbiguousError struct {
	Path    Path
	Matches int
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("section %q is ambiguous: %d nodes match", e.Path.String(), e.Matches)
}
