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

package operation

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

var (
	ErrUnknownEncoding   = errors.Base("unknown encoding")
	ErrIsDirectory       = errors.Base("is a directory")
	ErrSamePath          = errors.Base("source and destination are the same file")
	ErrRemoteDestination = errors.Base("destination must be a local path")
)

// IOError reports a file that could not be read, written or backed up.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// BinaryContentError reports binary content where text is required.
type BinaryContentError struct {
	Path string
	// Mappings is set when the file was rejected because section mappings
	// need text, even though binary copies were allowed.
	Mappings bool
}

func (e *BinaryContentError) Error() string {
	if e.Mappings {
		return fmt.Sprintf("binary content in %s: section mappings need text files", e.Path)
	}
	return fmt.Sprintf("binary content in %s: enable binary sync to copy it", e.Path)
}
