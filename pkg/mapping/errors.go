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

import "strings"

// Code identifies why a mapping was rejected.
type Code string

const (
	CodeEmptyMapping         Code = "empty_mapping"
	CodeMissingPaths         Code = "missing_paths"
	CodeEmptyOptions         Code = "empty_options"
	CodeInvalidOptions       Code = "invalid_options"
	CodeMissingSeparator     Code = "missing_separator"
	CodeMissingSourceOrDest  Code = "missing_source_or_dest"
	CodeEmptyAdapter         Code = "empty_adapter"
	CodeInvalidAdapter       Code = "invalid_adapter"
	CodeUnsupportedAdapter   Code = "unsupported_adapter"
	CodeEmptyPathWithAdapter Code = "empty_path_with_adapter"
	CodeUnsupportedOption    Code = "unsupported_option"
	CodeInvalidBool          Code = "invalid_bool"
	CodeInvalidRender        Code = "invalid_render"
	CodeEmptyPath            Code = "empty_path"
	CodeEmptySegment         Code = "empty_segment"
	CodeEmptyIndexSegment    Code = "empty_index_segment"
	CodeDanglingEscape       Code = "dangling_escape"
	CodeUnterminatedQuote    Code = "unterminated_quote"
	CodeEmptySegmentKey      Code = "empty_segment_key"
	CodeInvalidIndex         Code = "invalid_index"
	CodeOverlappingPaths     Code = "overlapping_paths"
	CodeConflictingAdapters  Code = "conflicting_adapters"
)

// messages holds the text for every code; "%s" is replaced by the detail.
var messages = map[Code]string{
	CodeEmptyMapping:         "section mapping cannot be empty",
	CodeMissingPaths:         "section mapping must include a source and destination path",
	CodeEmptyOptions:         "section mapping options cannot be empty",
	CodeInvalidOptions:       "malformed options: %s",
	CodeMissingSeparator:     "section mapping must contain '" + separator + "'",
	CodeMissingSourceOrDest:  "section mapping must include both source and destination paths",
	CodeEmptyAdapter:         "adapter prefix cannot be empty",
	CodeInvalidAdapter:       "invalid adapter identifier: %s",
	CodeUnsupportedAdapter:   "unsupported adapter: %s",
	CodeEmptyPathWithAdapter: "path cannot be empty when adapter is specified",
	CodeUnsupportedOption:    "unsupported option: %s",
	CodeInvalidBool:          "invalid boolean value for %s",
	CodeInvalidRender:        "invalid render style: %s",
	CodeEmptyPath:            "path cannot be empty",
	CodeEmptySegment:         "path segment cannot be empty",
	CodeEmptyIndexSegment:    "index segment must include an index",
	CodeDanglingEscape:       "path cannot end with an incomplete escape sequence",
	CodeUnterminatedQuote:    "unterminated quoted segment in path",
	CodeEmptySegmentKey:      "path segment key cannot be empty",
	CodeInvalidIndex:         "invalid index value: %s",
	CodeOverlappingPaths:     "destination paths overlap: %s",
	CodeConflictingAdapters:  "mappings name different adapters for the same file: %s",
}

// ❌ Error is returned for mappings that cannot be parsed or run together.
type Error struct {
	Code   Code
	Detail string
}

func (e *Error) Error() string {
	msg, ok := messages[e.Code]
	if !ok {
		msg = "unknown section mapping error"
	}
	if strings.Contains(msg, "%s") {
		return strings.Replace(msg, "%s", e.Detail, 1)
	}
	return msg
}

func fail(code Code, detail string) error {
	return &Error{Code: code, Detail: detail}
}
