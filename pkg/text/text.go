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

// Package text applies literal replacements to source content before it is synced.
package text

import (
	"context"
	"io"
)

// 🔁 ReplacementRule replaces every FromText with ToText. When FileFilterGlob
// is set the rule only applies to files whose path or base name matches it.
type ReplacementRule struct {
	FromText       string
	ToText         string
	FileFilterGlob string
}

// ReplacementResult is the content before and after the rules ran.
type ReplacementResult struct {
	OriginalContent  []byte
	ModifiedContent  []byte
	ReplacementCount int
	WasModified      bool
}

// TextReplacer rewrites file content.
type TextReplacer interface {
	ReplaceText(ctx context.Context, path string, content io.Reader, rules []ReplacementRule) (*ReplacementResult, error)
	ValidateRules(rules []ReplacementRule) error
}
