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

package text

import (
	"context"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// SimpleTextReplacer implements TextReplacer using basic string replacement
type SimpleTextReplacer struct{}

var _ TextReplacer = (*SimpleTextReplacer)(nil)

// NewSimpleTextReplacer creates a new SimpleTextReplacer
func NewSimpleTextReplacer() *SimpleTextReplacer {
	return &SimpleTextReplacer{}
}

// ReplaceText implements TextReplacer.ReplaceText. Rules run in order, each
// on the output of the previous one.
func (r *SimpleTextReplacer) ReplaceText(ctx context.Context, filePath string, content io.Reader, rules []ReplacementRule) (*ReplacementResult, error) {
	originalContent, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}

	result := &ReplacementResult{
		OriginalContent: originalContent,
		ModifiedContent: originalContent,
	}

	currentContent := string(originalContent)
	for _, rule := range rules {
		if rule.FromText == "" || !rule.Applies(filePath) {
			continue
		}

		count := strings.Count(currentContent, rule.FromText)
		if count == 0 {
			continue
		}

		currentContent = strings.ReplaceAll(currentContent, rule.FromText, rule.ToText)
		result.ReplacementCount += count
		result.WasModified = true
	}

	result.ModifiedContent = []byte(currentContent)

	zerolog.Ctx(ctx).Debug().
		Str("path", filePath).
		Int("replacements", result.ReplacementCount).
		Msg("replacements applied")

	return result, nil
}

// ValidateRules implements TextReplacer.ValidateRules
func (r *SimpleTextReplacer) ValidateRules(rules []ReplacementRule) error {
	for i, rule := range rules {
		if rule.FromText == "" {
			return errors.Errorf("rule %d: from_text is required", i)
		}
		if rule.FileFilterGlob != "" && !doublestar.ValidatePattern(filepath.ToSlash(rule.FileFilterGlob)) {
			return errors.Errorf("rule %d: invalid file_filter_glob %q", i, rule.FileFilterGlob)
		}
	}
	return nil
}

// Applies reports whether the rule should run for the file at filePath.
func (rule ReplacementRule) Applies(filePath string) bool {
	if rule.FileFilterGlob == "" {
		return true
	}
	pattern := filepath.ToSlash(rule.FileFilterGlob)
	target := filepath.ToSlash(filePath)
	if !strings.Contains(pattern, "/") {
		target = path.Base(target)
	}
	ok, err := doublestar.Match(pattern, target)
	return err == nil && ok
}
