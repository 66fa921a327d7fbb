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

package status

import (
	"fmt"
	"strings"
)

// FileFormatter defines how sync outcomes are turned into text
type FileFormatter interface {
	// FormatFileOperation formats one destination outcome
	FormatFileOperation(info FileInfo) string

	// FormatSummary formats the totals of a batch
	FormatSummary(counts map[FileStatus]int) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatFileOperation formats a destination outcome with emojis
func (f *DefaultFileFormatter) FormatFileOperation(info FileInfo) string {
	var msg string
	switch info.Status {
	case StatusCreated:
		msg = fmt.Sprintf("✨ Created %s", info.Path)
	case StatusUpdated:
		msg = fmt.Sprintf("📝 Updated %s", info.Path)
	case StatusPending:
		msg = fmt.Sprintf("🔍 Would update %s", info.Path)
	case StatusFailed:
		msg = fmt.Sprintf("❌ Failed %s", info.Path)
	default:
		msg = fmt.Sprintf("👍 Unchanged %s", info.Path)
	}
	if info.Source != "" {
		msg += fmt.Sprintf(" from %s", info.Source)
	}
	if info.BackupPath != "" {
		msg += fmt.Sprintf(" (backup %s)", info.BackupPath)
	}
	return msg
}

// FormatSummary lists non-zero counts in a fixed order
func (f *DefaultFileFormatter) FormatSummary(counts map[FileStatus]int) string {
	var parts []string
	for _, s := range []FileStatus{StatusCreated, StatusUpdated, StatusPending, StatusUnchanged, StatusFailed} {
		if n := counts[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, s))
		}
	}
	if len(parts) == 0 {
		return "✅ Nothing to sync"
	}
	return "✅ " + strings.Join(parts, ", ")
}

// FormatError formats an error message with emoji
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
