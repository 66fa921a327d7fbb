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
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	diffContext  = 3
	noNewlineEOF = "\\ No newline at end of file\n"
)

// Stats counts changed lines.
type Stats struct {
	Inserted int
	Deleted  int
}

func (s Stats) String() string {
	return fmt.Sprintf("+%d -%d", s.Inserted, s.Deleted)
}

// unifiedDiff renders the line diff from before to after.
func unifiedDiff(before, after, fromFile, toFile string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(before),
		B:        splitLines(after),
		FromFile: fromFile,
		ToFile:   toFile,
		Context:  diffContext,
	})
}

// splitLines keeps line endings; a last line without one is marked the way
// diff(1) does.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if last := lines[len(lines)-1]; last == "" {
		lines = lines[:len(lines)-1]
	} else {
		lines[len(lines)-1] = last + "\n" + noNewlineEOF
	}
	return lines
}

// diffStats counts inserted and deleted lines.
func diffStats(before, after string) Stats {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var st Stats
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			st.Inserted += countLines(d.Text)
		case diffmatchpatch.DiffDelete:
			st.Deleted += countLines(d.Text)
		}
	}
	return st
}

func countLines(s string) int {
	n := strings.Count(s, "\n")
	if s != "" && !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
