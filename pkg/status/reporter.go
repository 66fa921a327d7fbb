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
	"context"
	"io"
	"os"
	"sync"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 📢 Reporter prints one line per sync outcome and keeps the tally
type Reporter struct {
	out       io.Writer
	formatter FileFormatter

	mu    sync.Mutex
	files []FileInfo
}

// 🎯 NewReporter creates a reporter writing to out (stdout when nil)
func NewReporter(out io.Writer) *Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &Reporter{out: out, formatter: NewDefaultFileFormatter()}
}

func (r *Reporter) printer(s FileStatus) *pterm.PrefixPrinter {
	switch s {
	case StatusCreated:
		return pterm.Success.WithPrefix(pterm.Prefix{Text: "CREATED"}).WithWriter(r.out)
	case StatusUpdated:
		return pterm.Info.WithPrefix(pterm.Prefix{Text: "UPDATED"}).WithWriter(r.out)
	case StatusPending:
		return pterm.Warning.WithPrefix(pterm.Prefix{Text: "PENDING"}).WithWriter(r.out)
	case StatusFailed:
		return pterm.Error.WithPrefix(pterm.Prefix{Text: "FAILED"}).WithWriter(r.out)
	default:
		return pterm.Info.WithPrefix(pterm.Prefix{Text: "SKIPPED"}).WithWriter(r.out)
	}
}

// 📝 Track records and prints an outcome
func (r *Reporter) Track(ctx context.Context, info FileInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.files = append(r.files, info)
	msg := r.formatter.FormatFileOperation(info)
	r.printer(info.Status).Println(msg)

	logger := zerolog.Ctx(ctx)
	if info.Error != nil {
		pterm.Error.WithWriter(r.out).Println(r.formatter.FormatError(info.Error))
		logger.Error().Err(info.Error).Str("path", info.Path).Msg(msg)
		return
	}
	logger.Debug().Str("path", info.Path).Str("status", info.Status.String()).Msg(msg)
}

// Files returns every tracked outcome in tracking order
func (r *Reporter) Files() []FileInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]FileInfo(nil), r.files...)
}

// 📊 Summary prints the totals of everything tracked so far
func (r *Reporter) Summary(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := map[FileStatus]int{}
	for _, f := range r.files {
		counts[f.Status]++
	}
	msg := r.formatter.FormatSummary(counts)
	pterm.Info.WithPrefix(pterm.Prefix{Text: "SUMMARY"}).WithWriter(r.out).Println(msg)
	zerolog.Ctx(ctx).Debug().Int("files", len(r.files)).Msg(msg)
}
