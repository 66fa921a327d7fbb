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

package log

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Warning("warning message")
				logger.Println("Already in sync.")
			},
			wantLogs: []string{
				"⚠️  warning message",
				"Already in sync.",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("syncing sections")
			},
			wantLogs: []string{
				"filesync • syncing sections",
			},
		},
		{
			name: "log_diff",
			op: func(t *testing.T, logger *Logger) {
				logger.Diff("--- a\n+++ a\n@@ -1 +1 @@\n-old\n+new\n")
			},
			wantLogs: []string{
				"--- a",
				"+++ a",
				"@@ -1 +1 @@",
				"-old",
				"+new",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.Nop())

			tt.op(t, logger)

			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestLoggerMirrorsToStructuredLog(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	structured := &bytes.Buffer{}
	logger := New(io.Discard, zerolog.New(structured).Level(zerolog.InfoLevel))

	logger.Println("Already in sync.")
	logger.Warning("dry run")
	logger.Diff("+new\n")

	lines := strings.Split(strings.TrimSpace(structured.String()), "\n")
	require.Len(t, lines, 2, "diff lines should stay on the console")
	assert.JSONEq(t, `{"level":"info","message":"Already in sync."}`, lines[0])
	assert.JSONEq(t, `{"level":"warn","message":"dry run"}`, lines[1])
}

func TestLoggerContext(t *testing.T) {
	logger := New(io.Discard, zerolog.Nop())

	ctx := NewContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx), "logger from context should be the same instance")

	assert.Panics(t, func() {
		FromContext(context.Background())
	}, "FromContext should panic when logger is missing")
}
