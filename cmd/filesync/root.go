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

package main

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/filesync/pkg/log"
)

type rootFlags struct {
	debug bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "filesync",
		Short: "📄 Keep files, or sections of files, in sync",
		Long: `filesync copies a source file over a destination, or copies addressed
sections between structured documents (YAML, Markdown, plain text), leaving the
rest of the destination untouched.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(setupLogging(cmd, flags, stdout, stderr))
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")

	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setupLogging puts a zerolog logger and the console logger on the context.
// Structured records stay quiet unless --debug is set.
func setupLogging(cmd *cobra.Command, flags *rootFlags, stdout, stderr io.Writer) context.Context {
	level := zerolog.WarnLevel
	if flags.debug {
		level = zerolog.DebugLevel
	}

	zlog := zerolog.New(zerolog.ConsoleWriter{Out: stderr}).Level(level).With().Timestamp().Logger()
	ctx := zlog.WithContext(cmd.Context())
	return log.NewContext(ctx, log.New(stdout, zlog))
}
