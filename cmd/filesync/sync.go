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
	"strings"

	"github.com/spf13/cobra"
	"github.com/walteh/filesync/pkg/log"
	"github.com/walteh/filesync/pkg/mapping"
	"github.com/walteh/filesync/pkg/operation"
	"github.com/walteh/filesync/pkg/source"
	"github.com/walteh/filesync/pkg/source/github"
	"github.com/walteh/filesync/pkg/status"
	"gitlab.com/tozd/go/errors"
)

type syncFlags struct {
	dryRun   bool
	diff     bool
	backup   bool
	binary   bool
	encoding string
	comment  bool
	sections []string
}

func newSyncCmd() *cobra.Command {
	flags := &syncFlags{}

	cmd := &cobra.Command{
		Use:   "sync SRC DST",
		Short: "Synchronize one file's contents into another",
		Example: `  filesync sync values.yaml README.md -s 'yaml:image.tag->md:Install'
  filesync sync github://walteh/filesync@main/LICENSE LICENSE --diff`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), args[0], args[1], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "preview changes without writing")
	cmd.Flags().BoolVar(&flags.diff, "diff", false, "show a unified diff of the change")
	cmd.Flags().BoolVar(&flags.backup, "backup", false, "back up the destination before overwriting it")
	cmd.Flags().BoolVar(&flags.binary, "binary", false, "allow binary files")
	cmd.Flags().StringVar(&flags.encoding, "encoding", operation.DefaultEncoding, "text encoding used for reads and writes")
	cmd.Flags().BoolVar(&flags.comment, "comment", true, "add auto-generated markers around synced sections")
	cmd.Flags().StringArrayVarP(&flags.sections, "section", "s", nil,
		"map a source section into a destination section: <adapter>:src_path-><adapter>:dst_path[?options] (repeatable)")

	return cmd
}

func runSync(ctx context.Context, src, dst string, flags *syncFlags) error {
	mappings, err := mapping.ParseAll(flags.sections)
	if err != nil {
		return err
	}

	files := status.NewOS()
	sources := source.NewRegistry(files)
	if err := github.Register(sources); err != nil {
		return errors.Errorf("registering github source: %w", err)
	}

	syncer := operation.NewSyncer(files, operation.WithSources(sources))
	res, err := syncer.Sync(ctx, operation.Request{
		Source:      src,
		Destination: dst,
		Mappings:    mappings,
		Options: operation.Options{
			DryRun:      flags.dryRun,
			Diff:        flags.diff,
			Backup:      flags.backup,
			Binary:      flags.binary,
			Encoding:    flags.encoding,
			AddComments: flags.comment,
		},
	})
	if err != nil {
		return err
	}

	printResult(ctx, src, dst, res)
	return nil
}

// printResult writes the outcome lines for one sync.
func printResult(ctx context.Context, src, dst string, res *operation.Result) {
	logger := log.FromContext(ctx)

	switch res.Reason {
	case operation.ReasonDryRun:
		logger.Println("Dry run: " + src + " -> " + dst + ".")
	case operation.ReasonAlreadyInSync:
		logger.Println("Already in sync.")
	default:
		logger.Println("Synchronized " + src + " -> " + dst + ".")
	}
	if res.BackupPath != "" {
		logger.Println("Backup created at " + res.BackupPath + ".")
	}
	if res.Diff != "" {
		logger.Diff(strings.TrimRight(res.Diff, "\n"))
	}
}
