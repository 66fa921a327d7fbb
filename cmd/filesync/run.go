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
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/walteh/filesync/pkg/adapter"
	"github.com/walteh/filesync/pkg/config"
	"github.com/walteh/filesync/pkg/log"
	"github.com/walteh/filesync/pkg/operation"
	"github.com/walteh/filesync/pkg/source"
	"github.com/walteh/filesync/pkg/source/github"
	"github.com/walteh/filesync/pkg/status"
	"gitlab.com/tozd/go/errors"
)

type runFlags struct {
	config string
	dryRun bool
	diff   bool
	async  bool
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every job of a sync config file",
		Long: `run loads a sync config (by default the first of .filesync.hcl,
.filesync.yaml, .filesync.yml or .filesync.json in the working directory) and
runs its jobs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobs(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.config, "config", "c", "", "config file path")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "preview every job without writing")
	cmd.Flags().BoolVar(&flags.diff, "diff", false, "show a unified diff for every job")
	cmd.Flags().BoolVar(&flags.async, "async", false, "run jobs concurrently")

	return cmd
}

func runJobs(ctx context.Context, flags *runFlags) error {
	files := status.NewOS()

	path, err := configPath(ctx, files, flags.config)
	if err != nil {
		return err
	}

	cfg, err := config.Load(ctx, files, path)
	if err != nil {
		return err
	}

	reg, err := cfg.Registry(adapter.Default)
	if err != nil {
		return err
	}

	jobs, err := cfg.OperationJobs(operation.DefaultOptions(), reg)
	if err != nil {
		return err
	}
	for i := range jobs {
		jobs[i].Request.Options.DryRun = jobs[i].Request.Options.DryRun || flags.dryRun
		jobs[i].Request.Options.Diff = jobs[i].Request.Options.Diff || flags.diff
	}

	sources := source.NewRegistry(files)
	if err := github.Register(sources); err != nil {
		return errors.Errorf("registering github source: %w", err)
	}

	logger := log.FromContext(ctx)
	logger.Header("running " + filepath.Base(path))
	if flags.dryRun {
		logger.Warning("dry run, no files will be written")
	}

	syncer := operation.NewSyncer(files, operation.WithSources(sources), operation.WithAdapters(reg))
	results, runErr := operation.NewRunner(syncer, cfg.Async || flags.async).Run(ctx, jobs)

	reporter := status.NewReporter(logger.Writer())
	for _, r := range results {
		switch {
		case r.Err != nil:
			reporter.Track(ctx, status.FileInfo{
				Path:   r.Job.Request.Destination,
				Source: r.Job.Request.Source,
				Status: status.StatusFailed,
				Error:  r.Err,
			})
		case r.Result != nil:
			reporter.Track(ctx, r.Result.FileInfo())
			if r.Result.Diff != "" {
				logger.Diff(r.Result.Diff)
			}
		}
	}
	reporter.Summary(ctx)

	return runErr
}

// configPath returns the explicit config path made absolute, or the config
// discovered in the working directory.
func configPath(ctx context.Context, files status.FileManager, explicit string) (string, error) {
	if explicit != "" {
		path, err := filepath.Abs(explicit)
		if err != nil {
			return "", errors.Errorf("resolving config path: %w", err)
		}
		return path, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", errors.Errorf("getting working directory: %w", err)
	}
	return config.Discover(ctx, files, wd)
}
