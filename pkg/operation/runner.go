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
	"context"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

var ErrSharedDestination = errors.Base("jobs share a destination")

// 📋 Job is a named request run by a Runner
type Job struct {
	Name    string
	Request Request
}

// JobResult is the outcome of one job. Result is nil when Err is set or the
// job never ran.
type JobResult struct {
	Job    Job
	Result *Result
	Err    error
}

// 🏃 Runner executes jobs, one after another or concurrently
type Runner struct {
	syncer *Syncer
	async  bool
	limit  int
}

// 🏗️ NewRunner creates a new runner
func NewRunner(syncer *Syncer, async bool) *Runner {
	return &Runner{
		syncer: syncer,
		async:  async,
		limit:  runtime.GOMAXPROCS(0),
	}
}

// Run executes jobs and returns their results in job order. The first failure
// stops the run: later sequential jobs are skipped and concurrent ones are
// cancelled.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]JobResult, error) {
	if err := checkDestinations(jobs); err != nil {
		return nil, err
	}

	results := make([]JobResult, len(jobs))
	for i, job := range jobs {
		results[i].Job = job
	}

	if r.async {
		return results, r.runAsync(ctx, jobs, results)
	}
	return results, r.runSync(ctx, jobs, results)
}

// 🔄 runSync runs jobs in order
func (r *Runner) runSync(ctx context.Context, jobs []Job, results []JobResult) error {
	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			return errors.Errorf("operation cancelled: %w", err)
		}
		if err := r.runJob(ctx, job, &results[i]); err != nil {
			return err
		}
	}
	return nil
}

// ⚡ runAsync runs jobs concurrently
func (r *Runner) runAsync(ctx context.Context, jobs []Job, results []JobResult) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return errors.Errorf("operation cancelled: %w", err)
			}
			return r.runJob(ctx, job, &results[i])
		})
	}

	return g.Wait()
}

func (r *Runner) runJob(ctx context.Context, job Job, out *JobResult) error {
	zerolog.Ctx(ctx).Debug().Str("job", job.Name).Msg("running job")

	res, err := r.syncer.Sync(ctx, job.Request)
	if err != nil {
		out.Err = err
		return errors.Errorf("job %s: %w", job.Name, err)
	}
	out.Result = res
	return nil
}

func checkDestinations(jobs []Job) error {
	seen := make(map[string]string, len(jobs))
	for _, job := range jobs {
		dest := filepath.Clean(job.Request.Destination)
		if other, ok := seen[dest]; ok {
			return errors.Errorf("%s and %s write %s: %w", other, job.Name, dest, ErrSharedDestination)
		}
		seen[dest] = job.Name
	}
	return nil
}
