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

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/filesync/pkg/adapter"
	"github.com/walteh/filesync/pkg/mapping"
	"github.com/walteh/filesync/pkg/operation"
	"github.com/walteh/filesync/pkg/source"
	"github.com/walteh/filesync/pkg/status"
	"github.com/walteh/filesync/pkg/text"
)

// DefaultNames are the config files Discover looks for, in order.
var DefaultNames = []string{
	".filesync.hcl",
	".filesync.yaml",
	".filesync.yml",
	".filesync.json",
}

var ErrNotFound = errors.Base("no config file found")

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔄 Replacement replaces Old with New in a job's source. File optionally
// restricts it to sources matching a glob.
type Replacement struct {
	Old  string `hcl:"old" yaml:"old" json:"old"`
	New  string `hcl:"new" yaml:"new" json:"new"`
	File string `hcl:"file,optional" yaml:"file,omitempty" json:"file,omitempty"`
}

// ⚙️ Options overrides sync options. Unset fields keep the inherited value.
type Options struct {
	DryRun   *bool   `hcl:"dry_run,optional" yaml:"dry_run,omitempty" json:"dry_run,omitempty"`
	Diff     *bool   `hcl:"diff,optional" yaml:"diff,omitempty" json:"diff,omitempty"`
	Backup   *bool   `hcl:"backup,optional" yaml:"backup,omitempty" json:"backup,omitempty"`
	Binary   *bool   `hcl:"binary,optional" yaml:"binary,omitempty" json:"binary,omitempty"`
	Encoding *string `hcl:"encoding,optional" yaml:"encoding,omitempty" json:"encoding,omitempty"`
	Comment  *bool   `hcl:"comment,optional" yaml:"comment,omitempty" json:"comment,omitempty"`
}

// Apply returns base with the set fields of o applied.
func (o *Options) Apply(base operation.Options) operation.Options {
	if o == nil {
		return base
	}
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&base.DryRun, o.DryRun)
	set(&base.Diff, o.Diff)
	set(&base.Backup, o.Backup)
	set(&base.Binary, o.Binary)
	set(&base.AddComments, o.Comment)
	if o.Encoding != nil {
		base.Encoding = *o.Encoding
	}
	return base
}

// 📋 Job syncs one source into one destination
type Job struct {
	Name         string        `hcl:"name,label" yaml:"name,omitempty" json:"name,omitempty"`
	Source       string        `hcl:"source" yaml:"source" json:"source"`
	Destination  string        `hcl:"destination" yaml:"destination" json:"destination"`
	Sections     []string      `hcl:"sections,optional" yaml:"sections,omitempty" json:"sections,omitempty"`
	Replacements []Replacement `hcl:"replacement,block" yaml:"replacements,omitempty" json:"replacements,omitempty"`
	Options      *Options      `hcl:"options,block" yaml:"options,omitempty" json:"options,omitempty"`
}

// 📚 Config represents the complete configuration
type Config struct {
	Async    bool              `hcl:"async,optional" yaml:"async,omitempty" json:"async,omitempty"`
	Adapters map[string]string `hcl:"adapters,optional" yaml:"adapters,omitempty" json:"adapters,omitempty"`
	Defaults *Options          `hcl:"defaults,block" yaml:"defaults,omitempty" json:"defaults,omitempty"`
	Jobs     []Job             `hcl:"job,block" yaml:"jobs" json:"jobs"`

	location string
}

// Location is the file the config was loaded from, if any.
func (cfg *Config) Location() string {
	return cfg.location
}

// 🎯 Load reads, parses and validates the config at path.
func Load(ctx context.Context, files status.FileManager, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	data, err := files.ReadFile(ctx, path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config %s: %w", path, err)
	}
	cfg.location = path

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config %s: %w", path, err)
	}

	logger.Debug().Str("path", path).Int("jobs", len(cfg.Jobs)).Msg("configuration loaded")
	return cfg, nil
}

// 🔍 Discover returns the first of DefaultNames present in dir.
func Discover(ctx context.Context, files status.FileManager, dir string) (string, error) {
	for _, name := range DefaultNames {
		path := filepath.Join(dir, name)
		ok, err := files.FileExists(ctx, path)
		if err != nil {
			return "", errors.Errorf("looking for config: %w", err)
		}
		if ok {
			return path, nil
		}
	}
	return "", errors.Errorf("%s: %w", dir, ErrNotFound)
}

// 🔍 Validate checks if the configuration is valid and fills in job names.
func (cfg *Config) Validate() error {
	if len(cfg.Jobs) == 0 {
		return errors.New("at least one job is required")
	}

	if _, err := cfg.Registry(adapter.Default); err != nil {
		return err
	}

	seen := map[string]bool{}
	for i := range cfg.Jobs {
		job := &cfg.Jobs[i]
		if job.Source == "" {
			return errors.Errorf("job %d: source is required", i)
		}
		if job.Destination == "" {
			return errors.Errorf("job %d: destination is required", i)
		}
		if job.Name == "" {
			job.Name = job.Destination
		}
		if seen[job.Name] {
			return errors.Errorf("job %q is defined twice", job.Name)
		}
		seen[job.Name] = true

		for j, r := range job.Replacements {
			if r.Old == "" {
				return errors.Errorf("job %q: replacement %d: old is required", job.Name, j)
			}
		}
		if err := text.NewSimpleTextReplacer().ValidateRules(job.rules()); err != nil {
			return errors.Errorf("job %q: %w", job.Name, err)
		}
	}
	return nil
}

// Registry returns a copy of base with the config's adapter overrides
// installed, in pattern order.
func (cfg *Config) Registry(base *adapter.Registry) (*adapter.Registry, error) {
	reg := base.Clone()

	patterns := make([]string, 0, len(cfg.Adapters))
	for p := range cfg.Adapters {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)

	for _, p := range patterns {
		if err := reg.Override(p, cfg.Adapters[p]); err != nil {
			return nil, errors.Errorf("adapters: %w", err)
		}
	}
	return reg, nil
}

// 🏗️ OperationJobs turns the config into runnable jobs. Options resolve as
// base, then defaults, then the job's own options. Section mappings are
// parsed against reg.
func (cfg *Config) OperationJobs(base operation.Options, reg *adapter.Registry) ([]operation.Job, error) {
	jobs := make([]operation.Job, 0, len(cfg.Jobs))
	for _, job := range cfg.Jobs {
		ms := make([]mapping.Mapping, 0, len(job.Sections))
		for _, raw := range job.Sections {
			m, err := mapping.ParseWith(reg, raw)
			if err != nil {
				return nil, errors.Errorf("job %q: %w", job.Name, err)
			}
			ms = append(ms, m)
		}
		if err := mapping.Validate(reg, ms); err != nil {
			return nil, errors.Errorf("job %q: %w", job.Name, err)
		}

		jobs = append(jobs, operation.Job{
			Name: job.Name,
			Request: operation.Request{
				Source:       cfg.resolve(job.Source),
				Destination:  cfg.resolve(job.Destination),
				Mappings:     ms,
				Replacements: job.rules(),
				Options:      job.Options.Apply(cfg.Defaults.Apply(base)),
			},
		})
	}
	return jobs, nil
}

func (job Job) rules() []text.ReplacementRule {
	rules := make([]text.ReplacementRule, 0, len(job.Replacements))
	for _, r := range job.Replacements {
		rules = append(rules, text.ReplacementRule{FromText: r.Old, ToText: r.New, FileFilterGlob: r.File})
	}
	return rules
}

// resolve makes relative local paths relative to the config file.
func (cfg *Config) resolve(location string) string {
	if cfg.location == "" || !source.IsLocal(location) {
		return location
	}
	path := source.LocalPath(location)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(cfg.location), path)
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	parts := make([]string, 0, len(cfg.Jobs))
	for _, job := range cfg.Jobs {
		parts = append(parts, fmt.Sprintf("%s: %s -> %s", job.Name, job.Source, job.Destination))
	}
	return strings.Join(parts, "; ")
}

func hasExt(filename string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
