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
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/filesync/pkg/adapter"
	_ "github.com/walteh/filesync/pkg/adapter/markdown"
	_ "github.com/walteh/filesync/pkg/adapter/plaintext"
	_ "github.com/walteh/filesync/pkg/adapter/yamldoc"
	"github.com/walteh/filesync/pkg/mapper"
	"github.com/walteh/filesync/pkg/mapping"
	"github.com/walteh/filesync/pkg/source"
	"github.com/walteh/filesync/pkg/status"
	"github.com/walteh/filesync/pkg/text"
)

// SyncerOption configures a Syncer.
type SyncerOption func(*Syncer)

// WithSources sets the reader used for source locations.
func WithSources(r source.Reader) SyncerOption {
	return func(s *Syncer) {
		s.sources = r
	}
}

// WithAdapters sets the adapter registry used to pick document formats.
func WithAdapters(r *adapter.Registry) SyncerOption {
	return func(s *Syncer) {
		s.adapters = r
	}
}

// WithReplacer sets the replacer applied to source content.
func WithReplacer(r text.TextReplacer) SyncerOption {
	return func(s *Syncer) {
		s.replacer = r
	}
}

// 🔄 Syncer runs sync requests. It holds no per-run state and is safe for
// concurrent use when its FileManager is.
type Syncer struct {
	files    status.FileManager
	sources  source.Reader
	adapters *adapter.Registry
	replacer text.TextReplacer
}

// 🏭 NewSyncer creates a syncer over files.
func NewSyncer(files status.FileManager, opts ...SyncerOption) *Syncer {
	s := &Syncer{
		files:    files,
		adapters: adapter.Default,
		replacer: text.NewSimpleTextReplacer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sources == nil {
		s.sources = source.NewRegistry(files)
	}
	return s
}

// loaded is the output of LOAD.
type loaded struct {
	codec     *codec
	source    []byte
	dest      []byte
	destFound bool
	binary    bool
}

// Sync runs one request. The destination is only written after every mapping
// succeeded in memory.
func (s *Syncer) Sync(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	logger := zerolog.Ctx(ctx).With().
		Str("source", req.Source).
		Str("destination", req.Destination).
		Logger()
	ctx = logger.WithContext(ctx)

	in, err := s.load(ctx, req)
	if err != nil {
		logger.Debug().Err(err).Str("state", "load").Msg("sync failed")
		return nil, err
	}

	res := &Result{
		Source:      req.Source,
		Destination: req.Destination,
		Binary:      in.binary,
	}

	var before, after string
	var next []byte
	if in.binary {
		next = in.source
	} else {
		if before, after, err = s.resolve(ctx, req, in, res); err != nil {
			logger.Debug().Err(err).Str("state", "resolve").Msg("sync failed")
			return nil, err
		}
		if next, err = in.codec.encode(after); err != nil {
			return nil, &IOError{Op: "encode", Path: req.Destination, Err: err}
		}
	}
	res.Checksum = status.Checksum(next)

	if in.destFound && bytes.Equal(next, in.dest) {
		res.Status, res.Reason = StatusAlreadyInSync, ReasonAlreadyInSync
		res.Duration = time.Since(start)
		logger.Debug().Str("status", res.Reason.String()).Msg("sync finished")
		return res, nil
	}

	if req.Options.DryRun || req.Options.Diff {
		if in.binary {
			res.Diff = "Binary files " + req.Destination + " and " + req.Source + " differ\n"
		} else {
			toFile := req.Source
			if len(req.Mappings) > 0 {
				toFile += " (section)"
			}
			if res.Diff, err = unifiedDiff(before, after, req.Destination, toFile); err != nil {
				return nil, errors.Errorf("rendering diff: %w", err)
			}
			res.Stats = diffStats(before, after)
		}
	}

	if req.Options.DryRun {
		res.Status, res.Reason = StatusWouldChange, ReasonDryRun
		res.Duration = time.Since(start)
		logger.Debug().Str("status", res.Reason.String()).Msg("sync finished")
		return res, nil
	}

	if err := s.write(ctx, req, in, next, res); err != nil {
		logger.Debug().Err(err).Str("state", "write").Msg("sync failed")
		return nil, err
	}
	res.Duration = time.Since(start)
	logger.Debug().Str("status", res.Reason.String()).Str("backup", res.BackupPath).Msg("sync finished")
	return res, nil
}

// load validates the request and reads both files.
func (s *Syncer) load(ctx context.Context, req Request) (*loaded, error) {
	c, err := resolveEncoding(req.Options.Encoding)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}

	in := &loaded{codec: c}

	if in.source, err = s.sources.Read(ctx, req.Source); err != nil {
		return nil, &IOError{Op: "read", Path: req.Source, Err: err}
	}

	if in.destFound, err = s.files.FileExists(ctx, req.Destination); err != nil {
		return nil, &IOError{Op: "stat", Path: req.Destination, Err: err}
	}
	if in.destFound {
		if in.dest, err = s.files.ReadFile(ctx, req.Destination); err != nil {
			return nil, &IOError{Op: "read", Path: req.Destination, Err: err}
		}
	}

	srcBinary := c.binary(in.source)
	dstBinary := in.destFound && c.binary(in.dest)
	if !srcBinary && !dstBinary {
		return in, nil
	}

	path := req.Source
	if !srcBinary {
		path = req.Destination
	}
	if len(req.Mappings) > 0 {
		return nil, &BinaryContentError{Path: path, Mappings: true}
	}
	if !req.Options.Binary {
		return nil, &BinaryContentError{Path: path}
	}
	in.binary = true
	return in, nil
}

func (s *Syncer) validate(ctx context.Context, req Request) error {
	if req.Source == "" || req.Destination == "" {
		return errors.New("source and destination are required")
	}
	if !source.IsLocal(req.Destination) {
		return errors.Errorf("%s: %w", req.Destination, ErrRemoteDestination)
	}

	if source.IsLocal(req.Source) {
		path := source.LocalPath(req.Source)
		same, err := s.files.SameFile(ctx, path, req.Destination)
		if err != nil {
			return err
		}
		if same {
			return errors.Errorf("%s: %w", path, ErrSamePath)
		}
		info, err := s.files.Stat(ctx, path)
		if err != nil {
			return &IOError{Op: "read", Path: req.Source, Err: err}
		}
		if info.IsDir() {
			return &IOError{Op: "read", Path: req.Source, Err: ErrIsDirectory}
		}
	}

	if exists, err := s.files.FileExists(ctx, req.Destination); err == nil && exists {
		info, err := s.files.Stat(ctx, req.Destination)
		if err != nil {
			return &IOError{Op: "stat", Path: req.Destination, Err: err}
		}
		if info.IsDir() {
			return &IOError{Op: "write", Path: req.Destination, Err: ErrIsDirectory}
		}
	}

	return mapping.Validate(s.adapters, req.Mappings)
}

// resolve returns the decoded destination before and after the run.
func (s *Syncer) resolve(ctx context.Context, req Request, in *loaded, res *Result) (string, string, error) {
	src, err := in.codec.decode(in.source)
	if err != nil {
		return "", "", &IOError{Op: "decode", Path: req.Source, Err: err}
	}
	before, err := in.codec.decode(in.dest)
	if err != nil {
		return "", "", &IOError{Op: "decode", Path: req.Destination, Err: err}
	}

	if len(req.Replacements) > 0 {
		replaced, err := s.replacer.ReplaceText(ctx, req.Source, strings.NewReader(src), req.Replacements)
		if err != nil {
			return "", "", errors.Errorf("applying replacements: %w", err)
		}
		src = string(replaced.ModifiedContent)
	}

	if len(req.Mappings) == 0 {
		return before, src, nil
	}

	srcAdapter, err := s.adapterFor(req.Source, mapping.SourceAdapter(req.Mappings))
	if err != nil {
		return "", "", err
	}
	dstAdapter, err := s.adapterFor(req.Destination, mapping.DestAdapter(req.Mappings))
	if err != nil {
		return "", "", err
	}

	srcDoc, err := srcAdapter.Parse([]byte(src))
	if err != nil {
		return "", "", errors.Errorf("%s: %w", req.Source, err)
	}
	dstDoc, err := dstAdapter.Parse([]byte(before))
	if err != nil {
		return "", "", errors.Errorf("%s: %w", req.Destination, err)
	}

	opts := mapper.Options{AddComments: req.Options.AddComments}
	for _, m := range req.Mappings {
		out, err := mapper.Apply(ctx, m, srcDoc, dstDoc, srcAdapter, dstAdapter, opts)
		if err != nil {
			return "", "", errors.Errorf("mapping %s: %w", m, err)
		}
		dstDoc = out.Document
		res.Mappings = append(res.Mappings, MappingResult{
			Mapping:       m,
			Identifier:    out.Identifier,
			Previous:      out.Previous,
			PreviousFound: out.PreviousFound,
		})
	}

	raw, err := dstAdapter.Serialize(dstDoc)
	if err != nil {
		return "", "", errors.Errorf("serializing %s: %w", req.Destination, err)
	}
	after := string(raw)
	if !strings.HasSuffix(after, "\n") {
		after += "\n"
	}
	return before, after, nil
}

func (s *Syncer) adapterFor(path, explicit string) (adapter.Adapter, error) {
	if explicit != "" {
		return s.adapters.ByName(explicit)
	}
	return s.adapters.ForPath(path)
}

func (s *Syncer) write(ctx context.Context, req Request, in *loaded, next []byte, res *Result) error {
	if req.Options.Backup && in.destFound {
		backup, err := s.files.BackupFile(ctx, req.Destination)
		if err != nil {
			return &IOError{Op: "backup", Path: req.Destination, Err: err}
		}
		res.BackupPath = backup
	}

	if err := s.files.WriteFileAtomic(ctx, req.Destination, next); err != nil {
		return &IOError{Op: "write", Path: req.Destination, Err: err}
	}

	res.Status = StatusWritten
	if in.destFound {
		res.Reason = ReasonTargetUpdated
	} else {
		res.Reason = ReasonTargetCreated
	}
	return nil
}
