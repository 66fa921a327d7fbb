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

// Package github reads sync sources from GitHub repositories. Locations look
// like github://owner/repo@ref/path/to/file; the @ref part is optional.
package github

import (
	"context"
	"net/url"
	"os"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/filesync/pkg/source"
)

const Scheme = "github"

// 📍 Location is a parsed github:// source
type Location struct {
	Owner string
	Repo  string
	Ref   string
	Path  string
}

func (l Location) String() string {
	repo := l.Repo
	if l.Ref != "" {
		repo += "@" + l.Ref
	}
	return Scheme + "://" + l.Owner + "/" + repo + "/" + l.Path
}

// 🔍 ParseLocation parses a github:// location
func ParseLocation(location string) (Location, error) {
	rest, ok := strings.CutPrefix(location, Scheme+"://")
	if !ok {
		return Location{}, errors.Errorf("invalid GitHub location %q: missing %s:// prefix", location, Scheme)
	}

	parts := strings.SplitN(rest, "/", 3)
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || strings.Trim(parts[2], "/") == "" {
		return Location{}, errors.Errorf("invalid GitHub location %q: want %s://owner/repo[@ref]/path", location, Scheme)
	}

	loc := Location{Owner: parts[0], Repo: parts[1], Path: strings.Trim(parts[2], "/")}
	if repo, ref, ok := strings.Cut(loc.Repo, "@"); ok {
		if repo == "" || ref == "" {
			return Location{}, errors.Errorf("invalid GitHub location %q: empty repository or ref", location)
		}
		loc.Repo, loc.Ref = repo, ref
	}
	return loc, nil
}

// Option configures a Reader.
type Option func(*Reader) error

// WithToken authenticates requests. New reads GITHUB_TOKEN when no token is given.
func WithToken(token string) Option {
	return func(r *Reader) error {
		r.token = token
		return nil
	}
}

// WithBaseURL points the client at another API endpoint.
func WithBaseURL(raw string) Option {
	return func(r *Reader) error {
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			return errors.Errorf("parsing base url: %w", err)
		}
		r.baseURL = u
		return nil
	}
}

// 🎯 Reader implements source.Reader for GitHub file contents
type Reader struct {
	client  *github.Client
	token   string
	baseURL *url.URL
}

var _ source.Reader = (*Reader)(nil)

// 🏭 New creates a GitHub reader.
func New(opts ...Option) (*Reader, error) {
	r := &Reader{token: os.Getenv("GITHUB_TOKEN")}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	client := github.NewClient(nil)
	if r.token != "" {
		client = client.WithAuthToken(r.token)
	}
	if r.baseURL != nil {
		client.BaseURL = r.baseURL
	}
	r.client = client
	return r, nil
}

// Register installs a reader for github:// locations.
func Register(reg *source.Registry, opts ...Option) error {
	r, err := New(opts...)
	if err != nil {
		return err
	}
	reg.Register(Scheme, r)
	return nil
}

// Read fetches the file at location.
func (r *Reader) Read(ctx context.Context, location string) ([]byte, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("owner", loc.Owner).
		Str("repo", loc.Repo).
		Str("ref", loc.Ref).
		Str("path", loc.Path).
		Msg("fetching file from github")

	file, dir, _, err := r.client.Repositories.GetContents(ctx, loc.Owner, loc.Repo, loc.Path, &github.RepositoryContentGetOptions{
		Ref: loc.Ref,
	})
	if err != nil {
		return nil, errors.Errorf("getting file content: %w", err)
	}
	if file == nil {
		return nil, errors.Errorf("%s is a directory (%d entries)", location, len(dir))
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, errors.Errorf("decoding content: %w", err)
	}
	return []byte(content), nil
}
