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
	"time"

	"github.com/walteh/filesync/pkg/mapping"
	"github.com/walteh/filesync/pkg/section"
	"github.com/walteh/filesync/pkg/status"
	"github.com/walteh/filesync/pkg/text"
)

// DefaultEncoding is used when Options.Encoding is empty.
const DefaultEncoding = "utf-8"

// ⚙️ Options controls one sync run
type Options struct {
	DryRun      bool   // report what would change, never write
	Diff        bool   // include a unified diff in the result
	Backup      bool   // copy an existing destination aside before writing
	Binary      bool   // allow byte copies of binary files
	Encoding    string // encoding of both files, resolved through the WHATWG index
	AddComments bool   // wrap synced sections in content-addressed markers
}

// DefaultOptions returns utf-8 encoding with comments on.
func DefaultOptions() Options {
	return Options{Encoding: DefaultEncoding, AddComments: true}
}

// 📋 Request is one source to destination sync. No mappings means the
// destination becomes a copy of the source.
type Request struct {
	Source       string
	Destination  string
	Mappings     []mapping.Mapping
	Replacements []text.ReplacementRule
	Options      Options
}

// 📊 Status is the terminal state of a successful run
type Status int

const (
	StatusAlreadyInSync Status = iota
	StatusWouldChange
	StatusWritten
)

func (s Status) String() string {
	switch s {
	case StatusAlreadyInSync:
		return "already_in_sync"
	case StatusWouldChange:
		return "would_change"
	case StatusWritten:
		return "written"
	default:
		return "unknown"
	}
}

// Reason explains a Status.
type Reason string

const (
	ReasonAlreadyInSync Reason = "already_in_sync"
	ReasonDryRun        Reason = "dry_run"
	ReasonTargetUpdated Reason = "target_updated"
	ReasonTargetCreated Reason = "target_created"
)

func (r Reason) String() string {
	return string(r)
}

// MappingResult records one applied mapping.
type MappingResult struct {
	Mapping       mapping.Mapping
	Identifier    string
	Previous      section.Value
	PreviousFound bool
}

// 📦 Result describes a finished run
type Result struct {
	Source      string
	Destination string
	Status      Status
	Reason      Reason
	Diff        string
	Stats       Stats
	BackupPath  string
	Checksum    string
	Binary      bool
	Mappings    []MappingResult
	Duration    time.Duration
}

// Created reports whether the run wrote a destination that did not exist.
func (r *Result) Created() bool {
	return r.Reason == ReasonTargetCreated
}

// FileInfo converts the result for status reporting.
func (r *Result) FileInfo() status.FileInfo {
	info := status.FileInfo{
		Path:       r.Destination,
		Source:     r.Source,
		Checksum:   r.Checksum,
		BackupPath: r.BackupPath,
	}
	switch r.Status {
	case StatusAlreadyInSync:
		info.Status = status.StatusUnchanged
	case StatusWouldChange:
		info.Status = status.StatusPending
	case StatusWritten:
		if r.Created() {
			info.Status = status.StatusCreated
		} else {
			info.Status = status.StatusUpdated
		}
	}
	return info
}
