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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 FileStatus is the outcome of one sync for its destination file
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusCreated              // destination did not exist and was written
	StatusUpdated              // destination existed and was rewritten
	StatusUnchanged            // destination already matched
	StatusPending              // destination would change (dry run)
	StatusFailed               // the run failed
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusUpdated:
		return "updated"
	case StatusUnchanged:
		return "unchanged"
	case StatusPending:
		return "pending"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 FileInfo describes one reported destination
type FileInfo struct {
	Path       string     // destination path
	Source     string     // where the content came from
	Status     FileStatus // outcome
	Checksum   string     // sha256 of the written (or would-be) content
	BackupPath string     // backup created before the write, if any
	Error      error      // failure, when Status is StatusFailed
}

// 💾 FileManager handles every filesystem operation of a sync run
type FileManager interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Stat(ctx context.Context, path string) (os.FileInfo, error)
	FileExists(ctx context.Context, path string) (bool, error)
	WriteFileAtomic(ctx context.Context, path string, content []byte) error
	BackupFile(ctx context.Context, path string) (string, error)
	SameFile(ctx context.Context, a, b string) (bool, error)
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used for backup timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// 🔧 Manager implements FileManager on a billy filesystem
type Manager struct {
	fs  billy.Filesystem
	now func() time.Time
	abs func(string) (string, error)
}

var _ FileManager = (*Manager)(nil)

// 🏭 New creates a manager over fs. Paths are used as given, so callers pass
// absolute paths when fs is rooted at "/".
func New(fs billy.Filesystem, opts ...Option) *Manager {
	m := &Manager{fs: fs, now: time.Now, abs: func(p string) (string, error) { return p, nil }}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// 🏭 NewOS creates a manager over the host filesystem. Relative paths are
// resolved against the working directory.
func NewOS(opts ...Option) *Manager {
	m := New(osfs.New("/"), opts...)
	m.abs = filepath.Abs
	return m
}

func (m *Manager) resolve(path string) (string, error) {
	p, err := m.abs(path)
	if err != nil {
		return "", errors.Errorf("resolving %s: %w", path, err)
	}
	return p, nil
}

// Filesystem returns the underlying filesystem.
func (m *Manager) Filesystem() billy.Filesystem {
	return m.fs
}

// Checksum returns the hex sha256 of content
func Checksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func (m *Manager) ReadFile(ctx context.Context, path string) ([]byte, error) {
	path, err := m.resolve(path)
	if err != nil {
		return nil, err
	}
	content, err := util.ReadFile(m.fs, path)
	if err != nil {
		return nil, errors.Errorf("reading file: %w", err)
	}
	return content, nil
}

func (m *Manager) Stat(ctx context.Context, path string) (os.FileInfo, error) {
	path, err := m.resolve(path)
	if err != nil {
		return nil, err
	}
	info, err := m.fs.Stat(path)
	if err != nil {
		return nil, errors.Errorf("checking file: %w", err)
	}
	return info, nil
}

func (m *Manager) FileExists(ctx context.Context, path string) (bool, error) {
	path, err := m.resolve(path)
	if err != nil {
		return false, err
	}
	_, err = m.fs.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, errors.Errorf("checking file existence: %w", err)
}

// WriteFileAtomic writes content to a temp sibling and renames it over path,
// creating parent directories first.
func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	path, err := m.resolve(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := m.fs.MkdirAll(dir, 0o755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	mode := os.FileMode(0o644)
	if info, err := m.fs.Stat(path); err == nil {
		mode = info.Mode().Perm()
	} else if !os.IsNotExist(err) {
		return errors.Errorf("checking existing file: %w", err)
	}

	tmp, err := m.tempFile(dir, filepath.Base(path), mode)
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = m.fs.Remove(tmpPath)
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = m.fs.Remove(tmpPath)
		return errors.Errorf("closing temp file: %w", err)
	}

	if err := m.fs.Rename(tmpPath, path); err != nil {
		_ = m.fs.Remove(tmpPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Int("bytes", len(content)).Msg("file written")
	return nil
}

// tempFile creates an empty sibling of base in dir with the given permissions.
func (m *Manager) tempFile(dir, base string, mode os.FileMode) (billy.File, error) {
	for attempt := 0; ; attempt++ {
		name := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", base, os.Getpid(), attempt))
		f, err := m.fs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, mode)
		if err == nil || !errors.Is(err, os.ErrExist) || attempt >= 100 {
			return f, err
		}
	}
}

// SameFile reports whether a and b name the same file once made absolute. Two
// existing paths are also compared by identity, which follows symlinks.
func (m *Manager) SameFile(ctx context.Context, a, b string) (bool, error) {
	a, err := m.resolve(a)
	if err != nil {
		return false, err
	}
	b, err = m.resolve(b)
	if err != nil {
		return false, err
	}
	if filepath.Clean(a) == filepath.Clean(b) {
		return true, nil
	}

	ia, errA := m.fs.Stat(a)
	ib, errB := m.fs.Stat(b)
	if errA != nil || errB != nil {
		return false, nil
	}
	same := os.SameFile(ia, ib)
	if same {
		zerolog.Ctx(ctx).Debug().Str("a", a).Str("b", b).Msg("paths resolve to one file")
	}
	return same, nil
}

// BackupFile copies path to a sibling named name.YYYYMMDD-HHMMSS.bak (UTC) and
// returns the backup path.
func (m *Manager) BackupFile(ctx context.Context, path string) (string, error) {
	path, err := m.resolve(path)
	if err != nil {
		return "", err
	}
	backupPath := BackupPath(path, m.now())

	src, err := m.fs.Open(path)
	if err != nil {
		return "", errors.Errorf("opening file for backup: %w", err)
	}
	defer src.Close()

	dst, err := m.fs.Create(backupPath)
	if err != nil {
		return "", errors.Errorf("creating backup: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", errors.Errorf("copying backup: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", errors.Errorf("closing backup: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Str("backup", backupPath).Msg("backup created")
	return backupPath, nil
}

// BackupPath returns the backup name for path at time t.
func BackupPath(path string, t time.Time) string {
	return path + "." + t.UTC().Format("20060102-150405") + ".bak"
}
