package core

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// fallbackStagedName is used when the client sends no usable filename.
const fallbackStagedName = "upload.csv"

// Staging writes uploads to a local directory before they are parsed.
//
// Files are keyed by the client's base filename, so two concurrent imports
// of the same name share one path and the last writer wins.
type Staging struct {
	dir string
}

// NewStaging creates dir if needed.
func NewStaging(dir string) (*Staging, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create staging dir %s: %w", dir, err)
	}
	return &Staging{dir: dir}, nil
}

// Dir returns the staging directory.
func (s *Staging) Dir() string { return s.dir }

// Stage copies src to the staging directory. On failure nothing is left behind.
// The caller owns the returned file and must Release it.
func (s *Staging) Stage(name string, src io.Reader) (*StagedFile, error) {
	base := StagedName(name)
	dst := filepath.Join(s.dir, base)

	f, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", base, err)
	}

	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(dst)
		return nil, fmt.Errorf("stage %s: %w", base, err)
	}

	return &StagedFile{Name: base, Path: dst, Size: n}, nil
}

// StagedName reduces a client-supplied filename to a safe base name.
// Both slash styles are treated as separators since browsers on Windows
// may send full paths.
func StagedName(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	switch base {
	case "", ".", "..", "/":
		return fallbackStagedName
	}
	return base
}

// StagedFile is an upload persisted in the staging directory.
type StagedFile struct {
	Name string
	Path string
	Size int64

	once sync.Once
	err  error
}

// Open opens the staged file for reading.
func (f *StagedFile) Open() (*os.File, error) {
	return os.Open(f.Path)
}

// Release deletes the staged file. Only the first call does any work;
// a file already removed by someone else is not an error.
func (f *StagedFile) Release() error {
	f.once.Do(func() {
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			f.err = fmt.Errorf("release staged %s: %w", f.Name, err)
		}
	})
	return f.err
}
