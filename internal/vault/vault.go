// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vault reads and writes the markdown notes under a directory.
// Paths handed in and out are relative to the vault root and use forward
// slashes; writes replace files atomically through a temp file and rename.
package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Ext is the extension of note files.
const Ext = ".md"

// tempPattern names in-flight writes. It does not end in Ext, so watchers
// and MarkdownFiles never pick temp files up.
const tempPattern = ".task-archiver-*.tmp"

// ErrOutsideVault is returned for paths that resolve above the vault root.
var ErrOutsideVault = errors.New("path is outside the vault")

// Vault is a directory of markdown notes on an afero filesystem.
type Vault struct {
	fs   afero.Fs
	root string
}

// New returns a vault rooted at root on fsys.
func New(fsys afero.Fs, root string) *Vault {
	return &Vault{fs: fsys, root: filepath.Clean(root)}
}

// NewOS returns a vault on the operating system filesystem. The root is
// made absolute so relative paths from watchers and callers agree.
func NewOS(root string) (*Vault, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving vault directory %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("opening vault: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("opening vault: %s is not a directory", abs)
	}
	return New(afero.NewOsFs(), abs), nil
}

// Root returns the vault directory.
func (v *Vault) Root() string {
	return v.root
}

// IsMarkdown reports whether name is a note file.
func IsMarkdown(name string) bool {
	return strings.EqualFold(path.Ext(name), Ext)
}

// WithExt appends Ext to name unless it already names a note file.
func WithExt(name string) string {
	if IsMarkdown(name) {
		return name
	}
	return name + Ext
}

// MarkdownFiles lists every note in the vault, sorted. Hidden directories
// such as .git and .obsidian are skipped.
func (v *Vault) MarkdownFiles() ([]string, error) {
	var files []string
	err := afero.Walk(v.fs, v.root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if p != v.root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsMarkdown(info.Name()) {
			return nil
		}
		rel, err := v.Rel(p)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing notes in %s: %w", v.root, err)
	}
	sort.Strings(files)
	return files, nil
}

// Abs maps a vault-relative path to a filesystem path.
func (v *Vault) Abs(rel string) (string, error) {
	clean := path.Clean(filepath.ToSlash(rel))
	if path.IsAbs(clean) || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrOutsideVault, rel)
	}
	return filepath.Join(v.root, filepath.FromSlash(clean)), nil
}

// Rel maps a filesystem path under the vault to a vault-relative path.
func (v *Vault) Rel(p string) (string, error) {
	rel, err := filepath.Rel(v.root, p)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrOutsideVault, p)
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: %s", ErrOutsideVault, p)
	}
	return rel, nil
}

// Read returns the content of a note.
func (v *Vault) Read(rel string) (string, error) {
	p, err := v.Abs(rel)
	if err != nil {
		return "", err
	}
	data, err := afero.ReadFile(v.fs, p)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", rel, err)
	}
	return string(data), nil
}

// ReadOrEmpty is Read for files that may not exist yet. The boolean
// reports whether the file exists.
func (v *Vault) ReadOrEmpty(rel string) (string, bool, error) {
	content, err := v.Read(rel)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return content, true, nil
}

// Exists reports whether the note exists.
func (v *Vault) Exists(rel string) (bool, error) {
	p, err := v.Abs(rel)
	if err != nil {
		return false, err
	}
	return afero.Exists(v.fs, p)
}

// Write replaces the note with content, creating parent directories. The
// new content is written to a temp file in the same directory and renamed
// over the target, so readers see either the old or the new file.
func (v *Vault) Write(rel, content string) error {
	p, err := v.Abs(rel)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := v.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", rel, err)
	}

	mode := fs.FileMode(0o644)
	if info, err := v.fs.Stat(p); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := afero.TempFile(v.fs, dir, tempPattern)
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", rel, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = v.fs.Remove(tmpName) }

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing temp file for %s: %w", rel, err)
	}
	if err := v.fs.Chmod(tmpName, mode); err != nil {
		cleanup()
		return fmt.Errorf("setting mode of %s: %w", rel, err)
	}
	if err := v.fs.Rename(tmpName, p); err != nil {
		cleanup()
		return fmt.Errorf("replacing %s: %w", rel, err)
	}
	return nil
}
