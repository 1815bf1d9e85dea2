// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memVault(t *testing.T, files map[string]string) (*Vault, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for name, content := range files {
		p := filepath.Join("/vault", filepath.FromSlash(name))
		require.NoError(t, fsys.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, afero.WriteFile(fsys, p, []byte(content), 0o644))
	}
	return New(fsys, "/vault"), fsys
}

func TestMarkdownFiles(t *testing.T) {
	v, _ := memVault(t, map[string]string{
		"inbox.md":               "",
		"projects/garden.md":     "",
		"projects/notes.txt":     "",
		"projects/deep/Plan.MD":  "",
		".obsidian/workspace.md": "",
		"daily/.hidden/x.md":     "",
	})

	files, err := v.MarkdownFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"inbox.md", "projects/deep/Plan.MD", "projects/garden.md"}, files)
}

func TestReadWrite(t *testing.T) {
	v, fsys := memVault(t, map[string]string{"a.md": "old"})

	require.NoError(t, v.Write("a.md", "new"))
	got, err := v.Read("a.md")
	require.NoError(t, err)
	assert.Equal(t, "new", got)

	require.NoError(t, v.Write("archive/2026/a.md", "archived"))
	data, err := afero.ReadFile(fsys, "/vault/archive/2026/a.md")
	require.NoError(t, err)
	assert.Equal(t, "archived", string(data))

	entries, err := afero.ReadDir(fsys, "/vault")
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp", "temp files must not be left behind")
	}
}

func TestWrite_KeepsMode(t *testing.T) {
	v, fsys := memVault(t, nil)
	require.NoError(t, afero.WriteFile(fsys, "/vault/private.md", []byte("x"), 0o600))

	require.NoError(t, v.Write("private.md", "y"))

	info, err := fsys.Stat("/vault/private.md")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestReadOrEmpty(t *testing.T) {
	v, _ := memVault(t, map[string]string{"a.md": "content"})

	got, ok, err := v.ReadOrEmpty("a.md")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "content", got)

	got, ok, err = v.ReadOrEmpty("missing.md")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestAbs(t *testing.T) {
	v := New(afero.NewMemMapFs(), "/vault")

	tests := []struct {
		rel     string
		want    string
		wantErr bool
	}{
		{rel: "a.md", want: "/vault/a.md"},
		{rel: "dir/../b.md", want: "/vault/b.md"},
		{rel: "./dir/c.md", want: "/vault/dir/c.md"},
		{rel: "../escape.md", wantErr: true},
		{rel: "dir/../../escape.md", wantErr: true},
		{rel: "/etc/passwd", wantErr: true},
		{rel: ".", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			got, err := v.Abs(tt.rel)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrOutsideVault)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestRel(t *testing.T) {
	v := New(afero.NewMemMapFs(), "/vault")

	got, err := v.Rel("/vault/projects/a.md")
	require.NoError(t, err)
	assert.Equal(t, "projects/a.md", got)

	_, err = v.Rel("/elsewhere/a.md")
	assert.ErrorIs(t, err, ErrOutsideVault)
}

func TestWithExt(t *testing.T) {
	assert.Equal(t, "inbox (archive).md", WithExt("inbox (archive)"))
	assert.Equal(t, "inbox.md", WithExt("inbox.md"))
	assert.True(t, IsMarkdown("Plan.MD"))
	assert.False(t, IsMarkdown("notes.txt"))
}

func TestNewOS(t *testing.T) {
	dir := t.TempDir()
	v, err := NewOS(dir)
	require.NoError(t, err)

	require.NoError(t, v.Write("sub/a.md", "hello"))
	data, err := os.ReadFile(filepath.Join(dir, "sub", "a.md"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = NewOS(filepath.Join(dir, "sub", "a.md"))
	assert.Error(t, err)
}
