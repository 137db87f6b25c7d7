package fs

import (
	i_fs "io/fs"
	"os"
	"path/filepath"
)

// FS is the file system the declaration loader reads from.
// Tests swap it for an in-memory tree.
type FS interface {
	Stat(name string) (i_fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WalkDir(root string, fn i_fs.WalkDirFunc) error
}

// osFS implements FS using the underlying os package.
type osFS struct{}

// NewOSFS creates a new osFS instance.
func NewOSFS() FS {
	return &osFS{}
}

func (f *osFS) Stat(name string) (i_fs.FileInfo, error) {
	return os.Stat(name)
}

func (f *osFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (f *osFS) WalkDir(root string, fn i_fs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}

// ioFS adapts an io/fs.FS, such as testing/fstest.MapFS or an embed.FS.
// Names use forward slashes and are relative to the root of fsys.
type ioFS struct {
	fsys i_fs.FS
}

// FromIOFS wraps fsys as an FS.
func FromIOFS(fsys i_fs.FS) FS {
	return &ioFS{fsys: fsys}
}

func (f *ioFS) Stat(name string) (i_fs.FileInfo, error) {
	return i_fs.Stat(f.fsys, name)
}

func (f *ioFS) ReadFile(name string) ([]byte, error) {
	return i_fs.ReadFile(f.fsys, name)
}

func (f *ioFS) WalkDir(root string, fn i_fs.WalkDirFunc) error {
	return i_fs.WalkDir(f.fsys, root, fn)
}
