package archivefs

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	"github.com/dendrascience/tabarchive/archive"
	"github.com/dendrascience/tabarchive/table"
	"github.com/taigrr/colorhash"
)

const (
	// ManifestName is the root entry exposing the archive manifest.
	ManifestName = "manifest.json"
	// TableExt is appended to each table key to form its file name.
	TableExt = ".csv"

	rootInode = 1
)

// FS is a read-only view of an archive file. The archive is reopened when
// its modification time changes, so conversions into a mounted archive show
// up without remounting.
type FS struct {
	Path string

	mu      sync.RWMutex
	reader  *archive.Reader
	modTime time.Time
}

// NewFS opens the archive at path.
func NewFS(path string) (*FS, error) {
	f := &FS{Path: path}
	if err := f.refresh(); err != nil {
		return nil, err
	}
	return f, nil
}

// Close releases the cached archive handle.
func (f *FS) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reader == nil {
		return nil
	}
	err := f.reader.Close()
	f.reader = nil
	return err
}

// refresh reopens the archive if its modification time changed. The old
// reader is closed under the write lock, so no view still uses it.
func (f *FS) refresh() error {
	fi, err := os.Stat(f.Path)
	if err != nil {
		return err
	}

	f.mu.RLock()
	fresh := f.reader != nil && fi.ModTime().Equal(f.modTime)
	f.mu.RUnlock()
	if fresh {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reader != nil && fi.ModTime().Equal(f.modTime) {
		return nil
	}
	r, err := archive.Open(f.Path)
	if err != nil {
		return err
	}
	if f.reader != nil {
		f.reader.Close()
	}
	f.reader = r
	f.modTime = fi.ModTime()
	return nil
}

// view runs fn with the current reader and its modification time. The
// reader stays open until fn returns; fn must not call back into f.
func (f *FS) view(fn func(r *archive.Reader, mtime time.Time) error) error {
	if err := f.refresh(); err != nil {
		return err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.reader == nil {
		return os.ErrClosed
	}
	return fn(f.reader, f.modTime)
}

// Root returns the root directory node.
func (f *FS) Root() (fs.Node, error) {
	return &Dir{fs: f}, nil
}

// Dir is the root directory: one CSV file per table plus the manifest.
type Dir struct {
	fs *FS
}

func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = rootInode
	a.Mode = os.ModeDir | 0o555
	mtime := d.fs.mtime()
	a.Mtime = mtime
	a.Ctime = mtime
	a.Atime = time.Now()
	return nil
}

// Lookup resolves manifest.json and <key>.csv.
func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	var found bool
	key, isTable := strings.CutSuffix(name, TableExt)
	err := d.fs.view(func(r *archive.Reader, _ time.Time) error {
		switch {
		case name == ManifestName:
			key, found = "", true
		case isTable:
			_, infoErr := r.Info(key)
			found = infoErr == nil
		}
		return nil
	})
	if err != nil {
		return nil, fuse.ToErrno(err)
	}
	if !found {
		return nil, syscall.ENOENT
	}
	return &File{fs: d.fs, name: name, key: key}, nil
}

func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	entries := []fuse.Dirent{{Inode: inodeFor(ManifestName), Name: ManifestName, Type: fuse.DT_File}}
	err := d.fs.view(func(r *archive.Reader, _ time.Time) error {
		for _, key := range r.Keys() {
			name := key + TableExt
			entries = append(entries, fuse.Dirent{Inode: inodeFor(name), Name: name, Type: fuse.DT_File})
		}
		return nil
	})
	if err != nil {
		return nil, fuse.ToErrno(err)
	}
	return entries, nil
}

func (d *Dir) Create(ctx context.Context, req *fuse.CreateRequest, resp *fuse.CreateResponse) (fs.Node, fs.Handle, error) {
	return nil, nil, syscall.EROFS
}

func (d *Dir) Mkdir(ctx context.Context, req *fuse.MkdirRequest) (fs.Node, error) {
	return nil, syscall.EROFS
}

func (d *Dir) Remove(ctx context.Context, req *fuse.RemoveRequest) error {
	return syscall.EROFS
}

func (d *Dir) Rename(ctx context.Context, req *fuse.RenameRequest, newDir fs.Node) error {
	return syscall.EROFS
}

// File renders a table as CSV, or the manifest as JSON when key is empty.
// The rendering is computed once per node and reused for Attr and ReadAll.
type File struct {
	fs   *FS
	name string
	key  string

	mu       sync.Mutex
	data     []byte
	rendered time.Time
}

func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	data, err := f.content()
	if err != nil {
		return fuse.ToErrno(err)
	}
	mtime := f.fs.mtime()
	a.Inode = inodeFor(f.name)
	a.Mode = 0o444
	a.Size = uint64(len(data))
	a.Mtime = mtime
	a.Ctime = mtime
	a.Atime = time.Now()
	return nil
}

func (f *File) ReadAll(ctx context.Context) ([]byte, error) {
	data, err := f.content()
	if err != nil {
		return nil, fuse.ToErrno(err)
	}
	return data, nil
}

func (f *File) Write(ctx context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	return syscall.EROFS
}

func (f *File) Setattr(ctx context.Context, req *fuse.SetattrRequest, resp *fuse.SetattrResponse) error {
	return syscall.EROFS
}

func (f *File) content() ([]byte, error) {
	var data []byte
	err := f.fs.view(func(r *archive.Reader, mtime time.Time) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.data == nil || !f.rendered.Equal(mtime) {
			rendered, err := render(r, f.key)
			if err != nil {
				return err
			}
			f.data = rendered
			f.rendered = mtime
		}
		data = f.data
		return nil
	})
	return data, err
}

func (f *FS) mtime() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.modTime
}

func render(r *archive.Reader, key string) ([]byte, error) {
	if key == "" {
		return json.MarshalIndent(r.Manifest(), "", "  ")
	}
	b, err := r.Read(key)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := table.WriteCSV(&buf, b, ','); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// inodeFor derives a stable inode from an entry name. Inode 1 is the root.
func inodeFor(name string) uint64 {
	n := uint64(colorhash.HashString(name))
	if n <= rootInode {
		n += rootInode + 1
	}
	return n
}
