package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

var (
	// ErrNotFound is returned when an archive or entry does not exist.
	ErrNotFound = errors.New("not found")
	// ErrCorrupt is returned when an archive or entry cannot be decoded.
	ErrCorrupt = errors.New("corrupt archive")
)

// Archive is an opened zip container.
type Archive struct {
	name    string
	closer  io.Closer
	entries []*Entry
	index   map[string]*Entry
}

// Entry is one file inside an archive.
type Entry struct {
	archive *Archive
	name    string
	file    *zip.File
}

// Open opens the archive at path.
func Open(path string) (*Archive, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w: %v", path, ErrCorrupt, err)
	}
	return build(filepath.Base(path), &rc.Reader, rc), nil
}

// OpenBytes opens an archive held in memory, such as one downloaded from a bucket.
func OpenBytes(name string, data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", name, ErrCorrupt, err)
	}
	return build(name, zr, nil), nil
}

func build(name string, zr *zip.Reader, closer io.Closer) *Archive {
	a := &Archive{
		name:   name,
		closer: closer,
		index:  make(map[string]*Entry, len(zr.File)),
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		n := normalize(f.Name)
		e := &Entry{archive: a, name: n, file: f}
		if _, dup := a.index[strings.ToLower(n)]; dup {
			continue
		}
		a.entries = append(a.entries, e)
		a.index[strings.ToLower(n)] = e
	}
	return a
}

func normalize(name string) string {
	return strings.TrimPrefix(strings.ReplaceAll(name, "\\", "/"), "/")
}

// Name returns the file name of the archive.
func (a *Archive) Name() string {
	return a.name
}

// Entries lists the file entries in container order.
func (a *Archive) Entries() []string {
	names := make([]string, len(a.entries))
	for i, e := range a.entries {
		names[i] = e.name
	}
	return names
}

// Entry looks up an entry by name.
func (a *Archive) Entry(name string) (*Entry, error) {
	e, ok := a.index[strings.ToLower(normalize(name))]
	if !ok {
		return nil, fmt.Errorf("%s in %s: %w", name, a.name, ErrNotFound)
	}
	return e, nil
}

// Has reports whether the archive contains name.
func (a *Archive) Has(name string) bool {
	_, ok := a.index[strings.ToLower(normalize(name))]
	return ok
}

// ReadFile reads an entry fully.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	e, err := a.Entry(name)
	if err != nil {
		return nil, err
	}
	return e.Read()
}

// Close releases the underlying file, if any.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Name returns the entry path with forward slashes.
func (e *Entry) Name() string {
	return e.name
}

// Archive returns the name of the archive holding the entry.
func (e *Entry) Archive() string {
	return e.archive.name
}

// Size returns the uncompressed size.
func (e *Entry) Size() int64 {
	return int64(e.file.UncompressedSize64)
}

// Read returns the full contents of the entry. A short read or checksum failure is ErrCorrupt.
func (e *Entry) Read() (data []byte, err error) {
	rc, err := e.file.Open()
	if err != nil {
		return nil, fmt.Errorf("read %s in %s: %w: %v", e.name, e.archive.name, ErrCorrupt, err)
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	size := e.Size()
	data, err = io.ReadAll(io.LimitReader(rc, size+1))
	if err != nil {
		return nil, fmt.Errorf("read %s in %s: %w: %v", e.name, e.archive.name, ErrCorrupt, err)
	}
	if int64(len(data)) != size {
		return nil, fmt.Errorf("read %s in %s: %w: got %d of %d bytes", e.name, e.archive.name, ErrCorrupt, len(data), size)
	}
	return data, nil
}

// Source adapts an entry to the resource store's lazy source.
type Source struct {
	*Entry
}

// Name reports the archive the entry came from.
func (s Source) Name() string {
	return s.Entry.Archive()
}
