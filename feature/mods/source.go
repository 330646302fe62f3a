package mods

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"mod-loader/core/archive"
	"mod-loader/core/storage"

	"github.com/minio/minio-go/v7"
	"golang.org/x/sync/singleflight"
)

// Source yields the archives taking part in a load cycle.
type Source interface {
	// Name describes the source in logs.
	Name() string
	// List returns the archive locations the source can open.
	List(ctx context.Context) ([]string, error)
	// Open opens one listed archive.
	Open(ctx context.Context, location string) (*archive.Archive, error)
}

// IsArchiveName reports whether name has an archive extension.
func IsArchiveName(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".ztd", ".zip":
		return true
	}
	return false
}

// DirSource reads archives from a local directory. Subdirectories are not scanned.
type DirSource struct {
	Dir string
}

// NewDirSource creates a source over dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir}
}

func (s *DirSource) Name() string {
	return s.Dir
}

// List returns the archive paths in dir. A missing directory yields nothing.
func (s *DirSource) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.Dir, err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || !IsArchiveName(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(s.Dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func (s *DirSource) Open(ctx context.Context, location string) (*archive.Archive, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return archive.Open(location)
}

type cachedObject struct {
	etag string
	data []byte
}

// BucketSource downloads archives from an object storage bucket. Downloads are cached by
// ETag so unchanged archives are fetched once across cycles.
type BucketSource struct {
	client storage.Client
	bucket string
	prefix string

	mu    sync.RWMutex
	etags map[string]string
	cache map[string]cachedObject
	sf    singleflight.Group
}

// NewBucketSource creates a source listing objects under prefix in bucket.
func NewBucketSource(client storage.Client, bucket, prefix string) *BucketSource {
	return &BucketSource{
		client: client,
		bucket: bucket,
		prefix: prefix,
		etags:  make(map[string]string),
		cache:  make(map[string]cachedObject),
	}
}

func (s *BucketSource) Name() string {
	return s.bucket + "/" + s.prefix
}

// List returns the archive object keys under the prefix. Cached downloads of objects that
// are gone or carry a new ETag are dropped.
func (s *BucketSource) List(ctx context.Context) ([]string, error) {
	var out []string
	etags := make(map[string]string)
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: s.prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s: %w", s.Name(), obj.Err)
		}
		if !IsArchiveName(obj.Key) {
			continue
		}
		out = append(out, obj.Key)
		etags[obj.Key] = obj.ETag
	}
	sort.Strings(out)

	s.mu.Lock()
	s.etags = etags
	for key, cached := range s.cache {
		if etag, ok := etags[key]; !ok || etag != cached.etag {
			delete(s.cache, key)
		}
	}
	s.mu.Unlock()
	return out, nil
}

// Open downloads the object unless the cached copy carries the listed ETag.
func (s *BucketSource) Open(ctx context.Context, location string) (*archive.Archive, error) {
	data, err := s.fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	return archive.OpenBytes(path.Base(location), data)
}

func (s *BucketSource) fetch(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	etag := s.etags[key]
	cached, ok := s.cache[key]
	s.mu.RUnlock()

	if ok && etag != "" && cached.etag == etag {
		return cached.data, nil
	}

	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		s.mu.RLock()
		cached, ok := s.cache[key]
		s.mu.RUnlock()
		if ok && etag != "" && cached.etag == etag {
			return cached.data, nil
		}

		obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", key, err)
		}
		defer obj.Close()

		data, err := io.ReadAll(obj)
		if err != nil {
			return nil, fmt.Errorf("download %s: %w", key, err)
		}

		s.mu.Lock()
		s.cache[key] = cachedObject{etag: etag, data: data}
		s.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// Publish uploads an archive under the source prefix, creating the bucket when needed.
// The archive must open cleanly so a broken upload never reaches other loaders.
func (s *BucketSource) Publish(ctx context.Context, name string, data []byte) (string, error) {
	if !IsArchiveName(name) {
		return "", fmt.Errorf("publish %s: not a .ztd or .zip archive", name)
	}
	arc, err := archive.OpenBytes(name, data)
	if err != nil {
		return "", fmt.Errorf("publish %s: %w", name, err)
	}
	_ = arc.Close()

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return "", fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return "", fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
	}

	key := s.prefix + path.Base(name)
	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/zip"})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	s.mu.Lock()
	s.cache[key] = cachedObject{etag: info.ETag, data: data}
	s.etags[key] = info.ETag
	s.mu.Unlock()
	return key, nil
}

// Unpublish removes an archive from the source prefix.
func (s *BucketSource) Unpublish(ctx context.Context, name string) error {
	key := s.prefix + path.Base(name)
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}

	s.mu.Lock()
	delete(s.cache, key)
	delete(s.etags, key)
	s.mu.Unlock()
	return nil
}

// Sources builds the configured sources: every directory in cfg.Dirs, then the bucket when
// remote loading is enabled and a client is available.
func Sources(cfg Config, client storage.Client, bucket string) []Source {
	var out []Source
	for _, dir := range cfg.Dirs {
		if dir = strings.TrimSpace(dir); dir != "" {
			out = append(out, NewDirSource(dir))
		}
	}
	if cfg.Remote && client != nil {
		out = append(out, NewBucketSource(client, bucket, cfg.RemotePrefix))
	}
	return out
}
