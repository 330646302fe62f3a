// Package mocks holds a testify mock of storage.Client for bucket source tests.
package mocks

import (
	"bytes"
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/mock"
)

// Client records calls made against the archive bucket.
type Client struct {
	mock.Mock
}

// Listing returns a closed channel yielding objects, the way ListObjects streams a listing.
func Listing(objects ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(objects))
	for _, o := range objects {
		ch <- o
	}
	close(ch)
	return ch
}

// ExpectList makes the next listing of bucket return objects.
func (m *Client) ExpectList(bucket string, objects ...minio.ObjectInfo) *mock.Call {
	return m.On("ListObjects", mock.Anything, bucket, mock.Anything).Return(Listing(objects...)).Once()
}

// ExpectDownload serves data for exactly one GetObject of bucket/key.
func (m *Client) ExpectDownload(bucket, key string, data []byte) *mock.Call {
	return m.On("GetObject", mock.Anything, bucket, key, mock.Anything).
		Return(io.NopCloser(bytes.NewReader(data)), nil).Once()
}

func (m *Client) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *Client) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return m.Called(ctx, bucketName, opts).Error(0)
}

func (m *Client) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	info, _ := args.Get(0).(minio.UploadInfo)
	return info, args.Error(1)
}

func (m *Client) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

// ListObjects returns an empty listing when no channel was configured.
func (m *Client) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	if ch, ok := m.Called(ctx, bucketName, opts).Get(0).(<-chan minio.ObjectInfo); ok {
		return ch
	}
	return Listing()
}

func (m *Client) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return m.Called(ctx, bucketName, objectName, opts).Error(0)
}
