// Package s3 provides a grid store driver for S3-compatible object
// storage. Collections exist as zero-byte marker objects with a
// trailing slash, the way most S3 browsers spell directories.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/mwantia/gridfs/store"
)

const dirContentType = "application/x-directory"

func init() {
	store.Register(&Driver{})
}

type Driver struct{}

func (*Driver) Name() string {
	return "s3"
}

func (*Driver) Connect(ctx context.Context, cfg store.Config) (store.Conn, error) {
	if cfg.Zone == "" {
		return nil, store.NewError(store.CodeInvalidName, "", errors.New("s3: missing zone"))
	}

	bucket := cfg.Option("bucket", "")
	if bucket == "" {
		return nil, store.NewError(store.CodeInvalidName, "", errors.New("s3: missing 'bucket' option"))
	}

	endpoint := cfg.Host
	if cfg.Port != 0 {
		endpoint = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Username, cfg.Credential, ""),
		Secure: cfg.Option("secure", "false") == "true",
	})
	if err != nil {
		return nil, store.NewError(store.CodeConnection, "", err)
	}

	conn := &Conn{client: client, bucket: bucket}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, wrap(err, "")
	}
	if !exists {
		return nil, store.NewError(store.CodeNotFound, bucket, errors.New("bucket does not exist"))
	}

	// The zone root marker exists from the first session on
	root := markerKey("/" + cfg.Zone)
	if _, err := client.StatObject(ctx, bucket, root, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code != "NoSuchKey" {
			return nil, wrap(err, "")
		}
		if _, err := client.PutObject(ctx, bucket, root, bytes.NewReader(nil), 0, minio.PutObjectOptions{
			ContentType: dirContentType,
		}); err != nil {
			return nil, wrap(err, "")
		}
	}

	return conn, nil
}

type Conn struct {
	client *minio.Client
	bucket string
}

func (c *Conn) Ping(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return store.NewError(store.CodeConnection, "", err)
	}
	if !exists {
		return store.NewError(store.CodeNotFound, c.bucket, errors.New("bucket does not exist"))
	}

	return nil
}

func (c *Conn) Close(ctx context.Context) error {
	return nil
}

func (c *Conn) GetCapabilities() *store.Capabilities {
	return &store.Capabilities{
		Capabilities: []store.Capability{
			store.CapabilityRangeRead,
			store.CapabilityServerCopy,
		},
	}
}

// objectKey maps a remote path onto a bucket key.
func objectKey(remote string) string {
	return strings.TrimPrefix(remote, "/")
}

// markerKey spells the collection marker for a remote path.
func markerKey(remote string) string {
	return objectKey(remote) + "/"
}

func parentOf(remote string) string {
	idx := strings.LastIndexByte(remote, '/')
	if idx <= 0 {
		return ""
	}

	return remote[:idx]
}

func isMarker(info minio.ObjectInfo) bool {
	return strings.HasSuffix(info.Key, "/") || info.ContentType == dirContentType
}

// wrap translates S3 API error codes; anything that never reached the
// API counts as a connection fault.
func wrap(err error, remote string) error {
	if err == nil {
		return nil
	}

	var serr *store.Error
	if errors.As(err, &serr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return store.NewError(store.CodeNotFound, remote, err)
	case "AccessDenied":
		return store.NewError(store.CodeAccessDenied, remote, err)
	case "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return store.NewError(store.CodeAuthFailed, remote, err)
	case "BucketNotEmpty":
		return store.NewError(store.CodeNotEmpty, remote, err)
	case "":
		return store.NewError(store.CodeConnection, remote, err)
	}

	return store.NewError(store.CodeUnknown, remote, err)
}
