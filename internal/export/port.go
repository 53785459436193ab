package export

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"pdf-to-sound-api/internal/logs"
)

type ExportServiceAPI interface {
	Upload(ctx context.Context, userID uint, title string, segments [][]byte) (*ExportResult, error)
	List(ctx context.Context, userID uint) ([]ExportItem, error)
}

type LogServicePort interface {
	Log(log logs.SystemLog, payload interface{}) error
}

var (
	_ ExportServiceAPI = (*ExportService)(nil)
	_ LogServicePort   = (*logs.LogService)(nil)
)

type gcsClient interface {
	Bucket(name string) gcsBucket
	Close() error
}
type gcsBucket interface {
	Object(name string) gcsObject
	Objects(ctx context.Context, q *storage.Query) objectIterator
	SignedURL(object string, opts *storage.SignedURLOptions) (string, error)
}
type gcsObject interface {
	NewWriter(ctx context.Context, contentType string) io.WriteCloser
}
type objectIterator interface {
	Next() (*storage.ObjectAttrs, error)
}

type realGCSClient struct{ c *storage.Client }
type realGCSBucket struct{ b *storage.BucketHandle }
type realGCSObject struct{ o *storage.ObjectHandle }

func (r realGCSClient) Bucket(name string) gcsBucket { return realGCSBucket{b: r.c.Bucket(name)} }
func (r realGCSClient) Close() error                 { return r.c.Close() }
func (b realGCSBucket) Object(name string) gcsObject { return realGCSObject{o: b.b.Object(name)} }
func (b realGCSBucket) Objects(ctx context.Context, q *storage.Query) objectIterator {
	return b.b.Objects(ctx, q)
}
func (b realGCSBucket) SignedURL(object string, opts *storage.SignedURLOptions) (string, error) {
	return b.b.SignedURL(object, opts)
}
func (o realGCSObject) NewWriter(ctx context.Context, contentType string) io.WriteCloser {
	w := o.o.NewWriter(ctx)
	w.ContentType = contentType
	return w
}

var newGCSClientHook = func(ctx context.Context, opts ...option.ClientOption) (gcsClient, error) {
	c, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return realGCSClient{c: c}, nil
}
