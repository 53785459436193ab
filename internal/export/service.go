// Package export stores combined audio in Cloud Storage for signed-in users.
package export

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"sort"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"pdf-to-sound-api/internal/audio"
	"pdf-to-sound-api/internal/metrics"
	"pdf-to-sound-api/internal/util"
)

type ExportService struct {
	BucketName   string
	SignedURLTTL time.Duration

	client gcsClient
	now    func() time.Time
	newID  func() string
}

func NewExportService(ctx context.Context, bucket string, signedURLTTL time.Duration, opts ...option.ClientOption) (*ExportService, error) {
	client, err := newGCSClientHook(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	if signedURLTTL <= 0 {
		signedURLTTL = time.Hour
	}
	return &ExportService{
		BucketName:   bucket,
		SignedURLTTL: signedURLTTL,
		client:       client,
		now:          time.Now,
		newID:        uuid.NewString,
	}, nil
}

func (s *ExportService) Close() error {
	return s.client.Close()
}

// Upload concatenates segments straight into a new object under the user's prefix.
func (s *ExportService) Upload(ctx context.Context, userID uint, title string, segments [][]byte) (*ExportResult, error) {
	if len(segments) == 0 {
		return nil, ErrNoAudioChunks
	}

	bkt := s.client.Bucket(s.BucketName)
	objectName := util.ExportObjectName(userID, title, s.newID(), s.now())

	w := bkt.Object(objectName).NewWriter(ctx, "audio/mpeg")
	n, err := audio.CombineTo(w, segments)
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("upload %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("upload %s: %w", objectName, err)
	}
	metrics.AddCombinedBytes(int(n))

	return &ExportResult{
		URL:       fmt.Sprintf("gs://%s/%s", s.BucketName, objectName),
		SignedURL: s.signedURL(bkt, objectName),
		Object:    objectName,
		Size:      n,
	}, nil
}

// List returns the user's exports, newest first.
func (s *ExportService) List(ctx context.Context, userID uint) ([]ExportItem, error) {
	bkt := s.client.Bucket(s.BucketName)

	items := []ExportItem{}
	it := bkt.Objects(ctx, &storage.Query{Prefix: util.ExportPrefix(userID) + "/"})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}

		items = append(items, ExportItem{
			Object:    attrs.Name,
			Name:      path.Base(attrs.Name),
			Size:      attrs.Size,
			CreatedAt: attrs.Created,
			SignedURL: s.signedURL(bkt, attrs.Name),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// signedURL returns "" when the credentials cannot sign.
func (s *ExportService) signedURL(bkt gcsBucket, object string) string {
	u, err := bkt.SignedURL(object, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: s.now().Add(s.SignedURLTTL),
	})
	if err != nil {
		log.Printf("sign url for %s: %v", object, err)
		return ""
	}
	return u
}
