// Package storage issues presigned upload URLs for video and thumbnail
// bytes. The catalog only ever stores the returned object keys.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Kind string

const (
	KindVideo     Kind = "video"
	KindThumbnail Kind = "thumbnail"
)

var ErrUnsupportedType = errors.New("unsupported content type")

var extensions = map[Kind]map[string]string{
	KindVideo: {
		"video/mp4":       "mp4",
		"video/quicktime": "mov",
		"video/webm":      "webm",
	},
	KindThumbnail: {
		"image/jpeg": "jpg",
		"image/png":  "png",
		"image/webp": "webp",
	},
}

// Ticket is a single-use upload target. StorageID is what clients pass back
// as video_storage_id or thumbnail_storage_id.
type Ticket struct {
	StorageID string    `json:"storage_id"`
	UploadURL string    `json:"upload_url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UploadURLIssuer interface {
	IssueUploadURL(ctx context.Context, ownerID uuid.UUID, kind Kind, contentType string) (*Ticket, error)
}

type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	TTL       time.Duration
}

// MinioIssuer presigns PUT URLs against an S3-compatible bucket.
type MinioIssuer struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
	now    func() time.Time
}

func NewMinioIssuer(opts MinioOptions) (*MinioIssuer, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &MinioIssuer{client: client, bucket: opts.Bucket, ttl: ttl, now: time.Now}, nil
}

func (m *MinioIssuer) IssueUploadURL(ctx context.Context, ownerID uuid.UUID, kind Kind, contentType string) (*Ticket, error) {
	ext, err := extensionFor(kind, contentType)
	if err != nil {
		return nil, err
	}

	key := ObjectKey(ownerID, kind, ext)
	u, err := m.client.PresignedPutObject(ctx, m.bucket, key, m.ttl)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return &Ticket{
		StorageID: key,
		UploadURL: u.String(),
		Method:    "PUT",
		ExpiresAt: m.now().Add(m.ttl),
	}, nil
}

// ObjectKey lays objects out as <kind>s/<owner>/<random>.<ext>.
func ObjectKey(ownerID uuid.UUID, kind Kind, ext string) string {
	return fmt.Sprintf("%ss/%s/%s.%s", kind, ownerID, uuid.NewString(), ext)
}

func extensionFor(kind Kind, contentType string) (string, error) {
	types, ok := extensions[kind]
	if !ok {
		return "", fmt.Errorf("%w: unknown upload kind %q", ErrUnsupportedType, kind)
	}
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := types[mediaType]
	if !ok {
		return "", fmt.Errorf("%w: %q for %s", ErrUnsupportedType, contentType, kind)
	}
	return ext, nil
}
