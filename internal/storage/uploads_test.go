package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newIssuer(t *testing.T) *MinioIssuer {
	t.Helper()
	issuer, err := NewMinioIssuer(MinioOptions{
		Endpoint:  "localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio-secret",
		Bucket:    "videos",
		Region:    "us-east-1",
		TTL:       10 * time.Minute,
	})
	require.NoError(t, err)
	issuer.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return issuer
}

func TestIssueUploadURL(t *testing.T) {
	issuer := newIssuer(t)
	owner := uuid.New()

	ticket, err := issuer.IssueUploadURL(context.Background(), owner, KindVideo, "video/mp4; codecs=avc1")
	require.NoError(t, err)
	require.Equal(t, "PUT", ticket.Method)
	require.True(t, strings.HasPrefix(ticket.StorageID, "videos/"+owner.String()+"/"))
	require.True(t, strings.HasSuffix(ticket.StorageID, ".mp4"))
	require.Equal(t, time.Date(2026, 3, 1, 12, 10, 0, 0, time.UTC), ticket.ExpiresAt)

	u, err := url.Parse(ticket.UploadURL)
	require.NoError(t, err)
	require.Equal(t, "localhost:9000", u.Host)
	require.Equal(t, "/videos/"+ticket.StorageID, u.Path)
	require.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
	require.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestIssueUploadURLRejectsUnknownTypes(t *testing.T) {
	issuer := newIssuer(t)

	_, err := issuer.IssueUploadURL(context.Background(), uuid.New(), KindVideo, "image/png")
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = issuer.IssueUploadURL(context.Background(), uuid.New(), "audio", "audio/mpeg")
	require.ErrorIs(t, err, ErrUnsupportedType)

	ticket, err := issuer.IssueUploadURL(context.Background(), uuid.New(), KindThumbnail, "IMAGE/JPEG")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(ticket.StorageID, "thumbnails/"))
	require.True(t, strings.HasSuffix(ticket.StorageID, ".jpg"))
}
