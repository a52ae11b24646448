// Package media stores uploaded performance videos in S3 so the
// downstream automation service can attach them to submissions.
package media

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// VideoStore writes video content under a per-user, per-message key so
// repeated uploads never clobber each other.
type VideoStore struct {
	api    s3PutAPI
	bucket string
	now    func() time.Time
}

// NewVideoStore creates a store targeting the given bucket. A nil api
// or empty bucket yields a disabled store: Put reports ErrDisabled and
// the conversation degrades to the default video.
func NewVideoStore(api s3PutAPI, bucket string) *VideoStore {
	return &VideoStore{api: api, bucket: bucket, now: time.Now}
}

// ErrDisabled signals that video storage is not configured.
var ErrDisabled = fmt.Errorf("media: video storage is not configured")

// StoredVideo describes a persisted upload.
type StoredVideo struct {
	Bucket   string
	Key      string
	StoredAt time.Time
}

// Put streams one uploaded video into the bucket.
func (s *VideoStore) Put(ctx context.Context, userID, messageID string, body io.Reader, contentType string) (*StoredVideo, error) {
	if s == nil || s.api == nil || s.bucket == "" {
		return nil, ErrDisabled
	}
	if userID == "" || messageID == "" {
		return nil, fmt.Errorf("media: user id and message id are required")
	}

	storedAt := s.now()
	key := fmt.Sprintf("videos/%s/%s/%s.mp4", userID, storedAt.Format("2006-01"), messageID)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.api.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("media: failed to store video: %w", err)
	}

	return &StoredVideo{
		Bucket:   s.bucket,
		Key:      key,
		StoredAt: storedAt,
	}, nil
}
