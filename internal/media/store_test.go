package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type stubS3 struct {
	lastInput *s3.PutObjectInput
	err       error
}

func (s *stubS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	s.lastInput = params
	if s.err != nil {
		return nil, s.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestPutStoresVideo(t *testing.T) {
	api := &stubS3{}
	store := NewVideoStore(api, "permit-videos")
	store.now = func() time.Time {
		return time.Date(2025, time.October, 3, 12, 0, 0, 0, time.UTC)
	}

	got, err := store.Put(context.Background(), "U123", "m1", strings.NewReader("bytes"), "video/mp4")
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	if got.Bucket != "permit-videos" {
		t.Errorf("bucket = %s", got.Bucket)
	}
	if got.Key != "videos/U123/2025-10/m1.mp4" {
		t.Errorf("key = %s", got.Key)
	}
	if *api.lastInput.ContentType != "video/mp4" {
		t.Errorf("content type = %v", api.lastInput.ContentType)
	}

	data, _ := io.ReadAll(api.lastInput.Body)
	if string(data) != "bytes" {
		t.Errorf("body = %q", data)
	}
}

func TestPutDisabledStore(t *testing.T) {
	store := NewVideoStore(nil, "")
	_, err := store.Put(context.Background(), "U1", "m1", strings.NewReader(""), "")
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("err = %v, want ErrDisabled", err)
	}
}

func TestPutUploadFailure(t *testing.T) {
	store := NewVideoStore(&stubS3{err: errors.New("denied")}, "bucket")
	_, err := store.Put(context.Background(), "U1", "m1", strings.NewReader("x"), "video/mp4")
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestPutRequiresIdentifiers(t *testing.T) {
	store := NewVideoStore(&stubS3{}, "bucket")
	if _, err := store.Put(context.Background(), "", "m1", strings.NewReader("x"), ""); err == nil {
		t.Fatal("expected an error for empty user id")
	}
}
