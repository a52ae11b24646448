package line

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestReplyText(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody replyRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient("token123")
	c.SetAPIBase(srv.URL)

	if err := c.ReplyText(context.Background(), "rt_1", "收到"); err != nil {
		t.Fatalf("reply: %v", err)
	}
	if gotPath != "/v2/bot/message/reply" {
		t.Errorf("path = %s", gotPath)
	}
	if gotAuth != "Bearer token123" {
		t.Errorf("auth = %s", gotAuth)
	}
	if gotBody.ReplyToken != "rt_1" || len(gotBody.Messages) != 1 || gotBody.Messages[0].Text != "收到" {
		t.Errorf("body = %+v", gotBody)
	}
}

func TestPushImage(t *testing.T) {
	var gotBody pushRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient("token")
	c.SetAPIBase(srv.URL)

	msg := NewImageMessage("https://example.com/shot.png", "")
	if err := c.Push(context.Background(), "U123", msg); err != nil {
		t.Fatalf("push: %v", err)
	}
	if gotBody.To != "U123" {
		t.Errorf("to = %s", gotBody.To)
	}
	got := gotBody.Messages[0]
	if got.Type != "image" || got.PreviewImageURL != "https://example.com/shot.png" {
		t.Errorf("message = %+v", got)
	}
}

func TestReplyAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Invalid reply token"}`))
	}))
	defer srv.Close()

	c := NewClient("token")
	c.SetAPIBase(srv.URL)

	err := c.ReplyText(context.Background(), "expired", "hi")
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestReplyRequiresToken(t *testing.T) {
	c := NewClient("token")
	if err := c.ReplyText(context.Background(), "", "hi"); err == nil {
		t.Fatal("expected an error for empty reply token")
	}
}

func TestGetMessageContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/bot/message/m1/content" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "video/mp4")
		w.Write([]byte("binary-video-bytes"))
	}))
	defer srv.Close()

	c := NewClient("token")
	c.SetDataBase(srv.URL)

	rc, contentType, err := c.GetMessageContent(context.Background(), "m1")
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	defer rc.Close()

	if contentType != "video/mp4" {
		t.Errorf("content type = %s", contentType)
	}
	data, _ := io.ReadAll(rc)
	if string(data) != "binary-video-bytes" {
		t.Errorf("data = %q", data)
	}
}

func TestGetMessageContentNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not found"}`))
	}))
	defer srv.Close()

	c := NewClient("token")
	c.SetDataBase(srv.URL)

	if _, _, err := c.GetMessageContent(context.Background(), "missing"); err == nil {
		t.Fatal("expected an error")
	}
}
