package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStorePut(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "http://localhost:8080/static/")
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}

	url, err := store.Put(context.Background(), []byte("png-bytes"), "generated/rec-1/v01-1700000000000.png", "image/png")
	if err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if url != "http://localhost:8080/static/generated/rec-1/v01-1700000000000.png" {
		t.Fatalf("unexpected url %q", url)
	}
	got, err := os.ReadFile(filepath.Join(dir, "generated", "rec-1", "v01-1700000000000.png"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "png-bytes" {
		t.Fatalf("unexpected content %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "generated", "rec-1", "v01-1700000000000.png.part")); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	for _, key := range []string{"", "../escape.png", "a/../../escape.png", ".."} {
		if _, err := store.Put(context.Background(), []byte("x"), key, "image/png"); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
	if _, err := store.Put(context.Background(), nil, "ok.png", "image/png"); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestSanitizeKey(t *testing.T) {
	cases := map[string]string{
		"/generated/a.png":     "generated/a.png",
		"generated\\b\\c.png":   "generated/b/c.png",
		"./generated/./d.png":  "generated/d.png",
		"generated/x/../e.png": "generated/e.png",
	}
	for in, want := range cases {
		got, err := sanitizeKey(in)
		if err != nil {
			t.Fatalf("sanitizeKey(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("sanitizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFileStoreCancelledContext(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Put(ctx, []byte("x"), "a.png", "image/png"); err == nil {
		t.Fatal("expected context error")
	}
}

func TestFileStoreReadByURL(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "http://localhost:8080/static")
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	url, err := store.Put(context.Background(), []byte("jpeg"), "generated/rec-2/v02.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("Put error: %v", err)
	}
	data, err := store.Read(context.Background(), url)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if string(data) != "jpeg" {
		t.Fatalf("unexpected content %q", data)
	}

	for _, bad := range []string{
		"https://elsewhere.example.com/generated/rec-2/v02.jpg",
		"http://localhost:8080/static/../secrets",
	} {
		if _, err := store.Read(context.Background(), bad); err == nil {
			t.Fatalf("expected error for %s", bad)
		}
	}
}
