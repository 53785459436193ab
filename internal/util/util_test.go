package util

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSanitizePart(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  My Book  ", "my_book"},
		{"Chapter #1: Intro!", "chapter_1_intro"},
		{"déjà-vu", "dj-vu"},
		{"???", "unknown"},
		{"", "unknown"},
		{strings.Repeat("a", 100), strings.Repeat("a", maxPartLength)},
	}
	for _, tt := range tests {
		if got := SanitizePart(tt.in); got != tt.want {
			t.Fatalf("SanitizePart(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExportObjectName(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	got := ExportObjectName(7, "My Book", "abc", now)
	want := "exports/7/20260304T050607_my_book_abc.mp3"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if !strings.HasPrefix(got, ExportPrefix(7)+"/") {
		t.Fatalf("expected prefix %q", ExportPrefix(7))
	}
}

func TestPublicGCSURL(t *testing.T) {
	if got := PublicGCSURL("b", "exports/1/x.mp3"); got != "https://storage.googleapis.com/b/exports/1/x.mp3" {
		t.Fatalf("unexpected url %q", got)
	}
}

func withReadFile(t *testing.T, fn func(string) ([]byte, error)) {
	t.Helper()
	old := readFile
	readFile = fn
	t.Cleanup(func() { readFile = old })
}

func TestGoogleClientOptions_EmptyPathUsesADC(t *testing.T) {
	opts, err := GoogleClientOptions(context.Background(), "")
	if err != nil || opts != nil {
		t.Fatalf("expected nil options and nil err, got %v %v", opts, err)
	}
}

func TestGoogleClientOptions_ReadError(t *testing.T) {
	withReadFile(t, func(string) ([]byte, error) { return nil, errors.New("missing") })

	if _, err := GoogleClientOptions(context.Background(), "/nope.json"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestGoogleClientOptions_InvalidJSON(t *testing.T) {
	withReadFile(t, func(string) ([]byte, error) { return []byte("{not json"), nil })

	if _, err := GoogleClientOptions(context.Background(), "/creds.json"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestGoogleClientOptions_AuthorizedUser(t *testing.T) {
	withReadFile(t, func(string) ([]byte, error) {
		return []byte(`{"type":"authorized_user","client_id":"id","client_secret":"secret","refresh_token":"rt"}`), nil
	})

	opts, err := GoogleClientOptions(context.Background(), "/creds.json")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(opts) != 1 {
		t.Fatalf("expected one option, got %d", len(opts))
	}
}
