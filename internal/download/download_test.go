package download

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func fastDownloader(retries int) *Downloader {
	return New(WithRetries(retries), WithBackoff(time.Millisecond))
}

func TestDownloadToFile_Status(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantErr    bool
		wantCalls  int32
	}{
		{"ok", http.StatusOK, "apk bytes", false, 1},
		{"not found is permanent", http.StatusNotFound, "nope", true, 1},
		{"server error is retried", http.StatusInternalServerError, "boom", true, 3},
		{"throttled is retried", http.StatusTooManyRequests, "slow down", true, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				if got := r.Header.Get("User-Agent"); got != DefaultUserAgent {
					t.Errorf("User-Agent = %q", got)
				}
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			dest := filepath.Join(t.TempDir(), "engine.apk")
			err := fastDownloader(2).DownloadToFile(context.Background(), server.URL, dest)

			if calls.Load() != tt.wantCalls {
				t.Errorf("server saw %d requests, want %d", calls.Load(), tt.wantCalls)
			}
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				var se *StatusError
				if !errors.As(err, &se) || se.Code != tt.statusCode {
					t.Errorf("err = %v, want StatusError %d", err, tt.statusCode)
				}
				if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
					t.Error("failed download left a destination file")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			content, err := os.ReadFile(dest)
			if err != nil {
				t.Fatal(err)
			}
			if string(content) != tt.body {
				t.Errorf("content = %q, want %q", content, tt.body)
			}
		})
	}
}

func TestDownloadToFile_RetryThenSucceed(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("third time"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "engine.apk")
	if err := fastDownloader(3).DownloadToFile(context.Background(), server.URL, dest); err != nil {
		t.Fatalf("expected success after retries: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("attempts = %d, want 3", calls.Load())
	}
}

func TestDownloadToFile_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := fastDownloader(3).DownloadToFile(ctx, server.URL, filepath.Join(t.TempDir(), "x"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestDownloadToFile_Redirects(t *testing.T) {
	tests := []struct {
		name    string
		hops    int
		wantErr bool
	}{
		{"three hops", 3, false},
		{"at limit", MaxRedirects - 1, false},
		{"over limit", MaxRedirects + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var n int
				fmt.Sscanf(r.URL.Path, "/hop-%d", &n)
				if n < tt.hops {
					http.Redirect(w, r, fmt.Sprintf("/hop-%d", n+1), http.StatusFound)
					return
				}
				w.Write([]byte("landed"))
			}))
			defer server.Close()

			dest := filepath.Join(t.TempDir(), "engine.apk")
			err := fastDownloader(0).DownloadToFile(context.Background(), server.URL+"/hop-0", dest)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDownloadToFile_ReplacesExisting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("new"))
	}))
	defer server.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "nested", "engine.apk")
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dest, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := fastDownloader(0).DownloadToFile(context.Background(), server.URL, dest); err != nil {
		t.Fatal(err)
	}
	content, _ := os.ReadFile(dest)
	if string(content) != "new" {
		t.Errorf("content = %q, want new", content)
	}

	entries, _ := os.ReadDir(filepath.Dir(dest))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("apk"))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "downloads")
	got, err := fastDownloader(0).Fetch(context.Background(), server.URL+"/releases/xashdroid-64.apk", dir)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "xashdroid-64.apk"); got != want {
		t.Errorf("Fetch() = %q, want %q", got, want)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://github.com/FWGS/xash3d-android-project/releases/download/continuous/xashdroid-32.apk", "xashdroid-32.apk", false},
		{"https://example.org/a/b.apk?token=1", "b.apk", false},
		{"https://example.org/", "", true},
		{"https://example.org", "", true},
		{"://bad", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := FileName(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FileName() = %q, want %q", got, tt.want)
			}
		})
	}
}
