package media

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/minsu/bakehouse/internal/model"
)

// pngHeader 는 image/png로 스니프되는 최소 바이트열.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type mockMediaMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func newMockMediaMetrics() *mockMediaMetrics {
	return &mockMediaMetrics{outcomes: make(map[string]int)}
}

func (m *mockMediaMetrics) RecordUpload(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[outcome]++
}

type passthroughFetcher struct {
	validateErr error
}

func (f *passthroughFetcher) NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client {
	return &http.Client{Timeout: timeout}
}

func (f *passthroughFetcher) ValidateURL(rawURL string) error { return f.validateErr }

func pngFile(name string) File {
	body := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 600)...)
	return File{Name: name, Size: int64(len(body)), Body: bytes.NewReader(body)}
}

func TestUploadOneRejectsOversizedFile(t *testing.T) {
	g := NewGalleryUploader(NewMockUploader(), &passthroughFetcher{}, newMockMediaMetrics())

	f := File{Name: "huge.jpg", Size: MaxUploadBytes + 1, Body: bytes.NewReader(pngHeader)}
	_, err := g.UploadOne(context.Background(), f)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUploadTooLarge {
		t.Fatalf("expected UPLOAD_TOO_LARGE, got %v", err)
	}
}

func TestUploadOneRejectsNonImage(t *testing.T) {
	g := NewGalleryUploader(NewMockUploader(), &passthroughFetcher{}, newMockMediaMetrics())

	body := []byte("<html><body>not an image</body></html>")
	f := File{Name: "page.html", Size: int64(len(body)), Body: bytes.NewReader(body)}
	_, err := g.UploadOne(context.Background(), f)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUploadNotImage {
		t.Fatalf("expected UPLOAD_NOT_IMAGE, got %v", err)
	}
}

func TestUploadOneAcceptsImage(t *testing.T) {
	metrics := newMockMediaMetrics()
	g := NewGalleryUploader(NewMockUploader(), &passthroughFetcher{}, metrics)

	result, err := g.UploadOne(context.Background(), pngFile("cake.png"))
	if err != nil {
		t.Fatalf("UploadOne failed: %v", err)
	}
	if result.PublicID == "" || result.URL == "" {
		t.Errorf("incomplete result: %+v", result)
	}
	if metrics.outcomes["ok"] != 1 {
		t.Errorf("expected 1 ok outcome, got %v", metrics.outcomes)
	}
}

func TestUploadAllIndependentOutcomes(t *testing.T) {
	metrics := newMockMediaMetrics()
	g := NewGalleryUploader(NewMockUploader(), &passthroughFetcher{}, metrics)

	files := []File{
		pngFile("one.png"),
		{Name: "bad.txt", Size: 10, Body: strings.NewReader("plain text")},
		pngFile("three.png"),
	}
	results := g.UploadAll(context.Background(), files)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Err != nil || results[0].Result == nil {
		t.Errorf("first file should succeed: %+v", results[0])
	}
	if results[1].Err == nil {
		t.Error("second file should fail validation")
	}
	if results[2].Err != nil || results[2].Result == nil {
		t.Errorf("third file should succeed despite sibling failure: %+v", results[2])
	}
}

func TestUploadAllCancelledContextFailsFiles(t *testing.T) {
	g := NewGalleryUploader(NewMockUploader(), &passthroughFetcher{}, newMockMediaMetrics())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := g.UploadAll(ctx, []File{pngFile("late.png")})
	if results[0].Err == nil {
		t.Error("upload after cancellation should not succeed")
	}
}

func TestCompensateDestroysUploadedFiles(t *testing.T) {
	uploader := NewMockUploader()
	metrics := newMockMediaMetrics()
	g := NewGalleryUploader(uploader, &passthroughFetcher{}, metrics)

	results := []FileResult{
		{Name: "ok.png", Result: &UploadResult{PublicID: "products/ok"}},
		{Name: "failed.png", Err: errors.New("boom")},
	}
	g.compensate(results)

	if !results[0].Compensated {
		t.Error("uploaded file must be compensated")
	}
	if results[0].Result != nil {
		t.Error("compensated result must be cleared")
	}
	if results[1].Compensated {
		t.Error("failed file must not be marked compensated")
	}
	uploader.mu.Lock()
	defer uploader.mu.Unlock()
	if len(uploader.destroyed) != 1 || uploader.destroyed[0] != "products/ok" {
		t.Errorf("expected destroy of products/ok, got %v", uploader.destroyed)
	}
	if metrics.outcomes["compensated"] != 1 {
		t.Errorf("expected compensated metric, got %v", metrics.outcomes)
	}
}

func TestImportFromURLBlockedBySSRFGuard(t *testing.T) {
	g := NewGalleryUploader(NewMockUploader(), &passthroughFetcher{
		validateErr: errors.New("blocked IP address"),
	}, newMockMediaMetrics())

	_, err := g.ImportFromURL(context.Background(), "http://169.254.169.254/meta")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeSSRFBlocked {
		t.Fatalf("expected SSRF_BLOCKED, got %v", err)
	}
}

func TestImportFromURLUploadsFetchedImage(t *testing.T) {
	body := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 600)...)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	g := NewGalleryUploader(NewMockUploader(), &passthroughFetcher{}, newMockMediaMetrics())

	result, err := g.ImportFromURL(context.Background(), srv.URL+"/cake.png")
	if err != nil {
		t.Fatalf("ImportFromURL failed: %v", err)
	}
	if result.PublicID == "" {
		t.Error("expected a public ID")
	}
}

func TestImportFromURLRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	g := NewGalleryUploader(NewMockUploader(), &passthroughFetcher{}, newMockMediaMetrics())

	if _, err := g.ImportFromURL(context.Background(), srv.URL+"/missing.png"); err == nil {
		t.Fatal("expected error for 404 source")
	}
}

func TestImportFromURLRejectsChunkedOversizeSource(t *testing.T) {
	payload := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, MaxUploadBytes+4096)...)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Content-Length 미지정으로 청크 전송이 되어 사전 크기 검사를 지나친다
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	uploader := NewMockUploader()
	metrics := newMockMediaMetrics()
	g := NewGalleryUploader(uploader, &passthroughFetcher{}, metrics)

	_, err := g.ImportFromURL(context.Background(), srv.URL+"/huge.png")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUploadTooLarge {
		t.Fatalf("expected UPLOAD_TOO_LARGE for oversize chunked source, got %v", err)
	}
	if metrics.outcomes["ok"] != 0 {
		t.Errorf("truncated image must not be uploaded as ok, got %v", metrics.outcomes)
	}
}

func TestImportFromURLRejectsDeclaredOversizeSource(t *testing.T) {
	payload := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, MaxUploadBytes)...)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	g := NewGalleryUploader(NewMockUploader(), &passthroughFetcher{}, newMockMediaMetrics())

	_, err := g.ImportFromURL(context.Background(), srv.URL+"/big.png")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUploadTooLarge {
		t.Fatalf("expected UPLOAD_TOO_LARGE for declared oversize source, got %v", err)
	}
}

func TestImportFromURLAcceptsExactLimitSource(t *testing.T) {
	payload := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, MaxUploadBytes-len(pngHeader))...)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	g := NewGalleryUploader(NewMockUploader(), &passthroughFetcher{}, newMockMediaMetrics())

	result, err := g.ImportFromURL(context.Background(), srv.URL+"/exact.png")
	if err != nil {
		t.Fatalf("exactly-at-limit source must import, got %v", err)
	}
	if result.Bytes != MaxUploadBytes {
		t.Errorf("uploaded bytes = %d, want %d (no truncation)", result.Bytes, MaxUploadBytes)
	}
}
