package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/minsu/bakehouse/internal/model"
)

const (
	// MaxUploadBytes 는 파일당 업로드 상한.
	MaxUploadBytes = 10 << 20 // 10MB

	// maxConcurrentUploads 는 갤러리 배치의 동시 업로드 상한.
	maxConcurrentUploads = 4

	sniffLen = 512
)

// DefaultFolder 는 폴더 미지정 시 사용하는 CDN 상의 상품 이미지 폴더.
const DefaultFolder = "products"

// MetricsRecorder 는 업로드 결과 메트릭의 인터페이스.
type MetricsRecorder interface {
	RecordUpload(outcome string)
}

// SafeFetcher 는 URL 가져오기용 SSRF 방지 클라이언트의 인터페이스.
type SafeFetcher interface {
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client
	ValidateURL(rawURL string) error
}

// File 은 업로드할 하나의 파일.
type File struct {
	Name string
	Size int64
	Body io.Reader
}

// FileResult 는 파일별 업로드 결과.
// 배치 내 파일은 서로 독립적으로 성공/실패하며, 배치가 중단되면
// 이미 올라간 파일은 보상 삭제되고 Compensated가 기록된다.
type FileResult struct {
	Name        string        `json:"name"`
	Result      *UploadResult `json:"result,omitempty"`
	Err         error         `json:"-"`
	ErrMessage  string        `json:"error,omitempty"`
	Compensated bool          `json:"compensated,omitempty"`
}

// GalleryUploader 는 상품 갤러리 배치 업로드를 담당한다.
type GalleryUploader struct {
	uploader Uploader
	fetcher  SafeFetcher
	metrics  MetricsRecorder

	// Folder 는 업로드 대상 CDN 폴더. 빈 값이면 DefaultFolder.
	Folder string
}

// NewGalleryUploader 는 GalleryUploader를 생성한다.
func NewGalleryUploader(uploader Uploader, fetcher SafeFetcher, metrics MetricsRecorder) *GalleryUploader {
	return &GalleryUploader{uploader: uploader, fetcher: fetcher, metrics: metrics}
}

func (g *GalleryUploader) folder() string {
	if g.Folder == "" {
		return DefaultFolder
	}
	return g.Folder
}

// validate 는 업로드 전에 크기와 MIME을 검사하고, 스니프에 소비한
// 바이트를 되돌린 리더를 반환한다. MIME은 선두 512바이트의 내용으로
// 판정하며 클라이언트가 보낸 Content-Type은 신뢰하지 않는다.
func validate(f File) (io.Reader, error) {
	if f.Size > MaxUploadBytes {
		return nil, model.NewUploadTooLargeError(f.Name)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read upload head: %w", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, model.NewUploadNotImageError(f.Name)
	}

	return io.MultiReader(bytes.NewReader(head), io.LimitReader(f.Body, MaxUploadBytes)), nil
}

// UploadOne 은 단일 파일을 검증하고 업로드한다.
func (g *GalleryUploader) UploadOne(ctx context.Context, f File) (*UploadResult, error) {
	body, err := validate(f)
	if err != nil {
		g.metrics.RecordUpload("failed")
		return nil, err
	}
	result, err := g.uploader.Upload(ctx, body, g.folder())
	if err != nil {
		g.metrics.RecordUpload("failed")
		return nil, err
	}
	g.metrics.RecordUpload("ok")
	return result, nil
}

// UploadAll 은 갤러리 배치를 제한된 동시성으로 업로드한다.
//
// 파일별 결과는 독립적이다. 일부가 실패해도 나머지는 계속 진행되며,
// 각 파일의 성패가 FileResult로 보고된다. 단, 컨텍스트가 취소되어
// 배치 자체가 중단된 경우에는 이미 성공한 업로드를 보상 삭제해
// 고아 이미지를 남기지 않는다.
func (g *GalleryUploader) UploadAll(ctx context.Context, files []File) []FileResult {
	results := make([]FileResult, len(files))
	sem := make(chan struct{}, maxConcurrentUploads)
	var wg sync.WaitGroup

	for i, f := range files {
		wg.Add(1)
		go func(i int, f File) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i].Name = f.Name
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				results[i].ErrMessage = "업로드가 중단되었습니다."
				return
			}
			result, err := g.UploadOne(ctx, f)
			if err != nil {
				results[i].Err = err
				results[i].ErrMessage = err.Error()
				slog.Warn("gallery upload failed",
					slog.String("file", f.Name),
					slog.String("error", err.Error()),
				)
				return
			}
			results[i].Result = result
		}(i, f)
	}
	wg.Wait()

	if ctx.Err() != nil {
		g.compensate(results)
	}
	return results
}

// compensate 는 중단된 배치에서 이미 성공한 업로드를 삭제한다.
// 삭제는 원 컨텍스트와 분리된 짧은 컨텍스트로 수행한다.
func (g *GalleryUploader) compensate(results []FileResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for i := range results {
		if results[i].Result == nil {
			continue
		}
		if err := g.uploader.Destroy(ctx, results[i].Result.PublicID); err != nil {
			slog.Error("failed to compensate abandoned upload",
				slog.String("public_id", results[i].Result.PublicID),
				slog.String("error", err.Error()),
			)
			continue
		}
		g.metrics.RecordUpload("compensated")
		results[i].Compensated = true
		results[i].Result = nil
		results[i].ErrMessage = "배치 중단으로 업로드가 취소되었습니다."
	}
}

// ImportFromURL 은 외부 URL의 이미지를 가져와 CDN에 업로드한다.
// SSRF 가드의 사전 검증과 안전 클라이언트를 모두 통과해야 한다.
func (g *GalleryUploader) ImportFromURL(ctx context.Context, rawURL string) (*UploadResult, error) {
	if err := g.fetcher.ValidateURL(rawURL); err != nil {
		g.metrics.RecordUpload("failed")
		return nil, fmt.Errorf("%w: %v", errSSRFBlocked, err)
	}

	client := g.fetcher.NewSafeClient(30*time.Second, MaxUploadBytes)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build import request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		g.metrics.RecordUpload("failed")
		return nil, fmt.Errorf("%w: %v", errSSRFBlocked, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.metrics.RecordUpload("failed")
		return nil, fmt.Errorf("image source returned status %d", resp.StatusCode)
	}
	if resp.ContentLength > MaxUploadBytes {
		g.metrics.RecordUpload("failed")
		return nil, model.NewUploadTooLargeError(rawURL)
	}

	// 청크 응답은 ContentLength가 -1이라 사전 크기 검사를 통과한다.
	// 상한을 넘는 순간 에러를 내는 리더로 감싸 잘린 이미지가
	// 업로드되는 일을 막는다.
	return g.UploadOne(ctx, File{
		Name: rawURL,
		Size: resp.ContentLength,
		Body: &cappedReader{r: resp.Body, name: rawURL},
	})
}

// cappedReader 는 누적 읽기가 MaxUploadBytes를 초과하면 에러를 반환한다.
// io.LimitReader와 달리 초과분을 조용히 자르지 않는다.
type cappedReader struct {
	r    io.Reader
	read int64
	name string
}

func (c *cappedReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += int64(n)
	if c.read > MaxUploadBytes {
		return n, model.NewUploadTooLargeError(c.name)
	}
	return n, err
}

// Destroy 는 CDN의 이미지를 삭제한다.
func (g *GalleryUploader) Destroy(ctx context.Context, publicID string) error {
	return g.uploader.Destroy(ctx, publicID)
}

var errSSRFBlocked = model.NewSSRFBlockedError()
