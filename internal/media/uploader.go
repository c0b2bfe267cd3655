// Package media 는 상품 이미지의 CDN 업로드 파이프라인을 제공한다.
package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// UploadResult 는 CDN 업로드 결과.
type UploadResult struct {
	PublicID string `json:"publicId"`
	URL      string `json:"url"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Bytes    int    `json:"bytes,omitempty"`
}

// Uploader 는 CDN 업로드/삭제 인터페이스.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, folder string) (*UploadResult, error)
	Destroy(ctx context.Context, publicID string) error
}

// CloudinaryUploader 는 Cloudinary를 사용한 Uploader 구현.
type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryUploader 는 CLOUDINARY_URL 형식의 접속 문자열로 업로더를 생성한다.
func NewCloudinaryUploader(cloudinaryURL string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return &CloudinaryUploader{cld: cld}, nil
}

// Upload 는 이미지를 지정 폴더에 업로드한다.
func (u *CloudinaryUploader) Upload(ctx context.Context, r io.Reader, folder string) (*UploadResult, error) {
	resp, err := u.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:         folder,
		ResourceType:   "image",
		UniqueFilename: api.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary rejected upload: %s", resp.Error.Message)
	}
	return &UploadResult{
		PublicID: resp.PublicID,
		URL:      resp.SecureURL,
		Width:    resp.Width,
		Height:   resp.Height,
		Bytes:    resp.Bytes,
	}, nil
}

// Destroy 는 업로드된 이미지를 삭제한다.
func (u *CloudinaryUploader) Destroy(ctx context.Context, publicID string) error {
	resp, err := u.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to destroy %s: %w", publicID, err)
	}
	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy %s returned %q", publicID, resp.Result)
	}
	return nil
}

// compile-time interface check
var _ Uploader = (*CloudinaryUploader)(nil)

// MockUploader 는 자격 증명 없는 mock 모드용 업로더.
// 실제 업로드 없이 플레이스홀더 URL을 돌려주고 로그를 남긴다.
type MockUploader struct {
	mu        sync.Mutex
	destroyed []string
}

// NewMockUploader 는 MockUploader를 생성한다.
func NewMockUploader() *MockUploader {
	return &MockUploader{}
}

// Upload 는 입력을 소비하고 플레이스홀더 결과를 반환한다.
func (u *MockUploader) Upload(ctx context.Context, r io.Reader, folder string) (*UploadResult, error) {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload body: %w", err)
	}
	publicID := folder + "/mock-" + uuid.New().String()
	slog.Info("mock upload", slog.String("public_id", publicID), slog.Int64("bytes", n))
	return &UploadResult{
		PublicID: publicID,
		URL:      "https://mock.cdn.invalid/" + publicID,
		Bytes:    int(n),
	}, nil
}

// Destroy 는 삭제를 기록만 한다.
func (u *MockUploader) Destroy(ctx context.Context, publicID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.destroyed = append(u.destroyed, publicID)
	slog.Info("mock destroy", slog.String("public_id", publicID))
	return nil
}

// compile-time interface check
var _ Uploader = (*MockUploader)(nil)
