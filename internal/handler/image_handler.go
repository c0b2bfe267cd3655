package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minsu/bakehouse/internal/media"
	"github.com/minsu/bakehouse/internal/middleware"
	"github.com/minsu/bakehouse/internal/model"
)

// maxUploadFormMemory 는 multipart 파싱 시 메모리에 올릴 상한.
const maxUploadFormMemory = 32 << 20 // 32MB

// GalleryServiceInterface 는 이미지 핸들러가 필요로 하는 서비스 인터페이스.
type GalleryServiceInterface interface {
	UploadAll(ctx context.Context, files []media.File) []media.FileResult
	ImportFromURL(ctx context.Context, rawURL string) (*media.UploadResult, error)
	Destroy(ctx context.Context, publicID string) error
}

// ImageHandler 는 상품 이미지 업로드/삭제의 HTTP 핸들러. 관리자 전용.
type ImageHandler struct {
	gallery GalleryServiceInterface
}

// NewImageHandler 는 ImageHandler를 생성한다.
func NewImageHandler(gallery GalleryServiceInterface) *ImageHandler {
	return &ImageHandler{gallery: gallery}
}

// uploadResponse 는 배치 업로드의 파일별 결과.
type uploadResponse struct {
	Results []media.FileResult `json:"results"`
	Failed  int                `json:"failed"`
}

// Upload 는 multipart 배치 업로드를 처리한다.
// POST /api/images/upload
// 파일별 결과를 돌려주며 일부 실패가 전체를 실패시키지 않는다.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadFormMemory); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("multipart 본문을 해석할 수 없습니다"))
		return
	}

	fileHeaders := r.MultipartForm.File["images"]
	if len(fileHeaders) == 0 {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("업로드할 파일이 없습니다"))
		return
	}
	if len(fileHeaders) > model.MaxGalleryImages {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("한 번에 업로드할 수 있는 이미지는 최대 4장입니다"))
		return
	}

	files := make([]media.File, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			middleware.WriteErrorResponse(w, http.StatusBadRequest,
				model.NewUploadFailedError(fh.Filename))
			return
		}
		defer f.Close()
		files = append(files, media.File{
			Name: fh.Filename,
			Size: fh.Size,
			Body: f,
		})
	}

	results := h.gallery.UploadAll(r.Context(), files)

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}

	status := http.StatusOK
	if failed == len(results) {
		status = http.StatusBadGateway
	} else if failed > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, uploadResponse{Results: results, Failed: failed})
}

// importRequest 는 URL 가져오기 요청의 본문.
type importRequest struct {
	URL string `json:"url"`
}

// Import 는 외부 URL의 이미지를 CDN으로 가져온다.
// POST /api/images/import
func (h *ImageHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.URL == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("url이 비어 있습니다"))
		return
	}

	result, err := h.gallery.ImportFromURL(r.Context(), req.URL)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// Delete 는 CDN의 이미지를 삭제한다.
// DELETE /api/images/{publicID}
// publicID는 폴더 구분자를 포함하므로 와일드카드 파라미터로 받는다.
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "*")
	if publicID == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("publicId가 비어 있습니다"))
		return
	}

	if err := h.gallery.Destroy(r.Context(), publicID); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
