package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/minsu/bakehouse/internal/middleware"
	"github.com/minsu/bakehouse/internal/model"
	"github.com/minsu/bakehouse/internal/repository"
	"github.com/minsu/bakehouse/internal/security"
)

// ProductHandler 는 상품 CRUD의 HTTP 핸들러.
// 목록/상세는 공개이고 생성/수정/삭제는 관리자 전용이다.
type ProductHandler struct {
	products  repository.ProductRepository
	sanitizer security.ContentSanitizerService
}

// NewProductHandler 는 ProductHandler를 생성한다.
func NewProductHandler(products repository.ProductRepository, sanitizer security.ContentSanitizerService) *ProductHandler {
	return &ProductHandler{
		products:  products,
		sanitizer: sanitizer,
	}
}

// productRequest 는 상품 생성/수정 요청의 본문.
type productRequest struct {
	Name          string   `json:"name"`
	NameKorean    string   `json:"nameKorean"`
	Description   string   `json:"description"`
	Price         int64    `json:"price"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	Image         string   `json:"image"`
	Images        []string `json:"images"`
	DetailImage   string   `json:"detailImage"`
	DetailContent string   `json:"detailContent"`
	IsBestseller  bool     `json:"isBestseller"`
	IsNew         bool     `json:"isNew"`
	IsPopular     bool     `json:"isPopular"`
}

// validate 는 서버 측 상품 제한을 검사한다.
// 제한 초과는 잘라내지 않고 필드 단위 에러로 거부한다.
func (req *productRequest) validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return model.NewValidationError("상품명이 비어 있습니다")
	}
	if req.Price <= 0 {
		return model.NewValidationError("가격은 0보다 커야 합니다")
	}
	if !model.ProductCategory(req.Category).Valid() {
		return model.NewValidationError(fmt.Sprintf("알 수 없는 분류입니다: %s", req.Category))
	}
	if len(req.Tags) > model.MaxProductTags {
		return model.NewValidationError(fmt.Sprintf("태그는 최대 %d개입니다", model.MaxProductTags))
	}
	if len(req.Images) > model.MaxGalleryImages {
		return model.NewValidationError(fmt.Sprintf("갤러리 이미지는 최대 %d장입니다", model.MaxGalleryImages))
	}
	if utf8.RuneCountInString(req.Description) > model.MaxDescriptionLength {
		return model.NewValidationError(fmt.Sprintf("설명은 최대 %d자입니다", model.MaxDescriptionLength))
	}
	return nil
}

// List 는 상품 목록을 반환한다.
// GET /api/products?category=regular&bestseller=true
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.ProductFilter{
		Bestseller: r.URL.Query().Get("bestseller") == "true",
		New:        r.URL.Query().Get("new") == "true",
		Popular:    r.URL.Query().Get("popular") == "true",
	}
	if category := r.URL.Query().Get("category"); category != "" {
		pc := model.ProductCategory(category)
		if !pc.Valid() {
			middleware.WriteErrorResponse(w, http.StatusBadRequest,
				model.NewValidationError(fmt.Sprintf("알 수 없는 분류입니다: %s", category)))
			return
		}
		filter.Category = pc
	}

	products, err := h.products.List(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if products == nil {
		products = []*model.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// Get 은 상품 상세를 반환한다.
// GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.products.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if product == nil {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewProductNotFoundError(id))
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Create 는 상품을 등록한다. 관리자 전용.
// POST /api/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		handleServiceError(w, err)
		return
	}

	now := time.Now()
	product := &model.Product{
		ID:            uuid.New().String(),
		Name:          req.Name,
		NameKorean:    req.NameKorean,
		Description:   req.Description,
		Price:         req.Price,
		Category:      model.ProductCategory(req.Category),
		Tags:          req.Tags,
		Image:         req.Image,
		Images:        req.Images,
		DetailImage:   req.DetailImage,
		DetailContent: h.sanitizer.Sanitize(req.DetailContent),
		IsBestseller:  req.IsBestseller,
		IsNew:         req.IsNew,
		IsPopular:     req.IsPopular,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if product.Tags == nil {
		product.Tags = []string{}
	}
	if product.Images == nil {
		product.Images = []string{}
	}

	if err := h.products.Create(r.Context(), product); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// Update 는 상품을 수정한다. 관리자 전용.
// PUT /api/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		handleServiceError(w, err)
		return
	}

	existing, err := h.products.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if existing == nil {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewProductNotFoundError(id))
		return
	}

	existing.Name = req.Name
	existing.NameKorean = req.NameKorean
	existing.Description = req.Description
	existing.Price = req.Price
	existing.Category = model.ProductCategory(req.Category)
	existing.Tags = req.Tags
	existing.Image = req.Image
	existing.Images = req.Images
	existing.DetailImage = req.DetailImage
	existing.DetailContent = h.sanitizer.Sanitize(req.DetailContent)
	existing.IsBestseller = req.IsBestseller
	existing.IsNew = req.IsNew
	existing.IsPopular = req.IsPopular
	existing.UpdatedAt = time.Now()

	if err := h.products.Update(r.Context(), existing); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

// Delete 는 상품을 삭제한다. 관리자 전용.
// DELETE /api/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.products.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if existing == nil {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewProductNotFoundError(id))
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
