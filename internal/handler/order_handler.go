package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/minsu/bakehouse/internal/middleware"
	"github.com/minsu/bakehouse/internal/model"
	"github.com/minsu/bakehouse/internal/repository"
)

// OrderHandler 는 주문의 HTTP 핸들러. 로그인 필수.
// 결제 연동은 범위 밖이므로 주문은 pending 상태로 생성된다.
type OrderHandler struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
}

// NewOrderHandler 는 OrderHandler를 생성한다.
func NewOrderHandler(orders repository.OrderRepository, products repository.ProductRepository) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		products: products,
	}
}

// orderItemRequest 는 주문 항목 한 줄.
type orderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// createOrderRequest 는 주문 생성 요청의 본문.
type createOrderRequest struct {
	Items     []orderItemRequest `json:"items"`
	AddressID string             `json:"addressId"`
	Memo      string             `json:"memo"`
}

// Create 는 주문을 생성한다.
// POST /api/orders
// 상품 정보는 클라이언트 제시 가격을 믿지 않고 저장소에서 다시 읽어
// 주문 시점 스냅샷으로 비정규화 저장한다.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("주문 항목이 비어 있습니다"))
		return
	}

	items := make([]model.OrderItem, 0, len(req.Items))
	var total int64
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			middleware.WriteErrorResponse(w, http.StatusBadRequest,
				model.NewValidationError(fmt.Sprintf("수량은 1 이상이어야 합니다: %s", item.ProductID)))
			return
		}
		product, err := h.products.FindByID(r.Context(), item.ProductID)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		if product == nil {
			middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewProductNotFoundError(item.ProductID))
			return
		}
		items = append(items, model.OrderItem{
			ProductID: product.ID,
			Name:      product.NameKorean,
			Price:     product.Price,
			Quantity:  item.Quantity,
		})
		total += product.Price * int64(item.Quantity)
	}

	order := &model.Order{
		ID:         uuid.New().String(),
		UID:        user.UID,
		Items:      items,
		TotalPrice: total,
		Status:     model.OrderPending,
		AddressID:  req.AddressID,
		Memo:       req.Memo,
	}
	if err := h.orders.Create(r.Context(), order); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// ListMine 은 자신의 주문 목록을 반환한다.
// GET /api/orders
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	orders, err := h.orders.ListByUID(r.Context(), user.UID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if orders == nil {
		orders = []*model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// InquiryHandler 는 고객 문의의 HTTP 핸들러.
// 작성은 공개이고 목록은 관리자 전용이다.
type InquiryHandler struct {
	inquiries repository.InquiryRepository
}

// NewInquiryHandler 는 InquiryHandler를 생성한다.
func NewInquiryHandler(inquiries repository.InquiryRepository) *InquiryHandler {
	return &InquiryHandler{inquiries: inquiries}
}

// inquiryRequest 는 문의 작성 요청의 본문.
type inquiryRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Create 는 문의를 접수한다. 비로그인도 가능하며, 로그인 상태면 uid를 함께 기록한다.
// POST /api/inquiries
func (h *InquiryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req inquiryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Message) == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("이메일과 문의 내용은 필수입니다"))
		return
	}

	inquiry := &model.Inquiry{
		ID:      uuid.New().String(),
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	}
	if user, err := middleware.UserFromContext(r.Context()); err == nil {
		inquiry.UID = user.UID
	}

	if err := h.inquiries.Create(r.Context(), inquiry); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inquiry)
}

// List 는 문의 목록을 반환한다. 관리자 전용.
// GET /api/inquiries
func (h *InquiryHandler) List(w http.ResponseWriter, r *http.Request) {
	inquiries, err := h.inquiries.List(r.Context(), 100)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if inquiries == nil {
		inquiries = []*model.Inquiry{}
	}
	writeJSON(w, http.StatusOK, inquiries)
}
