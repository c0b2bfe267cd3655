package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minsu/bakehouse/internal/middleware"
)

// RouterDeps 는 NewRouter에 필요한 의존성을 묶은 구조체.
type RouterDeps struct {
	// 미들웨어 의존
	Resolver          middleware.CredentialResolver
	UserFinder        middleware.UserFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	Logger            *slog.Logger
	OnStatus          middleware.StatusRecorderFunc

	// 인증
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 상품
	ProductHandler *ProductHandler

	// 이미지
	GalleryService GalleryServiceInterface

	// 프로필/주문/문의
	ProfileHandler *ProfileHandler
	OrderHandler   *OrderHandler
	InquiryHandler *InquiryHandler

	// 이용자
	WithdrawService  WithdrawServiceInterface
	AdminUserHandler *AdminUserHandler

	// 메일
	EmailHandler *EmailHandler
}

// NewRouter 는 전체 API 엔드포인트의 라우팅과 미들웨어 체인을 구성한 chi.Router를 반환한다.
//
// 미들웨어 스택의 실행 순서:
//
//	CORS → SecurityHeaders → Logging → Recovery → Auth(자격 해석) → CSRF
//
// 자격 해석은 전 라우트 공통이며, 보호는 RequireAuth / AdminMiddleware가
// 라우트 그룹 단위로 담당한다.
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.OnStatus))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewAuthMiddleware(deps.Resolver))
	r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	imageHandler := NewImageHandler(deps.GalleryService)
	userHandler := NewUserHandler(deps.WithdrawService, deps.AuthConfig)

	// --- 공개 라우트 ---

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// 인증 라우트 (OAuth 플로)
	r.Route("/auth", func(r chi.Router) {
		r.Get("/{provider}/login", authHandler.Login)
		r.Get("/{provider}/callback", authHandler.Callback)
		r.Post("/{provider}/custom-token", authHandler.CustomToken)
		r.Post("/session", authHandler.Session)
		r.Post("/logout", authHandler.Logout)

		r.With(middleware.RequireAuth()).Get("/me", authHandler.Me)
	})

	// 상품 열람과 문의 작성은 비로그인도 가능
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/products", deps.ProductHandler.List)
		r.Get("/api/products/{id}", deps.ProductHandler.Get)
		r.Post("/api/inquiries", deps.InquiryHandler.Create)
	})

	// --- 로그인 필수 라우트 ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 프로필/배송지
		r.Route("/api/profile", func(r chi.Router) {
			r.Get("/", deps.ProfileHandler.Get)
			r.Put("/settings", deps.ProfileHandler.UpdateSettings)
			r.Put("/contact", deps.ProfileHandler.UpdateContact)

			r.Route("/addresses", func(r chi.Router) {
				r.Post("/", deps.ProfileHandler.AddAddress)
				r.Put("/{id}", deps.ProfileHandler.UpdateAddress)
				r.Delete("/{id}", deps.ProfileHandler.RemoveAddress)
			})
		})

		// 주문
		r.Route("/api/orders", func(r chi.Router) {
			r.Post("/", deps.OrderHandler.Create)
			r.Get("/", deps.OrderHandler.ListMine)
		})

		// 탈퇴
		r.Delete("/api/users/me", userHandler.Withdraw)

		// 메일 발송은 전용 레이트 리밋 버킷을 추가로 거친다
		r.With(deps.RateLimiter.EmailMiddleware()).Post("/api/send-email", deps.EmailHandler.Send)
	})

	// --- 관리자 전용 라우트 ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())
		r.Use(middleware.NewAdminMiddleware(deps.UserFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 상품 관리
		r.Post("/api/products", deps.ProductHandler.Create)
		r.Put("/api/products/{id}", deps.ProductHandler.Update)
		r.Delete("/api/products/{id}", deps.ProductHandler.Delete)

		// 이미지 관리
		r.Route("/api/images", func(r chi.Router) {
			r.Post("/upload", imageHandler.Upload)
			r.Post("/import", imageHandler.Import)
			r.Delete("/*", imageHandler.Delete)
		})

		// 문의 열람
		r.Get("/api/inquiries", deps.InquiryHandler.List)

		// 이용자 관리
		r.Route("/api/admin", func(r chi.Router) {
			r.Get("/users", deps.AdminUserHandler.List)
			r.Put("/users/{uid}/admin", deps.AdminUserHandler.SetAdmin)
			r.Get("/logs", deps.AdminUserHandler.Logs)
		})
	})

	return r
}
