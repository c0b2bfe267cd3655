// Package app 은 애플리케이션의 초기화와 기동을 담당한다.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/minsu/bakehouse/internal/auth"
	"github.com/minsu/bakehouse/internal/authstate"
	"github.com/minsu/bakehouse/internal/config"
	"github.com/minsu/bakehouse/internal/database"
	"github.com/minsu/bakehouse/internal/email"
	"github.com/minsu/bakehouse/internal/handler"
	"github.com/minsu/bakehouse/internal/logger"
	"github.com/minsu/bakehouse/internal/media"
	"github.com/minsu/bakehouse/internal/metrics"
	"github.com/minsu/bakehouse/internal/middleware"
	"github.com/minsu/bakehouse/internal/repository"
	"github.com/minsu/bakehouse/internal/security"
	"github.com/minsu/bakehouse/internal/token"
	"github.com/minsu/bakehouse/internal/user"
	"github.com/minsu/bakehouse/internal/worker/cleanup"
)

// Init 은 애플리케이션 초기화를 수행한다.
// 환경변수에서 Config를 읽고 JSON 구조화 로그를 셋업한다.
// writer가 지정되면 로그 출력처로 그 writer를 사용한다.
func Init(w io.Writer) (*config.Config, error) {
	// 설정 읽기 전에 로그를 쓸 수 있도록 먼저 초기화한다
	logger.SetupDefault(w)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run 은 애플리케이션의 메인 엔트리포인트.
// 커맨드라인 인자에서 서브커맨드를 해석해 해당 모드로 기동한다.
// args에는 os.Args[1:]를 넘긴다.
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck 는 경량 서브커맨드이므로 풀 초기화를 건너뛴다
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("mode", string(cfg.Mode)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandIndexes:
		return runIndexes(cfg)
	case CommandServe:
		return runServe(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe 는 API 서버 모드로 기동한다.
// MongoDB 연결을 열고 전체 의존성을 와이어링해 HTTP 서버를 기동한다.
// SIGINT/SIGTERM 수신 시 그레이스풀 셧다운을 수행한다.
func runServe(cfg *config.Config) error {
	ctx := context.Background()

	// 1. DB 연결
	db, err := database.Connect(ctx, cfg.MongoURL, cfg.MongoDatabase)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	defer func() {
		if err := database.Disconnect(context.Background(), db); err != nil {
			slog.Error("failed to disconnect mongodb", slog.String("error", err.Error()))
		}
	}()

	slog.Info("database connection established")

	// 인덱스는 멱등하므로 기동 시마다 보증한다
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}

	// 2. 리포지토리 초기화
	userRepo := repository.NewMongoUserRepo(db)
	profileRepo := repository.NewMongoProfileRepo(db)
	productRepo := repository.NewMongoProductRepo(db)
	sessionRepo := repository.NewMongoSessionRepo(db)
	orderRepo := repository.NewMongoOrderRepo(db)
	inquiryRepo := repository.NewMongoInquiryRepo(db)
	adminLogRepo := repository.NewMongoAdminLogRepo(db)

	// 3. 메트릭
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. 커스텀 토큰 발급기
	issuer, err := token.NewIssuer(cfg.TokenSigningKey, cfg.TokenTTL, cfg.Mode)
	if err != nil {
		return fmt.Errorf("failed to create token issuer: %w", err)
	}

	// 5. 인증 서비스
	providers := []auth.Provider{
		auth.NewGoogleProvider(auth.GoogleConfig{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			Timeout:      cfg.ProviderTimeout,
		}),
		auth.NewNaverProvider(auth.NaverConfig{
			ClientID:     cfg.Naver.ClientID,
			ClientSecret: cfg.Naver.ClientSecret,
			RedirectURL:  cfg.Naver.RedirectURL,
			Timeout:      cfg.ProviderTimeout,
		}),
		auth.NewKakaoProvider(auth.KakaoConfig{
			ClientID:     cfg.Kakao.ClientID,
			ClientSecret: cfg.Kakao.ClientSecret,
			RedirectURL:  cfg.Kakao.RedirectURL,
			Timeout:      cfg.ProviderTimeout,
		}),
	}
	authService := auth.NewService(
		providers, userRepo, sessionRepo, issuer, collector,
		auth.ServiceConfig{
			SessionMaxAge: cfg.SessionMaxAge,
			AdminEmail:    cfg.AdminEmail,
		},
	)

	resolver := authstate.NewResolver(sessionRepo, userRepo, issuer)

	// 6. 보안/미디어/메일
	sanitizer := security.NewContentSanitizer()
	ssrfGuard := security.NewSSRFGuard()

	var uploader media.Uploader
	if cfg.Mode == config.ModeMock {
		uploader = media.NewMockUploader()
		slog.Info("image uploads run in mock mode")
	} else {
		cdn, err := media.NewCloudinaryUploader(cfg.CloudinaryURL)
		if err != nil {
			return fmt.Errorf("failed to create cloudinary uploader: %w", err)
		}
		uploader = cdn
	}
	gallery := media.NewGalleryUploader(uploader, ssrfGuard, collector)
	gallery.Folder = cfg.CloudinaryFolder

	var sender email.Sender
	if cfg.Mode == config.ModeMock {
		sender = email.NewMockSender(collector)
		slog.Info("email delivery runs in mock mode")
	} else {
		sender = email.NewSMTPSender(
			cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom,
			collector,
		)
	}

	withdrawService := user.NewService(userRepo, profileRepo, sessionRepo)

	// 7. 라우터 구성
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	// config의 단위는 req/min이므로 req/sec으로 변환한다
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.EmailRate = rate.Limit(float64(cfg.RateLimitEmail) / 60.0)
	rateLimiterCfg.EmailBurst = cfg.RateLimitEmail

	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		Resolver:          resolver,
		UserFinder:        userRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		Logger:   slog.Default(),
		OnStatus: collector.RecordHTTPStatus,

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			BaseURL:       cfg.BaseURL,
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		ProductHandler: handler.NewProductHandler(productRepo, sanitizer),
		GalleryService: gallery,
		ProfileHandler: handler.NewProfileHandler(profileRepo),
		OrderHandler:   handler.NewOrderHandler(orderRepo, productRepo),
		InquiryHandler: handler.NewInquiryHandler(inquiryRepo),

		WithdrawService:  withdrawService,
		AdminUserHandler: handler.NewAdminUserHandler(userRepo, adminLogRepo),

		EmailHandler: handler.NewEmailHandler(sender),
	}

	router := handler.NewRouter(deps)

	// 8. HTTP 서버 기동
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 메트릭은 외부에 노출하지 않도록 별도 리스너로 제공한다
	metricsServer := &http.Server{
		Addr:        ":" + cfg.MetricsPort,
		Handler:     metrics.SetupMetricsRoute(registry),
		ReadTimeout: 10 * time.Second,
	}

	// 그레이스풀 셧다운용 시그널 핸들링
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	// 감사 로그 보존 잡을 일차로 백그라운드 실행
	cleanupJob := cleanup.NewCleanupJob(adminLogRepo, slog.Default())
	go func() {
		// 기동 직후 1회 실행
		if err := cleanupJob.Run(jobCtx); err != nil {
			slog.Error("cleanup job failed", slog.String("error", err.Error()))
		}

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-jobCtx.Done():
				return
			case <-ticker.C:
				if err := cleanupJob.Run(jobCtx); err != nil {
					slog.Error("cleanup job failed", slog.String("error", err.Error()))
				}
			}
		}
	}()

	go func() {
		slog.Info("metrics server starting", slog.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server listen error", slog.String("error", err.Error()))
		}
	}()

	go func() {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")
	cancelJobs()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics server shutdown failed", slog.String("error", err.Error()))
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runIndexes 는 MongoDB 인덱스 생성만 수행한다.
// 배포 파이프라인에서 서버 기동과 분리해 실행할 수 있다.
func runIndexes(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.MongoURL, cfg.MongoDatabase)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	defer func() {
		_ = database.Disconnect(context.Background(), db)
	}()

	if err := repository.EnsureIndexes(ctx, db); err != nil {
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}

	slog.Info("indexes ensured successfully")
	return nil
}

// runHealthcheck 는 헬스체크를 실행한다.
// distroless 환경에서의 Docker 헬스체크용 서브커맨드.
// /healthz 엔드포인트에 HTTP 요청을 보내 결과를 반환한다.
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/healthz", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
