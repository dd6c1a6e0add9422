package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/takumi/kissaten/internal/middleware"
)

// Pinger はヘルスチェックで使用するデータベース疎通確認のインターフェース。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenValidator    middleware.TokenValidator
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ドリンク
	DrinkService DrinkServiceInterface

	// お気に入り
	FavoriteService FavoriteServiceInterface

	// 運用
	DB             Pinger
	MetricsHandler http.Handler
	Metrics        MetricsRecorder
}

// MetricsRecorder はルーターが参照するメトリクス記録インターフェースの集約。
type MetricsRecorder interface {
	middleware.InvalidTokenRecorder
	middleware.HTTPStatusRecorder
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → (Auth → RateLimit(General))
//
// ドリンクの読み取り（一覧・詳細）は認証不要の公開エンドポイント。
// 変更操作とお気に入りは認証必須。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Metrics))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	drinkHandler := NewDrinkHandler(deps.DrinkService)
	favoriteHandler := NewFavoriteHandler(deps.FavoriteService)

	authMW := middleware.NewAuthMiddleware(deps.TokenValidator, deps.Metrics)

	r.Route("/api/v1/auth", func(r chi.Router) {
		// --- 認証不要のルート ---

		// 認証フロー（ログイン試行レート制限を適用）
		loginLimit := deps.RateLimiter.LoginMiddleware()
		r.With(loginLimit).Post("/signup", authHandler.Signup)
		r.With(loginLimit).Post("/login", authHandler.Login)
		r.With(loginLimit).Post("/username", authHandler.ClaimUsername)
		r.Post("/logout", authHandler.Logout)

		// ドリンクの読み取りは公開
		r.Get("/drinks", drinkHandler.List)
		r.Get("/drinks/{id}", drinkHandler.Get)

		// --- 認証が必要なルート ---
		// ミドルウェアスタック: Auth → RateLimit(General)
		r.Group(func(r chi.Router) {
			r.Use(authMW)
			r.Use(deps.RateLimiter.GeneralMiddleware())

			r.Get("/me", authHandler.Me)

			// ドリンクの変更操作（所有者チェックはサービス層で行う）
			r.Post("/drinks", drinkHandler.Create)
			r.Put("/drinks/{id}", drinkHandler.Update)
			r.Delete("/drinks/{id}", drinkHandler.Delete)

			// お気に入り
			r.Get("/favorites", favoriteHandler.List)
			r.Post("/favorites/{drinkID}", favoriteHandler.Add)
			r.Delete("/favorites/{drinkID}", favoriteHandler.Remove)
		})
	})

	// ヘルスチェック
	r.Get("/health", healthHandler(deps.DB))

	// Prometheusメトリクス
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	return r
}

// healthHandler はデータベース疎通を含むヘルスチェックハンドラーを返す。
func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	}
}
