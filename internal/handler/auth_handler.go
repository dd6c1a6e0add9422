// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/takumi/kissaten/internal/middleware"
	"github.com/takumi/kissaten/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Signup はメールアドレスとパスワードでユーザーを登録し、
	// クレームと署名付きトークンを返す。
	Signup(ctx context.Context, email, plain string) (model.Claim, string, error)
	// Login は資格情報を検証し、クレームと署名付きトークンを返す。
	Login(ctx context.Context, email, plain string) (model.Claim, string, error)
	// ClaimUsername はユーザー名のみでユーザーを登録する。
	ClaimUsername(ctx context.Context, username string) (model.Claim, string, error)
	// CurrentUser は認証済みユーザーの公開情報を返す。
	CurrentUser(ctx context.Context, userID string) (model.Claim, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain string
	CookieSecure bool
	TokenMaxAge  int // トークンCookieの有効期間（秒）
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// --- リクエスト・レスポンス型 ---

// signupRequest はサインアップ・ログインリクエストのボディ。
type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// usernameRequest はユーザー名登録リクエストのボディ。
type usernameRequest struct {
	Username string `json:"username"`
}

// authResponse は認証成功レスポンス。
// トークンはCookieに加えてボディでも返し、
// Authorizationヘッダー方式のクライアントにも対応する。
type authResponse struct {
	User  model.Claim `json:"user"`
	Token string      `json:"token"`
}

// setTokenCookie は認証トークンをHTTP Only Cookieに設定する。
func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, tokenString string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    tokenString,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.TokenMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Signup はメールアドレスとパスワードでユーザーを登録する。
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	claim, tokenString, err := h.service.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.setTokenCookie(w, tokenString)
	writeJSON(w, http.StatusCreated, authResponse{User: claim, Token: tokenString})
}

// Login は資格情報を検証してトークンを発行する。
// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	claim, tokenString, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.setTokenCookie(w, tokenString)
	writeJSON(w, http.StatusOK, authResponse{User: claim, Token: tokenString})
}

// ClaimUsername はユーザー名のみでユーザーを登録する。
// パスワードを持たないため、このユーザーはパスワードログインできない。
// POST /api/v1/auth/username
func (h *AuthHandler) ClaimUsername(w http.ResponseWriter, r *http.Request) {
	var req usernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	claim, tokenString, err := h.service.ClaimUsername(r.Context(), req.Username)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.setTokenCookie(w, tokenString)
	writeJSON(w, http.StatusCreated, authResponse{User: claim, Token: tokenString})
}

// Me は現在の認証済みユーザー情報を返す。
// GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	claim, err := h.service.CurrentUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, claim)
}

// Logout はトークンCookieをクリアする。
// トークンはステートレスなためサーバー側の失効処理はなく、
// クライアントからの削除のみを行う。
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}
