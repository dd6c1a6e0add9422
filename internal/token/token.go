// Package token は署名付き・有効期限付きの認証トークンの発行と検証を提供する。
//
// トークンはHMAC-SHA256で署名されたJWTで、サーバー側には一切保存されない
// （ステートレス）。失効は有効期限切れのみで、期限内の明示的な無効化はできない。
// 署名鍵はプロセス起動時に設定から注入され、実行中にローテーションされない。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/takumi/kissaten/internal/model"
)

var (
	// ErrInvalidToken は署名不一致または形式不正のトークンに対して返される。
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken は有効期限を過ぎたトークンに対して返される。
	ErrExpiredToken = errors.New("token expired")
)

// DefaultTTL はトークンの標準有効期間。
const DefaultTTL = 24 * time.Hour

// Claims はJWTに埋め込む申告の構造。
// 標準クレームに加え、ユーザーの公開情報のみを含む。
// パスワードハッシュは決して含めない。
type Claims struct {
	jwt.RegisteredClaims
	UserID   string  `json:"uid"`
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

// Service はトークンの発行・検証を行う。
// 署名鍵はコンストラクタで注入し、グローバル状態は持たない。
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService はServiceを生成する。
// secretが空の場合はエラーを返す（起動時致命エラーとして扱うこと）。
// ttlが0以下の場合はDefaultTTLを使用する。
func NewService(secret []byte, ttl time.Duration) (*Service, error) {
	if len(secret) == 0 {
		return nil, errors.New("signing secret must not be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: secret, ttl: ttl}, nil
}

// Issue はClaimと有効期限（現在時刻+TTL）を署名付きトークンに変換する。
func (s *Service) Issue(claim model.Claim) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID:   claim.ID,
		Username: claim.Username,
		Email:    claim.Email,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Validate はトークンの署名と有効期限を検証し、埋め込まれたClaimを返す。
// 署名不一致・形式不正はErrInvalidToken、期限切れはErrExpiredTokenを返す。
func (s *Service) Validate(tokenString string) (model.Claim, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Claim{}, ErrExpiredToken
		}
		return model.Claim{}, ErrInvalidToken
	}

	if !parsed.Valid {
		return model.Claim{}, ErrInvalidToken
	}

	return model.Claim{
		ID:       claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
	}, nil
}
