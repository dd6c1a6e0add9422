// Package auth はサインアップ・ログイン・トークン発行の認証フローを提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/takumi/kissaten/internal/model"
	"github.com/takumi/kissaten/internal/password"
	"github.com/takumi/kissaten/internal/repository"
	"github.com/takumi/kissaten/internal/token"
)

// MetricsRecorder は認証イベントのメトリクス記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type MetricsRecorder interface {
	RecordSignup()
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordLoginLatency(duration time.Duration)
}

// nopMetrics はメトリクス未設定時のダミー実装。
type nopMetrics struct{}

func (nopMetrics) RecordSignup()                      {}
func (nopMetrics) RecordLoginSuccess()                {}
func (nopMetrics) RecordLoginFailure()                {}
func (nopMetrics) RecordLoginLatency(_ time.Duration) {}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	hasher   *password.Hasher
	tokens   *token.Service
	metrics  MetricsRecorder

	// dummyDigest はユーザーが存在しない場合のログインで照合に使う捨てハッシュ。
	// 実在ユーザーとの応答時間差からメールアドレスの登録有無を
	// 推測できないようにするためのもの。
	dummyDigest string
}

// NewService はServiceを生成する。
// metricsがnilの場合はメトリクス記録を行わない。
func NewService(
	userRepo repository.UserRepository,
	hasher *password.Hasher,
	tokens *token.Service,
	metrics MetricsRecorder,
) (*Service, error) {
	dummy, err := hasher.Hash("kissaten-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy digest: %w", err)
	}

	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &Service{
		userRepo:    userRepo,
		hasher:      hasher,
		tokens:      tokens,
		metrics:     metrics,
		dummyDigest: dummy,
	}, nil
}

// Signup はメールアドレスとパスワードで新規ユーザーを登録し、トークンを発行する。
// メールアドレスの重複はストアのユニーク制約に委ね、重複時は
// EMAIL_CONFLICTのAPIErrorがそのまま伝播する。
func (s *Service) Signup(ctx context.Context, email, plain string) (model.Claim, string, error) {
	if err := validateSignupInput(email, plain); err != nil {
		return model.Claim{}, "", err
	}

	digest, err := s.hasher.Hash(plain)
	if err != nil {
		return model.Claim{}, "", fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	user, err := s.userRepo.Insert(ctx, email, digest)
	if err != nil {
		return model.Claim{}, "", err
	}

	claim := user.Claim()
	tok, err := s.tokens.Issue(claim)
	if err != nil {
		return model.Claim{}, "", fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}

	s.metrics.RecordSignup()
	slog.Info("user signed up", slog.String("user_id", user.ID))

	return claim, tok, nil
}

// Login はメールアドレスとパスワードでユーザーを認証し、トークンを発行する。
// 未登録メールアドレス・パスワード不一致・パスワード未設定ユーザーの
// いずれの場合も同一のINVALID_CREDENTIALSを返す（列挙攻撃対策）。
func (s *Service) Login(ctx context.Context, email, plain string) (model.Claim, string, error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordLoginLatency(time.Since(start))
	}()

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return model.Claim{}, "", fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}

	if user == nil || user.PasswordHash == "" {
		// 実在ユーザーと同等のハッシュ照合コストをかけてから拒否する
		_, _ = password.Verify(plain, s.dummyDigest)
		s.metrics.RecordLoginFailure()
		return model.Claim{}, "", model.NewInvalidCredentialsError()
	}

	ok, err := password.Verify(plain, user.PasswordHash)
	if err != nil {
		// 保存ハッシュの破損はサーバー側の障害として伝播する（500相当）
		return model.Claim{}, "", fmt.Errorf("パスワード検証に失敗しました: %w", err)
	}
	if !ok {
		s.metrics.RecordLoginFailure()
		return model.Claim{}, "", model.NewInvalidCredentialsError()
	}

	claim := user.Claim()
	tok, err := s.tokens.Issue(claim)
	if err != nil {
		return model.Claim{}, "", fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}

	s.metrics.RecordLoginSuccess()
	slog.Info("user logged in", slog.String("user_id", user.ID))

	return claim, tok, nil
}

// ClaimUsername はユーザー名のみでユーザーを作成し、トークンを発行する。
// 作成されたユーザーはパスワード未設定のため、パスワードログインはできない。
func (s *Service) ClaimUsername(ctx context.Context, username string) (model.Claim, string, error) {
	if strings.TrimSpace(username) == "" {
		return model.Claim{}, "", model.NewValidationError("ユーザー名が空です")
	}

	user, err := s.userRepo.InsertByUsername(ctx, username)
	if err != nil {
		return model.Claim{}, "", err
	}

	claim := user.Claim()
	tok, err := s.tokens.Issue(claim)
	if err != nil {
		return model.Claim{}, "", fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}

	s.metrics.RecordSignup()
	slog.Info("username claimed", slog.String("user_id", user.ID))

	return claim, tok, nil
}

// CurrentUser はトークンから復元したユーザーIDの最新情報をストアから取得する。
func (s *Service) CurrentUser(ctx context.Context, userID string) (model.Claim, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return model.Claim{}, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.Claim{}, model.NewUserNotFoundError()
	}
	return user.Claim(), nil
}

// validateSignupInput はサインアップ入力の最小限の検証を行う。
// メールアドレスの正規化（小文字化・トリミング）は行わない。
func validateSignupInput(email, plain string) error {
	if email == "" {
		return model.NewValidationError("メールアドレスが空です")
	}
	if !strings.Contains(email, "@") {
		return model.NewValidationError("メールアドレスの形式が正しくありません")
	}
	if plain == "" {
		return model.NewValidationError("パスワードが空です")
	}
	return nil
}
