package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"

	"github.com/takumi/kissaten/internal/model"
)

// PostgresUserRepoはUserRepositoryインターフェースを満たすことを検証
func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

// NewPostgresUserRepoが正しく初期化されることを検証
func TestNewPostgresUserRepo_Initializes(t *testing.T) {
	repo := NewPostgresUserRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// ユニーク制約違反（SQLSTATE 23505）の判定を検証
func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "unique violation",
			err:  &pq.Error{Code: "23505"},
			want: true,
		},
		{
			name: "wrapped unique violation",
			err:  fmt.Errorf("insert failed: %w", &pq.Error{Code: "23505"}),
			want: true,
		},
		{
			name: "other pq error",
			err:  &pq.Error{Code: "23503"},
			want: false,
		},
		{
			name: "non-pq error",
			err:  errors.New("connection refused"),
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Errorf("isUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

// ユーザー名のみで作成されたユーザーのモデル表現を検証
func TestUserModel_UsernameOnly(t *testing.T) {
	username := "coffee_taster"
	user := &model.User{
		ID:       "user-id-1",
		Username: &username,
	}

	if user.Email != nil {
		t.Error("email should be nil for username-only user")
	}
	if user.PasswordHash != "" {
		t.Error("password hash should be empty for username-only user")
	}

	claim := user.Claim()
	if claim.Username == nil || *claim.Username != username {
		t.Errorf("claim.Username = %v, want %q", claim.Username, username)
	}
	if claim.Email != nil {
		t.Error("claim.Email should be nil for username-only user")
	}
}
