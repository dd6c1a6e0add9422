// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// EmailとUsernameはどちらか一方のみで作成される場合があり、未設定側はnilになる。
// PasswordHashはユーザー名のみで作成されたユーザーの場合は空文字列となり、
// その間そのユーザーはパスワードログインできない。
type User struct {
	ID           string
	Username     *string
	Email        *string
	PasswordHash string
	CreatedAt    time.Time
}

// Claim はトークンに埋め込む最小限のユーザー情報。
// パスワードハッシュは決して含めない。
type Claim struct {
	ID       string  `json:"id"`
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

// Claim はユーザーから公開用のClaimを生成する。
// API応答およびトークンのペイロードとして使用する。
func (u *User) Claim() Claim {
	return Claim{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}
