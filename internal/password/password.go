// Package password はパスワードの一方向ハッシュ化と検証を提供する。
//
// ハッシュにはbcryptを使用する。ソルトはダイジェスト文字列に埋め込まれ、
// 検証時のダイジェスト比較は一致位置に依存しない定数時間で行われる。
// 平文パスワードは復元できない。
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrCorruptDigest は保存されているハッシュがbcryptダイジェストとして
// 解釈できない場合に返される。ユーザー入力の誤りではなく
// サーバー側の障害として扱う。
var ErrCorruptDigest = errors.New("corrupt password digest")

// DefaultCost はbcryptのデフォルトコストパラメータ。
// ブルートフォース耐性と応答時間のバランスで選択されている。
const DefaultCost = bcrypt.DefaultCost

// Hasher はコスト設定を保持するパスワードハッシュ化器。
type Hasher struct {
	cost int
}

// NewHasher は指定コストのHasherを生成する。
// costがbcryptの有効範囲外の場合はDefaultCostに丸める。
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash は平文パスワードからソルト付きダイジェストを生成する。
// 同一の平文でも呼び出しごとに異なるダイジェストを返す（ソルトがランダムなため）。
func (h *Hasher) Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify は平文パスワードがダイジェストと一致するかを検証する。
// 不一致の場合はエラーなしでfalseを返す。
// ダイジェストが不正な形式の場合のみErrCorruptDigestを返す。
func Verify(plain, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrCorruptDigest, err)
}
