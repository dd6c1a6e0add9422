// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/takumi/kissaten/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
// 検索はすべて保存値との完全一致（大文字小文字を区別し、正規化しない）。
type UserRepository interface {
	// Insert はメールアドレスとパスワードハッシュでユーザーを作成する。
	// メールアドレスが既に存在する場合はEMAIL_CONFLICTのAPIErrorを返す。
	Insert(ctx context.Context, email, passwordHash string) (*model.User, error)

	// InsertByUsername はユーザー名のみでユーザーを作成する。
	// メールアドレスとパスワードハッシュは未設定となる。
	// ユーザー名が既に存在する場合はUSERNAME_CONFLICTのAPIErrorを返す。
	InsertByUsername(ctx context.Context, username string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレス完全一致でユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByUsername はユーザー名完全一致でユーザーを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// DrinkRepository はドリンクデータの永続化インターフェース。
type DrinkRepository interface {
	// Create は新規ドリンクを作成する。
	Create(ctx context.Context, drink *model.Drink) error

	// FindByID は指定IDのドリンクを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Drink, error)

	// List は全ドリンクを作成日時の降順で返す。
	List(ctx context.Context) ([]*model.Drink, error)

	// Update は既存ドリンクの内容を上書き更新する。
	// user_id（所有者）は更新対象に含めない。
	Update(ctx context.Context, drink *model.Drink) error

	// Delete は指定IDのドリンクを削除する。
	Delete(ctx context.Context, id string) error
}

// FavoriteRepository はお気に入りデータの永続化インターフェース。
type FavoriteRepository interface {
	// Add はお気に入りを作成する。
	// (userID, drinkID)の組が既に存在する場合はFAVORITE_CONFLICTのAPIErrorを返す。
	Add(ctx context.Context, userID, drinkID string) (*model.Favorite, error)

	// Find は指定のお気に入りを取得する。見つからない場合はnilを返す。
	Find(ctx context.Context, userID, drinkID string) (*model.Favorite, error)

	// ListByUserID はユーザーのお気に入り一覧をドリンク情報付きで返す。
	ListByUserID(ctx context.Context, userID string) ([]FavoriteWithDrink, error)

	// Delete は指定のお気に入りを削除する。
	Delete(ctx context.Context, userID, drinkID string) error

	// DeleteByDrinkID は指定ドリンクに紐づく全お気に入りを削除する。
	// ドリンク削除時の後始末に使用する。
	DeleteByDrinkID(ctx context.Context, drinkID string) error
}

// FavoriteWithDrink はお気に入りとドリンク情報を結合した構造体。
type FavoriteWithDrink struct {
	model.Favorite
	DrinkName string
	Brew      string
	OwnerID   string
}
