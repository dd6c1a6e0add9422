// Package model はドメインモデルを定義する。
package model

import "time"

// Drink は投稿されたドリンクレコードを表す。
// UserIDは投稿者（所有者）のIDで、作成時に設定され以降変更されない。
type Drink struct {
	ID          string
	UserID      string
	Name        string
	Brew        string
	Description string
	Ingredients []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Favorite はユーザーとドリンクのお気に入り関係を表す。
// (UserID, DrinkID)の組はユニーク制約で保護される。
type Favorite struct {
	UserID    string
	DrinkID   string
	CreatedAt time.Time
}
