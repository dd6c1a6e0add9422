package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/takumi/kissaten/internal/model"
)

// PostgresFavoriteRepo はPostgreSQLを使用したお気に入りリポジトリ。
type PostgresFavoriteRepo struct {
	db *sql.DB
}

// NewPostgresFavoriteRepo はPostgresFavoriteRepoを生成する。
func NewPostgresFavoriteRepo(db *sql.DB) *PostgresFavoriteRepo {
	return &PostgresFavoriteRepo{db: db}
}

// Add はお気に入りを作成する。
// (user_id, drink_id)の複合主キー違反はFAVORITE_CONFLICTに変換する。
func (r *PostgresFavoriteRepo) Add(ctx context.Context, userID, drinkID string) (*model.Favorite, error) {
	fav := &model.Favorite{
		UserID:    userID,
		DrinkID:   drinkID,
		CreatedAt: time.Now(),
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO favorites (user_id, drink_id, created_at) VALUES ($1, $2, $3)`,
		userID, drinkID, fav.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.NewFavoriteConflictError()
		}
		return nil, fmt.Errorf("failed to insert favorite: %w", err)
	}

	return fav, nil
}

// Find は指定のお気に入りを取得する。見つからない場合はnilを返す。
func (r *PostgresFavoriteRepo) Find(ctx context.Context, userID, drinkID string) (*model.Favorite, error) {
	fav := &model.Favorite{}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, drink_id, created_at FROM favorites WHERE user_id = $1 AND drink_id = $2`,
		userID, drinkID,
	).Scan(&fav.UserID, &fav.DrinkID, &fav.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find favorite: %w", err)
	}

	return fav, nil
}

// ListByUserID はユーザーのお気に入り一覧をドリンク情報付きで返す。
func (r *PostgresFavoriteRepo) ListByUserID(ctx context.Context, userID string) ([]FavoriteWithDrink, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT f.user_id, f.drink_id, f.created_at, d.drink_name, d.brew, d.user_id
		 FROM favorites f
		 JOIN drinks d ON d.id = f.drink_id
		 WHERE f.user_id = $1
		 ORDER BY f.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	favorites := []FavoriteWithDrink{}
	for rows.Next() {
		var fav FavoriteWithDrink
		if err := rows.Scan(
			&fav.UserID, &fav.DrinkID, &fav.CreatedAt,
			&fav.DrinkName, &fav.Brew, &fav.OwnerID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorites: %w", err)
	}

	return favorites, nil
}

// Delete は指定のお気に入りを削除する。
func (r *PostgresFavoriteRepo) Delete(ctx context.Context, userID, drinkID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND drink_id = $2`,
		userID, drinkID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("favorite not found: %s/%s", userID, drinkID)
	}
	return nil
}

// DeleteByDrinkID は指定ドリンクに紐づく全お気に入りを削除する。
func (r *PostgresFavoriteRepo) DeleteByDrinkID(ctx context.Context, drinkID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE drink_id = $1`, drinkID)
	if err != nil {
		return fmt.Errorf("failed to delete favorites by drink: %w", err)
	}
	return nil
}

// compile-time interface check
var _ FavoriteRepository = (*PostgresFavoriteRepo)(nil)
