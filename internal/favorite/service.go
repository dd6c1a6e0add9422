// Package favorite はお気に入りの登録・一覧・削除のビジネスロジックを提供する。
package favorite

import (
	"context"
	"log/slog"

	"github.com/takumi/kissaten/internal/model"
	"github.com/takumi/kissaten/internal/repository"
)

// Service はお気に入りに関するビジネスロジックを提供する。
type Service struct {
	favorites repository.FavoriteRepository
	drinks    repository.DrinkRepository
}

// NewService はServiceを生成する。
func NewService(
	favorites repository.FavoriteRepository,
	drinks repository.DrinkRepository,
) *Service {
	return &Service{
		favorites: favorites,
		drinks:    drinks,
	}
}

// Add はドリンクをお気に入りに登録する。
// 対象ドリンクが存在しない場合はDRINK_NOT_FOUNDエラーを返す。
// 既に登録済みの場合はFAVORITE_CONFLICTエラーを返す。
func (s *Service) Add(ctx context.Context, userID, drinkID string) (*model.Favorite, error) {
	drink, err := s.drinks.FindByID(ctx, drinkID)
	if err != nil {
		return nil, err
	}
	if drink == nil {
		return nil, model.NewDrinkNotFoundError(drinkID)
	}

	fav, err := s.favorites.Add(ctx, userID, drinkID)
	if err != nil {
		return nil, err
	}

	slog.Info("favorite added",
		slog.String("user_id", userID),
		slog.String("drink_id", drinkID),
	)

	return fav, nil
}

// List はユーザーのお気に入り一覧をドリンク情報付きで返す。
// 他人が投稿したドリンクも自分のお気に入りに含められる。
func (s *Service) List(ctx context.Context, userID string) ([]repository.FavoriteWithDrink, error) {
	return s.favorites.ListByUserID(ctx, userID)
}

// Remove はお気に入りを削除する。
// 登録されていない場合はFAVORITE_NOT_FOUNDエラーを返す。
func (s *Service) Remove(ctx context.Context, userID, drinkID string) error {
	fav, err := s.favorites.Find(ctx, userID, drinkID)
	if err != nil {
		return err
	}
	if fav == nil {
		return model.NewFavoriteNotFoundError(drinkID)
	}

	if err := s.favorites.Delete(ctx, userID, drinkID); err != nil {
		return err
	}

	slog.Info("favorite removed",
		slog.String("user_id", userID),
		slog.String("drink_id", drinkID),
	)

	return nil
}
