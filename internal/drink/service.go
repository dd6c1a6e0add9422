// Package drink はドリンクの投稿・一覧・更新・削除のビジネスロジックを提供する。
package drink

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/takumi/kissaten/internal/model"
	"github.com/takumi/kissaten/internal/repository"
	"github.com/takumi/kissaten/internal/security"
)

// Input はドリンクの作成・更新リクエストの入力値。
type Input struct {
	Name        string
	Brew        string
	Description string
	Ingredients []string
}

// Service はドリンクに関するビジネスロジックを提供する。
type Service struct {
	drinks    repository.DrinkRepository
	favorites repository.FavoriteRepository
	sanitizer security.ContentSanitizerService
}

// NewService はServiceを生成する。
func NewService(
	drinks repository.DrinkRepository,
	favorites repository.FavoriteRepository,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		drinks:    drinks,
		favorites: favorites,
		sanitizer: sanitizer,
	}
}

// validateInput は入力値を検証する。
func validateInput(input Input) error {
	if strings.TrimSpace(input.Name) == "" {
		return model.NewValidationError("ドリンク名は必須です")
	}
	if strings.TrimSpace(input.Brew) == "" {
		return model.NewValidationError("抽出方法は必須です")
	}
	return nil
}

// Create は新規ドリンクを作成する。
// 所有者は作成時のuserIDに固定され、以降変更されない。
// 説明文はHTMLサニタイズしてから保存する。
func (s *Service) Create(ctx context.Context, userID string, input Input) (*model.Drink, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := time.Now()
	drink := &model.Drink{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        input.Name,
		Brew:        input.Brew,
		Description: s.sanitizer.Sanitize(input.Description),
		Ingredients: input.Ingredients,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if drink.Ingredients == nil {
		drink.Ingredients = []string{}
	}

	if err := s.drinks.Create(ctx, drink); err != nil {
		return nil, err
	}

	slog.Info("drink created",
		slog.String("drink_id", drink.ID),
		slog.String("user_id", userID),
	)

	return drink, nil
}

// Get は指定IDのドリンクを取得する。認証不要の公開操作。
func (s *Service) Get(ctx context.Context, id string) (*model.Drink, error) {
	drink, err := s.drinks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if drink == nil {
		return nil, model.NewDrinkNotFoundError(id)
	}
	return drink, nil
}

// List は全ドリンクを作成日時の降順で返す。認証不要の公開操作。
func (s *Service) List(ctx context.Context) ([]*model.Drink, error) {
	return s.drinks.List(ctx)
}

// Update は指定IDのドリンクを更新する。
// 所有者以外が呼び出した場合はFORBIDDENエラーを返す。
func (s *Service) Update(ctx context.Context, callerID, id string, input Input) (*model.Drink, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	drink, err := s.drinks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if drink == nil {
		return nil, model.NewDrinkNotFoundError(id)
	}

	if err := authorizeMutation(callerID, drink.UserID); err != nil {
		slog.Warn("drink update forbidden",
			slog.String("drink_id", id),
			slog.String("caller_id", callerID),
		)
		return nil, err
	}

	drink.Name = input.Name
	drink.Brew = input.Brew
	drink.Description = s.sanitizer.Sanitize(input.Description)
	drink.Ingredients = input.Ingredients
	if drink.Ingredients == nil {
		drink.Ingredients = []string{}
	}
	drink.UpdatedAt = time.Now()

	if err := s.drinks.Update(ctx, drink); err != nil {
		return nil, err
	}

	return drink, nil
}

// Delete は指定IDのドリンクを削除し、削除したドリンクを返す。
// 所有者以外が呼び出した場合はFORBIDDENエラーを返す。
// 紐づくお気に入りも同時に削除する。
func (s *Service) Delete(ctx context.Context, callerID, id string) (*model.Drink, error) {
	drink, err := s.drinks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if drink == nil {
		return nil, model.NewDrinkNotFoundError(id)
	}

	if err := authorizeMutation(callerID, drink.UserID); err != nil {
		slog.Warn("drink delete forbidden",
			slog.String("drink_id", id),
			slog.String("caller_id", callerID),
		)
		return nil, err
	}

	if err := s.favorites.DeleteByDrinkID(ctx, id); err != nil {
		return nil, err
	}

	if err := s.drinks.Delete(ctx, id); err != nil {
		return nil, err
	}

	slog.Info("drink deleted",
		slog.String("drink_id", id),
		slog.String("user_id", callerID),
	)

	return drink, nil
}

// authorizeMutation は変更操作の所有者チェックを行う。
// 呼び出し元IDと所有者IDの完全一致のみで判定し、
// 管理者ロールなどの概念は持たない。
func authorizeMutation(callerID, ownerID string) error {
	if callerID != ownerID {
		return model.NewForbiddenError()
	}
	return nil
}
