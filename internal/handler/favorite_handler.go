package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/takumi/kissaten/internal/middleware"
	"github.com/takumi/kissaten/internal/model"
	"github.com/takumi/kissaten/internal/repository"
)

// FavoriteServiceInterface はお気に入りハンドラーが必要とするサービスインターフェース。
type FavoriteServiceInterface interface {
	Add(ctx context.Context, userID, drinkID string) (*model.Favorite, error)
	List(ctx context.Context, userID string) ([]repository.FavoriteWithDrink, error)
	Remove(ctx context.Context, userID, drinkID string) error
}

// FavoriteHandler はお気に入り管理のHTTPハンドラー。
type FavoriteHandler struct {
	service FavoriteServiceInterface
}

// NewFavoriteHandler はFavoriteHandlerを生成する。
func NewFavoriteHandler(service FavoriteServiceInterface) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

// --- レスポンス型 ---

// favoriteResponse はお気に入りのAPIレスポンス。
type favoriteResponse struct {
	UserID    string    `json:"user_id"`
	DrinkID   string    `json:"drink_id"`
	CreatedAt time.Time `json:"created_at"`
}

// favoriteWithDrinkResponse はドリンク情報付きのお気に入りレスポンス。
type favoriteWithDrinkResponse struct {
	favoriteResponse
	DrinkName string `json:"drink_name"`
	Brew      string `json:"brew"`
	OwnerID   string `json:"owner_id"`
}

// Add はドリンクをお気に入りに登録する。
// POST /api/v1/auth/favorites/:drinkID
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	drinkID := chi.URLParam(r, "drinkID")

	fav, err := h.service.Add(r.Context(), userID, drinkID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, favoriteResponse{
		UserID:    fav.UserID,
		DrinkID:   fav.DrinkID,
		CreatedAt: fav.CreatedAt,
	})
}

// List は認証済みユーザーのお気に入り一覧をドリンク情報付きで返す。
// GET /api/v1/auth/favorites
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	favorites, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]favoriteWithDrinkResponse, 0, len(favorites))
	for _, f := range favorites {
		responses = append(responses, favoriteWithDrinkResponse{
			favoriteResponse: favoriteResponse{
				UserID:    f.UserID,
				DrinkID:   f.DrinkID,
				CreatedAt: f.CreatedAt,
			},
			DrinkName: f.DrinkName,
			Brew:      f.Brew,
			OwnerID:   f.OwnerID,
		})
	}

	writeJSON(w, http.StatusOK, responses)
}

// Remove はお気に入りを削除する。
// DELETE /api/v1/auth/favorites/:drinkID
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	drinkID := chi.URLParam(r, "drinkID")

	if err := h.service.Remove(r.Context(), userID, drinkID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
