package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/takumi/kissaten/internal/drink"
	"github.com/takumi/kissaten/internal/middleware"
	"github.com/takumi/kissaten/internal/model"
)

// DrinkServiceInterface はドリンクハンドラーが必要とするサービスインターフェース。
type DrinkServiceInterface interface {
	Create(ctx context.Context, userID string, input drink.Input) (*model.Drink, error)
	Get(ctx context.Context, id string) (*model.Drink, error)
	List(ctx context.Context) ([]*model.Drink, error)
	Update(ctx context.Context, callerID, id string, input drink.Input) (*model.Drink, error)
	Delete(ctx context.Context, callerID, id string) (*model.Drink, error)
}

// DrinkHandler はドリンク管理のHTTPハンドラー。
type DrinkHandler struct {
	service DrinkServiceInterface
}

// NewDrinkHandler はDrinkHandlerを生成する。
func NewDrinkHandler(service DrinkServiceInterface) *DrinkHandler {
	return &DrinkHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

// drinkRequest はドリンク作成・更新リクエストのボディ。
type drinkRequest struct {
	Name        string   `json:"drink_name"`
	Brew        string   `json:"brew"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients"`
}

// drinkResponse はドリンクのAPIレスポンス。
type drinkResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"drink_name"`
	Brew        string    `json:"brew"`
	Description string    `json:"description"`
	Ingredients []string  `json:"ingredients"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// toDrinkResponse はmodel.DrinkからAPIレスポンスに変換する。
func toDrinkResponse(d *model.Drink) drinkResponse {
	return drinkResponse{
		ID:          d.ID,
		UserID:      d.UserID,
		Name:        d.Name,
		Brew:        d.Brew,
		Description: d.Description,
		Ingredients: d.Ingredients,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (req drinkRequest) toInput() drink.Input {
	return drink.Input{
		Name:        req.Name,
		Brew:        req.Brew,
		Description: req.Description,
		Ingredients: req.Ingredients,
	}
}

// Create は新規ドリンクを作成する。所有者は認証済みユーザーに固定される。
// POST /api/v1/auth/drinks
func (h *DrinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req drinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	created, err := h.service.Create(r.Context(), userID, req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toDrinkResponse(created))
}

// List は全ドリンクの一覧を返す。認証不要の公開エンドポイント。
// GET /api/v1/auth/drinks
func (h *DrinkHandler) List(w http.ResponseWriter, r *http.Request) {
	drinks, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]drinkResponse, 0, len(drinks))
	for _, d := range drinks {
		responses = append(responses, toDrinkResponse(d))
	}

	writeJSON(w, http.StatusOK, responses)
}

// Get は指定IDのドリンクを返す。認証不要の公開エンドポイント。
// GET /api/v1/auth/drinks/:id
func (h *DrinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDrinkResponse(found))
}

// Update は指定IDのドリンクを更新する。所有者のみ実行できる。
// PUT /api/v1/auth/drinks/:id
func (h *DrinkHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	id := chi.URLParam(r, "id")

	var req drinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	updated, err := h.service.Update(r.Context(), userID, id, req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDrinkResponse(updated))
}

// Delete は指定IDのドリンクを削除し、削除したドリンクを返す。所有者のみ実行できる。
// DELETE /api/v1/auth/drinks/:id
func (h *DrinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	id := chi.URLParam(r, "id")

	deleted, err := h.service.Delete(r.Context(), userID, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDrinkResponse(deleted))
}
