package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/takumi/kissaten/internal/model"
)

// PostgresDrinkRepo はPostgreSQLを使用したドリンクリポジトリ。
type PostgresDrinkRepo struct {
	db *sql.DB
}

// NewPostgresDrinkRepo はPostgresDrinkRepoを生成する。
func NewPostgresDrinkRepo(db *sql.DB) *PostgresDrinkRepo {
	return &PostgresDrinkRepo{db: db}
}

// Create は新規ドリンクを作成する。
// ingredientsはtext[]カラムにpq.Array経由で保存する。
func (r *PostgresDrinkRepo) Create(ctx context.Context, drink *model.Drink) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO drinks (id, user_id, drink_name, brew, description, ingredients, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		drink.ID, drink.UserID, drink.Name, drink.Brew, drink.Description,
		pq.Array(drink.Ingredients), drink.CreatedAt, drink.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert drink: %w", err)
	}
	return nil
}

// FindByID は指定IDのドリンクを取得する。見つからない場合はnilを返す。
func (r *PostgresDrinkRepo) FindByID(ctx context.Context, id string) (*model.Drink, error) {
	drink := &model.Drink{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, drink_name, brew, description, ingredients, created_at, updated_at
		 FROM drinks WHERE id = $1`,
		id,
	).Scan(
		&drink.ID, &drink.UserID, &drink.Name, &drink.Brew, &drink.Description,
		pq.Array(&drink.Ingredients), &drink.CreatedAt, &drink.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find drink: %w", err)
	}

	return drink, nil
}

// List は全ドリンクを作成日時の降順で返す。
func (r *PostgresDrinkRepo) List(ctx context.Context) ([]*model.Drink, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, drink_name, brew, description, ingredients, created_at, updated_at
		 FROM drinks ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list drinks: %w", err)
	}
	defer rows.Close()

	drinks := []*model.Drink{}
	for rows.Next() {
		drink := &model.Drink{}
		if err := rows.Scan(
			&drink.ID, &drink.UserID, &drink.Name, &drink.Brew, &drink.Description,
			pq.Array(&drink.Ingredients), &drink.CreatedAt, &drink.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan drink: %w", err)
		}
		drinks = append(drinks, drink)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate drinks: %w", err)
	}

	return drinks, nil
}

// Update は既存ドリンクの内容を上書き更新する。
// user_id（所有者）は作成時に固定され、SET句に含めない。
func (r *PostgresDrinkRepo) Update(ctx context.Context, drink *model.Drink) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE drinks
		 SET drink_name = $1, brew = $2, description = $3, ingredients = $4, updated_at = $5
		 WHERE id = $6`,
		drink.Name, drink.Brew, drink.Description, pq.Array(drink.Ingredients),
		drink.UpdatedAt, drink.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update drink: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("drink not found: %s", drink.ID)
	}
	return nil
}

// Delete は指定IDのドリンクを削除する。
func (r *PostgresDrinkRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM drinks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete drink: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("drink not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ DrinkRepository = (*PostgresDrinkRepo)(nil)
