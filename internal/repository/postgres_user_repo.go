package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/takumi/kissaten/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// Insert はメールアドレスとパスワードハッシュでユーザーを作成する。
// 重複チェックはアプリケーション側では行わず、ストアのユニーク制約の
// 違反シグナル（23505）をEMAIL_CONFLICTに変換する。
func (r *PostgresUserRepo) Insert(ctx context.Context, email, passwordHash string) (*model.User, error) {
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        &email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4)`,
		user.ID, email, passwordHash, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.NewEmailConflictError()
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}

// InsertByUsername はユーザー名のみでユーザーを作成する。
// パスワードハッシュは空のまま保存され、このユーザーは
// パスワードが設定されるまでログインできない。
func (r *PostgresUserRepo) InsertByUsername(ctx context.Context, username string) (*model.User, error) {
	user := &model.User{
		ID:        uuid.New().String(),
		Username:  &username,
		CreatedAt: time.Now(),
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at)
		 VALUES ($1, $2, '', $3)`,
		user.ID, username, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.NewUsernameConflictError()
		}
		return nil, fmt.Errorf("failed to insert user by username: %w", err)
	}

	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findBy(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1`, id)
}

// FindByEmail はメールアドレス完全一致でユーザーを検索する。見つからない場合はnilを返す。
// 大文字小文字の正規化やトリミングは行わない。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findBy(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE email = $1`, email)
}

// FindByUsername はユーザー名完全一致でユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findBy(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE username = $1`, username)
}

// findBy は単一ユーザーを取得する共通処理。ヒットしない場合は(nil, nil)を返す。
func (r *PostgresUserRepo) findBy(ctx context.Context, query, arg string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// isUniqueViolation はPostgreSQLのユニーク制約違反（SQLSTATE 23505）かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23505"
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
