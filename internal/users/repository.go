package users

import (
	"context"
	"errors"
)

// ErrEmailTaken は一意制約によってメールアドレスの登録が拒否されたことを表します。
var ErrEmailTaken = errors.New("users: email already registered")

// Repository はユーザーの資格情報ストアです。
type Repository interface {
	// FindByEmail は完全一致で検索し、存在しない場合は nil, nil を返します。
	FindByEmail(ctx context.Context, email string) (*User, error)
	// ExistsByEmail は登録前の重複確認に使います。
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Insert は新しいユーザーを登録し、ID とメールアドレスを返します。
	Insert(ctx context.Context, email, hashedPassword string) (Projection, error)
}
