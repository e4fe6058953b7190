package users

import (
	"context"
	"fmt"
	"sync"
)

// MemoryRepository はテストやローカル確認用のメモリ上の Repository 実装です。
// ID は 1 から採番し、メールアドレスの一意性は Insert で保証します。
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byMail map[string]User
}

// NewMemoryRepository は空の MemoryRepository を作成します。
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID: 1,
		byMail: make(map[string]User),
	}
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byMail[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *MemoryRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byMail[email]
	return ok, nil
}

func (r *MemoryRepository) Insert(ctx context.Context, email, hashedPassword string) (Projection, error) {
	if err := ctx.Err(); err != nil {
		return Projection{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byMail[email]; ok {
		return Projection{}, fmt.Errorf("insert user: %w", ErrEmailTaken)
	}
	u := User{ID: r.nextID, Email: email, HashedPassword: hashedPassword}
	r.byMail[email] = u
	r.nextID++
	return u.Projection(), nil
}
