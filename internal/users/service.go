package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// 「ユーザーが存在しない」と「パスワード違い」を区別しない。アカウントの列挙を防ぐため。
const (
	MessageWrongCredentials = "Wrong user or password"
	MessageAlreadyExists    = "User already registered"
)

// PasswordHasher はパスワードのハッシュ化と検証を行います。
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(encoded, plain string) (bool, error)
}

// Service はサインインとサインアップをまとめます。リクエスト単位で状態を持ちません。
type Service struct {
	repo   Repository
	hasher PasswordHasher
}

// NewService は Service を作成します。
func NewService(repo Repository, hasher PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// SignIn はメールアドレスとパスワードを検証します。
// 成功時の User にはハッシュも含まれるため、セッションに保存する前に Projection を取ってください。
func (s *Service) SignIn(ctx context.Context, email, password string) (Result, error) {
	found, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return Result{}, err
	}
	if found == nil {
		return wrongCredentials(), nil
	}

	ok, err := s.hasher.Verify(found.HashedPassword, password)
	if err != nil {
		return Result{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return wrongCredentials(), nil
	}

	return Result{Success: true, User: found}, nil
}

// SignUp は新しいユーザーを登録します。
// 重複確認と登録は同一トランザクションではないため、同時登録で負けた側は
// 一意制約違反として同じ「登録済み」エラーになります。再試行はしません。
func (s *Service) SignUp(ctx context.Context, email, password string) (Result, error) {
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return Result{}, fmt.Errorf("hash password: %w", err)
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return Result{}, err
	}
	if exists {
		return alreadyRegistered(), nil
	}

	created, err := s.repo.Insert(ctx, email, hashed)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return alreadyRegistered(), nil
		}
		return Result{}, err
	}

	return Result{
		Success: true,
		User:    &User{ID: created.ID, Email: created.Email},
	}, nil
}

func wrongCredentials() Result {
	return Result{Error: &Error{Code: http.StatusForbidden, Message: MessageWrongCredentials}}
}

func alreadyRegistered() Result {
	return Result{Error: &Error{Code: http.StatusBadRequest, Message: MessageAlreadyExists}}
}
