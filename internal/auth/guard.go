// Package auth はログイン状態の判定と、サインイン・サインアップ・ログアウトの画面を提供します。
package auth

import (
	"net/http"

	"github.com/poschuler/remix-local-auth/internal/session"
)

// 画面のパス
const (
	SignInPath    = "/sign-in"
	SignUpPath    = "/sign-up"
	ProtectedPath = "/protected"
)

// Decision はガードの判定結果です。RedirectTo が空なら通過できます。
type Decision struct {
	User       *session.User
	RedirectTo string
}

// Authorized はリダイレクト不要かどうかを返します。
func (d Decision) Authorized() bool {
	return d.RedirectTo == ""
}

// Guard はリクエストの Cookie からログインユーザーを判定します。
type Guard struct {
	store *session.Store
}

// NewGuard は Guard を作成します。
func NewGuard(store *session.Store) *Guard {
	return &Guard{store: store}
}

// CurrentUser はログイン中のユーザーを返します。未ログインなら nil です。
func (g *Guard) CurrentUser(r *http.Request) *session.User {
	return g.store.ReadRequest(r).User()
}

// RequireLoggedIn は未ログインならサインイン画面へのリダイレクトを返します。
func (g *Guard) RequireLoggedIn(r *http.Request) Decision {
	user := g.CurrentUser(r)
	if user == nil {
		return Decision{RedirectTo: SignInPath}
	}
	return Decision{User: user}
}

// RequireLoggedOut はログイン済みなら保護画面へのリダイレクトを返します。
func (g *Guard) RequireLoggedOut(r *http.Request) Decision {
	if g.CurrentUser(r) != nil {
		return Decision{RedirectTo: ProtectedPath}
	}
	return Decision{}
}
