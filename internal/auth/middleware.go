package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/poschuler/remix-local-auth/internal/session"
)

// ContextUserKey は、ハンドラー間でログイン済みユーザーを共有するためのキーです。
const ContextUserKey = "auth.user"

// LoggedInOnly は未ログインのリクエストをサインイン画面へリダイレクトするミドルウェアです。
func (g *Guard) LoggedInOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := g.RequireLoggedIn(c.Request)
		if !decision.Authorized() {
			c.Redirect(http.StatusFound, decision.RedirectTo)
			c.Abort()
			return
		}
		c.Set(ContextUserKey, decision.User)
		c.Next()
	}
}

// LoggedOutOnly はログイン済みのリクエストを保護画面へリダイレクトするミドルウェアです。
func (g *Guard) LoggedOutOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := g.RequireLoggedOut(c.Request)
		if !decision.Authorized() {
			c.Redirect(http.StatusFound, decision.RedirectTo)
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserFromContext は LoggedInOnly が設定したユーザーを取り出します。
func UserFromContext(c *gin.Context) *session.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*session.User)
	return u
}
