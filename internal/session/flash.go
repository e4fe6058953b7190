package session

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// FlashCookieName は一度だけ表示する通知を運ぶ Cookie 名です。
const FlashCookieName = "remix_local__toast"

// FlashMiddleware は通知用のセッションを gin のコンテキストに載せるミドルウェアを返します。
// 認証セッションと同じ鍵で署名・暗号化します。
func (s *Store) FlashMiddleware() gin.HandlerFunc {
	store := cookie.NewStore(s.keyPairs...)
	options := s.options
	options.MaxAge = 0 // ブラウザを閉じるまで
	store.Options(options)
	return sessions.SessionsMany([]string{FlashCookieName}, store)
}

// AddFlash は次に表示するページ向けの通知を追加します。
func AddFlash(c *gin.Context, message string) error {
	flash := sessions.DefaultMany(c, FlashCookieName)
	flash.AddFlash(message)
	return flash.Save()
}

// Flashes は溜まっている通知を取り出して消去します。
func Flashes(c *gin.Context) ([]string, error) {
	flash := sessions.DefaultMany(c, FlashCookieName)
	raw := flash.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}

	messages := make([]string, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(string); ok {
			messages = append(messages, m)
		}
	}
	return messages, flash.Save()
}
