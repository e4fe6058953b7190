// Package users はユーザーの永続化とサインイン・サインアップ処理を提供します。
package users

// User は users テーブルの 1 行です。HashedPassword は外部に出してはいけません。
type User struct {
	ID             int64
	Email          string
	HashedPassword string
}

// Projection はパスワードハッシュを除いたユーザー情報です。
// セッションなど信頼境界の外に保存してよいのはこの形だけです。
type Projection struct {
	ID    int64
	Email string
}

// Projection はハッシュを取り除いた写しを返します。
func (u *User) Projection() Projection {
	return Projection{ID: u.ID, Email: u.Email}
}

// Error はサインイン・サインアップの業務エラーです。
type Error struct {
	Code    int
	Message string
}

// Result はサインイン・サインアップの結果です。
// 失敗時は Error が設定され、成功時は User が設定されます。
type Result struct {
	Success bool
	Error   *Error
	User    *User
}
