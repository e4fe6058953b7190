package session

// UserKey はセッション内でログインユーザーを保持するキーです。
const UserKey = "user"

// User はセッションに保存するユーザーの写しです。ログイン時点の値で、その後の変更は反映されません。
type User struct {
	ID    int64
	Email string
}

// Session は 1 リクエスト分のセッション値です。変更は Commit するまで反映されません。
type Session struct {
	values map[string]any
	isNew  bool
}

func newSession() *Session {
	return &Session{values: make(map[string]any), isNew: true}
}

// IsNew は有効な Cookie から復元されたセッションでない場合に true を返します。
func (s *Session) IsNew() bool {
	return s.isNew
}

// Get はキーに対応する値を返します。
func (s *Session) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Set は値を設定します。
func (s *Session) Set(key string, value any) {
	s.values[key] = value
}

// Unset は値を削除します。
func (s *Session) Unset(key string) {
	delete(s.values, key)
}

// Clear はすべての値を削除します。
func (s *Session) Clear() {
	clear(s.values)
}

// User はログインユーザーを返します。未ログインの場合は nil です。
func (s *Session) User() *User {
	u, ok := s.values[UserKey].(User)
	if !ok {
		return nil
	}
	return &u
}

// SetUser はログインユーザーを丸ごと置き換えます。
func (s *Session) SetUser(u User) {
	s.Set(UserKey, u)
}
