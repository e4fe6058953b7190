// Package session は署名・暗号化された Cookie だけで完結する認証セッションを提供します。
//
// サーバー側には何も保存しません。Cookie には User の写し（ID とメールアドレス）のみを入れます。
package session

import (
	"crypto/sha256"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gorilla/securecookie"
	gsessions "github.com/gorilla/sessions"
	"golang.org/x/crypto/hkdf"
)

const (
	// CookieName は認証セッションの Cookie 名です。
	CookieName = "remix_local__auth"
	// MaxAge は Cookie とセッション署名の有効期限（秒）です。
	MaxAge = 7 * 24 * 60 * 60
)

// ErrNoSecret は署名用の秘密鍵が設定されていないことを表します。
var ErrNoSecret = errors.New("session: no signing secret configured")

func init() {
	gob.Register(User{})
}

// Config はセッションストアの設定です。
type Config struct {
	// Secrets の先頭で署名し、すべての鍵で検証します（鍵のローテーション用）。
	Secrets []string
	// Production のとき Cookie に Domain と Secure を付与します。
	Production bool
	Domain     string
}

// Store は Cookie のエンコード・デコードを担います。
type Store struct {
	name     string
	keyPairs [][]byte
	codecs   []securecookie.Codec
	options  sessions.Options
}

// New はストアを作成します。秘密鍵が無い場合は ErrNoSecret を返すので、起動時に呼んでください。
func New(cfg Config) (*Store, error) {
	if len(cfg.Secrets) == 0 {
		return nil, ErrNoSecret
	}

	keyPairs := make([][]byte, 0, len(cfg.Secrets)*2)
	for _, secret := range cfg.Secrets {
		if secret == "" {
			return nil, ErrNoSecret
		}
		hashKey, err := deriveKey(secret, "hash", 64)
		if err != nil {
			return nil, err
		}
		blockKey, err := deriveKey(secret, "block", 32)
		if err != nil {
			return nil, err
		}
		keyPairs = append(keyPairs, hashKey, blockKey)
	}

	codecs := securecookie.CodecsFromPairs(keyPairs...)
	for _, codec := range codecs {
		if sc, ok := codec.(*securecookie.SecureCookie); ok {
			sc.MaxAge(MaxAge)
		}
	}

	options := sessions.Options{
		Path:     "/",
		MaxAge:   MaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if cfg.Production {
		options.Domain = cfg.Domain
		options.Secure = true
	}

	return &Store{
		name:     CookieName,
		keyPairs: keyPairs,
		codecs:   codecs,
		options:  options,
	}, nil
}

// deriveKey は秘密鍵から用途別の鍵を HKDF-SHA256 で導出します。
func deriveKey(secret, purpose string, size int) ([]byte, error) {
	key := make([]byte, size)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(CookieName+":"+purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", purpose, err)
	}
	return key, nil
}

// Options は Cookie 属性を返します。
func (s *Store) Options() sessions.Options {
	return s.options
}

// Read は Cookie ヘッダーの値からセッションを復元します。
// Cookie が無い・改ざんされている・期限切れの場合は空のセッションを返します。
func (s *Store) Read(cookieHeader string) *Session {
	if cookieHeader == "" {
		return newSession()
	}

	cookies, err := http.ParseCookie(cookieHeader)
	if err != nil {
		return newSession()
	}

	for _, c := range cookies {
		if c.Name != s.name {
			continue
		}
		// ホスト限定と Domain 付きの Cookie が同名で並ぶことがある
		values := make(map[string]any)
		if err := securecookie.DecodeMulti(s.name, c.Value, &values, s.codecs...); err != nil {
			continue
		}
		return &Session{values: values}
	}

	return newSession()
}

// ReadRequest はリクエストの Cookie ヘッダーからセッションを復元します。
func (s *Store) ReadRequest(r *http.Request) *Session {
	return s.Read(r.Header.Get("Cookie"))
}

// Commit はセッションをエンコードし、レスポンスに付与する Set-Cookie の値を返します。
func (s *Store) Commit(sess *Session) (string, error) {
	encoded, err := securecookie.EncodeMulti(s.name, sess.values, s.codecs...)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	return gsessions.NewCookie(s.name, encoded, s.options.ToGorillaOptions()).String(), nil
}

// Destroy は Cookie を即座に失効させる Set-Cookie の値を返します。
func (s *Store) Destroy(sess *Session) (string, error) {
	sess.Clear()

	options := s.options
	options.MaxAge = -1
	return gsessions.NewCookie(s.name, "", options.ToGorillaOptions()).String(), nil
}
