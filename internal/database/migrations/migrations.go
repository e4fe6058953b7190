// Package migrations はデータベーススキーマのマイグレーションファイルを埋め込みます。
package migrations

import "embed"

// FS は goose に渡す SQL マイグレーションです。
//
//go:embed *.sql
var FS embed.FS
