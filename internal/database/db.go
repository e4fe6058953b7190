// Package database はコネクションプールの生成とクエリ実行の共通処理を提供します。
//
// プールはプロセス起動時に一度だけ作成し、サービスへ明示的に渡します。
// 終了時には Close で解放してください。
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/poschuler/remix-local-auth/internal/config"
	"github.com/poschuler/remix-local-auth/internal/database/migrations"
)

// DB はコネクションプールをラップし、クエリごとに接続を借りて必ず返却します。
type DB struct {
	pool   *sql.DB
	logger *slog.Logger
	debug  bool
}

// New は既存のプールから DB を作成します。debug が true のときクエリと所要時間をログ出力します。
func New(pool *sql.DB, logger *slog.Logger, debug bool) *DB {
	if logger == nil {
		logger = slog.Default()
	}
	return &DB{pool: pool, logger: logger, debug: debug}
}

// DSN は設定から PostgreSQL の接続文字列を組み立てます。
func DSN(cfg *config.Config) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.DBUser, cfg.DBPassword),
		Host:     net.JoinHostPort(cfg.DBHost, strconv.Itoa(cfg.DBPort)),
		Path:     "/" + cfg.DBName,
		RawQuery: url.Values{"sslmode": []string{cfg.DBSSLMode}}.Encode(),
	}
	return u.String()
}

// Open は pgx ドライバでプールを作成し、疎通を確認します。
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*DB, error) {
	connConfig, err := pgx.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	pool := stdlib.OpenDB(*connConfig)
	pool.SetMaxOpenConns(cfg.DBMaxConns)
	pool.SetMaxIdleConns(cfg.DBMaxConns)
	pool.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return New(pool, logger, cfg.DBDebug), nil
}

// Pool は内部の *sql.DB を返します。
func (d *DB) Pool() *sql.DB {
	return d.pool
}

// Close はプールを閉じます。
func (d *DB) Close() error {
	return d.pool.Close()
}

// QueryRow は 1 行を取得して dest にスキャンします。
// 行が存在しない場合は (false, nil) を返します。
// 接続はエラー時も含めて必ずプールへ返却されます。
func (d *DB) QueryRow(ctx context.Context, query string, args []any, dest ...any) (bool, error) {
	conn, err := d.pool.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	start := time.Now()
	if d.debug {
		d.logger.Info("executed query", "sql", query)
	}

	err = conn.QueryRowContext(ctx, query, args...).Scan(dest...)
	rows := 0
	switch {
	case err == nil:
		rows = 1
	case errors.Is(err, sql.ErrNoRows):
		err = nil
	}

	if d.debug {
		d.logger.Info("result data", "duration_ms", time.Since(start).Milliseconds(), "rows", rows)
	}
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// Migrate は埋め込みマイグレーションを適用します。
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
