// Package db はgormによるデータベース接続とマイグレーションを提供します。
package db

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	analysisentity "stock_dashboard/internal/feature/analysis/domain/entity"
	instrumententity "stock_dashboard/internal/feature/instrument/domain/entity"
	priceadapters "stock_dashboard/internal/feature/prices/adapters"
)

const (
	// DriverPostgres は本番用のドライバ名です。
	DriverPostgres = "postgres"
	// DriverSQLite はローカル実行・テスト用のドライバ名です。
	DriverSQLite = "sqlite"

	connectTimeout = 60 * time.Second
	retryInterval  = 3 * time.Second
)

// Config はデータベース接続設定です。
type Config struct {
	Driver       string // "postgres"（既定）または "sqlite"
	User         string
	Password     string
	Name         string
	Host         string
	Port         string
	SSLMode      string
	InstanceName string // Cloud SQL インスタンス接続名。設定時はUnixソケットで接続
	SQLitePath   string // Driver が sqlite の場合のファイルパス
}

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
func LoadConfigFromEnv() Config {
	cfg := Config{
		Driver:       os.Getenv("DB_DRIVER"),
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		Name:         os.Getenv("DB_NAME"),
		Host:         os.Getenv("DB_HOST"),
		Port:         os.Getenv("DB_PORT"),
		SSLMode:      os.Getenv("DB_SSLMODE"),
		InstanceName: os.Getenv("INSTANCE_CONNECTION_NAME"),
		SQLitePath:   os.Getenv("SQLITE_PATH"),
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverPostgres
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "stock_dashboard.db"
	}
	return cfg
}

// BuildDSN はPostgreSQL用のDSN文字列を生成します。InstanceNameが設定されている場合はCloud SQLのUnixソケットを使用します。
func BuildDSN(cfg Config) string {
	if cfg.InstanceName != "" {
		return fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.InstanceName, cfg.User, cfg.Password, cfg.Name)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
}

// Opener はDSNからgorm.DBを開く関数です。テストで差し替えられます。
type Opener func(dsn string) (*gorm.DB, error)

// ConnectWithRetry はtimeoutに達するまでretryInterval間隔で接続を試みます。
// コンテナ起動直後などDBの準備ができていない場合に備えます。認証失敗など再試行しても直らないエラーは即座に返します。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if isPermanent(err) {
			return nil, fmt.Errorf("DB connect failed: %w", err)
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err)
		time.Sleep(min(retryInterval, remaining))
	}
}

// OpenDB は設定に従ってデータベースに接続します。
func OpenDB(cfg Config) (*gorm.DB, error) {
	if cfg.Driver == DriverSQLite {
		db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		return db, nil
	}
	if cfg.Driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
	return ConnectWithRetry(BuildDSN(cfg), connectTimeout, func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	})
}

// Migrate はすべてのテーブルを自動マイグレーションします。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&instrumententity.Instrument{},
		&priceadapters.PriceBarModel{},
		&analysisentity.History{},
		&analysisentity.Watchlist{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// permanentCodes はサーバー側の設定を直さない限り成功しないSQLSTATEです。
var permanentCodes = map[string]struct{}{
	"28000": {}, // invalid authorization
	"28P01": {}, // invalid_password
	"3D000": {}, // invalid_catalog_name (database does not exist)
}

func isPermanent(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	_, ok := permanentCodes[pgErr.Code]
	return ok
}
