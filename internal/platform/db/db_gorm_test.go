package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

// TestBuildDSN はPostgreSQL用のDSN文字列が正しく生成されることを検証します。
func TestBuildDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "fields",
			cfg:  Config{User: "u", Password: "p", Name: "kanban", Host: "localhost", Port: "5432", SSLMode: "require"},
			want: "host=localhost port=5432 user=u password=p dbname=kanban sslmode=require TimeZone=UTC",
		},
		{
			name: "default sslmode",
			cfg:  Config{User: "u", Password: "p", Name: "kanban", Host: "db", Port: "5433"},
			want: "host=db port=5433 user=u password=p dbname=kanban sslmode=disable TimeZone=UTC",
		},
		{
			name: "explicit dsn wins",
			cfg:  Config{DSN: "postgres://x@y/z", Host: "ignored"},
			want: "postgres://x@y/z",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := BuildDSN(tt.cfg); got != tt.want {
				t.Errorf("expected DSN %q, got %q", tt.want, got)
			}
		})
	}
}

// TestConnectWithRetry_SuccessOnFirstTry は初回接続成功時にリトライせずDBを返すことを検証します。
func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	mockDB := &gorm.DB{}
	attempts := 0
	db, err := ConnectWithRetry("test-dsn", 5*time.Second, func(dsn string) (*gorm.DB, error) {
		attempts++
		return mockDB, nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db != mockDB {
		t.Error("expected mock DB to be returned")
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

// TestConnectWithRetry_RetriesOnFailure は接続失敗時にリトライして最終的に成功することを検証します。
func TestConnectWithRetry_RetriesOnFailure(t *testing.T) {
	prev := retryInterval
	retryInterval = time.Millisecond
	t.Cleanup(func() { retryInterval = prev })

	mockDB := &gorm.DB{}
	attempts := 0
	db, err := ConnectWithRetry("test-dsn", 5*time.Second, func(dsn string) (*gorm.DB, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("connection refused")
		}
		return mockDB, nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db != mockDB {
		t.Error("expected mock DB to be returned")
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

// TestConnectWithRetry_Timeout はタイムアウト後にエラーが返されることを検証します。
func TestConnectWithRetry_Timeout(t *testing.T) {
	prev := retryInterval
	retryInterval = time.Millisecond
	t.Cleanup(func() { retryInterval = prev })

	_, err := ConnectWithRetry("test-dsn", 20*time.Millisecond, func(dsn string) (*gorm.DB, error) {
		return nil, errors.New("connection refused")
	})
	if err == nil {
		t.Fatal("expected error after timeout, got nil")
	}
}

type widget struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex"`
}

// TestOpenDB_SQLite はSQLiteを開きAutoMigrateでテーブルが作成され、一意制約違反が判定できることを検証します。
func TestOpenDB_SQLite(t *testing.T) {
	db, err := OpenDB(Config{Driver: DriverSQLite, DSN: "file::memory:"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Migrate(context.Background(), db, DriverSQLite, &widget{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !db.Migrator().HasTable(&widget{}) {
		t.Fatal("expected widgets table")
	}

	if err := db.Create(&widget{Name: "a"}).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	err = db.Create(&widget{Name: "a"}).Error
	if !IsDuplicateKey(err) {
		t.Errorf("expected duplicate key error, got %v", err)
	}
}

// TestOpenDB_UnknownDriver は未対応のドライバでエラーになることを検証します。
func TestOpenDB_UnknownDriver(t *testing.T) {
	if _, err := OpenDB(Config{Driver: "oracle"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

// TestIsDuplicateKey はgormとpgconnの一意制約違反を判定できることを検証します。
func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"gorm duplicated", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm", fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), true},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, true},
		{"pg other", &pgconn.PgError{Code: "23503"}, false},
		{"other", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDuplicateKey(tt.err); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

// TestMigrate_Postgres はPostgreSQL指定時に埋め込みマイグレーションがgooseで適用されることを検証します。
func TestMigrate_Postgres(t *testing.T) {
	db, err := OpenDB(Config{Driver: DriverSQLite, DSN: "file::memory:"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	called := false
	prev := gooseUpContext
	gooseUpContext = func(ctx context.Context, sqlDB *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		called = true
		if dir != "." {
			t.Errorf("expected dir '.', got %q", dir)
		}
		return nil
	}
	t.Cleanup(func() { gooseUpContext = prev })

	if err := Migrate(context.Background(), db, DriverPostgres); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !called {
		t.Error("expected goose to be invoked")
	}
}
