package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/regland/regland/internal/util"
	"github.com/regland/regland/logger"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

const MemoryPath = ":memory:"

type Options struct {
	ReadOnly     bool
	MaxOpenConns int
}

// RegDB bundles the raw handle used for hand-written SQL and a gorm handle
// over the same pool used by the query builders.
type RegDB struct {
	SQL      *sql.DB
	ORM      *gorm.DB
	Path     string
	ReadOnly bool
}

func dsn(path string, readOnly bool) string {
	pragmas := []string{"_pragma=busy_timeout(5000)"}
	if readOnly {
		pragmas = append(pragmas, "_pragma=query_only(1)")
	}
	return "file:" + path + "?" + strings.Join(pragmas, "&")
}

// Open connects to the sqlite database at path. MemoryPath gives a private
// in-memory database pinned to one connection.
func Open(path string, opts Options) (*RegDB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}

	memory := path == MemoryPath
	var (
		sqlDB *sql.DB
		err   error
	)
	if memory {
		sqlDB, err = sql.Open("sqlite", MemoryPath)
	} else {
		if !opts.ReadOnly {
			if err := util.EnsureParentDir(path); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		} else if !util.FileExists(path) {
			return nil, fmt.Errorf("database %s does not exist", path)
		}
		sqlDB, err = sql.Open("sqlite", dsn(path, opts.ReadOnly))
	}
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	switch {
	case memory:
		sqlDB.SetMaxOpenConns(1)
	case opts.MaxOpenConns > 0:
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}

	if memory && opts.ReadOnly {
		if _, err := sqlDB.Exec("PRAGMA query_only = ON"); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("set query_only: %w", err)
		}
	}

	orm, err := gorm.Open(sqlite.Dialector{DriverName: "sqlite", Conn: sqlDB}, &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	logger.Debug("Opened database", zap.String("path", path), zap.Bool("read_only", opts.ReadOnly))
	return &RegDB{SQL: sqlDB, ORM: orm, Path: path, ReadOnly: opts.ReadOnly}, nil
}

func (r *RegDB) Close() error {
	if r == nil || r.SQL == nil {
		return nil
	}
	return r.SQL.Close()
}

// Ping runs a trivial query to prove the database answers.
func (r *RegDB) Ping(ctx context.Context) error {
	var one int
	if err := r.SQL.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}
