//go:build !windows

package main

// database/sql 驱动，按 db.driver 配置选择。
import (
	_ "github.com/jackc/pgx/v5/stdlib" // "pgx"
	_ "github.com/lib/pq"              // "postgres"
	_ "github.com/mattn/go-sqlite3"    // "sqlite3"
)
