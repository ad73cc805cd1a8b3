package database

import (
	"database/sql"
)

// DBTX は *sqlx.DB と *sqlx.Tx の両方を受け取れる最小インターフェースです。
type DBTX interface {
	Get(dest interface{}, query string, args ...interface{}) error
	Select(dest interface{}, query string, args ...interface{}) error
	Exec(query string, args ...interface{}) (sql.Result, error)
	Rebind(query string) string
}
