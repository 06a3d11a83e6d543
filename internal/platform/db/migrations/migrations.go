// Package migrations はPostgreSQL用のスキーマ定義（goose形式）を埋め込みます。
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
