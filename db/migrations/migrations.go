// Package migrations встраивает SQL-миграции в бинарник, чтобы golang-migrate применял их без доступа к файловой системе.
package migrations

import "embed"

// Dir — корень миграций внутри FS.
const Dir = "."

//go:embed *.sql
var FS embed.FS
