// Package migrations embeds the goose SQL migrations for the books schema so
// the API and the migrate command can apply them without a checkout.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
