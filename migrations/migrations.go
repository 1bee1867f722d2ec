// Package migrations embute os arquivos SQL de migração, compartilhados
// entre o binário migrador e os testes de integração.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
