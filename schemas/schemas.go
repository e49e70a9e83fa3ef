package schemas

import "embed"

// SchemasFS содержит JSON-схемы документа ключей и файла снимка
//
//go:embed keys/*.json snapshot/*.json
var SchemasFS embed.FS
