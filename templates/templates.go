// Package templates хранит шаблоны писем, встроенные в бинарник.
package templates

import "embed"

//go:embed emails/*.html emails/*.txt
var Emails embed.FS
