// Package web holds the wallet UI: page templates and the assets they load.
package web

import "embed"

// TemplatesFS holds every page and partial; each page file defines
// "<page>.html" and "<page>_content".
//
//go:embed templates/*.html
var TemplatesFS embed.FS

//go:embed static/*
var StaticFS embed.FS
