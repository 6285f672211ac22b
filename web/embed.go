// Package web holds the page templates and the stylesheet, embedded into
// the server binary.
package web

import "embed"

// TemplatesFS holds base.html plus one template per panel.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

//go:embed static/*
var StaticFS embed.FS
