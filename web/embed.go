package web

import "embed"

// TemplatesFS embeds the HTML shells for the primary and quick-add windows.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds static assets (css/js).
//
//go:embed static/*
var StaticFS embed.FS
