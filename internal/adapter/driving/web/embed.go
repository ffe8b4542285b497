package web

import "embed"

// StaticFS holds the embedded static assets (stylesheet, dashboard JS).
//
//go:embed static/*
var StaticFS embed.FS
