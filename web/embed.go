package web

import "embed"

// StaticFS embeds the stylesheet and the alert script.
//
//go:embed static/*
var StaticFS embed.FS
