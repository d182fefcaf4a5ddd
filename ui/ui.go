package ui

import "embed"

//go:embed gohtml static
var Files embed.FS
