package appfs

import "embed"

// FS embeds non-Go assets shipped inside the binaries (DB migrations).
//go:embed migrations
var FS embed.FS
