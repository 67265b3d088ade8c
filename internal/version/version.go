package version

import (
	"runtime"
	"time"
)

// Overridden at build time through -ldflags; the defaults identify a
// local development build.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = time.Now().Format(time.RFC3339)
	GoVersion = runtime.Version()
)
