package version

// Build metadata, overridden at link time via -ldflags.
var (
	AppVersion = "dev"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)
