package app

// Build information, set with -ldflags "-X .../internal/app.BuildVersion=..."
var (
	BuildVersion = "0.0.0-dev"
	BuildCommit  = "unknown"
	BuildDate    = "unknown"
)

// Generator identifies this build in exported reports.
func Generator() string {
	return "geoanalyzer " + BuildVersion
}

// VersionString is the -version output.
func VersionString() string {
	return "geoanalyzer " + BuildVersion + " (commit " + BuildCommit + ", built " + BuildDate + ")"
}
