// Package version holds the application version string.
package version

// Version is the current application version. Overridable at build time via
// -ldflags "-X lotsawa/internal/version.Version=x.y.z".
var Version = "1.0.0"
