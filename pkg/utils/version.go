// Package utils holds build-time metadata injected via ldflags.
package utils

var (
	// Version is the semantic version of this build.
	Version = "dev"

	// Sha is the git commit the binary was built from.
	Sha = "unknown"

	// Buildtime is when the binary was built.
	Buildtime = "unknown"
)
