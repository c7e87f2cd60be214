package version

// version is injected at build time via -ldflags.
var version = "v0.0.0"

// Value returns the build version.
func Value() string {
	return version
}
