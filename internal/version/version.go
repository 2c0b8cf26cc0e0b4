package version

// Version is the current version of argo-intraday.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/argo-intraday/internal/version.Version=1.2.3"
// Setting it to "main" marks a development build and skips config version checks.
var Version = "v1.0.0"

// GetVersion returns the current version of the binary.
func GetVersion() string {
	return Version
}
