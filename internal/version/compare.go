package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckVersionCompatibility checks if the binary version and the version a
// configuration file was written for are compatible.
// Returns nil if compatible, error with details if not.
//
// Compatibility Rules:
//   - If either version is "main" (development build), compatibility check is skipped
//   - Major versions must match exactly
//   - Minor versions must match exactly
//   - Patch versions can differ (e.g., 1.2.0 is compatible with 1.2.5)
//
// Examples:
//   - Binary 1.2.0, Config 1.2.0 -> OK (exact match)
//   - Binary 1.2.1, Config 1.2.0 -> OK (patch differs)
//   - Binary 1.3.0, Config 1.2.0 -> ERROR (minor differs)
//   - Binary 2.0.0, Config 1.2.0 -> ERROR (major differs)
//   - Binary main, Config 1.2.0 -> OK (dev build, skip check)
//   - Binary 1.2.0, Config main -> OK (dev build, skip check)
func CheckVersionCompatibility(binaryVersion, configVersion string) error {
	// Strip 'v' prefix if present for consistency
	binaryVersion = strings.TrimPrefix(binaryVersion, "v")
	configVersion = strings.TrimPrefix(configVersion, "v")

	// Skip version check for "main" (development builds)
	if binaryVersion == "main" || configVersion == "main" {
		return nil
	}

	// Parse binary version
	binarySemver, err := semver.NewVersion(binaryVersion)
	if err != nil {
		return fmt.Errorf("invalid binary version '%s': %w", binaryVersion, err)
	}

	// Parse config version
	configSemver, err := semver.NewVersion(configVersion)
	if err != nil {
		return fmt.Errorf("invalid config version '%s': %w", configVersion, err)
	}

	// Check major version match
	if binarySemver.Major() != configSemver.Major() {
		return fmt.Errorf("major version mismatch: binary is %d.x.x but config requires %d.x.x",
			binarySemver.Major(), configSemver.Major())
	}

	// Check minor version match
	if binarySemver.Minor() != configSemver.Minor() {
		return fmt.Errorf("minor version mismatch: binary is %d.%d.x but config requires %d.%d.x",
			binarySemver.Major(), binarySemver.Minor(),
			configSemver.Major(), configSemver.Minor())
	}

	// Patch versions can differ, so we're compatible
	return nil
}
