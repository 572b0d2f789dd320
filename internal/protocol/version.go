package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// ProtocolVersion defines the current engine protocol version.
	// Format: MAJOR.MINOR.PATCH.
	// - Increment MAJOR for breaking message changes.
	// - Increment MINOR for backward-compatible additions (new tokens, new optional fields).
	// - Increment PATCH for backward-compatible fixes.
	ProtocolVersion = "1.1.0"

	// MinCompatibleVersion is the oldest engine protocol version this panel can talk to.
	// 1.1.0 added request ids; 1.0.0 engines answer without them.
	MinCompatibleVersion = "1.0.0"
)

// Version represents a parsed protocol version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse parses a version string in "MAJOR.MINOR.PATCH" format.
func Parse(version string) (Version, error) {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version format: %s (expected MAJOR.MINOR.PATCH)", version)
	}

	nums := make([]int, 3)
	for i, name := range []string{"major", "minor", "patch"} {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid %s version: %s", name, parts[i])
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String returns the string representation of the version.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

// IsCompatible checks whether an engine's protocol version can serve this panel.
// Rules:
// - Major version must match exactly.
// - The engine must not be older than MinCompatibleVersion.
// - Higher minor/patch versions are accepted.
func IsCompatible(engineVersionStr string) (bool, error) {
	engineVersion, err := Parse(engineVersionStr)
	if err != nil {
		return false, fmt.Errorf("failed to parse engine version: %w", err)
	}

	current := CurrentVersion()
	if engineVersion.Major != current.Major {
		return false, fmt.Errorf(
			"incompatible major version: engine is %s, panel requires %d.x.x",
			engineVersion, current.Major,
		)
	}

	minVersion, err := Parse(MinCompatibleVersion)
	if err != nil {
		return false, fmt.Errorf("failed to parse minimum compatible version: %w", err)
	}
	if engineVersion.Less(minVersion) {
		return false, fmt.Errorf("engine version %s is too old, minimum required is %s", engineVersion, MinCompatibleVersion)
	}

	return true, nil
}

// CurrentVersion returns ProtocolVersion parsed.
func CurrentVersion() Version {
	v, err := Parse(ProtocolVersion)
	if err != nil {
		panic(fmt.Sprintf("invalid ProtocolVersion constant: %v", err))
	}
	return v
}
