// Package version provides the daemon version and "major.minor.patch"
// parsing and comparison helpers.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Current is the version reported by the get_version request.
const Current = "1.8.0"

// Version represents a parsed "major.minor.patch" version.
type Version struct {
	Major uint16
	Minor uint16
	Patch uint16
}

// String returns the daemon version string.
func String() string {
	return Current
}

// Parse parses a "major.minor.patch" version string.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version %q: expected major.minor.patch", s)
	}

	fields := [3]uint16{}
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 16)
		if err != nil || part == "" {
			return Version{}, fmt.Errorf("invalid version %q: bad component %q", s, part)
		}
		fields[i] = uint16(n)
	}

	return Version{Major: fields[0], Minor: fields[1], Patch: fields[2]}, nil
}

// String returns the version as "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compatible returns true if the other version has the same major
// version. Clients use this to decide whether the daemon's request
// surface matches their expectations.
func (v Version) Compatible(other Version) bool {
	return v.Major == other.Major
}
