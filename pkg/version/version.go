// Package version provides parsing and comparison of the "major.minor"
// version stamped on saved snapshots.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Current is the snapshot format version written by this library.
const Current = "1.0"

// Version errors.
var (
	ErrInvalidVersion = errors.New("invalid version")
	ErrIncompatible   = errors.New("incompatible version")
)

// Version represents a parsed "major.minor" version.
type Version struct {
	Major uint16
	Minor uint16
}

// Parse parses a "major.minor" version string.
func Parse(s string) (Version, error) {
	majorStr, minorStr, ok := strings.Cut(s, ".")
	if !ok || strings.Contains(minorStr, ".") {
		return Version{}, fmt.Errorf("%w %q: expected major.minor", ErrInvalidVersion, s)
	}

	major, err := strconv.ParseUint(majorStr, 10, 16)
	if err != nil {
		return Version{}, fmt.Errorf("%w %q: bad major component", ErrInvalidVersion, s)
	}

	minor, err := strconv.ParseUint(minorStr, 10, 16)
	if err != nil {
		return Version{}, fmt.Errorf("%w %q: bad minor component", ErrInvalidVersion, s)
	}

	return Version{Major: uint16(major), Minor: uint16(minor)}, nil
}

// MustParse is Parse for constants. It panics on error.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the version as "major.minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible returns true if the other version has the same major version.
func (v Version) Compatible(other Version) bool {
	return v.Major == other.Major
}

// Newer returns true if v is a later version than other.
func (v Version) Newer(other Version) bool {
	if v.Major != other.Major {
		return v.Major > other.Major
	}
	return v.Minor > other.Minor
}

// Check parses s and verifies it can be read by the Current version.
func Check(s string) (Version, error) {
	v, err := Parse(s)
	if err != nil {
		return Version{}, err
	}
	if !MustParse(Current).Compatible(v) {
		return v, fmt.Errorf("%w: %s (supported: %d.x)", ErrIncompatible, v, MustParse(Current).Major)
	}
	return v, nil
}
