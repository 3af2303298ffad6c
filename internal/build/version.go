package build

import (
	"errors"
	"fmt"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// ErrInvalidVersion is returned when a version string is not four dot-separated numbers.
var ErrInvalidVersion = errors.New("invalid version")

// Version is a dotted product version with exactly four numeric components.
type Version struct {
	Major    int
	Minor    int
	Build    int
	Revision int
}

// ParseVersion parses a string like "16.0.17928.20114". Prefixes, prerelease tags and
// build metadata accepted by go-version are rejected here.
func ParseVersion(s string) (Version, error) {
	if s == "" || !isDigit(s[0]) || !isDigit(s[len(s)-1]) {
		return Version{}, fmt.Errorf("%w: %q must start and end with a digit", ErrInvalidVersion, s)
	}

	v, err := goversion.NewVersion(s)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q: %v", ErrInvalidVersion, s, err)
	}
	if v.Prerelease() != "" || v.Metadata() != "" {
		return Version{}, fmt.Errorf("%w: %q has a prerelease or metadata suffix", ErrInvalidVersion, s)
	}

	// go-version pads short versions to three segments, so count the input as well.
	segments := v.Segments()
	if len(segments) != 4 || strings.Count(s, ".") != 3 {
		return Version{}, fmt.Errorf("%w: %q has %d components, want 4", ErrInvalidVersion, s, strings.Count(s, ".")+1)
	}

	return Version{Major: segments[0], Minor: segments[1], Build: segments[2], Revision: segments[3]}, nil
}

// String returns the canonical dotted form.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Revision)
}

// Compare returns -1, 0 or +1 depending on whether v sorts before, equal to or after o.
func (v Version) Compare(o Version) int {
	return v.semantic().Compare(o.semantic())
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func (v Version) semantic() *goversion.Version {
	return goversion.Must(goversion.NewVersion(v.String()))
}

// IsZero reports whether v is the zero value.
func (v Version) IsZero() bool {
	return v == Version{}
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
