package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	cidrPattern  = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}/\d{1,2}$`)
	rangePattern = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}\s*-\s*\d{1,3}(\.\d{1,3}){3}$`)
)

// TargetRange is a scan range that passed ValidateRange
type TargetRange string

// String returns the range as given to the probe
func (r TargetRange) String() string {
	return string(r)
}

// IsCIDR reports whether the range uses prefix notation
func (r TargetRange) IsCIDR() bool {
	return cidrPattern.MatchString(string(r))
}

// ValidateRange trims input and checks it against the CIDR and start-end shapes.
// Octets and prefix lengths are matched syntactically only.
func ValidateRange(input string) (TargetRange, error) {
	r := strings.TrimSpace(input)
	if r == "" {
		return "", fmt.Errorf("%w: range is empty", ErrInvalidRange)
	}
	if cidrPattern.MatchString(r) || rangePattern.MatchString(r) {
		return TargetRange(r), nil
	}
	return "", fmt.Errorf("%w: %q; allowed: CIDR (e.g. 10.10.0.0/24) or start-end (e.g. 10.10.0.10-10.10.0.50)",
		ErrInvalidRange, r)
}
