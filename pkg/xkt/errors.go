package xkt

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// XKT format errors.
var (
	ErrCorruptContainer     = errors.New("corrupt XKT container")
	ErrUnsupportedVersion   = errors.New("unsupported XKT version")
	ErrDecode               = errors.New("XKT decode error")
	ErrUnknownPrimitiveType = errors.New("unknown XKT primitive type")
	ErrDegenerateGeometry   = errors.New("degenerate XKT geometry")
)

// UnsupportedVersionError reports a container version with no registered decoder.
type UnsupportedVersionError struct {
	Version   int
	Supported []int
}

func (e *UnsupportedVersionError) Error() string {
	versions := append([]int(nil), e.Supported...)
	sort.Ints(versions)
	parts := make([]string, len(versions))
	for i, v := range versions {
		parts[i] = fmt.Sprint(v)
	}
	return fmt.Sprintf("%s: %d (supported: %s)", ErrUnsupportedVersion, e.Version, strings.Join(parts, ", "))
}

// Is makes errors.Is(err, ErrUnsupportedVersion) match.
func (e *UnsupportedVersionError) Is(target error) bool {
	return target == ErrUnsupportedVersion
}

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptContainer, fmt.Sprintf(format, args...))
}
