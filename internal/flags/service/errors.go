package service

import (
	"errors"

	"github.com/aussiebroadwan/flagtree/internal/flags/hierarchy"
)

var (
	ErrFlagNotFound      = errors.New("flag not found")
	ErrDuplicateFlagName = errors.New("flag name already exists")
	ErrInvalidFlagName   = errors.New("invalid flag name")

	// A missing parent is reported wrapping both ErrParentNotFound and ErrFlagNotFound.
	ErrParentNotFound = hierarchy.ErrParentNotFound

	ErrCycleDetected      = hierarchy.ErrCycleDetected
	ErrMalformedHierarchy = hierarchy.ErrMalformedHierarchy
)

// MaxNameLength bounds flag names.
const MaxNameLength = 128

// ValidateName checks that name is 1..128 characters of [A-Za-z0-9._-]
// starting with a letter or digit.
func ValidateName(name string) error {
	if name == "" || len(name) > MaxNameLength {
		return ErrInvalidFlagName
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case (c == '.' || c == '_' || c == '-') && i > 0:
		default:
			return ErrInvalidFlagName
		}
	}
	return nil
}
