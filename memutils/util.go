package memutils

import (
	cerrors "github.com/cockroachdb/errors"
)

type Number interface {
	~int | ~uint | ~int64 | ~uint64 | ~uint32
}

// CheckPow2 returns an error wrapping PowerOfTwoError if number is not a positive power of two
func CheckPow2[T Number](number T, name string) error {
	if number == 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// AlignUp rounds value up to the next multiple of alignment, which must be a power of two
func AlignUp(value int, alignment int) int {
	return (value + alignment - 1) & ^(alignment - 1)
}

// AlignDown rounds value down to a multiple of alignment, which must be a power of two
func AlignDown(value int, alignment int) int {
	return value & ^(alignment - 1)
}

// IsAligned reports whether value is a multiple of alignment
func IsAligned(value int, alignment int) bool {
	if alignment <= 1 {
		return true
	}
	return value%alignment == 0
}
