package memutils

import (
	"reflect"

	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

type Number interface {
	constraints.Integer
}

// CheckPow2 returns PowerOfTwoError, wrapped with the provided name, if number is not a positive
// power of two
func CheckPow2[T Number](number T, name string) error {
	if number <= 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// AlignUp rounds value up to the next multiple of alignment, which must be a power of two
func AlignUp[T Number](value T, alignment T) T {
	return (value + alignment - 1) &^ (alignment - 1)
}

// AlignDown rounds value down to the previous multiple of alignment, which must be a power of two
func AlignDown[T Number](value T, alignment T) T {
	return value &^ (alignment - 1)
}

// CheckAligned returns AlignmentError if value is not a multiple of alignment
func CheckAligned[T Number](value T, alignment T, name string) error {
	if value&(alignment-1) != 0 {
		return cerrors.Wrapf(AlignmentError, "%s is %d, alignment is %d", name, value, alignment)
	}
	return nil
}

// IsByteCopyable reports whether values of t can be stored as raw bytes outside of
// memory the garbage collector scans. That rules out anything holding a Go pointer:
// pointers, strings, slices, maps, channels, funcs and interfaces, at any depth.
func IsByteCopyable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return t.Len() == 0 || IsByteCopyable(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !IsByteCopyable(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// CheckEqual returns SizeError if value is not expected
func CheckEqual[T Number](value T, expected T, name string) error {
	if value != expected {
		return cerrors.Wrapf(SizeError, "%s is %d, expected %d", name, value, expected)
	}
	return nil
}

// CheckMultiple returns SizeError if value is not a whole multiple of unit. A unit of 0 only
// divides 0.
func CheckMultiple[T Number](value T, unit T, name string) error {
	if unit == 0 {
		return CheckEqual(value, 0, name)
	}
	if value%unit != 0 {
		return cerrors.Wrapf(SizeError, "%s is %d, not a multiple of %d", name, value, unit)
	}
	return nil
}
