package memutils

import "github.com/pkg/errors"

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = errors.New("number must be a power of two")

// AlignmentError is returned when an offset or pointer that must honor an alignment does not
var AlignmentError error = errors.New("value is not aligned")

// SizeError is returned when a byte count does not match the size a type requires
var SizeError error = errors.New("size does not match the type")
