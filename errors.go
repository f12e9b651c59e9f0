package bme280

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedChip is returned by Init when the identity register does
	// not read back ChipID.
	ErrUnsupportedChip = errors.New("bme280: unsupported chip")
	// ErrUninitialized is returned by the measure calls before a successful Init.
	ErrUninitialized = errors.New("bme280: calibration not loaded, call Init first")
	// ErrBus matches every *BusError.
	ErrBus = errors.New("bme280: bus error")
)

// ChipIDError carries the identity byte that failed the check.
type ChipIDError struct {
	ID byte
}

func (e *ChipIDError) Error() string {
	return fmt.Sprintf("bme280: unsupported chip id %#02x, expected %#02x", e.ID, ChipID)
}

func (e *ChipIDError) Is(target error) bool {
	return target == ErrUnsupportedChip
}

// BusError wraps a failure returned by the Transport.
type BusError struct {
	Op  string
	Reg byte
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("bme280: %s %#02x failed: %v", e.Op, e.Reg, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }

func (e *BusError) Is(target error) bool {
	return target == ErrBus
}

func busErr(op string, reg byte, err error) error {
	return &BusError{Op: op, Reg: reg, Err: err}
}
