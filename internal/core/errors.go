// Package core defines sentinel errors.
package core

import "errors"

// Sentinel errors, wrapped with fmt.Errorf("...: %w") at package boundaries.
var (
	// Device errors
	ErrInvalidDeviceName = errors.New("tapwatch: invalid device name")
	ErrDeviceOpenFailed  = errors.New("tapwatch: device open failed")
	ErrDeviceBindFailed  = errors.New("tapwatch: device bind failed")
	ErrLinkConfigFailed  = errors.New("tapwatch: link configuration failed")

	// Frame decoding errors
	ErrPacketTooShort = errors.New("tapwatch: packet too short")

	// Address parsing errors
	ErrInvalidAddress = errors.New("tapwatch: invalid address")

	// Configuration errors
	ErrConfigInvalid = errors.New("tapwatch: invalid configuration")
)
