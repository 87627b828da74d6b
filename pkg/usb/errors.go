// SPDX-License-Identifier: BSD-3-Clause

//go:build linux
// +build linux

package usb

import "errors"

var (
	// ErrGadgetExists indicates that a USB gadget with the given name
	// is already provisioned under gadgetRoot.
	ErrGadgetExists = errors.New("usb gadget already exists")

	// ErrGadgetNotFound indicates that the named gadget has no
	// ConfigFS directory.
	ErrGadgetNotFound = errors.New("usb gadget not found")

	// ErrNoUDCFound indicates that /sys/class/udc lists no controller
	// at all.
	ErrNoUDCFound = errors.New("no available USB device controller")

	// ErrDeviceNotReady indicates that a /dev/hidgN node has not
	// appeared within the provisioner's startup barrier window.
	ErrDeviceNotReady = errors.New("hid device not ready")

	// ErrSendTimeout indicates that a report send did not complete
	// within its deadline.
	ErrSendTimeout = errors.New("report send timed out")

	// ErrFunctionNotRegistered indicates that a configuration
	// references a function name absent from GadgetInfo.Functions.
	ErrFunctionNotRegistered = errors.New("function not registered on gadget")
)

// IsNotBoundError reports whether err indicates the gadget was already
// unbound (so a second unbind attempt is a harmless no-op).
func IsNotBoundError(err error) bool {
	return errors.Is(err, ErrGadgetNotFound)
}
