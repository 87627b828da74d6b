// SPDX-License-Identifier: BSD-3-Clause

package kvmsrv

import "errors"

var (
	// ErrServiceNotConfigured indicates that the KVM service is not properly configured.
	ErrServiceNotConfigured = errors.New("KVM service not configured")

	// ErrUSBGadgetInitFailed indicates that USB gadget initialization failed.
	ErrUSBGadgetInitFailed = errors.New("USB gadget initialization failed")

	// ErrInvalidConfiguration indicates that the service configuration is invalid.
	ErrInvalidConfiguration = errors.New("invalid service configuration")

	// ErrResourceUnavailable indicates that a required resource is unavailable.
	ErrResourceUnavailable = errors.New("required resource unavailable")

	// ErrOperationFailed indicates that a KVM operation failed.
	ErrOperationFailed = errors.New("KVM operation failed")

	// ErrServiceShutdown indicates that the service is shutting down.
	ErrServiceShutdown = errors.New("KVM service shutting down")

	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrServiceAlreadyStarted indicates Run was called twice on the
	// same KVMSrv instance.
	ErrServiceAlreadyStarted = errors.New("KVM service already started")

	// ErrNATSConnectionFailed indicates the in-process NATS connection
	// could not be established.
	ErrNATSConnectionFailed = errors.New("failed to connect to in-process NATS")

	// ErrInvalidRequest indicates a NATS micro request body could not
	// be decoded or failed validation.
	ErrInvalidRequest = errors.New("invalid request")
)
